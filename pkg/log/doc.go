// Package log is the logging abstraction used by markship components.
//
// Library code logs through [Logger] so it stays independent of the
// backend. The CLI wires a zerolog logger through [NewZerologAdapter];
// tests use [NewNoopLogger].
//
//	logger := log.NewZerologAdapter(zerolog.New(os.Stderr))
//	logger.Info("sent mark", log.Int("index", 3), log.String("cmd", cmd))
package log
