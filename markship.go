// Package markship replays GPX tracks onto a map viewer's remote-control
// port, one acknowledged mark at a time.
//
// Example usage:
//
//	cfg := markship.DefaultConfig()
//	cfg.GPXPath = "carrie.gpx"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	track, err := markship.LoadTrack(ctx, cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := markship.NewShipper(cfg, nil, os.Stdout).SendAll(ctx, track); err != nil {
//	    log.Fatal(err)
//	}
package markship

import (
	"context"
	"io"

	"github.com/gtopo/markship/internal/adapters/gpx"
	"github.com/gtopo/markship/internal/adapters/tcp"
	"github.com/gtopo/markship/internal/app"
	"github.com/gtopo/markship/internal/cliconfig"
	"github.com/gtopo/markship/internal/domain"
	"github.com/gtopo/markship/internal/receiver"
	"github.com/gtopo/markship/pkg/log"
)

// Config holds process-wide settings: input file, endpoint, pacing.
type Config = cliconfig.Config

// Track is the ordered list of marks parsed from a GPX file.
type Track = domain.Track

// Mark is a single trackpoint.
type Mark = domain.Mark

// Shipper sends tracks in single-mark, batch or path mode.
type Shipper = app.Shipper

// Receiver is the listening side of the remote-control protocol.
type Receiver = receiver.Server

// Command is a decoded remote-control request seen by a Receiver.
type Command = receiver.Command

// Error kinds; match with errors.Is.
var (
	ErrParseFormat     = domain.ErrParseFormat
	ErrConnection      = domain.ErrConnection
	ErrIndexOutOfRange = domain.ErrIndexOutOfRange
	ErrInvalidConfig   = domain.ErrInvalidConfig
)

// DefaultConfig returns a Config targeting localhost:5555 with carrie.gpx.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// LoadTrack parses cfg.GPXPath.
func LoadTrack(ctx context.Context, cfg Config, logger log.Logger) (Track, error) {
	return gpx.NewReader(logger).Read(ctx, cfg.GPXPath)
}

// NewShipper wires a TCP sender for cfg.Addr into a Shipper. Progress
// lines go to out.
func NewShipper(cfg Config, logger log.Logger, out io.Writer) *Shipper {
	sender := tcp.NewSender(tcp.Config{
		Addr:        cfg.Addr,
		DialTimeout: cfg.DialTimeout,
		AckTimeout:  cfg.AckTimeout,
		AckSize:     cfg.AckSize,
	}, logger)
	return app.NewShipper(app.ShipperConfig{
		Interval:  cfg.Interval,
		Reconnect: cfg.Reconnect,
		Verb:      cfg.Verb(),
	}, sender, logger, out)
}

// NewReceiver creates a receiver listening on cfg.Listen.
func NewReceiver(cfg Config, handler func(Command), logger log.Logger) *Receiver {
	return receiver.NewServer(cfg.Listen, handler, logger)
}
