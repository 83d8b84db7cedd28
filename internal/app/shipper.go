package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gtopo/markship/internal/domain"
	"github.com/gtopo/markship/internal/ports"
	"github.com/gtopo/markship/pkg/log"
)

// DefaultInterval is the pause between consecutive sends.
const DefaultInterval = 100 * time.Millisecond

// ShipperConfig controls how marks are delivered.
type ShipperConfig struct {
	// Interval is the pause between two sends of one run.
	Interval time.Duration

	// Reconnect opens a fresh connection for every mark instead of
	// holding one for the whole run.
	Reconnect bool

	// Verb prefixes each mark command. Defaults to domain.VerbMarkCenter.
	Verb string
}

// Shipper delivers a track's marks to the remote-control port, strictly
// in order, one acknowledged command at a time.
type Shipper struct {
	config ShipperConfig
	sender ports.MarkSender
	logger log.Logger
	out    io.Writer
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewShipper creates a Shipper. Progress lines (indexes and the track
// length) are written to out.
func NewShipper(config ShipperConfig, sender ports.MarkSender, logger log.Logger, out io.Writer) *Shipper {
	if config.Verb == "" {
		config.Verb = domain.VerbMarkCenter
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if out == nil {
		out = io.Discard
	}
	return &Shipper{
		config: config,
		sender: sender,
		logger: logger,
		out:    out,
		sleep:  sleepCtx,
	}
}

// SendOne sends the i-th mark over a connection of its own.
func (s *Shipper) SendOne(ctx context.Context, track domain.Track, i int) error {
	m, err := track.At(i)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, i)

	sess, err := s.sender.Open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	cmd := m.CommandVerb(s.config.Verb)
	if err := sess.Send(ctx, cmd); err != nil {
		return fmt.Errorf("send mark %d: %w", i, err)
	}
	s.logger.Info("sent mark", log.Int("index", i), log.String("cmd", cmd))
	return nil
}

// SendAll sends every mark in order, pausing Interval between sends.
// The first failure aborts the run.
func (s *Shipper) SendAll(ctx context.Context, track domain.Track) error {
	fmt.Fprintln(s.out, track.Len())

	marks := track.Marks()
	cmds := make([]string, len(marks))
	for i, m := range marks {
		cmds[i] = m.CommandVerb(s.config.Verb)
	}

	start := time.Now()
	if err := s.run(ctx, cmds, true); err != nil {
		return err
	}
	s.logger.Info("track sent",
		log.Int("marks", len(cmds)),
		log.Duration("duration", time.Since(start)),
	)
	return nil
}

// SendPath replaces the receiver's path with the track: it erases the
// current path, appends every mark as a path point and asks for a redraw.
func (s *Shipper) SendPath(ctx context.Context, track domain.Track) error {
	if track.Len() == 0 {
		return nil
	}
	fmt.Fprintln(s.out, track.Len())

	marks := track.Marks()
	cmds := make([]string, 0, len(marks)+2)
	cmds = append(cmds, domain.VerbErasePath)
	for _, m := range marks {
		cmds = append(cmds, m.CommandVerb(domain.VerbPathPoint))
	}
	cmds = append(cmds, domain.VerbDrawPath)

	if err := s.run(ctx, cmds, false); err != nil {
		return err
	}
	s.logger.Info("path sent", log.Int("points", len(marks)))
	return nil
}

// run delivers cmds in order. With progress set, each command's index is
// printed before it is sent.
func (s *Shipper) run(ctx context.Context, cmds []string, progress bool) error {
	if len(cmds) == 0 {
		return nil
	}

	var sess ports.MarkSession
	closeSess := func() {
		if sess != nil {
			if err := sess.Close(); err != nil {
				s.logger.Debug("close", log.Err(err))
			}
			sess = nil
		}
	}
	defer closeSess()

	for i, cmd := range cmds {
		if i > 0 {
			if err := s.sleep(ctx, s.config.Interval); err != nil {
				return err
			}
		}
		if progress {
			fmt.Fprintln(s.out, i)
		}

		if sess == nil {
			var err error
			if sess, err = s.sender.Open(ctx); err != nil {
				return err
			}
		}
		if err := sess.Send(ctx, cmd); err != nil {
			return fmt.Errorf("send command %d: %w", i, err)
		}
		s.logger.Debug("sent", log.Int("index", i), log.String("cmd", cmd))

		if s.config.Reconnect {
			closeSess()
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
