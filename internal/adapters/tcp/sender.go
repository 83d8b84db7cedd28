// Package tcp implements ports.MarkSender over plain TCP.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gtopo/markship/internal/domain"
	"github.com/gtopo/markship/internal/ports"
	"github.com/gtopo/markship/pkg/log"
)

var _ ports.MarkSender = (*Sender)(nil)

// DefaultAckSize is how many reply bytes are read after each command.
const DefaultAckSize = 16

// Config configures a Sender.
type Config struct {
	Addr        string
	DialTimeout time.Duration

	// AckTimeout bounds the acknowledgment read. Zero waits forever.
	AckTimeout time.Duration

	// AckSize is the read buffer for the reply. Defaults to DefaultAckSize.
	AckSize int
}

// Sender dials the remote-control port.
type Sender struct {
	cfg    Config
	dialer *net.Dialer
	logger log.Logger
}

// NewSender creates a Sender. A nil logger discards output.
func NewSender(cfg Config, logger log.Logger) *Sender {
	if cfg.AckSize <= 0 {
		cfg.AckSize = DefaultAckSize
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Sender{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.DialTimeout},
		logger: logger,
	}
}

// Open dials the configured address.
func (s *Sender) Open(ctx context.Context) (ports.MarkSession, error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", domain.ErrConnection, s.cfg.Addr, err)
	}
	s.logger.Debug("connected", log.String("addr", s.cfg.Addr))
	return &Session{
		conn:       conn,
		ack:        make([]byte, s.cfg.AckSize),
		ackTimeout: s.cfg.AckTimeout,
		logger:     s.logger,
	}, nil
}

// Session is one open connection.
type Session struct {
	conn       net.Conn
	ack        []byte
	ackTimeout time.Duration
	logger     log.Logger
}

// Send writes cmd with no framing, then blocks reading up to AckSize
// reply bytes. The reply content is not interpreted.
func (s *Session) Send(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// unblock a pending write or read when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(s.conn, cmd); err != nil {
		return s.wrap(ctx, "write", err)
	}

	if s.ackTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.ackTimeout))
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
	// a cancel landing before the deadline reset above would be undone by it
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := s.conn.Read(s.ack)
	if n == 0 && err == nil {
		err = io.ErrNoProgress
	}
	if n == 0 {
		return s.wrap(ctx, "read ack", err)
	}
	s.logger.Debug("ack", log.String("cmd", cmd), log.String("reply", string(s.ack[:n])))
	return nil
}

func (s *Session) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, io.EOF) {
		err = fmt.Errorf("peer closed connection: %w", err)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrConnection, op, s.conn.RemoteAddr(), err)
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
