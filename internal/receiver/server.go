// Package receiver implements the listening side of the remote-control
// protocol: a TCP port that takes mark, center and path commands and
// answers each with OK or ERR.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gtopo/markship/pkg/log"
)

const (
	// DefaultAddr is where the map viewer listens.
	DefaultAddr = ":5555"

	// MaxPathPoints caps the stored path; extra points are dropped.
	MaxPathPoints = 2000

	readSize   = 128
	maxCommand = 100

	replyOK  = "OK\r\n"
	replyErr = "ERR\r\n"
)

// Handler is called for every accepted command, after the server state
// has been updated and before the reply is written.
type Handler func(Command)

// Point is a coordinate pair on the path.
type Point struct {
	Lon float64
	Lat float64
}

// Snapshot is a copy of the receiver state.
type Snapshot struct {
	Active    bool // a mark has been placed
	MarkLon   float64
	MarkLat   float64
	CenterLon float64
	CenterLat float64
	Centered  bool
	Path      []Point
	PathDrawn bool
	Accepted  uint64
	Rejected  uint64
}

// Server accepts remote-control connections.
type Server struct {
	addr    string
	logger  log.Logger
	handler Handler

	mu    sync.Mutex
	state Snapshot

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
}

// NewServer creates a Server for addr. handler and logger may be nil.
func NewServer(addr string, handler Handler, logger log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{
		addr:    addr,
		logger:  logger,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until ctx
// is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. It closes ln
// and every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("listening", log.String("addr", ln.Addr().String()))

	shutdown := func() {
		ln.Close()
		s.closeConns()
	}
	stop := context.AfterFunc(ctx, shutdown)
	defer func() {
		stop()
		shutdown()
		s.wg.Wait()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handle(conn)
		}()
	}
}

// Snapshot returns a copy of the current state.
func (s *Server) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Path = append([]Point(nil), s.state.Path...)
	return out
}

// handle serves one connection. Each read is one command; senders put
// no delimiter between commands and wait for the reply before the next.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection opened", log.String("remote", remote))

	buf := make([]byte, readSize)
	for {
		n, err := conn.Read(buf)
		if n == 0 && err != nil {
			s.logger.Debug("connection closed", log.String("remote", remote))
			return
		}

		reply := s.Exec(buf[:n])
		if _, err := conn.Write([]byte(reply)); err != nil {
			s.logger.Warn("write reply", log.String("remote", remote), log.Err(err))
			return
		}
	}
}

// Exec runs one raw request against the server state and returns the
// reply to send back.
func (s *Server) Exec(raw []byte) string {
	if len(raw) < 1 || len(raw) > maxCommand {
		s.reject(string(raw))
		return replyErr
	}
	n := len(raw)
	for i := 0; i < 2 && n > 0 && (raw[n-1] == '\r' || raw[n-1] == '\n'); i++ {
		n--
	}
	line := string(raw[:n])

	cmd, err := ParseCommand(line)
	if err != nil {
		s.reject(line)
		return replyErr
	}
	s.apply(cmd)
	s.logger.Debug("command",
		log.String("kind", cmd.Kind.String()),
		log.Float64("lon", cmd.Lon),
		log.Float64("lat", cmd.Lat),
	)
	if s.handler != nil {
		s.handler(cmd)
	}
	return replyOK
}

func (s *Server) apply(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Accepted++

	switch cmd.Kind {
	case KindErasePath:
		s.state.Path = s.state.Path[:0]
		s.state.PathDrawn = false
	case KindDrawPath:
		s.state.PathDrawn = true
	case KindPathPoint:
		if len(s.state.Path) < MaxPathPoints {
			s.state.Path = append(s.state.Path, Point{Lon: cmd.Lon, Lat: cmd.Lat})
		}
	case KindMark:
		if cmd.Mark {
			s.state.Active = true
			s.state.MarkLon, s.state.MarkLat = cmd.Lon, cmd.Lat
		}
		if cmd.Center {
			s.state.Centered = true
			s.state.CenterLon, s.state.CenterLat = cmd.Lon, cmd.Lat
		}
	}
}

func (s *Server) reject(line string) {
	s.mu.Lock()
	s.state.Rejected++
	s.mu.Unlock()
	s.logger.Warn("rejected command", log.String("command", line))
}

func (s *Server) track(conn net.Conn, add bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}
