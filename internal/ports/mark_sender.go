package ports

import "context"

// MarkSender opens sessions to the remote-control endpoint.
type MarkSender interface {
	// Open connects to the endpoint. Failures wrap domain.ErrConnection.
	Open(ctx context.Context) (MarkSession, error)
}

// MarkSession is one exclusively owned connection.
type MarkSession interface {
	// Send writes cmd and blocks until the peer acknowledges it.
	Send(ctx context.Context, cmd string) error

	// Close releases the connection.
	Close() error
}
