package engine

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConnected indicates a command was attempted without a live
	// connection; no I/O is performed.
	ErrNotConnected = errors.New("not connected to engine")

	// ErrAlreadyConnected indicates Connect was called on a live session.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrSessionClosed indicates Connect was called on a closed session;
	// closed sessions are terminal and a new one must be created.
	ErrSessionClosed = errors.New("session is closed")

	// ErrReplyTimeout indicates no reply arrived within the receive window.
	ErrReplyTimeout = errors.New("timed out waiting for reply")
)

// ConnectError reports a failed connection attempt (refused, unreachable, or
// timed out). It is fatal to a demonstration run: no command is issued after
// one.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to engine at %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// isTimeout reports whether a transport error is a deadline expiry.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
