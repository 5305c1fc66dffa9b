// Package engine implements the client side of the generator engine's TCP
// control protocol: a Session owning one stream connection, the literal
// command vocabulary, and tolerant reply decoding.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/msevon/genctl/internal/fsm"
)

const (
	DefaultAddr           = "localhost:8081"
	DefaultConnectTimeout = 5 * time.Second
	DefaultReplyTimeout   = 5 * time.Second
	DefaultReceiveBuffer  = 1024
)

// Config controls the endpoint and exchange limits of a Session. Zero values
// fall back to the protocol reference defaults.
type Config struct {
	Addr           string
	ConnectTimeout time.Duration
	ReplyTimeout   time.Duration
	ReceiveBuffer  int
	Logger         *slog.Logger
}

// Session is the client-owned abstraction over one live stream connection to
// the control engine. It is created unconnected, becomes connected through
// Connect, and is closed exactly once through Close or an unrecoverable
// transport fault. The protocol is strictly one command in, one reply out;
// an internal mutex keeps at most one exchange outstanding.
type Session struct {
	addr           string
	connectTimeout time.Duration
	replyTimeout   time.Duration
	recvBuf        int
	logger         *slog.Logger

	mu    sync.Mutex
	conn  net.Conn
	state fsm.State
}

// New builds an unconnected session for the configured endpoint.
func New(cfg Config) *Session {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.ReceiveBuffer <= 0 {
		cfg.ReceiveBuffer = DefaultReceiveBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		addr:           cfg.Addr,
		connectTimeout: cfg.ConnectTimeout,
		replyTimeout:   cfg.ReplyTimeout,
		recvBuf:        cfg.ReceiveBuffer,
		logger:         cfg.Logger,
		state:          fsm.StateUnconnected,
	}
}

// Addr returns the configured engine endpoint.
func (s *Session) Addr() string { return s.addr }

// State returns the current connection state.
func (s *Session) State() fsm.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect opens the stream connection with a bounded timeout. Failure leaves
// the session unconnected and returns a *ConnectError; there is no automatic
// retry.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case fsm.StateConnected:
		return ErrAlreadyConnected
	case fsm.StateClosed:
		return ErrSessionClosed
	}

	dialer := net.Dialer{Timeout: s.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		s.state, _ = fsm.Transition(s.state, fsm.EventConnectFail)
		return &ConnectError{Addr: s.addr, Err: err}
	}

	s.conn = conn
	s.state, _ = fsm.Transition(s.state, fsm.EventConnect)
	s.logger.Debug("engine session connected", "addr", s.addr)
	return nil
}

// Send writes one command and reads at most one bounded reply, decoding it
// with the tolerant JSON fallback. A reply timeout leaves the session
// connected so later commands may still succeed; any other transport fault
// closes the connection, and subsequent sends report ErrNotConnected.
func (s *Session) Send(ctx context.Context, cmd Command) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != fsm.StateConnected {
		return Reply{}, ErrNotConnected
	}

	deadline := time.Now().Add(s.replyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	_ = s.conn.SetWriteDeadline(deadline)
	if _, err := s.conn.Write([]byte(cmd)); err != nil {
		s.fault()
		return Reply{}, fmt.Errorf("write command %q: %w", cmd, err)
	}

	_ = s.conn.SetReadDeadline(deadline)
	buf := make([]byte, s.recvBuf)
	n, err := s.conn.Read(buf)
	if n == 0 && err != nil {
		if isTimeout(err) {
			s.logger.Debug("engine reply timed out", "command", cmd.String(), "after", time.Since(start))
			return Reply{}, fmt.Errorf("command %q: %w", cmd, ErrReplyTimeout)
		}
		s.fault()
		return Reply{}, fmt.Errorf("read reply for %q: %w", cmd, err)
	}
	if err != nil && !isTimeout(err) {
		// The reply arrived alongside a terminal condition (typically EOF);
		// surface the bytes and treat the connection as gone.
		s.fault()
	}

	reply := DecodeReply(buf[:n])
	s.logger.Debug("engine exchange complete",
		"command", cmd.String(),
		"structured", reply.Structured(),
		"bytes", n,
		"elapsed", time.Since(start),
	)
	return reply, nil
}

// Close releases the connection. It is idempotent, never fails, and is safe
// on a session that never connected.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state, _ = fsm.Transition(s.state, fsm.EventClose)
	if s.conn == nil {
		return nil
	}

	_ = s.conn.Close()
	s.conn = nil
	s.logger.Debug("engine session closed", "addr", s.addr)
	return nil
}

// fault tears down a connection after an unrecoverable transport error.
// Callers must hold s.mu.
func (s *Session) fault() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.state, _ = fsm.Transition(s.state, fsm.EventFault)
	s.logger.Debug("engine session faulted", "addr", s.addr)
}
