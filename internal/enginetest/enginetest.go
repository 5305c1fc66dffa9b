// Package enginetest provides a scriptable TCP stand-in for the generator
// control engine. It speaks the engine's wire discipline (one read is one
// command, one write is one reply) so package tests can exercise the client
// against reachable, silent, malformed, and disappearing engines without the
// real simulator. It is protocol-level only; no physical behavior is modeled.
package enginetest

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Reaction tells the stub how to answer one received command.
type Reaction struct {
	// Reply is written back verbatim when neither Silent nor Drop is set.
	Reply string
	// Silent consumes the command without replying, so the client's
	// receive window elapses.
	Silent bool
	// Drop closes the connection without replying.
	Drop bool
}

// Handler maps one received command to its reaction.
type Handler func(cmd string) Reaction

// Server is a stub engine listening on an ephemeral localhost port.
type Server struct {
	listener net.Listener
	handler  Handler

	mu       sync.Mutex
	commands []string
	conns    []net.Conn

	wg sync.WaitGroup
}

// Start launches a stub engine. A nil handler falls back to Simulator().
// Callers must Close the server when done.
func Start(handler Handler) (*Server, error) {
	if handler == nil {
		handler = Simulator()
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen stub engine: %w", err)
	}

	s := &Server{listener: listener, handler: handler}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the host:port the stub engine listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Commands returns every command received so far, in arrival order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Close stops the listener, severs live connections, and waits for the
// serving goroutines to finish.
func (s *Server) Close() {
	_ = s.listener.Close()

	s.mu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// serveConn mirrors the real engine's command loop: a bounded read is one
// command, answered by a single write.
func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()

	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		reaction := s.handler(cmd)
		if reaction.Drop {
			_ = conn.Close()
			return
		}
		if reaction.Silent {
			continue
		}
		if _, err := conn.Write([]byte(reaction.Reply)); err != nil {
			return
		}
	}
}

// OK renders the engine's success envelope.
func OK(message string) string {
	return fmt.Sprintf(`{"status":"success","message":%q}`, message)
}

// Errorf renders the engine's error envelope.
func Errorf(format string, args ...any) string {
	return fmt.Sprintf(`{"status":"error","message":%q}`, fmt.Sprintf(format, args...))
}

// StatusReply renders a status envelope with a nested data mapping, in the
// shape the real engine reports.
func StatusReply(state string, load int) string {
	payload := map[string]any{
		"status": "success",
		"data": map[string]any{
			"state":  state,
			"load":   load,
			"alarms": []string{},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

// Simulator returns a stateful handler that mimics the engine's command
// dispatch and load-acceptance policy: start/stop flip the running state,
// set_load applies the 0..100 range check and the 20% minimum floor while
// running, and status reports the current snapshot. Rejections use the
// engine's error envelope.
func Simulator() Handler {
	var (
		mu      sync.Mutex
		running bool
		load    int
	)

	return func(cmd string) Reaction {
		mu.Lock()
		defer mu.Unlock()

		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			return Reaction{Reply: Errorf("Unknown command")}
		}

		switch fields[0] {
		case "status":
			state := "stopped"
			if running {
				state = "running"
			}
			return Reaction{Reply: StatusReply(state, load)}
		case "start":
			running = true
			return Reaction{Reply: OK("Generator started")}
		case "stop":
			running = false
			load = 0
			return Reaction{Reply: OK("Generator stopped")}
		case "set_load":
			if len(fields) < 2 {
				return Reaction{Reply: Errorf("Missing load value")}
			}
			value, err := strconv.Atoi(fields[1])
			if err != nil {
				return Reaction{Reply: Errorf("Invalid load value")}
			}
			if value < 0 || value > 100 {
				return Reaction{Reply: Errorf("Load must be between 0 and 100")}
			}
			if !running {
				return Reaction{Reply: Errorf("Cannot change load - generator is stopped")}
			}
			if value < 20 {
				return Reaction{Reply: Errorf("Load must be at least 20%% while running")}
			}
			load = value
			return Reaction{Reply: OK(fmt.Sprintf("Load set to %d%%", value))}
		default:
			return Reaction{Reply: Errorf("Unknown command")}
		}
	}
}
