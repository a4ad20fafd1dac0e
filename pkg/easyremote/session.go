package easyremote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"time"
)

// ConnectError reports that the session transport could not be set up.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Session is a client of one console. It is not safe for concurrent use;
// callers sharing a Session across goroutines must serialize access.
type Session struct {
	conn        *net.UDPConn
	raddr       *net.UDPAddr
	readTimeout time.Duration
	logger      *slog.Logger
	controls    map[string]Control
	complete    bool
	closed      bool
}

// NewSession opens a UDP socket, announces the client to the console at
// host and waits for the console to describe its controls.
//
// Each read waits at most the configured read timeout. When it expires the
// session is returned without controls and Complete reports false. A
// malformed datagram or a done context fails construction.
func NewSession(ctx context.Context, host string, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	addr := net.JoinHostPort(host, strconv.Itoa(cfg.port))
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}

	conn, err := net.ListenUDP("udp", cfg.localAddr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}

	s := &Session{
		conn:        conn,
		raddr:       raddr,
		readTimeout: cfg.readTimeout,
		logger:      cfg.logger,
		controls:    make(map[string]Control),
	}

	if s.logger != nil {
		s.logger.Debug("socket opened", "local", conn.LocalAddr().String(), "remote", raddr.String())
	}

	if err := s.discover(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// discover runs the ready handshake and fills the registry.
func (s *Session) discover(ctx context.Context) error {
	if _, err := s.conn.WriteToUDP([]byte(readyMessage), s.raddr); err != nil {
		return &ConnectError{Addr: s.raddr.String(), Err: err}
	}

	controls := make(map[string]Control)
	buf := make([]byte, MaxDatagramSize)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("discovery canceled: %w", err)
		}

		deadline := time.Now().Add(s.readTimeout)
		ctxBound := false
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
			ctxBound = true
		}
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("discovery canceled: %w", ctxErr)
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if ctxBound {
					return fmt.Errorf("discovery canceled: %w", context.DeadlineExceeded)
				}
				if s.logger != nil {
					s.logger.Warn("discovery timed out, no controls available", "remote", s.raddr.String(), "timeout", s.readTimeout)
				}
				s.controls = make(map[string]Control)
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		msg, err := ParseMessage(buf[:n])
		if err != nil {
			return err
		}

		switch msg.Action {
		case ActionSetLayer:
			layer, err := msg.Layer()
			if err != nil {
				return err
			}
			controls[layer.Name] = newControl(s, layer)
			if s.logger != nil {
				s.logger.Debug("control discovered", "name", layer.Name, "id", layer.ID, "page", layer.Page, "type", layer.Type)
			}
		case ActionDone:
			s.controls = controls
			s.complete = true
			if s.logger != nil {
				s.logger.Debug("discovery complete", "controls", len(controls))
			}
			return nil
		default:
			if s.logger != nil {
				s.logger.Debug("ignoring message", "action", msg.Action, "from", from.String())
			}
		}
	}
}

// Close releases the socket. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.logger != nil {
		s.logger.Debug("socket closed", "remote", s.raddr.String())
	}
	return s.conn.Close()
}

func (s *Session) sendUpdate(ctx context.Context, u Update) error {
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	if _, err := s.conn.WriteToUDP(u.Encode(), s.raddr); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send update", "id", u.ID, "page", u.Page, "type", u.Type, "error", err)
		}
		return fmt.Errorf("send update: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("update sent", "id", u.ID, "page", u.Page, "type", u.Type, "value", u.Value)
	}
	return nil
}

// Complete reports whether the console finished discovery with done.
func (s *Session) Complete() bool { return s.complete }

// Len returns the number of discovered controls.
func (s *Session) Len() int { return len(s.controls) }

// RemoteAddr returns the console address.
func (s *Session) RemoteAddr() net.Addr { return s.raddr }

// LocalAddr returns the address the session socket is bound to.
func (s *Session) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Controls returns a copy of the registry keyed by control name.
func (s *Session) Controls() map[string]Control {
	return maps.Clone(s.controls)
}

// Names returns the discovered control names in sorted order.
func (s *Session) Names() []string {
	names := make([]string, 0, len(s.controls))
	for name := range s.controls {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Control looks up a control by name.
func (s *Session) Control(name string) (Control, error) {
	c, ok := s.controls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, nil
}

// Button looks up a button by name.
func (s *Session) Button(name string) (*Button, error) { return lookup[*Button](s, name) }

// Slider looks up a slider by name.
func (s *Session) Slider(name string) (*Slider, error) { return lookup[*Slider](s, name) }

// PanTilt looks up a pan/tilt pad by name.
func (s *Session) PanTilt(name string) (*PanTilt, error) { return lookup[*PanTilt](s, name) }

// Colorwheel looks up a colorwheel by name.
func (s *Session) Colorwheel(name string) (*Colorwheel, error) { return lookup[*Colorwheel](s, name) }

func lookup[T Control](s *Session, name string) (T, error) {
	var zero T
	c, err := s.Control(name)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %s", ErrWrongKind, name, c.Kind())
	}
	return t, nil
}
