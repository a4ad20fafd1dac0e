// Package command applies JSON control commands to a console session.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/zberg/go-easyremote/internal/metrics"
	"github.com/zberg/go-easyremote/pkg/easyremote"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnsupported    = errors.New("control cannot be updated")
)

// Payload is a command for one control. Which fields are required
// depends on the control kind.
type Payload struct {
	State *bool    `json:"state,omitempty"`
	Value *int     `json:"value,omitempty"`
	Pan   *int     `json:"pan,omitempty"`
	Tilt  *int     `json:"tilt,omitempty"`
	R     *int     `json:"r,omitempty"`
	G     *int     `json:"g,omitempty"`
	B     *int     `json:"b,omitempty"`
	H     *float64 `json:"h,omitempty"`
	S     *float64 `json:"s,omitempty"`
	V     *float64 `json:"v,omitempty"`
}

// Decode parses a JSON payload, rejecting unknown fields.
func Decode(data []byte) (Payload, error) {
	var p Payload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// Apply sends the update described by p to c.
func Apply(ctx context.Context, c easyremote.Control, p Payload) error {
	switch c := c.(type) {
	case *easyremote.Button:
		if p.State == nil {
			return fmt.Errorf("%w: button needs state", ErrInvalidPayload)
		}
		return c.SetState(ctx, *p.State)
	case *easyremote.Slider:
		if p.Value == nil {
			return fmt.Errorf("%w: slider needs value", ErrInvalidPayload)
		}
		return c.SetValue(ctx, *p.Value)
	case *easyremote.PanTilt:
		if p.Pan == nil || p.Tilt == nil {
			return fmt.Errorf("%w: pan/tilt needs pan and tilt", ErrInvalidPayload)
		}
		return c.SetPanTilt(ctx, *p.Pan, *p.Tilt)
	case *easyremote.Colorwheel:
		switch {
		case p.R != nil && p.G != nil && p.B != nil:
			return c.SetRGB(ctx, *p.R, *p.G, *p.B)
		case p.H != nil && p.S != nil && p.V != nil:
			return c.SetHSV(ctx, *p.H, *p.S, *p.V)
		default:
			return fmt.Errorf("%w: colorwheel needs r, g, b or h, s, v", ErrInvalidPayload)
		}
	default:
		return fmt.Errorf("%w: %q has kind %s", ErrUnsupported, c.Name(), c.Kind())
	}
}

// Info describes a discovered control.
type Info struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
	Page int    `json:"page"`
	Kind string `json:"kind"`
}

func infoOf(c easyremote.Control) Info {
	return Info{Name: c.Name(), ID: c.ID(), Page: c.Page(), Kind: string(c.Kind())}
}

// Dispatcher serializes commands onto a single session.
type Dispatcher struct {
	mu      sync.Mutex
	session *easyremote.Session
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDispatcher wraps session. metrics and logger may be nil.
func NewDispatcher(session *easyremote.Session, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if m != nil {
		m.ObserveDiscovery(session.Complete(), session.Len())
	}
	return &Dispatcher{session: session, metrics: m, logger: logger}
}

// Dispatch applies p to the control called name.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, p Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.session.Control(name)
	if err != nil {
		return err
	}

	err = Apply(ctx, c, p)
	if d.metrics != nil {
		d.metrics.ObserveUpdate(string(c.Kind()), err)
	}
	if d.logger != nil {
		if err != nil {
			d.logger.Warn("command failed", "control", name, "error", err)
		} else {
			d.logger.Debug("command applied", "control", name, "kind", c.Kind())
		}
	}
	return err
}

// Control describes the control called name.
func (d *Dispatcher) Control(name string) (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.session.Control(name)
	if err != nil {
		return Info{}, err
	}
	return infoOf(c), nil
}

// Controls lists every discovered control sorted by name.
func (d *Dispatcher) Controls() []Info {
	d.mu.Lock()
	defer d.mu.Unlock()

	infos := make([]Info, 0, d.session.Len())
	for _, c := range d.session.Controls() {
		infos = append(infos, infoOf(c))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
