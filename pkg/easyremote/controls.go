package easyremote

import (
	"context"
	"fmt"
	"strconv"
)

// Kind is the type code the console uses for a control.
type Kind string

// Control kinds
const (
	KindButton     Kind = "btn"
	KindSlider     Kind = "sld"
	KindPanTilt    Kind = "pt"
	KindColorwheel Kind = "cw"
	KindGeneric    Kind = "generic"
)

// Control is a control announced by the console during discovery.
// The concrete type is one of *Generic, *Button, *Slider, *PanTilt or
// *Colorwheel.
type Control interface {
	ID() int
	Page() int
	Name() string
	Kind() Kind
}

// control holds the identity shared by every variant. The session pointer
// is not owned; controls never outlive the session that created them.
type control struct {
	id      int
	page    int
	name    string
	session *Session
}

func (c *control) ID() int      { return c.id }
func (c *control) Page() int    { return c.page }
func (c *control) Name() string { return c.name }

func (c *control) send(ctx context.Context, kind Kind, value string) error {
	return c.session.sendUpdate(ctx, Update{
		ID:    c.id,
		Page:  c.page,
		Value: value,
		Type:  kind,
	})
}

// Generic is a control of a type this package cannot drive.
type Generic struct {
	control
	code string
}

func (g *Generic) Kind() Kind { return KindGeneric }

// Code returns the type code announced by the console.
func (g *Generic) Code() string { return g.code }

// Button is an on/off push button.
type Button struct{ control }

func (b *Button) Kind() Kind { return KindButton }

// SetState switches the button on or off.
func (b *Button) SetState(ctx context.Context, on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	return b.send(ctx, KindButton, value)
}

// Slider is a fader.
type Slider struct{ control }

func (s *Slider) Kind() Kind { return KindSlider }

// SetValue moves the slider. Values typically range from 0 to 255.
func (s *Slider) SetValue(ctx context.Context, value int) error {
	return s.send(ctx, KindSlider, strconv.Itoa(value))
}

// PanTilt is a two-axis position pad.
type PanTilt struct{ control }

func (p *PanTilt) Kind() Kind { return KindPanTilt }

// SetPanTilt sets both axes. Values typically range from 0 to 65535.
func (p *PanTilt) SetPanTilt(ctx context.Context, pan, tilt int) error {
	return p.send(ctx, KindPanTilt, fmt.Sprintf("%d,%d", pan, tilt))
}

// Colorwheel is a color picker.
type Colorwheel struct{ control }

func (c *Colorwheel) Kind() Kind { return KindColorwheel }

// SetRGB sets the color from red, green and blue values in 0-255.
func (c *Colorwheel) SetRGB(ctx context.Context, r, g, b int) error {
	h, s, v := RGBToHSV(r, g, b)
	return c.SetHSV(ctx, h, s, v)
}

// SetHSV sets the color from hue, saturation and value in 0-1.
// NaN or infinite components return ErrInvalidColor and send nothing.
func (c *Colorwheel) SetHSV(ctx context.Context, h, s, v float64) error {
	hw, sw, vw, err := hsvToWire(h, s, v)
	if err != nil {
		return err
	}
	return c.send(ctx, KindColorwheel, fmt.Sprintf("%d,%d,%d", hw, sw, vw))
}

// newControl picks the variant for a layer's type code. Unknown codes fall
// back to Generic.
func newControl(s *Session, l Layer) Control {
	base := control{id: l.ID, page: l.Page, name: l.Name, session: s}
	switch Kind(l.Type) {
	case KindButton:
		return &Button{base}
	case KindSlider:
		return &Slider{base}
	case KindPanTilt:
		return &PanTilt{base}
	case KindColorwheel:
		return &Colorwheel{base}
	default:
		return &Generic{control: base, code: l.Type}
	}
}
