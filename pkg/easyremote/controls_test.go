package easyremote

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zberg/go-easyremote/pkg/easyremote/easyremotetest"
)

// newControlSession discovers one control of each kind and drains the
// ready datagram so that Next returns the first update.
func newControlSession(t *testing.T) (*Session, *easyremotetest.Console) {
	t.Helper()
	console := easyremotetest.NewConsole(t,
		easyremotetest.SetLayer(3, 1, "Go", "btn"),
		easyremotetest.SetLayer(7, 2, "Master", "sld"),
		easyremotetest.SetLayer(1, 0, "Mover", "pt"),
		easyremotetest.SetLayer(4, 5, "Color", "cw"),
		easyremotetest.Done(),
	)
	s := newTestSession(t, console)
	console.Next(t, recvTimeout)
	return s, console
}

func TestButton_SetState(t *testing.T) {
	s, console := newControlSession(t)
	ctx := context.Background()

	b, err := s.Button("Go")
	require.NoError(t, err)

	require.NoError(t, b.SetState(ctx, true))
	assert.Equal(t, "action=update_element&id=3&page=1&value=1&type=btn&event=up", console.Next(t, recvTimeout))

	require.NoError(t, b.SetState(ctx, false))
	assert.Equal(t, "action=update_element&id=3&page=1&value=0&type=btn&event=up", console.Next(t, recvTimeout))
}

func TestSlider_SetValue(t *testing.T) {
	s, console := newControlSession(t)

	sl, err := s.Slider("Master")
	require.NoError(t, err)

	require.NoError(t, sl.SetValue(context.Background(), 128))
	assert.Equal(t, "action=update_element&id=7&page=2&value=128&type=sld&event=up", console.Next(t, recvTimeout))
}

func TestPanTilt_SetPanTilt(t *testing.T) {
	s, console := newControlSession(t)

	pt, err := s.PanTilt("Mover")
	require.NoError(t, err)

	require.NoError(t, pt.SetPanTilt(context.Background(), 100, 200))
	assert.Equal(t, "action=update_element&id=1&page=0&value=100,200&type=pt&event=up", console.Next(t, recvTimeout))
}

func TestColorwheel_SetRGB(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b int
		value   string
	}{
		{"red", 255, 0, 0, "0,255,255"},
		{"black", 0, 0, 0, "0,0,0"},
		{"white", 255, 255, 255, "0,0,255"},
		{"green", 0, 255, 0, "120,255,255"},
		{"blue", 0, 0, 255, "240,255,255"},
		{"pink", 255, 0, 128, "330,255,255"},
	}

	s, console := newControlSession(t)
	cw, err := s.Colorwheel("Color")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cw.SetRGB(context.Background(), tt.r, tt.g, tt.b))
			assert.Equal(t, "action=update_element&id=4&page=5&value="+tt.value+"&type=cw&event=up", console.Next(t, recvTimeout))
		})
	}
}

func TestColorwheel_SetRGBMatchesSetHSV(t *testing.T) {
	s, console := newControlSession(t)
	ctx := context.Background()

	cw, err := s.Colorwheel("Color")
	require.NoError(t, err)

	require.NoError(t, cw.SetRGB(ctx, 255, 0, 0))
	fromRGB := console.Next(t, recvTimeout)

	require.NoError(t, cw.SetHSV(ctx, 0.0, 1.0, 1.0))
	fromHSV := console.Next(t, recvTimeout)

	assert.Equal(t, fromHSV, fromRGB)
	assert.Contains(t, fromRGB, "value=0,255,255")
}

func TestColorwheel_SetHSVRejectsNonFinite(t *testing.T) {
	s, console := newControlSession(t)

	cw, err := s.Colorwheel("Color")
	require.NoError(t, err)

	err = cw.SetHSV(context.Background(), math.NaN(), math.Inf(1), 0.5)
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.Equal(t, 0, console.Pending())
}

func TestControl_CanceledContext(t *testing.T) {
	s, console := newControlSession(t)

	sl, err := s.Slider("Master")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sl.SetValue(ctx, 1), context.Canceled)
	assert.Equal(t, 0, console.Pending())
}

func TestNewControl_Dispatch(t *testing.T) {
	tests := []struct {
		code string
		kind Kind
	}{
		{"btn", KindButton},
		{"sld", KindSlider},
		{"pt", KindPanTilt},
		{"cw", KindColorwheel},
		{"xyz", KindGeneric},
		{"", KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := newControl(nil, Layer{ID: 1, Page: 2, Name: "n", Type: tt.code})
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, 1, c.ID())
			assert.Equal(t, 2, c.Page())
			assert.Equal(t, "n", c.Name())
		})
	}
}
