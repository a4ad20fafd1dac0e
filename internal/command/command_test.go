package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zberg/go-easyremote/internal/metrics"
	"github.com/zberg/go-easyremote/pkg/easyremote"
	"github.com/zberg/go-easyremote/pkg/easyremote/easyremotetest"
)

const recvTimeout = 2 * time.Second

func newDispatcher(t *testing.T) (*Dispatcher, *easyremotetest.Console) {
	t.Helper()
	console := easyremotetest.NewConsole(t,
		easyremotetest.SetLayer(1, 0, "Go", "btn"),
		easyremotetest.SetLayer(2, 0, "Master", "sld"),
		easyremotetest.SetLayer(3, 1, "Mover", "pt"),
		easyremotetest.SetLayer(4, 1, "Color", "cw"),
		easyremotetest.SetLayer(5, 2, "Label", "txt"),
		easyremotetest.Done(),
	)
	s, err := easyremote.NewSession(context.Background(), console.Host(),
		easyremote.WithPort(console.Port()), easyremote.WithReadTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	console.Next(t, recvTimeout)

	return NewDispatcher(s, metrics.New(), nil), console
}

func TestDecode(t *testing.T) {
	p, err := Decode([]byte(`{"r":255,"g":0,"b":10}`))
	require.NoError(t, err)
	require.NotNil(t, p.R)
	assert.Equal(t, 255, *p.R)
	assert.Nil(t, p.H)

	_, err = Decode([]byte(`{"brightness":3}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDispatch(t *testing.T) {
	d, console := newDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		control string
		payload string
		want    string
	}{
		{"button", "Go", `{"state":true}`, "action=update_element&id=1&page=0&value=1&type=btn&event=up"},
		{"slider", "Master", `{"value":42}`, "action=update_element&id=2&page=0&value=42&type=sld&event=up"},
		{"pantilt", "Mover", `{"pan":10,"tilt":20}`, "action=update_element&id=3&page=1&value=10,20&type=pt&event=up"},
		{"rgb", "Color", `{"r":0,"g":0,"b":255}`, "action=update_element&id=4&page=1&value=240,255,255&type=cw&event=up"},
		{"hsv", "Color", `{"h":0.5,"s":1,"v":1}`, "action=update_element&id=4&page=1&value=180,255,255&type=cw&event=up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.payload))
			require.NoError(t, err)

			require.NoError(t, d.Dispatch(ctx, tt.control, p))
			assert.Equal(t, tt.want, console.Next(t, recvTimeout))
		})
	}
}

func TestDispatch_Errors(t *testing.T) {
	d, console := newDispatcher(t)
	ctx := context.Background()

	err := d.Dispatch(ctx, "Nope", Payload{})
	assert.ErrorIs(t, err, easyremote.ErrNotFound)

	err = d.Dispatch(ctx, "Go", Payload{})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = d.Dispatch(ctx, "Mover", Payload{Pan: new(int)})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = d.Dispatch(ctx, "Color", Payload{R: new(int), G: new(int)})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = d.Dispatch(ctx, "Label", Payload{Value: new(int)})
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Equal(t, 0, console.Pending())
}

func TestControls(t *testing.T) {
	d, _ := newDispatcher(t)

	infos := d.Controls()
	require.Len(t, infos, 5)
	assert.Equal(t, Info{Name: "Color", ID: 4, Page: 1, Kind: "cw"}, infos[0])
	assert.Equal(t, "Go", infos[1].Name)
	assert.Equal(t, "Label", infos[2].Name)
	assert.Equal(t, "generic", infos[2].Kind)

	info, err := d.Control("Master")
	require.NoError(t, err)
	assert.Equal(t, Info{Name: "Master", ID: 2, Page: 0, Kind: "sld"}, info)

	_, err = d.Control("Missing")
	assert.ErrorIs(t, err, easyremote.ErrNotFound)
}
