package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zberg/go-easyremote/internal/command"
	"github.com/zberg/go-easyremote/internal/metrics"
	"github.com/zberg/go-easyremote/pkg/easyremote"
	"github.com/zberg/go-easyremote/pkg/easyremote/easyremotetest"
)

func newTestServer(t *testing.T) (*httptest.Server, *easyremotetest.Console) {
	t.Helper()
	console := easyremotetest.NewConsole(t,
		easyremotetest.SetLayer(1, 0, "Go", "btn"),
		easyremotetest.SetLayer(4, 1, "Color", "cw"),
		easyremotetest.SetLayer(9, 1, "Note", "txt"),
		easyremotetest.Done(),
	)
	s, err := easyremote.NewSession(context.Background(), console.Host(),
		easyremote.WithPort(console.Port()), easyremote.WithReadTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	console.Next(t, 2*time.Second)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	srv := New(log, ":0", command.NewDispatcher(s, m, log), m)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, console
}

func TestListControls(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/controls")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var infos []command.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 3)
	assert.Equal(t, command.Info{Name: "Color", ID: 4, Page: 1, Kind: "cw"}, infos[0])
}

func TestGetControl(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/controls/Go")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info command.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, command.Info{Name: "Go", ID: 1, Page: 0, Kind: "btn"}, info)

	missing, err := http.Get(ts.URL + "/controls/Nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestPostControl(t *testing.T) {
	ts, console := newTestServer(t)

	resp, err := http.Post(ts.URL+"/controls/Color", "application/json", strings.NewReader(`{"r":255,"g":0,"b":0}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "action=update_element&id=4&page=1&value=0,255,255&type=cw&event=up", console.Next(t, 2*time.Second))
}

func TestPostControl_Errors(t *testing.T) {
	ts, console := newTestServer(t)

	tests := []struct {
		name    string
		control string
		body    string
		status  int
	}{
		{"unknown control", "Nope", `{"state":true}`, http.StatusNotFound},
		{"bad json", "Go", `{`, http.StatusBadRequest},
		{"missing field", "Go", `{"value":1}`, http.StatusBadRequest},
		{"generic control", "Note", `{"value":1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/controls/"+tt.control, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}

	assert.Equal(t, 0, console.Pending())
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/controls/Go", "application/json", strings.NewReader(`{"state":false}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `easyremote_updates_total{kind="btn",result="ok"} 1`)
	assert.Contains(t, string(body), "easyremote_controls 3")
}
