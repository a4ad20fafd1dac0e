package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpdate(t *testing.T) {
	m := New()

	m.ObserveUpdate("btn", nil)
	m.ObserveUpdate("btn", nil)
	m.ObserveUpdate("sld", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.updatesTotal.WithLabelValues("btn", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.updatesTotal.WithLabelValues("sld", "error")))
}

func TestObserveDiscovery(t *testing.T) {
	m := New()

	m.ObserveDiscovery(true, 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.controls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.discovery.WithLabelValues("complete")))

	m.ObserveDiscovery(false, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.controls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.discovery.WithLabelValues("timeout")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveUpdate("cw", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `easyremote_updates_total{kind="cw",result="ok"} 1`)
}
