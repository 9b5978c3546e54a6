package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// expvar registration is process-global, so all subtests share one
// StatsUpdater instance.
func TestStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	su.Run()
	defer su.Stop()

	t.Run("mounts the vars handler", func(t *testing.T) {
		handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
		assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
		assert.Equal(t, "GET /debug/vars", pattern)
	})

	t.Run("registered counter starts at zero", func(t *testing.T) {
		su.RegisterMetric("TestCounterZero")
		assert.Equal(t, "0", su.vars.Get("TestCounterZero").String())
	})

	t.Run("incr and decr apply asynchronously", func(t *testing.T) {
		su.RegisterMetric("TestCounterDelta")
		su.Incr("TestCounterDelta")
		su.Incr("TestCounterDelta")
		su.Decr("TestCounterDelta")

		assert.Eventually(t, func() bool {
			return su.vars.Get("TestCounterDelta").String() == "1"
		}, time.Second, 10*time.Millisecond, "expected counter to settle at 1")
	})

	t.Run("duplicate registration keeps the counter", func(t *testing.T) {
		su.RegisterMetric("TestCounterDup")
		su.Incr("TestCounterDup")
		assert.Eventually(t, func() bool {
			return su.vars.Get("TestCounterDup").String() == "1"
		}, time.Second, 10*time.Millisecond)

		su.RegisterMetric("TestCounterDup")
		assert.Equal(t, "1", su.vars.Get("TestCounterDup").String())
	})

	t.Run("serves counters as json", func(t *testing.T) {
		su.RegisterMetric("TestCounterServed")

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
		mux.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var view map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
		assert.Contains(t, view, "TestCounterServed")
		assert.Contains(t, view, "Uptime")
	})
}
