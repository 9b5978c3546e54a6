package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"
)

// StatsProvider is the counter surface used by the realtime core.
// Updates are asynchronous; Run starts the apply loop.
type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterMetric(name string)
	Run()
}

// StatsUpdater publishes delivery counters through expvar. Deltas are
// serialized over a channel so counter owners never contend on the map.
type StatsUpdater struct {
	vars   *expvar.Map
	deltas chan statDelta
}

type statDelta struct {
	name  string
	value int64
}

// NewStatsUpdater creates the process-wide stats map and mounts its
// JSON view on mux. expvar registration is global, so this must be
// called at most once per process.
func NewStatsUpdater(mux *http.ServeMux) *StatsUpdater {
	su := &StatsUpdater{
		deltas: make(chan statDelta, 512),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(su.serveVars))

	su.vars = expvar.NewMap("minchat-stats")
	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))

	return su
}

func (su *StatsUpdater) serveVars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	view := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		view[kv.Key] = value
	})

	json.NewEncoder(w).Encode(view)
}

// RegisterMetric publishes a named counter, starting at zero. Already
// registered names are left untouched.
func (su *StatsUpdater) RegisterMetric(name string) {
	if su.vars.Get(name) == nil {
		su.vars.Set(name, expvar.NewInt(name))
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.deltas <- statDelta{name: name, value: 1}
}

func (su *StatsUpdater) Decr(name string) {
	su.deltas <- statDelta{name: name, value: -1}
}

func (su *StatsUpdater) applyDeltas() {
	for delta := range su.deltas {
		counter, ok := su.vars.Get(delta.name).(*expvar.Int)
		if !ok {
			// unregistered counters are created on first use
			counter = new(expvar.Int)
			su.vars.Set(delta.name, counter)
		}

		counter.Add(delta.value)
	}
}

func (su *StatsUpdater) Run() {
	go su.applyDeltas()
}

func (su *StatsUpdater) Stop() {
	close(su.deltas)
}
