package chat

import (
	"log"

	"github.com/minchat/minchat/internal/stats"
)

// Metric names registered by this package.
const (
	StatActiveSessions = "ActiveSessions"
	StatMessagesSent   = "MessagesSent"
	StatLivePushes     = "LivePushes"
	StatDeliverySkips  = "DeliverySkips"
	StatPushErrors     = "PushErrors"
)

// SessionManager owns the connect/disconnect side of the registry. It
// is the only component that calls Bind and Unbind.
type SessionManager struct {
	log      *log.Logger
	registry *Registry
	reporter ErrorReporter
	stats    stats.StatsProvider
}

func NewSessionManager(logger *log.Logger, registry *Registry, reporter ErrorReporter, su stats.StatsProvider) *SessionManager {
	su.RegisterMetric(StatActiveSessions)

	return &SessionManager{
		log:      logger,
		registry: registry,
		reporter: reporter,
		stats:    su,
	}
}

// OnConnect binds identity to connectionId and returns the evicted
// connection id, if a previous session existed. Connections without an
// authenticated identity are rejected; no anonymous binding is ever
// created.
func (m *SessionManager) OnConnect(identity, connectionId string) (string, error) {
	if identity == "" {
		err := NewValidationError("connect without authenticated identity")
		m.reporter.Report(err)
		return "", err
	}

	prev, evicted := m.registry.Bind(identity, connectionId)
	if evicted {
		m.log.Printf("user %q reconnected, evicting session %q", identity, prev)
	} else {
		m.stats.Incr(StatActiveSessions)
	}
	m.log.Printf("user %q connected with session %q", identity, connectionId)

	return prev, nil
}

// OnDisconnect removes the binding for identity if connectionId is
// still its live session. It is idempotent, and a disconnect from a
// session that was already evicted by a newer connect leaves the new
// binding in place.
func (m *SessionManager) OnDisconnect(identity, connectionId string) {
	if identity == "" {
		return
	}

	if m.registry.Unbind(identity, connectionId) {
		m.stats.Decr(StatActiveSessions)
		m.log.Printf("user %q disconnected", identity)
	}
}
