package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryBind_LastWriteWins(t *testing.T) {
	r := NewRegistry()

	prev, evicted := r.Bind("a@x.com", "c1")
	assert.False(t, evicted, "expected no eviction on first bind")
	assert.Empty(t, prev, "expected no previous connection id on first bind")

	prev, evicted = r.Bind("a@x.com", "c2")
	assert.True(t, evicted, "expected second bind to evict the first")
	assert.Equal(t, "c1", prev, "expected evicted connection id to be c1")

	connId, ok := r.Lookup("a@x.com")
	assert.True(t, ok, "expected binding to exist")
	assert.Equal(t, "c2", connId, "expected latest bind to win")
}

func TestRegistryUnbind_Idempotent(t *testing.T) {
	r := NewRegistry()

	r.Bind("a@x.com", "c1")
	assert.True(t, r.Unbind("a@x.com", "c1"), "expected first unbind to remove the binding")

	_, ok := r.Lookup("a@x.com")
	assert.False(t, ok, "expected lookup to miss after unbind")

	assert.False(t, r.Unbind("a@x.com", "c1"), "expected second unbind to be a no-op")
}

func TestRegistryUnbind_StaleConnectionIsIgnored(t *testing.T) {
	r := NewRegistry()

	r.Bind("a@x.com", "c1")
	r.Bind("a@x.com", "c2")

	// the evicted connection tears down late; the new binding survives
	assert.False(t, r.Unbind("a@x.com", "c1"), "expected stale unbind to be a no-op")

	connId, ok := r.Lookup("a@x.com")
	assert.True(t, ok, "expected current binding to survive a stale unbind")
	assert.Equal(t, "c2", connId)
}

func TestRegistryLookup_AbsentIsNormal(t *testing.T) {
	r := NewRegistry()

	connId, ok := r.Lookup("nobody@x.com")
	assert.False(t, ok, "expected lookup of unknown identity to miss")
	assert.Empty(t, connId, "expected empty connection id on miss")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity := fmt.Sprintf("user%d@x.com", i%10)
			connId := fmt.Sprintf("conn%d", i)
			r.Bind(identity, connId)
			r.Lookup(identity)
			if i%3 == 0 {
				r.Unbind(identity, connId)
			}
		}(i)
	}
	wg.Wait()
}
