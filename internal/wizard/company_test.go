package wizard

import (
	"sync"
	"testing"
	"time"

	xerrors "mobility-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyLookup(t *testing.T) {
	b := newFakeBackend(t)
	l := NewCompanyLookup(b.client())

	result, err := l.Lookup(t.Context(), "BE", "0123456789")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "ACME BV", result.Name)
	assert.False(t, l.Busy())
	assert.Equal(t, result, l.Last())
}

func TestCompanyLookupRefusesConcurrentRequests(t *testing.T) {
	b := newFakeBackend(t)
	b.viesGate = make(chan struct{})
	l := NewCompanyLookup(b.client())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := l.Lookup(t.Context(), "BE", "0123456789")
		assert.NoError(t, err)
	}()

	// Wait for the first lookup to reach the backend and block there.
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.viesCalls == 1
	}, time.Second, 5*time.Millisecond)
	require.True(t, l.Busy())

	_, err := l.Lookup(t.Context(), "BE", "0123456789")
	require.ErrorIs(t, err, xerrors.ErrConflict)

	b.mu.Lock()
	calls := b.viesCalls
	b.mu.Unlock()
	assert.Equal(t, 1, calls, "the duplicate request never reaches the backend")

	close(b.viesGate)
	wg.Wait()

	// With the first lookup finished the guard opens again.
	assert.False(t, l.Busy())
	_, err = l.Lookup(t.Context(), "BE", "0123456789")
	require.NoError(t, err)
}
