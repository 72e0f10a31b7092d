package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/entities"
)

func okEntry(context.Context, entities.SessionRequest) (entities.Capability, entities.Status) {
	return nil, entities.StatusNoError
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("/opt/core/libcore.so", okEntry))

	fn, ok := r.Lookup("/opt/core/../core/libcore.so")
	require.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = r.Lookup("/opt/other.so")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestRegistry_StrictMode(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a.so", okEntry))

	err := r.Register("a.so", okEntry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	loose := NewRegistry(WithStrictMode(false))
	require.NoError(t, loose.Register("a.so", okEntry))
	require.NoError(t, loose.Register("a.so", okEntry))
	assert.Equal(t, []string{"a.so"}, loose.List())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("", okEntry))
	assert.Error(t, r.Register("x.so", nil))
	assert.Empty(t, r.List())
}

func TestRegistry_UnregisterAndList(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("b.so", okEntry))
	require.NoError(t, r.Register("a.so", okEntry))

	assert.Equal(t, []string{"a.so", "b.so"}, r.List())
	assert.True(t, r.Unregister("b.so"))
	assert.False(t, r.Unregister("b.so"))
	assert.Equal(t, []string{"a.so"}, r.List())
}

func TestRegistry_ConcurrentStrictRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Register("race.so", okEntry) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
