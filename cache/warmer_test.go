package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmer_Warm(t *testing.T) {
	m := NewManager()
	w := NewWarmer(m)

	producers := map[string]Producer{
		"index.html": func(context.Context) (any, error) { return "compiled_index", nil },
		"about.html": func(context.Context) (any, error) { return "compiled_about", nil },
	}

	loaded, err := w.Warm(context.Background(), RoleTemplate, producers)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	v, ok, err := m.Get(RoleTemplate, "index.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "compiled_index", v)

	assert.ElementsMatch(t,
		[]string{"template:index.html", "template:about.html"},
		w.WarmedKeys(),
	)
}

func TestWarmer_FailedProducerIsSkipped(t *testing.T) {
	m := NewManager()
	w := NewWarmer(m)

	producers := map[string]Producer{
		"good.html": func(context.Context) (any, error) { return "ok", nil },
		"bad.html":  func(context.Context) (any, error) { return nil, errors.New("compile failed") },
	}

	loaded, err := w.Warm(context.Background(), RoleTemplate, producers)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	assert.True(t, m.caches[RoleTemplate].Contains("good.html"))
	assert.False(t, m.caches[RoleTemplate].Contains("bad.html"))
}

func TestWarmer_UnknownRole(t *testing.T) {
	w := NewWarmer(NewManager())

	_, err := w.Warm(context.Background(), Role("bogus"), nil)
	assert.True(t, IsUnknownRole(err))
}

func TestWarmer_CancelledContext(t *testing.T) {
	m := NewManager()
	w := NewWarmer(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loaded, err := w.Warm(ctx, RoleTemplate, map[string]Producer{
		"a": func(context.Context) (any, error) { return 1, nil },
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, loaded)
}

func TestWarmer_Reset(t *testing.T) {
	m := NewManager()
	w := NewWarmer(m)

	_, err := w.Warm(context.Background(), RolePackage, map[string]Producer{
		"pkg": func(context.Context) (any, error) { return "spec", nil },
	})
	require.NoError(t, err)
	require.Len(t, w.WarmedKeys(), 1)

	w.Reset()
	assert.Empty(t, w.WarmedKeys())

	// Entries stay cached; only tracking is cleared.
	_, ok, err := m.Get(RolePackage, "pkg")
	require.NoError(t, err)
	assert.True(t, ok)
}
