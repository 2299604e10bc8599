package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetCache(t *testing.T) {
	m := NewManager()

	t.Run("returns the same instance per role", func(t *testing.T) {
		for _, role := range Roles {
			first, err := m.GetCache(role)
			require.NoError(t, err)
			second, err := m.GetCache(role)
			require.NoError(t, err)
			assert.Same(t, first, second)
		}
	})

	t.Run("unknown role fails", func(t *testing.T) {
		_, err := m.GetCache(Role("nonexistent"))
		require.Error(t, err)
		assert.True(t, IsUnknownRole(err))
		assert.Contains(t, err.Error(), "nonexistent")
	})
}

func TestManager_PassThroughs(t *testing.T) {
	m := NewManager()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, m.Set(RoleTemplate, "index.html", "compiled"))

		v, ok, err := m.Get(RoleTemplate, "index.html")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "compiled", v)
	})

	t.Run("miss is not an error", func(t *testing.T) {
		_, ok, err := m.Get(RoleTemplate, "missing.html")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Set(RolePackage, "pkg", "spec"))

		deleted, err := m.Delete(RolePackage, "pkg")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = m.Delete(RolePackage, "pkg")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("unknown role fails on every operation", func(t *testing.T) {
		bogus := Role("bogus")

		_, _, err := m.Get(bogus, "k")
		assert.True(t, IsUnknownRole(err))
		assert.True(t, IsUnknownRole(m.Set(bogus, "k", 1)))
		assert.True(t, IsUnknownRole(m.SetTTL(bogus, "k", 1, time.Minute)))
		_, err = m.Delete(bogus, "k")
		assert.True(t, IsUnknownRole(err))
	})
}

func TestManager_ClearAll(t *testing.T) {
	m := NewManager()

	for _, role := range Roles {
		require.NoError(t, m.Set(role, "k", "v"))
	}
	m.ClearAll()

	for _, role := range Roles {
		_, ok, err := m.Get(role, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestManager_Statistics(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Set(RoleTemplate, "a", 1))
	for i := 0; i < 3; i++ {
		_, ok, err := m.Get(RoleTemplate, "a")
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, _, err := m.Get(RoleTemplate, "missing")
	require.NoError(t, err)

	stats := m.Statistics()
	tmpl := stats.PerRole[RoleTemplate]
	assert.Equal(t, uint64(3), tmpl.Hits)
	assert.Equal(t, uint64(1), tmpl.Misses)
	assert.Equal(t, 1, stats.TotalSize)
	assert.InDelta(t, 0.75, stats.TotalHitRate, 1e-9)
}

func TestManager_StatisticsZeroAccesses(t *testing.T) {
	m := NewManager()

	stats := m.Statistics()
	assert.Zero(t, stats.TotalSize)
	assert.Zero(t, stats.TotalHitRate)
}

func TestManager_TTLScaling(t *testing.T) {
	clk := clockwork.NewFakeClock()
	m := NewManager(WithBaseTTL(time.Minute), WithManagerClock(clk))

	require.NoError(t, m.Set(RoleCompilation, "code", "x")) // expires after 2m
	require.NoError(t, m.Set(RoleModule, "mod", "y"))       // expires after 12m

	clk.Advance(3 * time.Minute)

	_, ok, err := m.Get(RoleCompilation, "code")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.Get(RoleModule, "mod")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_CleanupExpired(t *testing.T) {
	clk := clockwork.NewFakeClock()
	m := NewManager(WithManagerClock(clk))

	require.NoError(t, m.SetTTL(RoleTemplate, "stale", "v", time.Second))
	require.NoError(t, m.SetTTL(RoleTemplate, "fresh", "v", time.Hour))
	require.NoError(t, m.SetTTL(RolePackage, "stale", "v", time.Second))

	clk.Advance(2 * time.Second)

	removed := m.CleanupExpired()
	assert.Equal(t, 1, removed[RoleTemplate])
	assert.Equal(t, 1, removed[RolePackage])
	assert.Equal(t, 0, removed[RoleCompilation])
}

func TestManager_MemoryUsageEstimate(t *testing.T) {
	m := NewManager(WithMemoryEstimator(func(role Role) int {
		if role == RoleCompilation {
			return 1000
		}
		return 10
	}))

	require.NoError(t, m.Set(RoleCompilation, "a", "code"))
	require.NoError(t, m.Set(RoleCompilation, "b", "code"))
	require.NoError(t, m.Set(RoleTemplate, "t", "tpl"))

	assert.Equal(t, int64(2010), m.MemoryUsageEstimate())
}

func TestManager_ScopedIsolation(t *testing.T) {
	parent := NewManager()
	scoped := parent.CreateScoped()

	require.NoError(t, parent.Set(RoleTemplate, "x", 1))
	_, ok, err := scoped.Get(RoleTemplate, "x")
	require.NoError(t, err)
	assert.False(t, ok, "scoped manager must not see parent entries")

	require.NoError(t, scoped.Set(RoleTemplate, "y", 2))
	_, ok, err = parent.Get(RoleTemplate, "y")
	require.NoError(t, err)
	assert.False(t, ok, "parent must not see scoped entries")
}

func TestManager_ScopedKeepsShape(t *testing.T) {
	clk := clockwork.NewFakeClock()
	parent := NewManager(
		WithRoleCapacity(RoleTemplate, 2),
		WithBaseTTL(time.Minute),
		WithManagerClock(clk),
	)
	scoped := parent.CreateScoped()

	c, err := scoped.GetCache(RoleTemplate)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Stats().Capacity)

	require.NoError(t, scoped.Set(RoleTemplate, "k", "v"))
	clk.Advance(7 * time.Minute) // template TTL is base*6
	_, ok, err := scoped.Get(RoleTemplate, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_Default(t *testing.T) {
	first := Default()
	second := Default()
	assert.Same(t, first, second)

	require.NoError(t, first.Set(RoleTemplate, "shared", 1))
	_, ok, err := second.Get(RoleTemplate, "shared")
	require.NoError(t, err)
	assert.True(t, ok)

	// Leave the shared instance clean for other tests.
	first.ClearAll()
}

func TestManager_StartCleanup(t *testing.T) {
	m := NewManager()

	stop := m.StartCleanup(time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	stop()
	stop() // idempotent
}
