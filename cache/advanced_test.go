package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvancedManager_DefaultsToLRU(t *testing.T) {
	m := NewAdvancedManager()
	assert.Equal(t, StrategyLRU, m.Strategy())

	c, err := m.GetCache(RoleTemplate)
	require.NoError(t, err)
	assert.IsType(t, &Cache[any]{}, c)
}

func TestAdvancedManager_StrategySelection(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		want     any
	}{
		{"lfu", StrategyLFU, &LFUCache[any]{}},
		{"adaptive", StrategyAdaptive, &AdaptiveCache[any]{}},
		{"hierarchical", StrategyHierarchical, &HierarchicalCache[any]{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAdvancedManager(WithStrategy(tt.strategy))
			assert.Equal(t, tt.strategy, m.Strategy())

			for _, role := range Roles {
				c, err := m.GetCache(role)
				require.NoError(t, err)
				assert.IsType(t, tt.want, c)
			}
		})
	}
}

func TestAdvancedManager_InvalidStrategyIgnored(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(Strategy("bogus")))
	assert.Equal(t, StrategyLRU, m.Strategy())
}

func TestAdvancedManager_HierarchicalTemplates(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(StrategyLFU), WithHierarchicalTemplates(10))
	assert.True(t, m.HierarchicalTemplates())

	// Only the template role is two-tier; the rest follow the strategy.
	c, err := m.GetCache(RoleTemplate)
	require.NoError(t, err)
	assert.IsType(t, &HierarchicalCache[any]{}, c)

	c, err = m.GetCache(RoleCompilation)
	require.NoError(t, err)
	assert.IsType(t, &LFUCache[any]{}, c)
}

func TestAdvancedManager_ManagerContractHolds(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(StrategyAdaptive))

	require.NoError(t, m.Set(RoleTemplate, "a", "compiled"))
	v, ok, err := m.Get(RoleTemplate, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "compiled", v)

	_, err = m.GetCache(Role("bad"))
	assert.True(t, IsUnknownRole(err))

	m.ClearAll()
	_, ok, err = m.Get(RoleTemplate, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvancedManager_CreateScopedPreservesStrategy(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(StrategyLFU), WithHierarchicalTemplates(5))
	scoped := m.CreateScoped()

	assert.Equal(t, StrategyLFU, scoped.Strategy())
	assert.True(t, scoped.HierarchicalTemplates())

	require.NoError(t, m.Set(RoleTemplate, "x", 1))
	_, ok, err := scoped.Get(RoleTemplate, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvancedManager_ExtendedStatistics(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(StrategyAdaptive))

	require.NoError(t, m.Set(RoleTemplate, "a", 1))
	_, _, err := m.Get(RoleTemplate, "a")
	require.NoError(t, err)

	ext := m.ExtendedStatistics()
	assert.Equal(t, StrategyAdaptive, ext.Strategy)
	assert.False(t, ext.HierarchicalTemplates)
	assert.Equal(t, 1, ext.TotalSize)

	// Every adaptive role cache reports its active mode.
	for _, role := range Roles {
		mode, ok := ext.Modes[role]
		require.True(t, ok)
		assert.Equal(t, ModeLRU, mode)
	}
}

func TestAdvancedManager_ExtendedStatisticsWithoutModes(t *testing.T) {
	m := NewAdvancedManager(WithStrategy(StrategyLRU))
	ext := m.ExtendedStatistics()
	assert.Empty(t, ext.Modes)
}
