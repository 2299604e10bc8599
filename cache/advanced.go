package cache

// Strategy selects the eviction policy backing an AdvancedManager's role
// caches.
type Strategy string

const (
	StrategyLRU          Strategy = "lru"
	StrategyLFU          Strategy = "lfu"
	StrategyAdaptive     Strategy = "adaptive"
	StrategyHierarchical Strategy = "hierarchical"
)

// WithStrategy selects the eviction strategy for every role cache an
// AdvancedManager creates. The default is LRU. NewManager ignores this
// option.
func WithStrategy(s Strategy) ManagerOption {
	return func(cfg *managerConfig) {
		switch s {
		case StrategyLRU, StrategyLFU, StrategyAdaptive, StrategyHierarchical:
			cfg.strategy = s
		}
	}
}

// WithHierarchicalTemplates builds the template role cache as a two-tier
// cache regardless of the configured strategy, with the given L1 capacity in
// front of the template cache's configured capacity. Templates are the most
// frequently re-requested artifact, so they benefit most from a small hot
// tier. NewManager ignores this option.
func WithHierarchicalTemplates(l1Capacity int) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.hierarchicalTemplates = true
		if l1Capacity > 0 {
			cfg.l1Capacity = l1Capacity
		}
	}
}

// AdvancedManager is a Manager whose role caches are built with a
// configurable eviction strategy, optionally layering a two-tier cache over
// the template role. It adds strategy-aware statistics on top of the base
// manager contract.
type AdvancedManager struct {
	Manager
}

// NewAdvancedManager creates a manager whose role caches use the strategy
// selected with WithStrategy (LRU when unspecified).
func NewAdvancedManager(opts ...ManagerOption) *AdvancedManager {
	cfg := buildManagerConfig(opts)
	return &AdvancedManager{Manager{cfg: cfg, caches: buildStores(cfg)}}
}

// Strategy returns the eviction strategy the manager was built with.
func (m *AdvancedManager) Strategy() Strategy {
	return m.cfg.strategy
}

// HierarchicalTemplates reports whether the template role cache is two-tier.
func (m *AdvancedManager) HierarchicalTemplates() bool {
	return m.cfg.hierarchicalTemplates || m.cfg.strategy == StrategyHierarchical
}

// CreateScoped returns a new independent AdvancedManager of the same shape,
// preserving the strategy and hierarchical configuration.
func (m *AdvancedManager) CreateScoped() *AdvancedManager {
	return &AdvancedManager{Manager{cfg: m.cfg, caches: buildStores(m.cfg)}}
}

// ExtendedStats augments the base aggregates with the configured strategy
// and, where a role cache adapts at runtime, its currently active mode.
type ExtendedStats struct {
	ManagerStats
	Strategy              Strategy
	HierarchicalTemplates bool
	Modes                 map[Role]Mode
}

// ExtendedStatistics returns base statistics plus strategy information. For
// adaptive role caches the currently governing mode is included per role.
func (m *AdvancedManager) ExtendedStatistics() ExtendedStats {
	ext := ExtendedStats{
		ManagerStats:          m.Statistics(),
		Strategy:              m.cfg.strategy,
		HierarchicalTemplates: m.HierarchicalTemplates(),
		Modes:                 make(map[Role]Mode),
	}
	for role, c := range m.caches {
		if adaptive, ok := c.(interface{ Mode() Mode }); ok {
			ext.Modes[role] = adaptive.Mode()
		}
	}
	return ext
}
