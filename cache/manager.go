package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Role names one of the manager's caches. The set of roles is closed:
// manager operations given any other value fail with ErrUnknownRole.
type Role string

const (
	// RolePackage caches resolved package specs keyed by module and path.
	RolePackage Role = "package"
	// RoleTemplate caches compiled template objects keyed by template name.
	RoleTemplate Role = "template"
	// RoleCompilation caches generated template code keyed by source checksum.
	RoleCompilation Role = "compilation"
	// RoleModule caches executed template modules.
	RoleModule Role = "module"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RolePackage, RoleTemplate, RoleCompilation, RoleModule}

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RolePackage, RoleTemplate, RoleCompilation, RoleModule:
		return true
	}
	return false
}

// ttlScale returns the multiplier applied to the manager's base TTL for a
// role. Package specs and template roots change rarely, compiled code may
// change with its source, and modules change very rarely.
func (r Role) ttlScale() time.Duration {
	switch r {
	case RolePackage, RoleTemplate:
		return 6
	case RoleCompilation:
		return 2
	case RoleModule:
		return 12
	}
	return 1
}

// Default capacities, matched to how often each artifact is re-requested.
const (
	defaultPackageCapacity     = 500
	defaultTemplateCapacity    = 1000
	defaultCompilationCapacity = 2000
	defaultModuleCapacity      = 200
	defaultBaseTTL             = 5 * time.Minute
	defaultL1Capacity          = 100
)

// ManagerOption configures a Manager or AdvancedManager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	capacities map[Role]int
	baseTTL    time.Duration
	clock      clockwork.Clock
	estimator  func(Role) int

	strategy              Strategy
	hierarchicalTemplates bool
	l1Capacity            int
}

func buildManagerConfig(opts []ManagerOption) managerConfig {
	cfg := managerConfig{
		capacities: map[Role]int{
			RolePackage:     defaultPackageCapacity,
			RoleTemplate:    defaultTemplateCapacity,
			RoleCompilation: defaultCompilationCapacity,
			RoleModule:      defaultModuleCapacity,
		},
		baseTTL:    defaultBaseTTL,
		clock:      clockwork.NewRealClock(),
		estimator:  defaultEstimator,
		strategy:   StrategyLRU,
		l1Capacity: defaultL1Capacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRoleCapacity sets the capacity of a single role cache. Capacities for
// roles outside the closed set are ignored.
func WithRoleCapacity(role Role, capacity int) ManagerOption {
	return func(cfg *managerConfig) {
		if role.Valid() && capacity > 0 {
			cfg.capacities[role] = capacity
		}
	}
}

// WithBaseTTL sets the base time-to-live from which each role's default TTL
// is derived. Zero disables TTL expiration for every role.
func WithBaseTTL(ttl time.Duration) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.baseTTL = ttl
	}
}

// WithManagerClock injects the clock used by every role cache, for
// deterministic TTL testing.
func WithManagerClock(clock clockwork.Clock) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.clock = clock
	}
}

// WithMemoryEstimator replaces the per-entry byte estimator used by
// MemoryUsageEstimate. The estimator returns the approximate cost in bytes
// of one entry in the given role's cache.
func WithMemoryEstimator(estimator func(Role) int) ManagerOption {
	return func(cfg *managerConfig) {
		if estimator != nil {
			cfg.estimator = estimator
		}
	}
}

// defaultEstimator is a rough per-entry cost model: compiled code dominates,
// template roots and package specs are small headers plus a path.
func defaultEstimator(role Role) int {
	switch role {
	case RolePackage:
		return 256
	case RoleTemplate:
		return 128
	case RoleCompilation:
		return 4096
	case RoleModule:
		return 1024
	}
	return 128
}

// Manager owns one cache per role for the lifetime of the manager. Role
// caches are never swapped after construction, only cleared. A single
// process-wide instance is available through Default; isolated instances for
// tests or tenants come from NewManager or CreateScoped and share no state
// with any other manager.
type Manager struct {
	cfg    managerConfig
	caches map[Role]Store[any]
}

// NewManager creates a manager whose role caches use LRU eviction.
func NewManager(opts ...ManagerOption) *Manager {
	cfg := buildManagerConfig(opts)
	cfg.strategy = StrategyLRU
	return &Manager{cfg: cfg, caches: buildStores(cfg)}
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide shared manager, creating it on first use.
// It is never implicitly destroyed; callers that need a clean slate use
// ClearAll, and callers that need isolation create their own manager
// instead. Prefer passing a manager explicitly and reserving Default for
// top-level convenience wiring.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// buildStores constructs one store per role according to the configured
// strategy.
func buildStores(cfg managerConfig) map[Role]Store[any] {
	stores := make(map[Role]Store[any], len(Roles))
	for _, role := range Roles {
		capacity := cfg.capacities[role]
		ttl := cfg.baseTTL * role.ttlScale()
		opts := []Option{WithTTL(ttl), WithClock(cfg.clock)}

		if role == RoleTemplate && cfg.hierarchicalTemplates {
			stores[role] = NewHierarchical[any](cfg.l1Capacity, capacity, opts...)
			continue
		}

		switch cfg.strategy {
		case StrategyLFU:
			stores[role] = NewLFU[any](capacity, opts...)
		case StrategyAdaptive:
			stores[role] = NewAdaptive[any](capacity, opts...)
		case StrategyHierarchical:
			stores[role] = NewHierarchical[any](cfg.l1Capacity, capacity, opts...)
		default:
			stores[role] = New[any](capacity, opts...)
		}
	}
	return stores
}

// GetCache returns the cache owning the given role. The same instance is
// returned for the manager's whole lifetime.
func (m *Manager) GetCache(role Role) (Store[any], error) {
	c, ok := m.caches[role]
	if !ok {
		return nil, unknownRole(role)
	}
	return c, nil
}

// Get returns the cached value for key in the given role cache. A miss or an
// expired entry is reported as ok == false without error; only an unknown
// role fails.
func (m *Manager) Get(role Role, key string) (any, bool, error) {
	c, err := m.GetCache(role)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.Get(key)
	return v, ok, nil
}

// Set stores a value in the given role cache with the role's default TTL.
func (m *Manager) Set(role Role, key string, value any) error {
	c, err := m.GetCache(role)
	if err != nil {
		return err
	}
	c.Set(key, value)
	return nil
}

// SetTTL stores a value in the given role cache with an explicit TTL. A
// non-positive ttl stores the entry without expiration.
func (m *Manager) SetTTL(role Role, key string, value any, ttl time.Duration) error {
	c, err := m.GetCache(role)
	if err != nil {
		return err
	}
	c.SetTTL(key, value, ttl)
	return nil
}

// Delete removes key from the given role cache and reports whether it was
// present.
func (m *Manager) Delete(role Role, key string) (bool, error) {
	c, err := m.GetCache(role)
	if err != nil {
		return false, err
	}
	return c.Delete(key), nil
}

// ClearAll empties every role cache without destroying the manager.
func (m *Manager) ClearAll() {
	for _, c := range m.caches {
		c.Clear()
	}
}

// CleanupExpired sweeps every role cache and returns the number of expired
// entries removed per role.
func (m *Manager) CleanupExpired() map[Role]int {
	removed := make(map[Role]int, len(m.caches))
	for role, c := range m.caches {
		removed[role] = c.CleanupExpired()
	}
	return removed
}

// ManagerStats aggregates per-role statistics. TotalHitRate is total hits
// over total accesses across all roles, 0 when nothing has been accessed.
type ManagerStats struct {
	PerRole      map[Role]Stats
	TotalSize    int
	TotalHitRate float64
}

// Statistics returns per-role statistics plus cross-role aggregates.
func (m *Manager) Statistics() ManagerStats {
	perRole := make(map[Role]Stats, len(m.caches))
	var size int
	var hits, misses uint64
	for role, c := range m.caches {
		s := c.Stats()
		perRole[role] = s
		size += s.Size
		hits += s.Hits
		misses += s.Misses
	}

	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return ManagerStats{PerRole: perRole, TotalSize: size, TotalHitRate: rate}
}

// MemoryUsageEstimate returns an approximate byte count for all cached
// entries, summing a per-role per-entry cost model over current sizes. It is
// a monitoring heuristic, not an accounting of real allocations; never use
// it to enforce hard memory limits.
func (m *Manager) MemoryUsageEstimate() int64 {
	var total int64
	for role, c := range m.caches {
		total += int64(c.Len()) * int64(m.cfg.estimator(role))
	}
	return total
}

// CreateScoped returns a new independent manager with fresh, empty caches of
// the same shape: same roles, capacities, TTLs, strategy, and clock. The
// scoped manager shares no entries with its parent, which makes it suitable
// for tests and tenant isolation.
func (m *Manager) CreateScoped() *Manager {
	return &Manager{cfg: m.cfg, caches: buildStores(m.cfg)}
}

// StartCleanup runs CleanupExpired on every role cache at the given interval
// until the returned stop function is called. Stop is safe to call more than
// once and blocks until the sweeper goroutine has exited. The sweep uses the
// same per-call locking as any other caller, so it never weakens the
// atomicity of concurrent cache operations.
func (m *Manager) StartCleanup(interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanupExpired()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
