package cache

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a manager's statistics as Prometheus metrics. Register
// it with a prometheus.Registerer; each scrape takes a fresh snapshot via
// Statistics, so no counters are double-tracked.
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(cache.NewCollector(manager, "templatecache"))
type Collector struct {
	manager *Manager

	size      *prometheus.Desc
	capacity  *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	hitRate   *prometheus.Desc
	memory    *prometheus.Desc
}

// NewCollector creates a Collector for the given manager under the given
// metric namespace.
func NewCollector(m *Manager, namespace string) *Collector {
	roleLabel := []string{"role"}
	return &Collector{
		manager: m,
		size: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"Number of entries currently stored per role cache.",
			roleLabel, nil,
		),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "capacity"),
			"Configured capacity per role cache.",
			roleLabel, nil,
		),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"Cache hits per role since construction or the last clear.",
			roleLabel, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"Cache misses per role since construction or the last clear.",
			roleLabel, nil,
		),
		evictions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "evictions_total"),
			"Capacity evictions per role since construction or the last clear.",
			roleLabel, nil,
		),
		hitRate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hit_rate"),
			"Aggregate hit rate across all role caches.",
			nil, nil,
		),
		memory: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "memory_estimate_bytes"),
			"Heuristic memory estimate across all role caches.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.capacity
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.hitRate
	ch <- c.memory
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.manager.Statistics()
	for role, s := range stats.PerRole {
		label := string(role)
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size), label)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), label)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), label)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), label)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions), label)
	}
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, stats.TotalHitRate)
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(c.manager.MemoryUsageEstimate()))
}
