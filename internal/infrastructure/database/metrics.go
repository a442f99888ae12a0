package database

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector exports PoolStats as prometheus metrics. Nothing is
// reported while the pool is disconnected.
type PoolCollector struct {
	db *PostgresDB

	totalConns    *prometheus.Desc
	idleConns     *prometheus.Desc
	acquiredConns *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	acquireDelay  *prometheus.Desc
}

func NewPoolCollector(db *PostgresDB) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("db_pool_"+name, help, nil, nil)
	}
	return &PoolCollector{
		db:            db,
		totalConns:    desc("total_connections", "Total number of connections in the pool"),
		idleConns:     desc("idle_connections", "Number of currently idle connections"),
		acquiredConns: desc("acquired_connections", "Number of currently acquired connections"),
		maxConns:      desc("max_connections", "Maximum number of connections allowed"),
		acquireCount:  desc("acquire_count_total", "Total number of connection acquires"),
		acquireDelay:  desc("avg_acquire_delay_seconds", "Average time spent acquiring a connection"),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.acquireDelay
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()
	if s == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(s.AcquiredConns))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(s.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.acquireDelay, prometheus.GaugeValue, s.AvgAcquireDelay.Seconds())
}

// RegisterPoolMetrics registers the collector with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, db *PostgresDB) error {
	return reg.Register(NewPoolCollector(db))
}
