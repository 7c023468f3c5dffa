// Package metrics records seeding outcomes in a Prometheus registry and
// optionally pushes them to a Pushgateway at the end of a run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const defaultJob = "autoseed"

type Collector struct {
	pushURL string
	job     string
	reg     *prometheus.Registry

	records  *prometheus.CounterVec // autoseed_records_total
	domains  *prometheus.CounterVec // autoseed_domains_total
	runs     *prometheus.CounterVec // autoseed_runs_total
	duration prometheus.Gauge       // autoseed_run_duration_seconds
}

// NewCollector builds a collector. An empty pushURL keeps metrics local.
func NewCollector(job, pushURL string) (*Collector, error) {
	if job == "" {
		job = defaultJob
	}

	c := &Collector{
		pushURL: pushURL,
		job:     job,
		reg:     prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoseed_records_total",
				Help: "Seeded records per domain and outcome (created, updated, failed).",
			},
			[]string{"domain", "outcome"},
		),
		domains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoseed_domains_total",
				Help: "Domain runs per final status.",
			},
			[]string{"domain", "status"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoseed_runs_total",
				Help: "Seeding runs per final status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoseed_run_duration_seconds",
			Help: "Wall-clock duration of the last seeding run.",
		}),
	}

	for name, col := range map[string]prometheus.Collector{
		"records":  c.records,
		"domains":  c.domains,
		"runs":     c.runs,
		"duration": c.duration,
	} {
		if err := c.reg.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register %s metric: %w", name, err)
		}
	}
	return c, nil
}

func (c *Collector) ObserveDomain(domain, status string, created, updated, failed int) {
	c.domains.WithLabelValues(domain, status).Inc()
	c.records.WithLabelValues(domain, "created").Add(float64(created))
	c.records.WithLabelValues(domain, "updated").Add(float64(updated))
	c.records.WithLabelValues(domain, "failed").Add(float64(failed))
}

func (c *Collector) ObserveRun(duration time.Duration, status string) {
	c.runs.WithLabelValues(status).Inc()
	c.duration.Set(duration.Seconds())
}

// Push sends the registry to the Pushgateway. It does nothing without a URL.
func (c *Collector) Push(ctx context.Context) error {
	if c.pushURL == "" {
		return nil
	}
	if err := push.New(c.pushURL, c.job).Gatherer(c.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push to %s: %w", c.pushURL, err)
	}
	return nil
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}
