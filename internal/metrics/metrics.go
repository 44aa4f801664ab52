// Package metrics records the outcome of a run on a private Prometheus
// registry and optionally pushes it to a Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

const (
	namespace = "dhcp_dns_sync"

	// JobName is the Pushgateway job the metrics are grouped under.
	JobName = "dhcp_dns_sync"
)

// Recorder holds the metrics for one run.
type Recorder struct {
	registry *prometheus.Registry

	actions     *prometheus.CounterVec
	records     *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	lastRun     prometheus.Gauge
	duration    prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Actions applied to the DNS store by kind and result.",
			},
			[]string{"kind", "result"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Records read from each side of the reconciliation.",
			},
			[]string{"side"},
		),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed without error, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}

	r.registry.MustRegister(r.actions, r.records, r.lastSuccess, r.lastRun, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a finished run. err is the error returned by the run;
// domain.ErrNoActions counts as success.
func (r *Recorder) Observe(report domain.Report, err error, elapsed time.Duration, now time.Time) {
	r.records.WithLabelValues("source").Set(float64(report.SourceRecords))
	r.records.WithLabelValues("target").Set(float64(report.TargetRecords))

	for _, res := range report.Results {
		result := "ok"
		if res.Err != nil {
			result = "error"
		}
		r.actions.WithLabelValues(string(res.Action.Kind), result).Inc()
	}

	if err == nil || domain.IsNoActions(err) {
		r.lastSuccess.Set(1)
	} else {
		r.lastSuccess.Set(0)
	}
	r.lastRun.Set(float64(now.Unix()))
	r.duration.Set(elapsed.Seconds())
}

// Push sends the recorded metrics to the Pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url string) error {
	if err := push.New(url, JobName).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
