package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric family exported by the commands.
const Namespace = "qdatasets"

// NewRegistry returns an empty registry for one command run.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Jobs records per-job completion state.
type Jobs struct {
	lastSuccess *prometheus.GaugeVec
	rows        *prometheus.GaugeVec
}

// NewJobs registers the job gauges on reg.
func NewJobs(reg prometheus.Registerer) (*Jobs, error) {
	j := &Jobs{
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "job",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful dataset write.",
		}, []string{"job"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "job",
			Name:      "rows_written",
			Help:      "Number of sample rows in the last written dataset.",
		}, []string{"job"}),
	}
	for _, c := range []prometheus.Collector{j.lastSuccess, j.rows} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register job metrics: %w", err)
		}
	}
	return j, nil
}

// MarkSuccess records a completed write of rows samples for job at t.
func (j *Jobs) MarkSuccess(job string, rows int, t time.Time) {
	if j == nil {
		return
	}
	j.lastSuccess.WithLabelValues(job).Set(float64(t.Unix()))
	j.rows.WithLabelValues(job).Set(float64(rows))
}

// Flush writes everything gathered by g to path. An empty path disables the
// textfile export.
func Flush(path string, g prometheus.Gatherer) error {
	path = strings.TrimSpace(path)
	if path == "" || g == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
