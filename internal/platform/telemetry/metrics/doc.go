// Package metrics collects Prometheus metrics for batch dataset runs.
//
// Commands are short-lived, so nothing is scraped. Each run owns a
// Registry and, when a textfile path is configured, Flush writes the
// gathered families in the node-exporter textfile collector format.
//
// # Metric Families
//
//   - qdatasets_entropy_attempts_total{outcome}: entropy requests by outcome
//   - qdatasets_entropy_bytes_total: bytes accepted from the entropy service
//   - qdatasets_job_last_success_timestamp_seconds{job}: last successful write
//   - qdatasets_job_rows_written{job}: rows in the last written table
package metrics
