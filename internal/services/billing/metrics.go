package billing

import "time"

// MetricsCollector receives billing telemetry. Implementations must be
// safe for concurrent use.
type MetricsCollector interface {
	RecordQuote(kind string, amount int64)
	RecordClampedQuote(studentID uint)
	RecordError(operation string)
	RecordOperationDuration(operation string, d time.Duration)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuote(string, int64)                     {}
func (NoopMetricsCollector) RecordClampedQuote(uint)                       {}
func (NoopMetricsCollector) RecordError(string)                            {}
func (NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
