// Package metrics records ingestion, sweep and rate limit counters.
package metrics

import "time"

// ResultLabel classifies the outcome of an ingestion request
type ResultLabel string

const (
	ResultSuccess     ResultLabel = "success"
	ResultClientError ResultLabel = "client_error"
	ResultServerError ResultLabel = "server_error"
)

// Recorder receives service events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveIngest(result ResultLabel, d time.Duration)
	AddSweepRemoved(n int)
	IncSweepError()
	IncRateLimited()
}

// NoopRecorder discards everything
type NoopRecorder struct{}

func (NoopRecorder) ObserveIngest(ResultLabel, time.Duration) {}
func (NoopRecorder) AddSweepRemoved(int)                      {}
func (NoopRecorder) IncSweepError()                           {}
func (NoopRecorder) IncRateLimited()                          {}
