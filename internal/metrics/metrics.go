// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncSignup(outcome string) // outcome: "created" or "existing"
	IncLogin(outcome string)  // outcome: "success" or "not_found"
	IncProfileUpdated()

	// Request metrics
	IncRequestCreated()
	ObserveRequestsListed(count int, duration time.Duration)

	// Infrastructure metrics
	IncStoreError()
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
