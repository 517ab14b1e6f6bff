package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup(outcome string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncProfileUpdated is a no-op.
func (n *NoopRecorder) IncProfileUpdated() {}

// IncRequestCreated is a no-op.
func (n *NoopRecorder) IncRequestCreated() {}

// ObserveRequestsListed is a no-op.
func (n *NoopRecorder) ObserveRequestsListed(count int, duration time.Duration) {}

// IncStoreError is a no-op.
func (n *NoopRecorder) IncStoreError() {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
