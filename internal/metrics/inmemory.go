package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SignupsCreated        uint64
	SignupsExisting       uint64
	LoginsSuccess         uint64
	LoginsNotFound        uint64
	ProfilesUpdated       uint64
	RequestsCreated       uint64
	RequestListCount      uint64
	RequestListItems      uint64
	RequestListDurationNs int64
	StoreErrors           uint64
	RateLimitedRequests   uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and tests.
type InMemoryRecorder struct {
	signupsCreated        uint64
	signupsExisting       uint64
	loginsSuccess         uint64
	loginsNotFound        uint64
	profilesUpdated       uint64
	requestsCreated       uint64
	requestListCount      uint64
	requestListItems      uint64
	requestListDurationNs int64
	storeErrors           uint64
	rateLimited           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SignupsCreated:        atomic.LoadUint64(&m.signupsCreated),
		SignupsExisting:       atomic.LoadUint64(&m.signupsExisting),
		LoginsSuccess:         atomic.LoadUint64(&m.loginsSuccess),
		LoginsNotFound:        atomic.LoadUint64(&m.loginsNotFound),
		ProfilesUpdated:       atomic.LoadUint64(&m.profilesUpdated),
		RequestsCreated:       atomic.LoadUint64(&m.requestsCreated),
		RequestListCount:      atomic.LoadUint64(&m.requestListCount),
		RequestListItems:      atomic.LoadUint64(&m.requestListItems),
		RequestListDurationNs: atomic.LoadInt64(&m.requestListDurationNs),
		StoreErrors:           atomic.LoadUint64(&m.storeErrors),
		RateLimitedRequests:   atomic.LoadUint64(&m.rateLimited),
	}
}

// IncSignup increments the signup counter for outcome.
func (m *InMemoryRecorder) IncSignup(outcome string) {
	if outcome == OutcomeCreated {
		atomic.AddUint64(&m.signupsCreated, 1)
		return
	}
	atomic.AddUint64(&m.signupsExisting, 1)
}

// IncLogin increments the login counter for outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.loginsSuccess, 1)
		return
	}
	atomic.AddUint64(&m.loginsNotFound, 1)
}

// IncProfileUpdated increments profile updated counter.
func (m *InMemoryRecorder) IncProfileUpdated() {
	atomic.AddUint64(&m.profilesUpdated, 1)
}

// IncRequestCreated increments request created counter.
func (m *InMemoryRecorder) IncRequestCreated() {
	atomic.AddUint64(&m.requestsCreated, 1)
}

// ObserveRequestsListed records one listing call.
func (m *InMemoryRecorder) ObserveRequestsListed(count int, duration time.Duration) {
	atomic.AddUint64(&m.requestListCount, 1)
	atomic.AddUint64(&m.requestListItems, uint64(count))
	atomic.AddInt64(&m.requestListDurationNs, duration.Nanoseconds())
}

// IncStoreError increments store error counter.
func (m *InMemoryRecorder) IncStoreError() {
	atomic.AddUint64(&m.storeErrors, 1)
}

// IncRateLimited increments rate limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
