package handler

import (
	"fmt"
	"net/http"

	"github.com/dropline/dropline/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "dropline_signups_total{outcome=\"created\"} %d\n", snap.SignupsCreated)
	writeMetric(w, "dropline_signups_total{outcome=\"existing\"} %d\n", snap.SignupsExisting)
	writeMetric(w, "dropline_logins_total{outcome=\"success\"} %d\n", snap.LoginsSuccess)
	writeMetric(w, "dropline_logins_total{outcome=\"not_found\"} %d\n", snap.LoginsNotFound)
	writeMetric(w, "dropline_profile_updates_total %d\n", snap.ProfilesUpdated)

	writeMetric(w, "dropline_requests_created_total %d\n", snap.RequestsCreated)
	writeMetric(w, "dropline_request_list_items_total %d\n", snap.RequestListItems)
	writeMetric(w, "dropline_request_list_duration_seconds_count %d\n", snap.RequestListCount)
	writeMetric(w, "dropline_request_list_duration_seconds_sum %.6f\n", float64(snap.RequestListDurationNs)/1e9)

	writeMetric(w, "dropline_store_errors_total %d\n", snap.StoreErrors)
	writeMetric(w, "dropline_rate_limited_total %d\n", snap.RateLimitedRequests)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
