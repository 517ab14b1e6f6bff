package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dropline/dropline/internal/docstore"
)

// Diagnostic status strings.
const (
	diagBackendRunning     = "✅ Running"
	diagNotAvailable       = "❌ Not Available"
	diagNotInitialized     = "⚠️ Available but not initialized"
	diagAvailable          = "✅ Available"
	diagWorking            = "✅ Connected & Working"
	diagConnectedButError  = "⚠️ Connected but Error: "
	diagURLSet             = "✅ Set"
	diagURLNotSet          = "❌ Not Set"
	diagConnected          = "Connected"
	diagNotConnected       = "Not Connected"
	diagMaxCollections     = 10
	diagMaxErrorRunes      = 50
	diagCollectionsTimeout = 5 * time.Second
)

// DiagnosticsResponse is returned by GET /test.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// DiagnosticsHandler reports store connectivity for operators.
type DiagnosticsHandler struct {
	store          docstore.Store
	databaseURLSet bool
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler. databaseURLSet
// reports whether a connection string was configured.
func NewDiagnosticsHandler(store docstore.Store, databaseURLSet bool) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		store:          store,
		databaseURLSet: databaseURLSet,
	}
}

// Test handles GET /test. It always answers 200; store problems are
// reported in the body.
func (h *DiagnosticsHandler) Test(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), diagCollectionsTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, h.diagnose(ctx))
}

func (h *DiagnosticsHandler) diagnose(ctx context.Context) DiagnosticsResponse {
	resp := DiagnosticsResponse{
		Backend:          diagBackendRunning,
		Database:         diagNotAvailable,
		ConnectionStatus: diagNotConnected,
		Collections:      []string{},
	}

	if h.store == nil || !h.store.Available() {
		resp.Database = diagNotInitialized
		return resp
	}

	urlStatus := diagURLNotSet
	if h.databaseURLSet {
		urlStatus = diagURLSet
	}
	name := h.store.Name()
	if name == "" {
		name = "✅ Connected"
	}

	resp.Database = diagAvailable
	resp.DatabaseURL = &urlStatus
	resp.DatabaseName = &name
	resp.ConnectionStatus = diagConnected

	collections, err := h.store.ListCollections(ctx)
	if err != nil {
		resp.Database = diagConnectedButError + truncateRunes(err.Error(), diagMaxErrorRunes)
		return resp
	}

	if len(collections) > diagMaxCollections {
		collections = collections[:diagMaxCollections]
	}
	if collections != nil {
		resp.Collections = collections
	}
	resp.Database = diagWorking
	return resp
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
