package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/handler/dto"
	"github.com/dropline/dropline/internal/metrics"
	"github.com/dropline/dropline/internal/model"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.InMemoryRecorder
}

func newTestAPI(t *testing.T, store docstore.Store) *testAPI {
	t.Helper()
	recorder := metrics.NewInMemory()
	r := NewRouter(RouterConfig{
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:              store,
		DatabaseURLSet:     true,
		Metrics:            recorder,
		IsDevelopment:      true,
		CORSAllowedOrigins: []string{"*"},
		MaxRequestBodySize: 1 << 20,
	})
	return &testAPI{t: t, handler: r, metrics: recorder}
}

func (a *testAPI) do(method, target string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func expectDetail(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := decodeBody[dto.ErrorResponse](t, rec).Detail; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestRouter_SignupLoginRequestScenario(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	rec := api.do(http.MethodPost, "/auth/signup", map[string]any{"email": "a@x.com", "name": "A"})
	expectStatus(t, rec, http.StatusOK)
	signup := decodeBody[map[string]any](t, rec)
	if signup["status"] != "ok" {
		t.Errorf("status = %v, want ok", signup["status"])
	}
	if id, _ := signup["id"].(string); id == "" {
		t.Errorf("expected id on first signup, got %v", signup["id"])
	}

	rec = api.do(http.MethodPost, "/auth/login", map[string]any{"email": "a@x.com"})
	expectStatus(t, rec, http.StatusOK)
	login := decodeBody[map[string]any](t, rec)
	user, _ := login["user"].(map[string]any)
	if user["email"] != "a@x.com" || user["name"] != "A" {
		t.Errorf("unexpected user: %v", user)
	}
	if v, ok := user["avatar_url"]; !ok || v != nil {
		t.Errorf("avatar_url = %v (present %v), want explicit null", v, ok)
	}
	if _, ok := login["id"]; ok {
		t.Error("login response must not carry id")
	}

	rec = api.do(http.MethodPost, "/request", map[string]any{"email": "a@x.com", "text": "hi"})
	expectStatus(t, rec, http.StatusOK)
	created := decodeBody[dto.CreateRequestResponse](t, rec)
	if created.Status != "ok" || created.ID == "" {
		t.Fatalf("unexpected create response: %+v", created)
	}

	rec = api.do(http.MethodGet, "/requests?email=a@x.com", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decodeBody[map[string][]map[string]any](t, rec)
	items := list["items"]
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item["id"] != created.ID {
		t.Errorf("id = %v, want %s", item["id"], created.ID)
	}
	if _, ok := item["_id"]; ok {
		t.Error("item must not expose _id")
	}
	if item["text"] != "hi" || item["status"] != "sent" {
		t.Errorf("unexpected item: %v", item)
	}
	if v, ok := item["photo_url"]; !ok || v != nil {
		t.Errorf("photo_url = %v, want null", v)
	}
}

func TestRouter_SignupIdempotent(t *testing.T) {
	store := docstore.NewMemoryStore("")
	api := newTestAPI(t, store)

	first := api.do(http.MethodPost, "/auth/signup", map[string]any{"email": "a@x.io", "name": "A"})
	expectStatus(t, first, http.StatusOK)

	second := api.do(http.MethodPost, "/auth/signup", map[string]any{"email": "a@x.io", "name": "Other"})
	expectStatus(t, second, http.StatusOK)

	resp := decodeBody[dto.AuthResponse](t, second)
	if resp.ID != "" {
		t.Errorf("second signup id = %q, want none", resp.ID)
	}
	if resp.User.Name == nil || *resp.User.Name != "A" {
		t.Errorf("name = %v, want stored A", resp.User.Name)
	}

	docs, err := store.GetDocuments(context.Background(), "appuser", docstore.Filter{"email": "a@x.io"}, 0)
	if err != nil {
		t.Fatalf("get documents: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("stored users = %d, want 1", len(docs))
	}
}

func TestRouter_LoginUnknown(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	rec := api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ghost@x.io"})
	expectStatus(t, rec, http.StatusNotFound)
	expectDetail(t, rec, "User not found. Please sign up first.")
}

func TestRouter_Profile(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	rec := api.do(http.MethodGet, "/profile?email=a@x.io", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectDetail(t, rec, "User not found")

	expectStatus(t, api.do(http.MethodPost, "/auth/signup", map[string]any{
		"email": "a@x.io", "name": "A", "avatar_url": "http://a",
	}), http.StatusOK)

	// Omitted name is overwritten with null.
	rec = api.do(http.MethodPut, "/profile", map[string]any{"email": "a@x.io", "avatar_url": "http://b"})
	expectStatus(t, rec, http.StatusOK)
	updated := decodeBody[dto.AuthResponse](t, rec)
	if updated.Status != "ok" || updated.User.Name != nil {
		t.Errorf("unexpected update response: %+v", updated)
	}

	rec = api.do(http.MethodGet, "/profile?email=a@x.io", nil)
	expectStatus(t, rec, http.StatusOK)
	profile := decodeBody[map[string]any](t, rec)
	if profile["email"] != "a@x.io" || profile["name"] != nil || profile["avatar_url"] != "http://b" {
		t.Errorf("unexpected profile: %v", profile)
	}
	if _, ok := profile["updated_at"]; ok {
		t.Error("profile must not expose updated_at")
	}
}

func TestRouter_RequestListTruncatesMedia(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	payload := map[string]any{
		"email":          "a@x.io",
		"photo_data_url": "data:image/png;base64," + strings.Repeat("A", 4096),
		"audio_data_url": "data:audio/webm;base64," + strings.Repeat("B", 4096),
		"contact_name":   "Kim",
		"lat":            52.52,
		"lng":            13.405,
	}
	expectStatus(t, api.do(http.MethodPost, "/request", payload), http.StatusOK)

	rec := api.do(http.MethodGet, "/requests?email=a@x.io", nil)
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	if strings.Contains(body, "AAAA") || strings.Contains(body, "BBBB") {
		t.Fatal("listing leaked inline media")
	}

	list := decodeBody[dto.RequestListResponse](t, rec)
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}
	item := list.Items[0]
	if item.PhotoURL == nil || *item.PhotoURL != model.PhotoPlaceholder {
		t.Errorf("photo_url = %v", item.PhotoURL)
	}
	if item.AudioURL == nil || *item.AudioURL != model.AudioPlaceholder {
		t.Errorf("audio_url = %v", item.AudioURL)
	}
	if item.Lat == nil || *item.Lat != 52.52 || item.ContactName == nil || *item.ContactName != "Kim" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestRouter_RequestListLimit(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	for i := 0; i < 5; i++ {
		expectStatus(t, api.do(http.MethodPost, "/request", map[string]any{"email": "a@x.io"}), http.StatusOK)
	}

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantItems int
	}{
		{"default", "", http.StatusOK, 5},
		{"limit below count", "&limit=2", http.StatusOK, 2},
		{"limit above count", "&limit=50", http.StatusOK, 5},
		{"zero lists all", "&limit=0", http.StatusOK, 5},
		{"negative lists all", "&limit=-3", http.StatusOK, 5},
		{"not a number", "&limit=abc", http.StatusUnprocessableEntity, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodGet, "/requests?email=a@x.io"+tt.query, nil)
			expectStatus(t, rec, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := len(decodeBody[dto.RequestListResponse](t, rec).Items); got != tt.wantItems {
				t.Errorf("items = %d, want %d", got, tt.wantItems)
			}
		})
	}
}

func TestRouter_RequestListEmptyIsArray(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	rec := api.do(http.MethodGet, "/requests?email=nobody@x.io", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"items":[]}` {
		t.Errorf("body = %s, want empty items array", got)
	}
}

func TestRouter_InvalidPayloads(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	tests := []struct {
		name     string
		method   string
		target   string
		body     any
		wantCode int
	}{
		{"signup malformed json", http.MethodPost, "/auth/signup", `{"email":`, http.StatusBadRequest},
		{"signup trailing data", http.MethodPost, "/auth/signup", `{"email":"a@x.io"} junk`, http.StatusBadRequest},
		{"request two json values", http.MethodPost, "/request", `{"email":"a@x.io"}{"email":"b@x.io"}`, http.StatusBadRequest},
		{"signup missing email", http.MethodPost, "/auth/signup", map[string]any{"name": "A"}, http.StatusUnprocessableEntity},
		{"signup invalid email", http.MethodPost, "/auth/signup", map[string]any{"email": "not-an-email"}, http.StatusUnprocessableEntity},
		{"login invalid email", http.MethodPost, "/auth/login", map[string]any{"email": "x"}, http.StatusUnprocessableEntity},
		{"profile get invalid email", http.MethodGet, "/profile?email=x", nil, http.StatusUnprocessableEntity},
		{"profile get missing email", http.MethodGet, "/profile", nil, http.StatusUnprocessableEntity},
		{"profile put invalid email", http.MethodPut, "/profile", map[string]any{"email": "x"}, http.StatusUnprocessableEntity},
		{"request wrong lat type", http.MethodPost, "/request", `{"email":"a@x.io","lat":"north"}`, http.StatusBadRequest},
		{"request missing email", http.MethodPost, "/request", map[string]any{"text": "hi"}, http.StatusUnprocessableEntity},
		{"requests invalid email", http.MethodGet, "/requests?email=x", nil, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(tt.method, tt.target, tt.body)
			expectStatus(t, rec, tt.wantCode)
			if decodeBody[dto.ErrorResponse](t, rec).Detail == "" {
				t.Error("expected a detail message")
			}
		})
	}
}

func TestRouter_StoreUnavailable(t *testing.T) {
	api := newTestAPI(t, docstore.Unavailable(errors.New("DATABASE_URL not set")))

	// Lookups degrade to not found.
	rec := api.do(http.MethodPost, "/auth/login", map[string]any{"email": "a@x.io"})
	expectStatus(t, rec, http.StatusNotFound)
	expectDetail(t, rec, "User not found. Please sign up first.")

	rec = api.do(http.MethodGet, "/profile?email=a@x.io", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = api.do(http.MethodPut, "/profile", map[string]any{"email": "a@x.io"})
	expectStatus(t, rec, http.StatusInternalServerError)
	expectDetail(t, rec, "Database not available")

	// Writes and listings fail as server errors.
	expectStatus(t, api.do(http.MethodPost, "/auth/signup", map[string]any{"email": "a@x.io"}), http.StatusInternalServerError)
	expectStatus(t, api.do(http.MethodPost, "/request", map[string]any{"email": "a@x.io"}), http.StatusInternalServerError)
	expectStatus(t, api.do(http.MethodGet, "/requests?email=a@x.io", nil), http.StatusInternalServerError)

	// The root endpoint does not depend on the store.
	expectStatus(t, api.do(http.MethodGet, "/", nil), http.StatusOK)
}

func TestRouter_CORSPreflight(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	req := httptest.NewRequest(http.MethodOptions, "/auth/signup", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRouter_FallbackRoutes(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	rec := api.do(http.MethodGet, "/nope", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectDetail(t, rec, "Not Found")

	rec = api.do(http.MethodDelete, "/profile", nil)
	expectStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestRouter_Metrics(t *testing.T) {
	api := newTestAPI(t, docstore.NewMemoryStore(""))

	expectStatus(t, api.do(http.MethodPost, "/auth/signup", map[string]any{"email": "a@x.io"}), http.StatusOK)
	expectStatus(t, api.do(http.MethodPost, "/auth/login", map[string]any{"email": "b@x.io"}), http.StatusNotFound)

	rec := api.do(http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	for _, want := range []string{
		`dropline_signups_total{outcome="created"} 1`,
		`dropline_logins_total{outcome="not_found"} 1`,
		`dropline_requests_created_total 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestRouter_TrailingDataRejected(t *testing.T) {
	store := docstore.NewMemoryStore("")
	api := newTestAPI(t, store)

	rec := api.do(http.MethodPost, "/auth/signup", `{"email":"a@x.io"} {"email":"b@x.io"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	expectDetail(t, rec, "Invalid JSON body")

	// Nothing was stored from the rejected body.
	rec = api.do(http.MethodPost, "/auth/login", map[string]any{"email": "a@x.io"})
	expectStatus(t, rec, http.StatusNotFound)
}
