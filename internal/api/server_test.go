package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/TeAnli/acm-bot/internal/config"
	"github.com/TeAnli/acm-bot/internal/onebot"
	"github.com/TeAnli/acm-bot/internal/store"
	"github.com/TeAnli/acm-bot/internal/watch"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []onebot.Event
	seen   chan struct{}
}

func (h *recordingHandler) HandleEvent(ctx context.Context, ev onebot.Event) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	h.seen <- struct{}{}
}

type staticStats struct{}

func (staticStats) Stats() watch.Stats { return watch.Stats{AlertedCount: 3} }

func testConfig() *config.Config {
	return &config.Config{
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}
}

func newTestRouter(t *testing.T, events EventHandler) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(nopWriter{}, nil))
	return NewRouter(events, staticStats{}, store.NewMemory(), testConfig(), logger)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &recordingHandler{seen: make(chan struct{}, 1)})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf(`status field = %q, want "healthy"`, body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t, &recordingHandler{seen: make(chan struct{}, 1)})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Watch         watch.Stats `json:"watch"`
		EnabledGroups int         `json:"enabled_groups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Watch.AlertedCount != 3 {
		t.Errorf("alerted_count = %d, want 3", body.Watch.AlertedCount)
	}
	if body.EnabledGroups != 0 {
		t.Errorf("enabled_groups = %d, want 0", body.EnabledGroups)
	}
}

func TestEventWebhookDispatches(t *testing.T) {
	h := &recordingHandler{seen: make(chan struct{}, 1)}
	router := newTestRouter(t, h)

	payload := `{"time":1700000000,"post_type":"message","message_type":"group","group_id":100,"user_id":7,"raw_message":"cf比赛"}`
	req := httptest.NewRequest(http.MethodPost, "/onebot/event", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	<-h.seen
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(h.events))
	}
	ev := h.events[0]
	if ev.GroupID != 100 || ev.RawMessage != "cf比赛" {
		t.Errorf("event = %+v", ev)
	}
}

func TestEventWebhookRejectsBadPayload(t *testing.T) {
	h := &recordingHandler{seen: make(chan struct{}, 1)}
	router := newTestRouter(t, h)

	req := httptest.NewRequest(http.MethodPost, "/onebot/event", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
