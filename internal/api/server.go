// Package api exposes the bot's HTTP surface: health and status endpoints
// plus the OneBot event webhook that feeds the command dispatcher.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/TeAnli/acm-bot/internal/api/respond"
	"github.com/TeAnli/acm-bot/internal/config"
	"github.com/TeAnli/acm-bot/internal/onebot"
	"github.com/TeAnli/acm-bot/internal/store"
	"github.com/TeAnli/acm-bot/internal/watch"
)

// EventHandler consumes inbound chat events. Dispatch must not block the
// webhook response.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev onebot.Event)
}

// WatchStats reports the alert loop's runtime state.
type WatchStats interface {
	Stats() watch.Stats
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(events EventHandler, watcher WatchStats, groups store.Store, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSONObject(w, http.StatusOK, map[string]string{
			"service": "acm-bot",
			"status":  "ok",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSONObject(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		groupIDs, err := groups.ListEnabled(r.Context())
		if err != nil {
			logger.Error("list enabled groups failed", "error", err)
			respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "could not read subscriptions")
			return
		}
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"watch":          watcher.Stats(),
			"enabled_groups": len(groupIDs),
			"time":           time.Now().UTC(),
		})
	})

	// OneBot pushes every event here. The reply goes out through the OneBot
	// API, not the HTTP response, so dispatch happens off the request
	// goroutine and the webhook always answers 204 quickly.
	r.Post("/onebot/event", func(w http.ResponseWriter, r *http.Request) {
		var ev onebot.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "BAD_EVENT", "malformed event payload")
			return
		}
		go events.HandleEvent(context.WithoutCancel(r.Context()), ev)
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
