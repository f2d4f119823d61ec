// Package watch runs the contest alert loop: it polls the contest source on
// an interval, picks contests starting within the threshold, and broadcasts
// one message to every subscribed group. Each contest triggers at most one
// alert per process lifetime.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TeAnli/acm-bot/internal/contest"
)

// Source lists contests that are still relevant (upcoming or running).
type Source interface {
	ActiveContests(ctx context.Context) ([]contest.Classified, error)
}

// Sender delivers a text message to a group.
type Sender interface {
	SendGroupText(ctx context.Context, groupID int64, text string) error
}

// Groups knows which groups opted in to alerts.
type Groups interface {
	ListEnabled(ctx context.Context) ([]int64, error)
}

// Watcher drives the alert loop.
type Watcher struct {
	source    Source
	sender    Sender
	groups    Groups
	threshold time.Duration
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	alerted  map[int64]struct{}
	lastTick time.Time
	lastSent time.Time
}

// New creates a watcher. threshold is how far before the start an alert
// fires; interval is the poll period.
func New(source Source, sender Sender, groups Groups, threshold, interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		source:    source,
		sender:    sender,
		groups:    groups,
		threshold: threshold,
		interval:  interval,
		logger:    logger,
		alerted:   make(map[int64]struct{}),
	}
}

// Start runs the poll loop until ctx is cancelled. Intended to be called
// with `go`.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("contest watcher started", "interval", w.interval, "threshold", w.threshold)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.mu.Lock()
			w.lastTick = time.Now()
			w.mu.Unlock()
			if err := w.Tick(ctx); err != nil {
				w.logger.Error("watch tick failed", "error", err)
			}
		case <-ctx.Done():
			w.logger.Info("contest watcher stopped")
			return
		}
	}
}

// Tick performs one poll-and-alert cycle. It is a no-op when no group is
// subscribed, and it never alerts the same contest twice.
func (w *Watcher) Tick(ctx context.Context) error {
	groupIDs, err := w.groups.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled groups: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil
	}

	items, err := w.source.ActiveContests(ctx)
	if err != nil {
		return fmt.Errorf("fetch contests: %w", err)
	}

	due := w.claimDue(items)
	if len(due) == 0 {
		return nil
	}

	text := strings.Join(contest.Render(due, true), "\n\n")

	for _, groupID := range groupIDs {
		if err := w.sender.SendGroupText(ctx, groupID, text); err != nil {
			w.logger.Warn("alert send failed", "group_id", groupID, "error", err)
			continue
		}
	}

	w.mu.Lock()
	w.lastSent = time.Now()
	w.mu.Unlock()

	w.logger.Info("contest alerts sent", "contests", len(due), "groups", len(groupIDs))
	return nil
}

// claimDue selects upcoming contests within the threshold that have not been
// alerted yet, marking them as alerted before any send happens. A failed
// send is not retried for the same contest.
func (w *Watcher) claimDue(items []contest.Classified) []contest.Classified {
	w.mu.Lock()
	defer w.mu.Unlock()

	var due []contest.Classified
	for _, c := range items {
		if c.Phase != contest.Upcoming {
			continue
		}
		if c.Remaining > int64(w.threshold.Seconds()) {
			continue
		}
		if _, seen := w.alerted[c.Contest.ID]; seen {
			continue
		}
		w.alerted[c.Contest.ID] = struct{}{}
		due = append(due, c)
	}
	return due
}

// Stats reports the watcher's runtime state for the status endpoint.
type Stats struct {
	AlertedCount int       `json:"alerted_count"`
	LastTick     time.Time `json:"last_tick"`
	LastSent     time.Time `json:"last_sent"`
}

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		AlertedCount: len(w.alerted),
		LastTick:     w.lastTick,
		LastSent:     w.lastSent,
	}
}
