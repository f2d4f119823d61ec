package watch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/TeAnli/acm-bot/internal/contest"
)

type fakeSource struct {
	items []contest.Classified
	calls int
}

func (f *fakeSource) ActiveContests(ctx context.Context) ([]contest.Classified, error) {
	f.calls++
	return f.items, nil
}

type fakeSender struct {
	sent []string
	to   []int64
	err  error
}

func (f *fakeSender) SendGroupText(ctx context.Context, groupID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, groupID)
	f.sent = append(f.sent, text)
	return nil
}

type fakeGroups struct {
	ids []int64
}

func (f *fakeGroups) ListEnabled(ctx context.Context) ([]int64, error) {
	return f.ids, nil
}

func upcoming(id, remaining int64) contest.Classified {
	return contest.Classified{
		Contest: contest.Contest{
			Name:      "Test Round",
			ID:        id,
			StartTime: time.Now().Unix() + remaining,
			Duration:  7200,
		},
		Phase:     contest.Upcoming,
		Remaining: remaining,
		Label:     contest.LabelUntilStart,
	}
}

func newTestWatcher(src *fakeSource, snd *fakeSender, grp *fakeGroups) *Watcher {
	logger := slog.New(slog.NewTextHandler(testWriter{}, nil))
	return New(src, snd, grp, 2*time.Hour, time.Minute, logger)
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestTickSkipsFetchWithoutSubscribers(t *testing.T) {
	src := &fakeSource{items: []contest.Classified{upcoming(1, 600)}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times with no subscribers, want 0", src.calls)
	}
	if len(snd.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(snd.sent))
	}
}

func TestTickAlertsOncePerContest(t *testing.T) {
	src := &fakeSource{items: []contest.Classified{upcoming(42, 600)}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100, 200}})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	if len(snd.sent) != 2 {
		t.Fatalf("sent %d messages, want one per group (2)", len(snd.sent))
	}
	if snd.to[0] != 100 || snd.to[1] != 200 {
		t.Errorf("sent to %v, want [100 200]", snd.to)
	}
	if !strings.Contains(snd.sent[0], "Test Round") {
		t.Errorf("message missing contest name: %q", snd.sent[0])
	}

	// Same contest on the next tick must not alert again.
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("second Tick: %v", err)
	}
	if len(snd.sent) != 2 {
		t.Errorf("sent %d messages after second tick, want still 2", len(snd.sent))
	}
}

func TestDedupIsKeyedByContestID(t *testing.T) {
	first := upcoming(21, 600)
	second := upcoming(22, 900)
	second.Contest.Name = first.Contest.Name

	src := &fakeSource{items: []contest.Classified{first}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100}})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("first Tick: %v", err)
	}

	// A new id alerts even with an identical name; the already-alerted id
	// stays suppressed even if its name changes upstream.
	first.Contest.Name = "Renamed Round"
	src.items = []contest.Classified{first, second}
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("second Tick: %v", err)
	}

	if len(snd.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(snd.sent))
	}
	if !strings.Contains(snd.sent[1], "(ID: 22)") {
		t.Errorf("second alert missing new contest: %q", snd.sent[1])
	}
	if strings.Contains(snd.sent[1], "(ID: 21)") {
		t.Errorf("second alert repeats known contest: %q", snd.sent[1])
	}
}

func TestFailedSendIsNotRetried(t *testing.T) {
	src := &fakeSource{items: []contest.Classified{upcoming(7, 600)}}
	snd := &fakeSender{err: errors.New("api down")}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100}})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	// Contest was marked alerted before the send, so recovery of the
	// sender does not cause a duplicate alert.
	snd.err = nil
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("second Tick: %v", err)
	}
	if len(snd.sent) != 0 {
		t.Errorf("sent %d messages after sender recovered, want 0", len(snd.sent))
	}
}

func TestTickFiltersByThreshold(t *testing.T) {
	far := upcoming(2, int64((3 * time.Hour).Seconds()))
	near := upcoming(1, 600)
	running := upcoming(3, 100)
	running.Phase = contest.Running
	running.Label = contest.LabelUntilEnd

	src := &fakeSource{items: []contest.Classified{far, near, running}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100}})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(snd.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(snd.sent))
	}
	if !strings.Contains(snd.sent[0], "(ID: 1)") {
		t.Errorf("message should contain the near contest: %q", snd.sent[0])
	}
	if strings.Contains(snd.sent[0], "(ID: 2)") {
		t.Errorf("message should not contain the far contest: %q", snd.sent[0])
	}
	if strings.Contains(snd.sent[0], "(ID: 3)") {
		t.Errorf("message should not contain the running contest: %q", snd.sent[0])
	}
}

func TestDueContestsSortedByUrgency(t *testing.T) {
	src := &fakeSource{items: []contest.Classified{
		upcoming(10, 3000),
		upcoming(11, 300),
		upcoming(12, 1500),
	}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100}})

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(snd.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(snd.sent))
	}
	msg := snd.sent[0]
	i11 := strings.Index(msg, "(ID: 11)")
	i12 := strings.Index(msg, "(ID: 12)")
	i10 := strings.Index(msg, "(ID: 10)")
	if i11 == -1 || i12 == -1 || i10 == -1 {
		t.Fatalf("message missing contests: %q", msg)
	}
	if !(i11 < i12 && i12 < i10) {
		t.Errorf("contests not ordered by urgency: %q", msg)
	}
}

func TestStats(t *testing.T) {
	src := &fakeSource{items: []contest.Classified{upcoming(5, 600)}}
	snd := &fakeSender{}
	w := newTestWatcher(src, snd, &fakeGroups{ids: []int64{100}})

	if got := w.Stats(); got.AlertedCount != 0 {
		t.Errorf("AlertedCount = %d before any tick, want 0", got.AlertedCount)
	}
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	got := w.Stats()
	if got.AlertedCount != 1 {
		t.Errorf("AlertedCount = %d, want 1", got.AlertedCount)
	}
	if got.LastSent.IsZero() {
		t.Error("LastSent not recorded")
	}
}
