package codeforces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TeAnli/acm-bot/internal/contest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestActiveContests(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contest.list" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("gym"); got != "false" {
			t.Errorf("gym param = %q, want false", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"id": 42, "name": "Round X", "durationSeconds": 7200, "startTimeSeconds": 1750000000, "relativeTimeSeconds": -1800},
				{"id": 41, "name": "Round W", "durationSeconds": 7200, "startTimeSeconds": 1749000000, "relativeTimeSeconds": 999999},
				{"id": 40, "name": "Round V", "durationSeconds": 7200, "startTimeSeconds": 1749500000, "relativeTimeSeconds": 600}
			]
		}`))
	})

	active, err := client.ActiveContests(context.Background())
	if err != nil {
		t.Fatalf("ActiveContests: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d active contests, want 2 (ended one excluded)", len(active))
	}

	if active[0].Contest.ID != 42 || active[0].Phase != contest.Upcoming || active[0].Remaining != 1800 {
		t.Errorf("first contest = %+v", active[0])
	}
	if active[1].Contest.ID != 40 || active[1].Phase != contest.Running || active[1].Remaining != 6600 {
		t.Errorf("second contest = %+v", active[1])
	}
}

func TestContestsSkipsMalformedEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"id": "not-a-number", "name": 3},
				{"id": 7, "name": "Good One", "durationSeconds": 3600, "relativeTimeSeconds": -60}
			]
		}`))
	})

	contests, err := client.Contests(context.Background(), false)
	if err != nil {
		t.Fatalf("Contests: %v", err)
	}
	if len(contests) != 1 || contests[0].ID != 7 {
		t.Fatalf("want the single well-formed entry, got %+v", contests)
	}
}

func TestFailedStatusSurfacesComment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "FAILED", "comment": "handle: not found"}`))
	})

	_, err := client.UserRating(context.Background(), "nobody")
	if err == nil {
		t.Fatal("want error for FAILED status")
	}
}

func TestNon200IsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	if _, err := client.ActiveContests(context.Background()); err == nil {
		t.Fatal("want error for HTTP 503")
	}
}

func TestUserRating(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("handle"); got != "tourist" {
			t.Errorf("handle param = %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"contestId": 1, "contestName": "Old Round", "handle": "tourist", "rank": 2, "oldRating": 0, "newRating": 1500, "ratingUpdateTimeSeconds": 1600000000},
				{"contestId": 9, "contestName": "New Round", "handle": "tourist", "rank": 1, "oldRating": 1500, "newRating": 1620, "ratingUpdateTimeSeconds": 1700000000}
			]
		}`))
	})

	changes, err := client.UserRating(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("UserRating: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	last := changes[len(changes)-1]
	if last.NewRating != 1620 || last.ContestName != "New Round" {
		t.Errorf("latest change = %+v", last)
	}
}
