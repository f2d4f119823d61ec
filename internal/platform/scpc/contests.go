package scpc

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/TeAnli/acm-bot/internal/contest"
)

// listEnvelope tolerates both response shapes the judge has shipped:
// records nested under data, or at the top level.
type listEnvelope struct {
	Data struct {
		Records []json.RawMessage `json:"records"`
	} `json:"data"`
	Records []json.RawMessage `json:"records"`
}

func (e *listEnvelope) records() []json.RawMessage {
	if len(e.Data.Records) > 0 {
		return e.Data.Records
	}
	return e.Records
}

// contestRecord is one raw contest row. Timestamp and id fields stay
// untyped until normalization; the judge is inconsistent about them.
type contestRecord struct {
	Title       string `json:"title"`
	ContestName string `json:"contestName"`
	StartTime   any    `json:"startTime"`
	EndTime     any    `json:"endTime"`
	Duration    any    `json:"duration"`
	ID          any    `json:"id"`
	ContestID   any    `json:"contestId"`
	CID         any    `json:"cid"`
}

// normalize maps a raw record onto the canonical contest shape. Missing
// names fall back to a placeholder; a missing duration is derived from the
// end timestamp and floored at zero.
func normalize(r contestRecord) contest.Contest {
	name := r.Title
	if name == "" {
		name = r.ContestName
	}
	if name == "" {
		name = "未命名比赛"
	}

	start := contest.ParseTime(r.StartTime)
	end := contest.ParseTime(r.EndTime)
	duration := intValue(r.Duration)
	if duration <= 0 {
		duration = max(end-start, 0)
	}

	id := intValue(r.ID)
	if id == 0 {
		id = intValue(r.ContestID)
	}
	if id == 0 {
		id = intValue(r.CID)
	}

	return contest.Contest{Name: name, ID: id, StartTime: start, Duration: duration}
}

// Contests returns one page of the contest list, normalized. Malformed rows
// are dropped, not fatal.
func (c *Client) Contests(ctx context.Context, page, limit int) ([]contest.Contest, error) {
	params := url.Values{}
	params.Set("currentPage", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var envelope listEnvelope
	if err := c.get(ctx, "/get-contest-list", params, &envelope); err != nil {
		return nil, err
	}
	return c.decodeRecords(envelope.records()), nil
}

// RecentContests returns the judge's curated recent-contest list.
func (c *Client) RecentContests(ctx context.Context) ([]contest.Contest, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/get-recent-contest", nil, &envelope); err != nil {
		return nil, err
	}
	return c.decodeRecords(envelope.Data), nil
}

func (c *Client) decodeRecords(raw []json.RawMessage) []contest.Contest {
	contests := make([]contest.Contest, 0, len(raw))
	for _, entry := range raw {
		var rec contestRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			c.logger.Warn("skipping malformed contest record", "error", err)
			continue
		}
		contests = append(contests, normalize(rec))
	}
	return contests
}

// ActiveContests fetches the first contest page and classifies it against
// the current wall clock, dropping ended and unclassifiable records.
func (c *Client) ActiveContests(ctx context.Context) ([]contest.Classified, error) {
	list, err := c.Contests(ctx, 0, 10)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	active := make([]contest.Classified, 0, len(list))
	for _, ct := range list {
		if cl, ok := contest.Classify(ct, now); ok {
			active = append(active, cl)
		}
	}
	return active, nil
}
