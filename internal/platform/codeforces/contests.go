package codeforces

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/TeAnli/acm-bot/internal/contest"
)

// Contest is a raw contest.list entry. RelativeTimeSeconds is negative
// before the start and counts elapsed seconds afterwards.
type Contest struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Phase               string `json:"phase"`
	DurationSeconds     int64  `json:"durationSeconds"`
	StartTimeSeconds    int64  `json:"startTimeSeconds"`
	RelativeTimeSeconds int64  `json:"relativeTimeSeconds"`
}

// RatingChange is one user.rating entry. The API returns them oldest first.
type RatingChange struct {
	ContestID               int64  `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int    `json:"rank"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
}

// Contests returns the raw contest list. One malformed entry is skipped, the
// rest of the list survives.
func (c *Client) Contests(ctx context.Context, includeGym bool) ([]Contest, error) {
	params := url.Values{}
	params.Set("gym", strconv.FormatBool(includeGym))

	var raw []json.RawMessage
	if err := c.get(ctx, "/contest.list", params, &raw); err != nil {
		return nil, err
	}

	contests := make([]Contest, 0, len(raw))
	for _, entry := range raw {
		var cf Contest
		if err := json.Unmarshal(entry, &cf); err != nil {
			c.logger.Warn("skipping malformed contest entry", "error", err)
			continue
		}
		contests = append(contests, cf)
	}
	return contests, nil
}

// UserRating returns the rating change history for a handle.
func (c *Client) UserRating(ctx context.Context, handle string) ([]RatingChange, error) {
	params := url.Values{}
	params.Set("handle", handle)

	var changes []RatingChange
	if err := c.get(ctx, "/user.rating", params, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// ActiveContests fetches the contest list and classifies it against the
// relative offsets the API precomputes, dropping everything already over.
func (c *Client) ActiveContests(ctx context.Context) ([]contest.Classified, error) {
	raw, err := c.Contests(ctx, false)
	if err != nil {
		return nil, err
	}

	active := make([]contest.Classified, 0, 8)
	for _, cf := range raw {
		cl, ok := contest.ClassifyRelative(contest.Contest{
			Name:      cf.Name,
			ID:        cf.ID,
			StartTime: cf.StartTimeSeconds,
			Duration:  cf.DurationSeconds,
		}, cf.RelativeTimeSeconds)
		if !ok {
			continue
		}
		active = append(active, cl)
	}
	return active, nil
}
