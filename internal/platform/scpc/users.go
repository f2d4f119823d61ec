package scpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/TeAnli/acm-bot/internal/contest"
)

// User is a judge user's home-page profile.
type User struct {
	Username  string
	Nickname  string
	Signature string
	Total     int // total submissions
	Solved    int // accepted problems
	Avatar    string
}

// AcceptRatio returns the acceptance percentage, 0 when there are no
// submissions.
func (u User) AcceptRatio() float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Solved) / float64(u.Total) * 100
}

// WeekRankEntry is one row of the weekly accepted-problems leaderboard.
type WeekRankEntry struct {
	Username   string
	Avatar     string
	TitleName  string
	TitleColor string
	Accepted   int
}

// UpdatedProblem is a recently added or changed problem.
type UpdatedProblem struct {
	ID        int64
	ProblemID string
	Title     string
	Type      int
	Created   int64
	Modified  int64
	URL       string
}

// UserInfo fetches a user's home-page profile.
func (c *Client) UserInfo(ctx context.Context, username string) (*User, error) {
	params := url.Values{}
	params.Set("username", username)

	var envelope struct {
		Data *struct {
			Nickname   string `json:"nickname"`
			Signature  string `json:"signature"`
			Total      int    `json:"total"`
			SolvedList []any  `json:"solvedList"`
			Avatar     string `json:"avatar"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/get-user-home-info", params, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("user %q: no data in response", username)
	}

	d := envelope.Data
	nickname := d.Nickname
	if nickname == "" {
		nickname = username
	}
	return &User{
		Username:  username,
		Nickname:  nickname,
		Signature: d.Signature,
		Total:     d.Total,
		Solved:    len(d.SolvedList),
		Avatar:    c.absoluteURL(d.Avatar),
	}, nil
}

// WeekRank fetches the last-seven-days accepted-problems leaderboard.
func (c *Client) WeekRank(ctx context.Context) ([]WeekRankEntry, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/get-recent-seven-ac-rank", nil, &envelope); err != nil {
		return nil, err
	}

	entries := make([]WeekRankEntry, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var row struct {
			Username   string `json:"username"`
			Avatar     string `json:"avatar"`
			TitleName  string `json:"titleName"`
			TitleColor string `json:"titleColor"`
			AC         any    `json:"ac"`
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			c.logger.Warn("skipping malformed rank row", "error", err)
			continue
		}
		entries = append(entries, WeekRankEntry{
			Username:   row.Username,
			Avatar:     c.absoluteURL(row.Avatar),
			TitleName:  row.TitleName,
			TitleColor: row.TitleColor,
			Accepted:   int(intValue(row.AC)),
		})
	}
	return entries, nil
}

// UpdatedProblems fetches the recently added or modified problems.
func (c *Client) UpdatedProblems(ctx context.Context) ([]UpdatedProblem, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/get-recent-updated-problem", nil, &envelope); err != nil {
		return nil, err
	}

	problems := make([]UpdatedProblem, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var row struct {
			ID          any    `json:"id"`
			ProblemID   string `json:"problemId"`
			Title       string `json:"title"`
			Type        any    `json:"type"`
			GmtCreate   any    `json:"gmtCreate"`
			GmtModified any    `json:"gmtModified"`
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			c.logger.Warn("skipping malformed problem row", "error", err)
			continue
		}
		p := UpdatedProblem{
			ID:        intValue(row.ID),
			ProblemID: row.ProblemID,
			Title:     row.Title,
			Type:      int(intValue(row.Type)),
			Created:   contest.ParseTime(row.GmtCreate),
			Modified:  contest.ParseTime(row.GmtModified),
		}
		if p.ProblemID != "" {
			p.URL = c.absoluteURL("/problem/" + p.ProblemID)
		}
		problems = append(problems, p)
	}
	return problems, nil
}
