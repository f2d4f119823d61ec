package contest

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// timeLayout is the wall-clock format for contest start times, rendered in
// the server's local zone.
const timeLayout = "2006-01-02 15:04"

// Icon returns the state icon shown next to the localized state word.
func Icon(word string) string {
	switch word {
	case WordUpcoming:
		return "⏳"
	case WordRunning:
		return "🟢"
	case WordEnded:
		return "🔴"
	}
	return "ℹ️"
}

// FormatTimestamp renders an epoch as local wall-clock time.
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format(timeLayout)
}

// FormatHours renders a second count as fractional hours.
func FormatHours(seconds int64, precision int) string {
	return fmt.Sprintf("%.*f", precision, float64(seconds)/3600)
}

// FormatRelative humanizes a remaining-seconds value. Week and day buckets
// round up so "6 days 23 hours" reads as 7 days, never 6; anything under a
// day stays in fractional hours.
func FormatRelative(seconds int64, precision int) string {
	hours := float64(seconds) / 3600
	if hours >= 24*7 {
		return fmt.Sprintf("%d 周", int(math.Ceil(hours/(24*7))))
	}
	if hours >= 24 {
		return fmt.Sprintf("%d 天", int(math.Ceil(hours/24)))
	}
	return fmt.Sprintf("%.*f 小时", precision, hours)
}

// Block renders the fixed five-line report for one classified contest.
// The id suffix is appended only when requested and the source has one.
func Block(c Classified, includeID bool) string {
	title := c.Contest.Name
	if includeID && c.Contest.ID != 0 {
		title = fmt.Sprintf("%s (ID: %d)", title, c.Contest.ID)
	}
	word := c.Phase.Word()
	return fmt.Sprintf(
		"比赛名称:\n%s\n状态: %s %s\n开始时间: %s\n%s: %s\n比赛时长: %s 小时",
		title,
		Icon(word), word,
		FormatTimestamp(c.Contest.StartTime),
		c.Label, FormatRelative(c.Remaining, 1),
		FormatHours(c.Contest.Duration, 1),
	)
}

// SortByUrgency orders contests by ascending remaining time, nearest event
// first. The sort is stable: ties keep their upstream order.
func SortByUrgency(items []Classified) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Remaining < items[j].Remaining
	})
}

// Render sorts by urgency and renders every contest into its text block.
// An empty input yields an empty slice; the caller decides what "nothing to
// show" looks like.
func Render(items []Classified, includeID bool) []string {
	SortByUrgency(items)
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, Block(it, includeID))
	}
	return blocks
}
