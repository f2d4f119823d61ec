// Package contest defines the canonical contest timing model shared by all
// platform adapters. Adapters normalize their upstream payloads into Contest
// values at the boundary; classification, sorting, and rendering never touch
// raw payloads.
//
// Upstreams encode timing two ways. Codeforces reports a signed relative
// offset (negative before the start, elapsed seconds after); SCPC reports
// absolute start/end timestamps. ClassifyRelative and Classify unify both
// into the same Classified shape, so everything downstream is identical.
package contest

// Phase is the lifecycle state of a contest at one evaluation instant.
// Contests that already ended (or whose timing is unknown) are excluded
// during classification and never reach this type.
type Phase int

const (
	Upcoming Phase = iota
	Running
)

// Localized state words. WordEnded is reserved for the icon table; ended
// contests are filtered out before rendering.
const (
	WordUpcoming = "即将开始"
	WordRunning  = "进行中"
	WordEnded    = "已结束"
)

// Word returns the localized state word for the phase.
func (p Phase) Word() string {
	switch p {
	case Upcoming:
		return WordUpcoming
	case Running:
		return WordRunning
	}
	return ""
}

// Remaining-time labels shown before the humanized countdown.
const (
	LabelUntilStart = "据开始还剩"
	LabelUntilEnd   = "距离结束"
)

// Contest is the canonical, source-agnostic timing record.
//
// A StartTime of 0 means "unknown". A genuine 1970-01-01 start is
// indistinguishable and also treated as unknown; classification excludes
// such records instead of guessing.
type Contest struct {
	Name      string
	ID        int64 // upstream numeric id; 0 when the source has none
	StartTime int64 // epoch seconds; 0 = unknown
	Duration  int64 // seconds, never negative
}

// Classified couples a contest with its phase at one evaluation instant.
// Values are recomputed on every pass and discarded after rendering.
type Classified struct {
	Contest   Contest
	Phase     Phase
	Remaining int64 // seconds until start (Upcoming) or end (Running)
	Label     string
}

// Classify evaluates a contest with absolute timing against now. The second
// return is false when the contest already ended or its timing is unknown;
// such records must not be displayed or alerted.
func Classify(c Contest, now int64) (Classified, bool) {
	end := c.StartTime + c.Duration
	switch {
	case c.StartTime != 0 && now < c.StartTime:
		return Classified{c, Upcoming, c.StartTime - now, LabelUntilStart}, true
	case c.StartTime != 0 && end != 0 && c.StartTime <= now && now < end:
		return Classified{c, Running, max(end-now, 0), LabelUntilEnd}, true
	}
	return Classified{}, false
}

// ClassifyRelative evaluates a contest whose upstream reports a signed
// relative offset instead of absolute timestamps: negative means seconds
// until the start, non-negative means seconds elapsed since it.
func ClassifyRelative(c Contest, relative int64) (Classified, bool) {
	switch {
	case relative < 0:
		return Classified{c, Upcoming, -relative, LabelUntilStart}, true
	case relative < c.Duration:
		return Classified{c, Running, max(c.Duration-relative, 0), LabelUntilEnd}, true
	}
	return Classified{}, false
}
