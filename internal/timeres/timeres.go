// Package timeres resolves Italian date/time clues in free text to
// ISO-8601 timestamps. Resolution is best-effort and never errors:
// a failed parse yields an absent result.
package timeres

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeClueRe = regexp.MustCompile(`(?i)\b(?:ore|alle|h\.?)\s*(\d{1,2})(?:[:.](\d{1,2}))?\b`)
	dateClueRe = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`)
	yearRe     = regexp.MustCompile(`\b([12]\d{3})\b`)
	monthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre)(?:\s+(\d{4}))?\b`)
	relativeRe = regexp.MustCompile(`(?i)\b(ieri|oggi|domani)\b`)
)

var months = map[string]time.Month{
	"gennaio": time.January, "febbraio": time.February, "marzo": time.March,
	"aprile": time.April, "maggio": time.May, "giugno": time.June,
	"luglio": time.July, "agosto": time.August, "settembre": time.September,
	"ottobre": time.October, "novembre": time.November, "dicembre": time.December,
}

// isoLayout matches the timestamp format of the identity contract
const isoLayout = "2006-01-02T15:04:05"

// Resolver turns textual clues into timestamps relative to a reference clock
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a resolver on the wall clock
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverAt creates a resolver with an injected clock, used to keep
// relative dates deterministic in tests
func NewResolverAt(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// Resolve finds the first date/time clue in the text and resolves a window
// of ±20 runes around it. The second return is false when nothing resolved.
func (r *Resolver) Resolve(text string) (string, bool) {
	window := clueWindow(text)
	if window == "" {
		return "", false
	}

	ref := r.now()
	date, haveDate := resolveDate(window, ref)
	hour, minute, haveTime := resolveClock(window)

	if !haveDate && !haveTime {
		return "", false
	}
	if !haveDate {
		date = ref
	}

	resolved := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return resolved.Format(isoLayout), true
}

// clueWindow returns ±20 runes around the first clue, or the whole text when
// only relative/month words are present, or empty when there is no clue
func clueWindow(text string) string {
	loc := timeClueRe.FindStringIndex(text)
	if loc == nil {
		loc = dateClueRe.FindStringIndex(text)
	}
	if loc == nil {
		if relativeRe.MatchString(text) || monthRe.MatchString(text) {
			return text
		}
		// A bare year is a clue on its own
		loc = yearRe.FindStringIndex(text)
	}
	if loc == nil {
		return ""
	}

	runes := []rune(text)
	start := len([]rune(text[:loc[0]])) - 20
	if start < 0 {
		start = 0
	}
	end := len([]rune(text[:loc[1]])) + 20
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

// resolveDate picks the most specific date clue in the window
func resolveDate(window string, ref time.Time) (time.Time, bool) {
	if m := dateClueRe.FindStringSubmatch(window); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := monthRe.FindStringSubmatch(window); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := months[strings.ToLower(m[2])]
		year := ref.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if day >= 1 && day <= 31 {
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := relativeRe.FindStringSubmatch(window); m != nil {
		base := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		switch strings.ToLower(m[1]) {
		case "ieri":
			return base.AddDate(0, 0, -1), true
		case "domani":
			return base.AddDate(0, 0, 1), true
		default:
			return base, true
		}
	}

	if m := yearRe.FindStringSubmatch(window); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// resolveClock extracts the hour/minute from a time clue
func resolveClock(window string) (hour, minute int, ok bool) {
	m := timeClueRe.FindStringSubmatch(window)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
