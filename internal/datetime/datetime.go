// Package datetime converts loosely-formatted event date/time strings into a
// canonical UTC instant plus a local wall-clock representation. Listing pages
// rarely agree on a format, and many publish a date with no time at all; the
// sentinel time below marks that case for downstream readers.
package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SentinelTime is the local wall-clock time recorded when a listing supplies
// a date but no time. The odd literal is deliberate: downstream readers use
// it to tell "time unknown" apart from a real midnight or 7 PM event, so it
// must never change.
const SentinelTime = "19:31:58"

const (
	sentinelHour   = 19
	sentinelMinute = 31
	sentinelSecond = 58
)

// LocalLayout is the wall-clock format stored alongside the UTC instant.
const LocalLayout = "2006-01-02 15:04:05"

var (
	dateOnlyRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dateTimeRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2})(?::(\d{2}))?$`)
	timeOnlyRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// lenientLayouts are tried, in order, when the input is not in canonical
// form. Layouts carrying a clock are listed before date-only ones.
var lenientLayouts = []struct {
	layout  string
	hasTime bool
}{
	{time.RFC3339, true},
	{"2006-01-02 15:04:05 MST", true},
	{"January 2, 2006 3:04 PM", true},
	{"Jan 2, 2006 3:04 PM", true},
	{"January 2, 2006", false},
	{"January 2 2006", false},
	{"Jan 2, 2006", false},
	{"Jan 2 2006", false},
	{"01/02/2006", false},
	{"1/2/2006", false},
	{"2006/01/02", false},
}

// Result is a fully normalized instant.
type Result struct {
	UTC      time.Time
	Local    string // wall clock in the named zone, LocalLayout format
	Zone     string
	Sentinel bool // true when the sentinel time was substituted
}

// Parse normalizes dateStr (canonically "YYYY-MM-DD", optionally with an
// attached "HH:MM[:SS]") and an optional separate timeStr into a UTC instant
// for the named zone. It fails closed: any input that cannot be parsed yields
// ok=false rather than a guessed instant.
func Parse(dateStr, timeStr, zone string) (Result, bool) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" {
		return Result{}, false
	}

	var local time.Time
	var hasClock bool

	switch {
	case dateOnlyRe.MatchString(dateStr):
		t, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return Result{}, false
		}
		local = t
	case dateTimeRe.MatchString(dateStr):
		m := dateTimeRe.FindStringSubmatch(dateStr)
		sec := m[6]
		if sec == "" {
			sec = "00"
		}
		t, err := time.Parse(LocalLayout, fmt.Sprintf("%s-%s-%s %s:%s:%s", m[1], m[2], m[3], m[4], m[5], sec))
		if err != nil {
			return Result{}, false
		}
		local = t
		hasClock = true
	default:
		t, withTime, ok := parseLenient(dateStr)
		if !ok {
			return Result{}, false
		}
		local = t
		hasClock = withTime
	}

	if !hasClock && timeStr != "" {
		m := timeOnlyRe.FindStringSubmatch(timeStr)
		if m == nil {
			return Result{}, false
		}
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		s := 0
		if m[3] != "" {
			s, _ = strconv.Atoi(m[3])
		}
		if h > 23 || min > 59 || s > 59 {
			return Result{}, false
		}
		local = time.Date(local.Year(), local.Month(), local.Day(), h, min, s, 0, time.UTC)
		hasClock = true
	}

	sentinel := false
	if !hasClock {
		local = time.Date(local.Year(), local.Month(), local.Day(),
			sentinelHour, sentinelMinute, sentinelSecond, 0, time.UTC)
		sentinel = true
	}

	offset := offsetHours(local)
	utc := local.Add(time.Duration(-offset) * time.Hour)

	return Result{
		UTC:      utc,
		Local:    local.Format(LocalLayout),
		Zone:     zone,
		Sentinel: sentinel,
	}, true
}

func parseLenient(s string) (time.Time, bool, bool) {
	for _, l := range lenientLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.hasTime, true
		}
	}
	return time.Time{}, false, false
}

// offsetHours returns the UTC offset for a Central wall-clock instant using a
// fixed-calendar approximation of the U.S. DST rule: daylight (-5) for
// April through October plus the late-March and earliest-November days that
// are always inside the true transition window, standard (-6) otherwise.
// Days 1-14 of March and 2-7 of November are resolved to standard time even
// though the authoritative rule (second Sunday in March, first Sunday in
// November) may disagree by up to a week.
func offsetHours(local time.Time) int {
	m := local.Month()
	switch {
	case m >= time.April && m <= time.October:
		return -5
	case m == time.March && local.Day() >= 15:
		return -5
	case m == time.November && local.Day() <= 1:
		return -5
	default:
		return -6
	}
}

// IsPast reports whether r starts before ref. Used to drop stale event
// candidates against the run's reference time.
func (r Result) IsPast(ref time.Time) bool {
	return r.UTC.Before(ref)
}
