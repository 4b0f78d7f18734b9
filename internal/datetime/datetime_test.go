package datetime

import (
	"strings"
	"testing"
	"time"
)

const tz = "America/Chicago"

func TestParseSentinelTime(t *testing.T) {
	res, ok := Parse("2025-07-30", "", tz)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if !res.Sentinel {
		t.Error("expected sentinel flag for date-only input")
	}
	if !strings.HasSuffix(res.Local, SentinelTime) {
		t.Errorf("local time %q should end in sentinel %q", res.Local, SentinelTime)
	}
	if res.Local != "2025-07-30 "+SentinelTime {
		t.Errorf("unexpected local representation %q", res.Local)
	}
}

func TestParseDSTOffsets(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantUTC string
	}{
		// July is CDT: 19:00 local -> 00:00 UTC next day.
		{"summer CDT", "2025-07-30 19:00:00", "2025-07-31T00:00:00Z"},
		// January is CST: 19:00 local -> 01:00 UTC next day.
		{"winter CST", "2025-01-15 19:00:00", "2025-01-16T01:00:00Z"},
		// Late March falls inside the daylight window of the approximation.
		{"late March CDT", "2025-03-20 12:00:00", "2025-03-20T17:00:00Z"},
		// Early March stays standard.
		{"early March CST", "2025-03-05 12:00:00", "2025-03-05T18:00:00Z"},
		// November 1 is still daylight, November 2 onward is standard.
		{"November 1 CDT", "2025-11-01 12:00:00", "2025-11-01T17:00:00Z"},
		{"November 10 CST", "2025-11-10 12:00:00", "2025-11-10T18:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Parse(tt.date, "", tz)
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.date)
			}
			want, err := time.Parse(time.RFC3339, tt.wantUTC)
			if err != nil {
				t.Fatal(err)
			}
			if !res.UTC.Equal(want) {
				t.Errorf("Parse(%q).UTC = %v, want %v", tt.date, res.UTC, want)
			}
		})
	}
}

func TestParseSeparateTime(t *testing.T) {
	res, ok := Parse("2025-07-30", "19:00", tz)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if res.Sentinel {
		t.Error("explicit time should not be flagged as sentinel")
	}
	if res.Local != "2025-07-30 19:00:00" {
		t.Errorf("unexpected local %q", res.Local)
	}
	want := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	if !res.UTC.Equal(want) {
		t.Errorf("UTC = %v, want %v", res.UTC, want)
	}
}

func TestParseLenientFallback(t *testing.T) {
	tests := []struct {
		in        string
		wantLocal string
	}{
		{"July 30, 2025", "2025-07-30 " + SentinelTime},
		{"Jul 30, 2025", "2025-07-30 " + SentinelTime},
		{"07/30/2025", "2025-07-30 " + SentinelTime},
	}

	for _, tt := range tests {
		res, ok := Parse(tt.in, "", tz)
		if !ok {
			t.Errorf("Parse(%q) failed, want success", tt.in)
			continue
		}
		if res.Local != tt.wantLocal {
			t.Errorf("Parse(%q).Local = %q, want %q", tt.in, res.Local, tt.wantLocal)
		}
	}
}

func TestParseFailsClosed(t *testing.T) {
	bad := []string{
		"",
		"next Tuesday",
		"30-07-2025",
		"2025-13-40",
		"garbage",
	}
	for _, in := range bad {
		if _, ok := Parse(in, "", tz); ok {
			t.Errorf("Parse(%q) should fail closed", in)
		}
	}

	// Unparseable separate time is also a failure, not a silent sentinel.
	if _, ok := Parse("2025-07-30", "around 7ish", tz); ok {
		t.Error("unparseable time string should fail closed")
	}
}

func TestParseMidnightIsNotSentinel(t *testing.T) {
	res, ok := Parse("2025-07-30 00:00:00", "", tz)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if res.Sentinel {
		t.Error("explicit midnight must not be treated as unknown time")
	}
	if res.Local != "2025-07-30 00:00:00" {
		t.Errorf("unexpected local %q", res.Local)
	}
}

func TestIsPast(t *testing.T) {
	ref := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	past, _ := Parse("2025-07-01", "", tz)
	future, _ := Parse("2025-09-01", "", tz)

	if !past.IsPast(ref) {
		t.Error("July event should be past an August reference")
	}
	if future.IsPast(ref) {
		t.Error("September event should not be past an August reference")
	}
}
