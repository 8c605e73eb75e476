package utils

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// layouts accepted by NormalizeDate besides plain YYYY-MM-DD
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
	"2006/01/02",
	"2006-1-2",
}

// NormalizeDate renders a date as YYYY-MM-DD.
// Values already in that form pass through untouched. Anything else that
// parses is converted to UTC and reformatted. Unparseable input is returned
// unchanged; callers get whatever the server sent.
func NormalizeDate(s string) string {
	if isoDate.MatchString(s) {
		return s
	}
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate parses any of the accepted date layouts
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isoDate.MatchString(s) {
		t, err := time.Parse(DateLayout, s)
		return t, err == nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WeekList steps from minDate to maxDate in 7 day increments, both inclusive.
// It returns an empty list when minDate is after maxDate or either bound
// does not parse.
func WeekList(minDate, maxDate string) []string {
	weeks := []string{}

	from, ok := ParseDate(minDate)
	if !ok {
		return weeks
	}
	to, ok := ParseDate(maxDate)
	if !ok {
		return weeks
	}
	from, to = truncateDay(from), truncateDay(to)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 7) {
		weeks = append(weeks, d.Format(DateLayout))
	}
	return weeks
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
