package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// typeCounter tracks observed value categories for a column while loading.
type typeCounter struct {
	numCount  int
	intCount  int
	dateCount int
	boolCount int
	textCount int
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "01/02/2006", "2006/01/02", "1/2/2006", "1/2/06",
}

func (t *typeCounter) observe(s string) {
	low := strings.ToLower(s)
	if low == "true" || low == "false" || low == "yes" || low == "no" {
		t.boolCount++
		return
	}
	if f, ok := parseNumeric(s); ok {
		t.numCount++
		if math.Trunc(f) == f {
			t.intCount++
		}
		return
	}
	if _, ok := parseDatetime(s); ok {
		t.dateCount++
		return
	}
	t.textCount++
}

// kind decides the dominant storage kind for the column. Booleans are folded
// into categorical; mixed columns degrade to categorical so nothing is lost.
func (t *typeCounter) kind() Kind {
	nonEmpty := t.numCount + t.dateCount + t.boolCount + t.textCount
	if nonEmpty == 0 {
		return KindCategorical
	}
	if t.dateCount > t.numCount && t.dateCount >= t.textCount+t.boolCount {
		return KindDatetime
	}
	if t.numCount > t.textCount+t.boolCount && t.numCount >= t.dateCount {
		return KindNumeric
	}
	return KindCategorical
}

// parseNumeric parses a cell as a float, tolerating thousands separators,
// currency prefixes, and percent suffixes (percent scaled to fraction).
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSuffix(s, "%")
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$':
			return -1
		default:
			return r
		}
	}, s)
	f, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}

// parseDatetime parses a cell against a few common layouts.
func parseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
