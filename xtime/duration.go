// Package xtime extends time.Duration parsing and formatting with calendar
// units.
package xtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Calendar units accepted in addition to the ones supported by
// time.ParseDuration. Months are 30 days and years are 365 days.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

//nolint:gochecknoglobals // Static lookup tables.
var (
	componentRx = regexp.MustCompile(`^(\d*\.\d+|\d+)(ns|us|µs|ms|s|m|h|d|D|w|W|M|y|Y)`)
	unitValues  = map[string]time.Duration{
		"ns": time.Nanosecond,
		"us": time.Microsecond,
		"µs": time.Microsecond,
		"ms": time.Millisecond,
		"s":  time.Second,
		"m":  time.Minute,
		"h":  time.Hour,
		"d":  Day, "D": Day,
		"w": Week, "W": Week,
		"M": Month,
		"y": Year, "Y": Year,
	}
)

// ParseDuration parses a duration string made of one or more decimal numbers,
// each followed by a unit, e.g. "10d", "-1.5w" or "3Y4M5d". Valid units are
// those of time.ParseDuration, plus "d"/"D", "w"/"W", "M" and "y"/"Y".
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0, fmt.Errorf("invalid duration '%s'", orig)
	}

	var total time.Duration
	for s != "" {
		m := componentRx.FindStringSubmatch(s)
		if m == nil {
			return 0, fmt.Errorf("invalid duration '%s'", orig)
		}
		unit := unitValues[m[2]]
		if !strings.Contains(m[1], ".") {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration '%s': %w", orig, err)
			}
			total += time.Duration(n) * unit
		} else {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration '%s': %w", orig, err)
			}
			total += time.Duration(n * float64(unit))
		}
		s = s[len(m[0]):]
	}

	if neg {
		total = -total
	}

	return total, nil
}

// FormatDuration formats a duration into a string with the largest units
// first, e.g. "10d", "-1w2d" or "3Y4M5d". The result can be parsed with
// ParseDuration. Units smaller than round are omitted after rounding d to it.
func FormatDuration(d, round time.Duration) string {
	if round > 0 {
		d = d.Round(round)
	}
	if d == 0 {
		return "0d"
	}

	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}

	units := []struct {
		name string
		dur  time.Duration
	}{
		{"Y", Year}, {"M", Month}, {"w", Week}, {"d", Day},
		{"h", time.Hour}, {"m", time.Minute}, {"s", time.Second},
		{"ms", time.Millisecond}, {"µs", time.Microsecond}, {"ns", time.Nanosecond},
	}
	for _, u := range units {
		if u.dur < round {
			break
		}
		if n := d / u.dur; n > 0 {
			fmt.Fprintf(&sb, "%d%s", n, u.name)
			d %= u.dur
		}
	}

	return sb.String()
}
