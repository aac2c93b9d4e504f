// Package timecode converts between SRT timestamps and seconds, and formats
// seconds for the review page.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTime converts an SRT timestamp ("HH:MM:SS,mmm") to seconds.
//
// The string is split on ':' and ',' and the first four fields are read as
// hours, minutes, seconds and milliseconds. Each field is read leniently: leading
// whitespace and an optional sign are accepted and anything after the digits is
// ignored. There is no range validation. A missing or non-numeric field makes the
// whole result NaN; use Valid before doing arithmetic with it.
func ParseTime(s string) float64 {
	parts := strings.Split(strings.ReplaceAll(s, ",", ":"), ":")

	var fields [4]int
	for i := range fields {
		if i >= len(parts) {
			return math.NaN()
		}
		v, ok := leadingInt(parts[i])
		if !ok {
			return math.NaN()
		}
		fields[i] = v
	}

	return float64(fields[0])*3600 + float64(fields[1])*60 + float64(fields[2]) + float64(fields[3])/1000
}

// Valid reports whether seconds is a usable, finite value.
func Valid(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0)
}

// FormatTime renders seconds as "MM:SS.D". There is no hour field, so an hour
// long video shows "60:00.0" and up.
func FormatTime(seconds float64) string {
	if !Valid(seconds) || seconds < 0 {
		seconds = 0
	}
	minutes := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	tenths := int64(math.Floor(math.Mod(seconds, 1) * 10))
	return fmt.Sprintf("%02d:%02d.%d", minutes, secs, tenths)
}

// FormatClock renders seconds as "MM:SS" for ruler labels.
func FormatClock(seconds float64) string {
	if !Valid(seconds) || seconds < 0 {
		seconds = 0
	}
	minutes := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatSRT renders seconds as an SRT timestamp, rounded to the millisecond.
func FormatSRT(seconds float64) string {
	if !Valid(seconds) || seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	h := totalMs / 3600000
	totalMs %= 3600000
	m := totalMs / 60000
	totalMs %= 60000
	s := totalMs / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// leadingInt reads an optionally signed run of digits at the start of s.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
