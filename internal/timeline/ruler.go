package timeline

import "github.com/video-stream/subreview/internal/timecode"

// Tick is one labelled mark on the ruler.
type Tick struct {
	Seconds float64 `json:"seconds"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// TickInterval picks the spacing between ruler marks for a duration.
func TickInterval(duration float64) float64 {
	switch {
	case duration > 300:
		return 30
	case duration > 60:
		return 10
	default:
		return 5
	}
}

// Ticks returns marks at 0, interval, 2*interval, ... up to and including the
// duration.
func Ticks(duration float64) []Tick {
	if !knownDuration(duration) {
		return nil
	}

	interval := TickInterval(duration)
	var ticks []Tick
	for i := 0; ; i++ {
		pos := float64(i) * interval
		if pos > duration {
			break
		}
		ticks = append(ticks, Tick{
			Seconds: pos,
			Percent: 100 * pos / duration,
			Label:   timecode.FormatClock(pos),
		})
	}
	return ticks
}

// Cursor positions the current-time marker.
func Cursor(currentTime, duration float64) (float64, bool) {
	if !knownDuration(duration) || !timecode.Valid(currentTime) {
		return 0, false
	}
	return 100 * currentTime / duration, true
}
