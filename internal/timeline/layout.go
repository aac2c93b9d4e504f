// Package timeline places subtitle entries on a proportional time axis.
package timeline

import (
	"errors"

	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timecode"
)

var (
	// ErrUnknownDuration is returned while the media duration is not known yet.
	// Nothing should be drawn in that state.
	ErrUnknownDuration = errors.New("timeline: media duration unknown")
	// ErrMalformedTime is returned when an entry's timestamp does not parse.
	ErrMalformedTime = errors.New("timeline: malformed timestamp")
)

// MinVisualWidthPx keeps very short entries clickable. It is applied by the
// view only; Placement.WidthPercent is never floored.
const MinVisualWidthPx = 2

// MaxDuration is the longest media duration accepted, in seconds (7 days).
// Longer values are treated as unknown so the ruler stays bounded.
const MaxDuration = 7 * 24 * 60 * 60

// Placement is an entry's horizontal position as percentages of the duration.
type Placement struct {
	LeftPercent  float64 `json:"leftPercent"`
	WidthPercent float64 `json:"widthPercent"`
	Malformed    bool    `json:"malformed,omitempty"`
}

// RenderWidth is the width to draw. A reversed entry has negative width and is
// drawn at the minimum visual width instead.
func (p Placement) RenderWidth() float64 {
	if p.WidthPercent < 0 {
		return 0
	}
	return p.WidthPercent
}

// Layout maps an entry onto [0, totalDuration].
func Layout(e subtitle.Entry, totalDuration float64) (Placement, error) {
	if !knownDuration(totalDuration) {
		return Placement{}, ErrUnknownDuration
	}

	start, end := e.Start(), e.End()
	if !timecode.Valid(start) || !timecode.Valid(end) {
		return Placement{Malformed: true}, nil
	}

	return Placement{
		LeftPercent:  100 * start / totalDuration,
		WidthPercent: 100 * (end - start) / totalDuration,
	}, nil
}

// SeekTarget is where playback goes when the entry is clicked.
func SeekTarget(e subtitle.Entry) (float64, error) {
	start := e.Start()
	if !timecode.Valid(start) {
		return 0, ErrMalformedTime
	}
	return start, nil
}

func knownDuration(d float64) bool {
	return timecode.Valid(d) && d > 0 && d <= MaxDuration
}
