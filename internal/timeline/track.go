package timeline

import (
	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timecode"
)

// LaneItem is one entry as drawn in a lane.
type LaneItem struct {
	Entry        subtitle.Entry `json:"entry"`
	Placement    Placement      `json:"placement"`
	StartSeconds float64        `json:"startSeconds"`
	EndSeconds   float64        `json:"endSeconds"`
	Active       bool           `json:"active"`
}

// Lane is one horizontal track of entries.
type Lane struct {
	Name     string     `json:"name"`
	Language string     `json:"language,omitempty"`
	Label    string     `json:"label,omitempty"`
	Items    []LaneItem `json:"items"`
}

// IsActive reports whether currentTime falls inside the entry, bounds included.
func IsActive(e subtitle.Entry, currentTime float64) bool {
	start, end := e.Start(), e.End()
	if !timecode.Valid(start) || !timecode.Valid(end) {
		return false
	}
	return start <= currentTime && currentTime <= end
}

// ActiveEntries returns every entry containing currentTime. Overlapping
// entries can all be active at once.
func ActiveEntries(entries []subtitle.Entry, currentTime float64) []subtitle.Entry {
	var active []subtitle.Entry
	for _, e := range entries {
		if IsActive(e, currentTime) {
			active = append(active, e)
		}
	}
	return active
}

// BuildLane lays out entries in insertion order. It returns false while the
// duration is unknown, in which case the lane must not be drawn.
func BuildLane(name string, entries []subtitle.Entry, totalDuration, currentTime float64) (Lane, bool) {
	if !knownDuration(totalDuration) {
		return Lane{}, false
	}

	lane := Lane{Name: name, Items: make([]LaneItem, 0, len(entries))}
	for _, e := range entries {
		p, _ := Layout(e, totalDuration)
		item := LaneItem{
			Entry:     e,
			Placement: p,
			Active:    IsActive(e, currentTime),
		}
		if !p.Malformed {
			item.StartSeconds = e.Start()
			item.EndSeconds = e.End()
		}
		lane.Items = append(lane.Items, item)
	}
	return lane, true
}
