package timeline

import (
	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timecode"
)

// View is everything needed to draw the timeline at one instant.
type View struct {
	Ready         bool    `json:"ready"`
	TotalDuration float64 `json:"totalDuration"`
	CurrentTime   float64 `json:"currentTime"`
	CurrentLabel  string  `json:"currentLabel"`
	DurationLabel string  `json:"durationLabel"`
	Cursor        float64 `json:"cursor"`
	Interval      float64 `json:"interval,omitempty"`
	Ticks         []Tick  `json:"ticks"`
	Lanes         []Lane  `json:"lanes"`
}

// TrackInput names a lane and its entries.
type TrackInput struct {
	Name     string
	Language string
	Label    string
	Entries  []subtitle.Entry
}

// Build assembles the ruler, cursor and lanes. With an unknown duration the
// view is not Ready and carries no ticks or lanes.
func Build(tracks []TrackInput, totalDuration, currentTime float64) View {
	v := View{
		TotalDuration: totalDuration,
		CurrentTime:   currentTime,
		CurrentLabel:  timecode.FormatTime(currentTime),
		DurationLabel: timecode.FormatTime(totalDuration),
		Ticks:         []Tick{},
		Lanes:         []Lane{},
	}

	if !knownDuration(totalDuration) {
		return v
	}
	v.Ready = true
	v.Cursor, _ = Cursor(currentTime, totalDuration)
	v.Interval = TickInterval(totalDuration)
	v.Ticks = Ticks(totalDuration)

	for _, t := range tracks {
		lane, _ := BuildLane(t.Name, t.Entries, totalDuration, currentTime)
		lane.Language = t.Language
		lane.Label = t.Label
		v.Lanes = append(v.Lanes, lane)
	}
	return v
}
