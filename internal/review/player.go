package review

import (
	"errors"
	"fmt"

	"github.com/video-stream/subreview/internal/timecode"
	"github.com/video-stream/subreview/internal/timeline"
)

// PlaybackState is the mirrored state of the browser's media element.
type PlaybackState string

const (
	StatePaused  PlaybackState = "paused"
	StatePlaying PlaybackState = "playing"
)

// SkipStep is how far the skip buttons move playback, in seconds.
const SkipStep = 10

// Media element events reported by the browser.
const (
	EventLoadedMetadata = "loadedmetadata"
	EventTimeUpdate     = "timeupdate"
	EventPlay           = "play"
	EventPause          = "pause"
)

var ErrUnknownEvent = errors.New("unknown media event")

// Event is a media element event as posted by the review page.
type Event struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// Player mirrors playback. The media element owns the truth; user actions
// only predict what the element will report next.
type Player struct {
	State       PlaybackState `json:"state"`
	CurrentTime float64       `json:"currentTime"`
	Duration    float64       `json:"duration"`
}

func NewPlayer() Player {
	return Player{State: StatePaused}
}

func (p *Player) Play()  { p.State = StatePlaying }
func (p *Player) Pause() { p.State = StatePaused }

// Seek moves the playhead, clamped into the media's range.
func (p *Player) Seek(t float64) float64 {
	p.CurrentTime = p.clamp(t)
	return p.CurrentTime
}

// Skip moves the playhead by delta seconds.
func (p *Player) Skip(delta float64) float64 {
	return p.Seek(p.CurrentTime + delta)
}

// Apply folds a media element event into the mirror.
func (p *Player) Apply(ev Event) error {
	switch ev.Type {
	case EventLoadedMetadata:
		if !timecode.Valid(ev.Duration) || ev.Duration < 0 || ev.Duration > timeline.MaxDuration {
			p.Duration = 0
		} else {
			p.Duration = ev.Duration
		}
		p.CurrentTime = p.clamp(p.CurrentTime)
	case EventTimeUpdate:
		if timecode.Valid(ev.CurrentTime) {
			p.CurrentTime = p.clamp(ev.CurrentTime)
		}
	case EventPlay:
		p.Play()
	case EventPause:
		p.Pause()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

func (p *Player) clamp(t float64) float64 {
	if !timecode.Valid(t) || t < 0 {
		return 0
	}
	if p.Duration > 0 && t > p.Duration {
		return p.Duration
	}
	if t > timeline.MaxDuration {
		return timeline.MaxDuration
	}
	return t
}
