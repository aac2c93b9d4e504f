// Package review holds the state of one subtitle review editor: the two
// subtitle tracks and the mirrored playback clock.
package review

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/video-stream/subreview/internal/media"
	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timeline"
)

// Track identifies one of the two subtitle lanes.
type Track string

const (
	TrackOriginal   Track = "original"
	TrackTranslated Track = "translated"
)

// Tracks in display order.
var Tracks = []Track{TrackOriginal, TrackTranslated}

var (
	ErrUnknownTrack  = errors.New("unknown track")
	ErrEntryNotFound = errors.New("subtitle entry not found")
)

// ParseTrack validates a track name from a URL.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackOriginal, TrackTranslated:
		return Track(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
}

// TrackState is a loaded subtitle file.
type TrackState struct {
	Source   string           `json:"source,omitempty"`
	Language string           `json:"language,omitempty"`
	Label    string           `json:"label,omitempty"`
	Entries  []subtitle.Entry `json:"entries"`
}

// Video is the uploaded media file.
type Video struct {
	Name  string      `json:"name"`
	Path  string      `json:"-"`
	Size  int64       `json:"size"`
	Media *media.Info `json:"media,omitempty"`
}

// SavePayload is what the save action emits. Saving is not implemented, so
// both lists are always empty.
type SavePayload struct {
	Subtitle1 []subtitle.Entry `json:"subtitle1"`
	Subtitle2 []subtitle.Entry `json:"subtitle2"`
}

// Snapshot is a copy of a session's state, safe to use without the lock.
type Snapshot struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Video     *Video               `json:"video,omitempty"`
	Tracks    map[Track]TrackState `json:"tracks"`
	Player    Player               `json:"player"`
}

// Session is one editor instance. All state changes go through its methods.
type Session struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	touched   time.Time
	video     *Video
	tracks    map[Track]*TrackState
	player    Player
	now       func() time.Time
}

func newSession(id string, now func() time.Time) *Session {
	t := now()
	s := &Session{
		id:        id,
		createdAt: t,
		touched:   t,
		tracks:    make(map[Track]*TrackState, len(Tracks)),
		player:    NewPlayer(),
		now:       now,
	}
	for _, tr := range Tracks {
		s.tracks[tr] = &TrackState{Entries: []subtitle.Entry{}}
	}
	return s
}

func (s *Session) ID() string { return s.id }

// lastUsed is read by the store's sweeper.
func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() { s.touched = s.now() }

// SetVideo replaces the video. The old file, if any, is returned so the
// caller can remove it. Playback resets until the new media reports metadata.
func (s *Session) SetVideo(v Video) *Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.video
	s.video = &v
	s.player = NewPlayer()
	s.touch()
	return old
}

// Video returns the current video, or nil.
func (s *Session) Video() *Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video == nil {
		return nil
	}
	v := *s.video
	return &v
}

// LoadTrack replaces a track wholesale with freshly parsed entries.
// langHint may be empty, in which case the source filename is consulted.
func (s *Session) LoadTrack(tr Track, source, langHint string, entries []subtitle.Entry) TrackState {
	if langHint == "" {
		langHint = languageFromFilename(source)
	}
	tag, label := resolveLanguage(langHint)

	if entries == nil {
		entries = []subtitle.Entry{}
	}
	st := &TrackState{
		Source:   source,
		Language: tag,
		Label:    label,
		Entries:  entries,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[tr] = st
	s.touch()
	return copyTrack(st)
}

// Entries returns a copy of a track's entries.
func (s *Session) Entries(tr Track) []subtitle.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTrack(s.tracks[tr]).Entries
}

// ApplyEvent mirrors a media element event.
func (s *Session) ApplyEvent(ev Event) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.player.Apply(ev); err != nil {
		return s.player, err
	}
	s.touch()
	return s.player, nil
}

// Play, Pause, Skip and Seek are the user's transport controls.
func (s *Session) Play() Player {
	return s.update(func(p *Player) { p.Play() })
}

func (s *Session) Pause() Player {
	return s.update(func(p *Player) { p.Pause() })
}

func (s *Session) Skip(delta float64) Player {
	return s.update(func(p *Player) { p.Skip(delta) })
}

func (s *Session) Seek(t float64) Player {
	return s.update(func(p *Player) { p.Seek(t) })
}

func (s *Session) update(fn func(p *Player)) Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.player)
	s.touch()
	return s.player
}

// SeekToEntry moves playback to the start of an entry and returns the target.
func (s *Session) SeekToEntry(tr Track, id string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.tracks[tr].Entries {
		if e.ID != id {
			continue
		}
		target, err := timeline.SeekTarget(e)
		if err != nil {
			return 0, err
		}
		s.touch()
		return s.player.Seek(target), nil
	}
	return 0, fmt.Errorf("%w: %s/%s", ErrEntryNotFound, tr, id)
}

// Timeline lays out both tracks at the mirrored playback position.
func (s *Session) Timeline() timeline.View {
	s.mu.Lock()
	p := s.player
	s.mu.Unlock()
	return s.TimelineAt(p.CurrentTime)
}

// TimelineAt lays out both tracks at an arbitrary time without moving playback.
func (s *Session) TimelineAt(currentTime float64) timeline.View {
	s.mu.Lock()
	duration := s.player.Duration
	inputs := make([]timeline.TrackInput, 0, len(Tracks))
	for _, tr := range Tracks {
		st := s.tracks[tr]
		inputs = append(inputs, timeline.TrackInput{
			Name:     string(tr),
			Language: st.Language,
			Label:    st.Label,
			Entries:  st.Entries,
		})
	}
	s.mu.Unlock()

	return timeline.Build(inputs, duration, currentTime)
}

// Save emits the save payload. Nothing is stored.
func (s *Session) Save() SavePayload {
	return SavePayload{
		Subtitle1: []subtitle.Entry{},
		Subtitle2: []subtitle.Entry{},
	}
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		CreatedAt: s.createdAt,
		UpdatedAt: s.touched,
		Tracks:    make(map[Track]TrackState, len(s.tracks)),
		Player:    s.player,
	}
	if s.video != nil {
		v := *s.video
		snap.Video = &v
	}
	for tr, st := range s.tracks {
		snap.Tracks[tr] = copyTrack(st)
	}
	return snap
}

func copyTrack(st *TrackState) TrackState {
	out := *st
	out.Entries = append([]subtitle.Entry(nil), st.Entries...)
	if out.Entries == nil {
		out.Entries = []subtitle.Entry{}
	}
	return out
}
