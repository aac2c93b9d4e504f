package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-stream/subreview/internal/subtitle"
	"github.com/video-stream/subreview/internal/timeline"
)

const sampleSRT = "1\n00:00:00,000 --> 00:00:02,000\nHello\n\n2\n00:00:02,500 --> 00:00:04,000\nWorld\n"

func TestParseTrack(t *testing.T) {
	tr, err := ParseTrack("translated")
	require.NoError(t, err)
	assert.Equal(t, TrackTranslated, tr)

	_, err = ParseTrack("third")
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestSessionTimelineSuppressedUntilMetadata(t *testing.T) {
	sess := NewStore().Create()
	sess.LoadTrack(TrackOriginal, "clip.srt", "", subtitle.Parse(sampleSRT))

	v := sess.Timeline()
	assert.False(t, v.Ready)
	assert.Empty(t, v.Lanes)

	_, err := sess.ApplyEvent(Event{Type: EventLoadedMetadata, Duration: 10})
	require.NoError(t, err)
	_, err = sess.ApplyEvent(Event{Type: EventTimeUpdate, CurrentTime: 1.5})
	require.NoError(t, err)

	v = sess.Timeline()
	require.True(t, v.Ready)
	require.Len(t, v.Lanes, 2)
	assert.Equal(t, "original", v.Lanes[0].Name)
	require.Len(t, v.Lanes[0].Items, 2)
	assert.True(t, v.Lanes[0].Items[0].Active)
	assert.False(t, v.Lanes[0].Items[1].Active)
	assert.Empty(t, v.Lanes[1].Items)

	at := sess.TimelineAt(3)
	assert.False(t, at.Lanes[0].Items[0].Active)
	assert.True(t, at.Lanes[0].Items[1].Active)
	assert.Equal(t, 1.5, sess.Snapshot().Player.CurrentTime)
}

func TestSessionLoadTrackReplacesWholesale(t *testing.T) {
	sess := NewStore().Create()
	sess.LoadTrack(TrackTranslated, "a.srt", "", subtitle.Parse(sampleSRT))
	require.Len(t, sess.Entries(TrackTranslated), 2)

	st := sess.LoadTrack(TrackTranslated, "b.srt", "", subtitle.Parse("9\n00:00:01,000 --> 00:00:02,000\nOnly\n"))
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "Only", sess.Entries(TrackTranslated)[0].Text)
}

func TestSessionLoadTrackLanguage(t *testing.T) {
	sess := NewStore().Create()

	st := sess.LoadTrack(TrackTranslated, "clip.ko.srt", "", nil)
	assert.Equal(t, "ko", st.Language)
	assert.Equal(t, "Korean", st.Label)
	assert.NotNil(t, st.Entries)

	st = sess.LoadTrack(TrackOriginal, "clip.srt", "en", nil)
	assert.Equal(t, "en", st.Language)
	assert.Equal(t, "English", st.Label)

	st = sess.LoadTrack(TrackOriginal, "clip.v2.srt", "", nil)
	assert.Empty(t, st.Language)
}

func TestSessionSeekToEntry(t *testing.T) {
	sess := NewStore().Create()
	sess.LoadTrack(TrackOriginal, "clip.srt", "", subtitle.Parse(sampleSRT+"\n3\nlater --> never\nBroken\n"))
	_, err := sess.ApplyEvent(Event{Type: EventLoadedMetadata, Duration: 10})
	require.NoError(t, err)

	got, err := sess.SeekToEntry(TrackOriginal, "2")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
	assert.Equal(t, 2.5, sess.Snapshot().Player.CurrentTime)

	_, err = sess.SeekToEntry(TrackOriginal, "3")
	assert.ErrorIs(t, err, timeline.ErrMalformedTime)

	_, err = sess.SeekToEntry(TrackTranslated, "1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestSessionSetVideoResetsPlayback(t *testing.T) {
	sess := NewStore().Create()
	assert.Nil(t, sess.SetVideo(Video{Name: "a.mp4", Path: "/tmp/a.mp4"}))
	_, err := sess.ApplyEvent(Event{Type: EventLoadedMetadata, Duration: 10})
	require.NoError(t, err)
	sess.Play()

	old := sess.SetVideo(Video{Name: "b.mp4", Path: "/tmp/b.mp4"})
	require.NotNil(t, old)
	assert.Equal(t, "a.mp4", old.Name)

	p := sess.Snapshot().Player
	assert.Equal(t, StatePaused, p.State)
	assert.Zero(t, p.Duration)
	assert.Equal(t, "b.mp4", sess.Video().Name)
}

func TestSessionSaveIsEmpty(t *testing.T) {
	sess := NewStore().Create()
	sess.LoadTrack(TrackOriginal, "clip.srt", "", subtitle.Parse(sampleSRT))

	payload := sess.Save()
	assert.NotNil(t, payload.Subtitle1)
	assert.Empty(t, payload.Subtitle1)
	assert.Empty(t, payload.Subtitle2)
}

func TestStoreLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.now = func() time.Time { return now }

	a := store.Create()
	b := store.Create()
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	now = now.Add(time.Hour)
	b.Play()

	expired := store.Sweep(30 * time.Minute)
	require.Len(t, expired, 1)
	assert.Equal(t, a.ID(), expired[0].ID())
	_, err = store.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Delete(b.ID())
	require.NoError(t, err)
	_, err = store.Delete(b.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.Len())
}
