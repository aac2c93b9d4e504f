package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/video-stream/subreview/internal/media"
	"github.com/video-stream/subreview/internal/review"
	"github.com/video-stream/subreview/internal/storage"
	"github.com/video-stream/subreview/internal/timecode"
	"github.com/video-stream/subreview/internal/timeline"
)

type ReviewHandler struct {
	sessions    *review.Store
	files       *storage.Store
	probe       func(ctx context.Context, path string) (*media.Info, error)
	log         *zap.Logger
	maxUpload   int64
	maxSubtitle int64
}

func NewReviewHandler(sessions *review.Store, files *storage.Store, log *zap.Logger, maxUpload, maxSubtitle int64) *ReviewHandler {
	return &ReviewHandler{
		sessions:    sessions,
		files:       files,
		probe:       media.Probe,
		log:         log,
		maxUpload:   maxUpload,
		maxSubtitle: maxSubtitle,
	}
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (h *ReviewHandler) session(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (h *ReviewHandler) track(w http.ResponseWriter, r *http.Request) (review.Track, bool) {
	tr, err := review.ParseTrack(chi.URLParam(r, "track"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return "", false
	}
	return tr, true
}

// CreateSession starts an empty editor.
func (h *ReviewHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	h.log.Info("review session created", zap.String("session", sess.ID()))
	jsonResponse(w, sess.Snapshot(), http.StatusCreated)
}

// ListSessions returns all live sessions
func (h *ReviewHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.sessions.List(), http.StatusOK)
}

func (h *ReviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	jsonResponse(w, sess.Snapshot(), http.StatusOK)
}

// DeleteSession drops the editor and its uploaded video.
func (h *ReviewHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Delete(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	if err := h.files.RemoveSession(sess.ID()); err != nil {
		h.log.Warn("remove session files", zap.String("session", sess.ID()), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Timeline returns the laid-out tracks. With ?at=seconds the layout is
// computed for that instant without moving playback.
func (h *ReviewHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	at := r.URL.Query().Get("at")
	if at == "" {
		jsonResponse(w, sess.Timeline(), http.StatusOK)
		return
	}
	t, err := strconv.ParseFloat(at, 64)
	if err != nil || !timecode.Valid(t) || t < 0 || t > timeline.MaxDuration {
		jsonError(w, "invalid 'at' parameter", http.StatusBadRequest)
		return
	}
	jsonResponse(w, sess.TimelineAt(t), http.StatusOK)
}

type playbackResponse struct {
	Player   review.Player `json:"player"`
	Timeline timeline.View `json:"timeline"`
}

// Event mirrors a media element event and returns the updated timeline.
func (h *ReviewHandler) Event(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var ev review.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	player, err := sess.ApplyEvent(ev)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev.Type == review.EventLoadedMetadata {
		h.log.Debug("media metadata", zap.String("session", sess.ID()), zap.Float64("duration", player.Duration))
	}
	jsonResponse(w, playbackResponse{Player: player, Timeline: sess.Timeline()}, http.StatusOK)
}

type playerRequest struct {
	Action  string  `json:"action"`
	Seconds float64 `json:"seconds"`
}

// Player applies a transport control: play, pause, skip or seek.
func (h *ReviewHandler) Player(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var player review.Player
	switch req.Action {
	case "play":
		player = sess.Play()
	case "pause":
		player = sess.Pause()
	case "skip":
		delta := req.Seconds
		if delta == 0 {
			delta = review.SkipStep
		}
		player = sess.Skip(delta)
	case "seek":
		player = sess.Seek(req.Seconds)
	default:
		jsonError(w, "unknown action: "+req.Action, http.StatusBadRequest)
		return
	}
	jsonResponse(w, playbackResponse{Player: player, Timeline: sess.Timeline()}, http.StatusOK)
}

// SeekToEntry handles a click on a subtitle: playback jumps to its start.
func (h *ReviewHandler) SeekToEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	tr, ok := h.track(w, r)
	if !ok {
		return
	}

	// chi matches on the raw path, so an escaped ID such as "%231" arrives as is.
	entryID, err := url.PathUnescape(chi.URLParam(r, "entryID"))
	if err != nil {
		jsonError(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	target, err := sess.SeekToEntry(tr, entryID)
	switch {
	case errors.Is(err, review.ErrEntryNotFound):
		jsonError(w, "entry not found", http.StatusNotFound)
		return
	case errors.Is(err, timeline.ErrMalformedTime):
		jsonError(w, "entry has a malformed start time", http.StatusUnprocessableEntity)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"seconds": target,
		"label":   timecode.FormatTime(target),
	}, http.StatusOK)
}

// Save is a stub: it returns empty subtitle lists and stores nothing.
func (h *ReviewHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	jsonResponse(w, sess.Save(), http.StatusOK)
}
