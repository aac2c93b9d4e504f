package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/video-stream/subreview/internal/media"
	"github.com/video-stream/subreview/internal/review"
	"github.com/video-stream/subreview/internal/storage"
	"github.com/video-stream/subreview/internal/subtitle"
)

const probeTimeout = 15 * time.Second

// UploadVideo streams a multipart "file" part to disk and makes it the
// session's video.
func (h *ReviewHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	mr, err := r.MultipartReader()
	if err != nil {
		jsonError(w, "expected multipart upload", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			jsonError(w, "missing file field", http.StatusBadRequest)
			return
		}
		if err != nil {
			jsonError(w, "invalid multipart body", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		path, size, err := h.files.SaveVideo(sess.ID(), part.FileName(), part)
		part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.Is(err, storage.ErrUnsupportedMedia):
				jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
			case errors.As(err, &maxErr):
				jsonError(w, "video too large", http.StatusRequestEntityTooLarge)
			default:
				h.log.Error("save video", zap.String("session", sess.ID()), zap.Error(err))
				jsonError(w, "failed to store video", http.StatusInternalServerError)
			}
			return
		}

		video := review.Video{Name: filepath.Base(path), Path: path, Size: size}
		video.Media = h.probeVideo(r.Context(), sess.ID(), path)
		if old := sess.SetVideo(video); old != nil && old.Path != path {
			if err := h.files.Remove(old.Path); err != nil {
				h.log.Warn("remove replaced video", zap.String("path", old.Path), zap.Error(err))
			}
		}
		h.log.Info("video uploaded", zap.String("session", sess.ID()), zap.String("name", video.Name), zap.Int64("bytes", size))
		jsonResponse(w, video, http.StatusCreated)
		return
	}
}

// probeVideo reads container metadata. The browser reports the duration that
// drives the timeline, so a failed probe only costs the informational fields.
func (h *ReviewHandler) probeVideo(ctx context.Context, sessionID, path string) *media.Info {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	info, err := h.probe(ctx, path)
	switch {
	case errors.Is(err, media.ErrProbeUnavailable):
		h.log.Debug("skipping video probe", zap.Error(err))
		return nil
	case err != nil:
		h.log.Warn("probe video", zap.String("session", sessionID), zap.Error(err))
		return nil
	}
	return info
}

// ServeVideo plays the uploaded file with range support.
func (h *ReviewHandler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	v := sess.Video()
	if v == nil {
		jsonError(w, "no video uploaded", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(v.Path); os.IsNotExist(err) {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, v.Path)
}

type trackUploadResponse struct {
	Track     review.Track         `json:"track"`
	Source    string               `json:"source"`
	Language  string               `json:"language,omitempty"`
	Label     string               `json:"label,omitempty"`
	Entries   int                  `json:"entries"`
	Rejected  []subtitle.Rejection `json:"rejected"`
	Malformed []string             `json:"malformed"`
}

// UploadTrack reads a subtitle file and replaces the track with its entries.
// A file that cannot be read leaves the track as it was.
func (h *ReviewHandler) UploadTrack(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	tr, ok := h.track(w, r)
	if !ok {
		return
	}

	// Allow some room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSubtitle+64<<10)
	if err := r.ParseMultipartForm(h.maxSubtitle); err != nil {
		jsonError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !subtitle.IsSubtitleFile(header.Filename) {
		jsonError(w, "unsupported subtitle format", http.StatusUnsupportedMediaType)
		return
	}

	text, err := storage.ReadText(file, h.maxSubtitle)
	if errors.Is(err, storage.ErrTooLarge) {
		jsonError(w, "subtitle file too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		h.log.Warn("read subtitle upload", zap.String("session", sess.ID()), zap.String("file", header.Filename), zap.Error(err))
		jsonError(w, "failed to read subtitle file", http.StatusBadRequest)
		return
	}

	var report subtitle.Report
	if strings.EqualFold(filepath.Ext(header.Filename), ".vtt") {
		entries, err := subtitle.ParseVTT(strings.NewReader(text))
		if err != nil {
			h.log.Warn("parse webvtt", zap.String("session", sess.ID()), zap.Error(err))
			jsonError(w, "failed to parse subtitle file", http.StatusBadRequest)
			return
		}
		report = subtitle.Report{Entries: entries, Rejected: []subtitle.Rejection{}, Malformed: []string{}}
	} else {
		report = subtitle.ParseReport(text)
	}

	st := sess.LoadTrack(tr, filepath.Base(header.Filename), r.FormValue("lang"), report.Entries)
	h.log.Info("subtitle track loaded",
		zap.String("session", sess.ID()),
		zap.String("track", string(tr)),
		zap.Int("entries", len(st.Entries)),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("malformed", len(report.Malformed)),
	)

	jsonResponse(w, trackUploadResponse{
		Track:     tr,
		Source:    st.Source,
		Language:  st.Language,
		Label:     st.Label,
		Entries:   len(st.Entries),
		Rejected:  report.Rejected,
		Malformed: report.Malformed,
	}, http.StatusOK)
}

// TrackVTT serves a track as WebVTT for the video element's <track>.
func (h *ReviewHandler) TrackVTT(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	tr, ok := h.track(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := subtitle.WriteVTT(w, sess.Entries(tr)); err != nil {
		h.log.Error("write webvtt", zap.String("session", sess.ID()), zap.Error(err))
	}
}
