package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/video-stream/subreview/internal/review"
	"github.com/video-stream/subreview/internal/timecode"
	"github.com/video-stream/subreview/internal/timeline"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"pct": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 4, 64)
	},
	"formatTime": timecode.FormatTime,
}

var pages = template.Must(template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html"))

type reviewPageData struct {
	Session  review.Snapshot
	View     timeline.View
	Tracks   []review.Track
	SkipStep int
}

type PageHandler struct {
	sessions *review.Store
	log      *zap.Logger
}

func NewPageHandler(sessions *review.Store, log *zap.Logger) *PageHandler {
	return &PageHandler{sessions: sessions, log: log}
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

// NewReview creates a session and redirects to its editor.
func (h *PageHandler) NewReview(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	h.log.Info("review session created", zap.String("session", sess.ID()))
	http.Redirect(w, r, "/review/"+sess.ID(), http.StatusSeeOther)
}

func (h *PageHandler) Review(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/review/new", http.StatusSeeOther)
		return
	}
	h.render(w, "review.html", reviewPageData{
		Session:  sess.Snapshot(),
		View:     sess.Timeline(),
		Tracks:   review.Tracks,
		SkipStep: review.SkipStep,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("render page", zap.String("page", name), zap.Error(err))
	}
}
