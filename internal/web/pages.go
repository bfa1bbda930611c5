package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"voice2sign/internal/config"
	"voice2sign/internal/logging"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/services"
	"voice2sign/internal/stagecache"
	"voice2sign/internal/youtube"
)

func (s *Server) sidebar(ctx context.Context, notice string) sidebarView {
	view := sidebarView{Notice: notice}
	if ids, err := s.deps.Cache.List(); err != nil {
		logging.WarnWithContext(s.logger, "list cached videos failed", "cache_list_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "sidebar shows zero cached videos"),
		)
	} else {
		view.CachedVideos = len(ids)
	}
	if s.deps.History != nil {
		entries, err := s.deps.History.Recent(ctx, recentLimit)
		if err != nil {
			logging.WarnWithContext(s.logger, "load recent analyses failed", "history_read_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "sidebar omits recent analyses"),
			)
		}
		view.Recent = entries
	}
	return view
}

func (s *Server) indexView(ctx context.Context, notice string) indexView {
	return indexView{
		Sidebar:        s.sidebar(ctx, notice),
		Models:         config.WhisperModels,
		SelectedModel:  s.cfg.Transcription.Model,
		EmotionEnabled: s.cfg.Emotion.Enabled,
	}
}

// withURL fills the URL field and marks it cached when a summary exists.
func (s *Server) withURL(view indexView, rawURL string) indexView {
	view.URL = rawURL
	if id := youtube.ExtractVideoID(rawURL); id != "" && s.deps.Cache.Has(id) {
		view.CachedVideoID = id
	}
	return view
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	notice := ""
	if r.URL.Query().Get("cleared") != "" {
		notice = "Cache cleared!"
	}
	view := s.withURL(s.indexView(r.Context(), notice), strings.TrimSpace(r.URL.Query().Get("url")))
	s.renderPage(w, http.StatusOK, "index.html", view)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view := s.indexView(r.Context(), "")
		view.Error = "could not read form"
		s.renderPage(w, http.StatusBadRequest, "index.html", view)
		return
	}
	req := pipeline.Request{
		URL:            strings.TrimSpace(r.PostForm.Get("url")),
		Model:          strings.TrimSpace(r.PostForm.Get("model")),
		EmotionEnabled: r.PostForm.Get("emotion") != "",
	}

	view := s.withURL(s.indexView(r.Context(), ""), req.URL)
	view.EmotionEnabled = req.EmotionEnabled
	if req.Model != "" {
		view.SelectedModel = req.Model
	}

	if req.Model != "" && !config.ValidWhisperModel(req.Model) {
		view.Error = "unknown transcription model " + req.Model
		s.renderPage(w, http.StatusBadRequest, "index.html", view)
		return
	}

	// Transcription routinely outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	started := time.Now()
	res, err := s.deps.Analyzer.Run(r.Context(), req)
	if err != nil {
		s.logger.Info("analysis failed",
			logging.Event("analysis_failed"),
			logging.String("url", req.URL),
			logging.ErrorCategory(err),
			logging.Error(err),
		)
		view.Error = services.UserMessage(err)
		s.renderPage(w, statusForError(err), "index.html", view)
		return
	}
	s.logger.Info("analysis complete",
		logging.Event("analysis_complete"),
		logging.String(logging.FieldVideoID, res.VideoID),
		logging.Int("stages_from_cache", len(res.StagesFromCache)),
		logging.Duration("elapsed", time.Since(started)),
	)
	http.Redirect(w, r, "/results/"+res.VideoID, http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	view := newResultsView(res, s.deps.Dataset)
	view.Sidebar = s.sidebar(r.Context(), "")
	s.renderPage(w, http.StatusOK, "results.html", view)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.deps.Cache.ClearAll()
	if err != nil {
		view := s.indexView(r.Context(), "")
		view.Error = "clear cache: " + err.Error()
		s.renderPage(w, http.StatusInternalServerError, "index.html", view)
		return
	}
	s.logger.Info("cache cleared",
		logging.Event("cache_cleared"),
		logging.Int("files_removed", removed),
	)
	http.Redirect(w, r, "/?cleared=1", http.StatusSeeOther)
}

// loadResult reads the cached result named by the {id} path value and writes
// a plain-text error response when it cannot.
func (s *Server) loadResult(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	id := r.PathValue("id")
	if err := stagecache.ValidateVideoID(id); err != nil {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return nil, false
	}
	res, err := s.deps.Analyzer.Load(r.Context(), id)
	if err != nil {
		http.Error(w, "Error: "+services.UserMessage(err), statusForError(err))
		return nil, false
	}
	return res, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrExternalTool):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
