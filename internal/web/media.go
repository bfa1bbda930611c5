package web

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"voice2sign/internal/logging"
	"voice2sign/internal/render"
	"voice2sign/internal/signs"
)

const maxCombinedTokens = 64

func (s *Server) handleLetterGIF(w http.ResponseWriter, r *http.Request) {
	path, err := s.deps.Renderer.LetterGIF(r.PathValue("letter"))
	s.serveGIFFile(w, r, path, err)
}

func (s *Server) handleTokenGIF(w http.ResponseWriter, r *http.Request) {
	path, err := s.deps.Renderer.TokenGIF(r.PathValue("token"))
	s.serveGIFFile(w, r, path, err)
}

func (s *Server) handleCombinedGIF(w http.ResponseWriter, r *http.Request) {
	var tokens []string
	for _, tok := range strings.Split(r.URL.Query().Get("tokens"), ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		http.Error(w, "tokens query parameter is required", http.StatusBadRequest)
		return
	}
	if len(tokens) > maxCombinedTokens {
		http.Error(w, "too many tokens", http.StatusBadRequest)
		return
	}
	data, err := s.deps.Renderer.CombinedGIF(tokens)
	if err != nil {
		s.mediaError(w, "combined gif", err)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleSignImage serves /sign/{letter}.png with a fresh random sample.
func (s *Server) handleSignImage(w http.ResponseWriter, r *http.Request) {
	letter, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || letter == "" {
		http.NotFound(w, r)
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1024 {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}
	data, err := s.deps.Renderer.SignPNG(letter, size)
	if err != nil {
		s.mediaError(w, "sign image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) serveGIFFile(w http.ResponseWriter, r *http.Request, path string, err error) {
	if err != nil {
		s.mediaError(w, "gif", err)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	http.ServeFile(w, r, path)
}

func (s *Server) mediaError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, render.ErrNoFrames) || errors.Is(err, signs.ErrUnavailable) || errors.Is(err, os.ErrNotExist) {
		http.Error(w, what+" not available", http.StatusNotFound)
		return
	}
	logging.WarnWithContext(s.logger, "media render failed", "media_render_failed",
		logging.String("media", what),
		logging.Error(err),
		logging.String(logging.FieldImpact, "image missing from results page"),
	)
	http.Error(w, what+" failed", http.StatusInternalServerError)
}

func (s *Server) handleTranscriptDownload(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transcript.txt"`)
	_, _ = w.Write([]byte(res.Transcript.Text))
}

func (s *Server) handleTimelineDownload(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="sign_timeline.json"`)
	s.writeJSON(w, http.StatusOK, res.Timeline)
}
