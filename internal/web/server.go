package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"voice2sign/internal/config"
	"voice2sign/internal/history"
	"voice2sign/internal/logging"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/render"
	"voice2sign/internal/stagecache"
)

// Analyzer runs and reloads analyses.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Load(ctx context.Context, videoID string) (*pipeline.Result, error)
}

// HistoryReader lists recent runs for the sidebar.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Dataset reports which sign letters have images.
type Dataset interface {
	Available() map[string]int
	Has(letter string) bool
}

// Deps are the collaborators the server renders from. History may be nil.
type Deps struct {
	Analyzer Analyzer
	Cache    *stagecache.Cache
	Renderer *render.Renderer
	Dataset  Dataset
	History  HistoryReader
}

// Server is the web UI.
type Server struct {
	cfg      *config.Config
	bind     string
	deps     Deps
	pages    *template.Template
	logger   *slog.Logger
	listener net.Listener
	server   *http.Server
}

// New builds the server and its routes. It does not listen yet.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("web: config is required")
	}
	if deps.Analyzer == nil || deps.Cache == nil || deps.Renderer == nil {
		return nil, errors.New("web: analyzer, cache and renderer are required")
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:    cfg,
		bind:   strings.TrimSpace(cfg.Server.Bind),
		deps:   deps,
		pages:  pages,
		logger: logging.NewComponentLogger(logger, "web"),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	token := s.cfg.Server.APIToken
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /results/{id}", s.handleResults)
	mux.HandleFunc("POST /cache/clear", s.handleCacheClear)

	mux.HandleFunc("GET /gif/letter/{letter}", s.handleLetterGIF)
	mux.HandleFunc("GET /gif/token/{token}", s.handleTokenGIF)
	mux.HandleFunc("GET /gif/combined", s.handleCombinedGIF)
	mux.HandleFunc("GET /sign/{file}", s.handleSignImage)

	mux.HandleFunc("GET /download/{id}/transcript.txt", s.handleTranscriptDownload)
	mux.HandleFunc("GET /download/{id}/timeline.json", s.handleTimelineDownload)

	mux.HandleFunc("/api/status", authMiddleware(token, s.handleStatus))
	mux.HandleFunc("/api/results/{id}", authMiddleware(token, s.handleAPIResult))
	return mux
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("web: bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "web server error", "web_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		s.logger.Debug("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
