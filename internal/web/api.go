package web

import (
	"net/http"

	"voice2sign/internal/deps"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/preflight"
	"voice2sign/internal/services"
	"voice2sign/internal/signs"
	"voice2sign/internal/stagecache"
)

// DependencyStatus mirrors deps.Status for JSON clients.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckStatus mirrors preflight.Result for JSON clients.
type CheckStatus struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// DatasetStatus reports sign image coverage.
type DatasetStatus struct {
	Dir     string         `json:"dir"`
	Letters map[string]int `json:"letters"`
	Missing []string       `json:"missing,omitempty"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Ready         bool               `json:"ready"`
	CachedVideos  int                `json:"cached_videos"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Checks        []CheckStatus      `json:"checks"`
	Dataset       DatasetStatus      `json:"dataset"`
	Transcription string             `json:"transcription_backend"`
	Emotion       bool               `json:"emotion_default"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	statuses := preflight.CheckSystemDeps(s.cfg)
	checks := preflight.RunAll(r.Context(), s.cfg)

	resp := StatusResponse{
		Ready:         len(deps.Missing(statuses)) == 0 && len(preflight.Failed(checks)) == 0,
		Transcription: s.cfg.Transcription.Backend,
		Emotion:       s.cfg.Emotion.Enabled,
		Dataset:       DatasetStatus{Dir: s.cfg.Paths.DatasetDir, Letters: map[string]int{}},
	}
	if ids, err := s.deps.Cache.List(); err == nil {
		resp.CachedVideos = len(ids)
	}
	for _, st := range statuses {
		resp.Dependencies = append(resp.Dependencies, DependencyStatus(st))
	}
	for _, c := range checks {
		resp.Checks = append(resp.Checks, CheckStatus(c))
	}
	if s.deps.Dataset != nil {
		resp.Dataset.Letters = s.deps.Dataset.Available()
	}
	for _, ch := range signs.Alphabet {
		letter := string(ch)
		if resp.Dataset.Letters[letter] == 0 {
			resp.Dataset.Missing = append(resp.Dataset.Missing, letter)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ResultResponse is the body of GET /api/results/{id}.
type ResultResponse struct {
	Result *pipeline.Result `json:"result"`
	Cache  stagecache.Info  `json:"cache"`
}

func (s *Server) handleAPIResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := r.PathValue("id")
	if err := stagecache.ValidateVideoID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}
	res, err := s.deps.Analyzer.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, statusForError(err), services.UserMessage(err))
		return
	}
	info, err := s.deps.Cache.Info(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ResultResponse{Result: res, Cache: info})
}
