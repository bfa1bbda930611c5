package stagecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voice2sign/internal/fileutil"
	"voice2sign/internal/logging"
)

// Stage names one memoized pipeline step.
type Stage string

const (
	StageDownload   Stage = "download"
	StageTranscribe Stage = "transcribe"
	StageGloss      Stage = "gloss"
	StageEmotion    Stage = "emotion"
	StageTimeline   Stage = "timeline"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageDownload, StageTranscribe, StageGloss, StageEmotion, StageTimeline}

const (
	filePrefix  = "video_"
	stageInfix  = "_stage_"
	fileSuffix  = ".json"
	clearGlob   = "*" + fileSuffix
	summaryGlob = filePrefix + "*" + fileSuffix
)

// ErrInvalidVideoID is returned when an ID is empty or could escape the cache directory.
var ErrInvalidVideoID = errors.New("invalid video id")

// Info describes what the cache holds for one video.
type Info struct {
	Cached    bool      `json:"cached"`
	Summary   bool      `json:"summary"`
	Stages    []Stage   `json:"stages,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified,omitzero"`
}

// Cache stores one JSON document per (video ID, stage) plus an optional
// whole-video summary in a flat directory. A cache hit hands back exactly the
// bytes that were stored. There is no invalidation: entries live until cleared.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates the cache directory if needed.
func New(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("stage cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir, logger: logging.NewComponentLogger(logger, "stagecache")}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// StagePath returns video_<id>_stage_<stage>.json inside the cache directory.
func (c *Cache) StagePath(videoID string, stage Stage) string {
	return filepath.Join(c.dir, filePrefix+videoID+stageInfix+string(stage)+fileSuffix)
}

// SummaryPath returns video_<id>.json inside the cache directory.
func (c *Cache) SummaryPath(videoID string) string {
	return filepath.Join(c.dir, filePrefix+videoID+fileSuffix)
}

// LoadStageRaw returns the stored document for a stage. A missing or
// unparsable file is reported as a miss; the caller recomputes and overwrites it.
func (c *Cache) LoadStageRaw(videoID string, stage Stage) (json.RawMessage, bool, error) {
	if err := ValidateVideoID(videoID); err != nil {
		return nil, false, err
	}
	return c.readDocument(c.StagePath(videoID, stage), videoID, string(stage))
}

// LoadStage decodes a stored stage document into dst.
func (c *Cache) LoadStage(videoID string, stage Stage, dst any) (bool, error) {
	raw, ok, err := c.LoadStageRaw(videoID, stage)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.warnCorrupt(videoID, string(stage), err)
		return false, nil
	}
	return true, nil
}

// SaveStage overwrites the stage document with v.
func (c *Cache) SaveStage(videoID string, stage Stage, v any) error {
	if err := ValidateVideoID(videoID); err != nil {
		return err
	}
	if err := fileutil.WriteJSON(c.StagePath(videoID, stage), v); err != nil {
		return fmt.Errorf("save %s cache: %w", stage, err)
	}
	c.logger.Debug("stage cached",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldStage, string(stage)))
	return nil
}

// HasStage reports whether a stage document exists.
func (c *Cache) HasStage(videoID string, stage Stage) bool {
	if ValidateVideoID(videoID) != nil {
		return false
	}
	return fileutil.Exists(c.StagePath(videoID, stage))
}

// LoadSummary decodes the whole-video summary into dst.
func (c *Cache) LoadSummary(videoID string, dst any) (bool, error) {
	if err := ValidateVideoID(videoID); err != nil {
		return false, err
	}
	raw, ok, err := c.readDocument(c.SummaryPath(videoID), videoID, "summary")
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.warnCorrupt(videoID, "summary", err)
		return false, nil
	}
	return true, nil
}

// SaveSummary overwrites the whole-video summary.
func (c *Cache) SaveSummary(videoID string, v any) error {
	if err := ValidateVideoID(videoID); err != nil {
		return err
	}
	if err := fileutil.WriteJSON(c.SummaryPath(videoID), v); err != nil {
		return fmt.Errorf("save summary cache: %w", err)
	}
	return nil
}

// Has reports whether anything is cached for the video.
func (c *Cache) Has(videoID string) bool {
	info, err := c.Info(videoID)
	return err == nil && info.Cached
}

// Info returns which documents exist for the video and their combined size.
func (c *Cache) Info(videoID string) (Info, error) {
	if err := ValidateVideoID(videoID); err != nil {
		return Info{}, err
	}
	var info Info
	record := func(path string) bool {
		st, err := os.Stat(path)
		if err != nil || st.IsDir() {
			return false
		}
		info.Cached = true
		info.SizeBytes += st.Size()
		if st.ModTime().After(info.Modified) {
			info.Modified = st.ModTime()
		}
		return true
	}
	info.Summary = record(c.SummaryPath(videoID))
	for _, stage := range Stages {
		if record(c.StagePath(videoID, stage)) {
			info.Stages = append(info.Stages, stage)
		}
	}
	return info, nil
}

// Clear removes the summary and every stage document for one video.
func (c *Cache) Clear(videoID string) (int, error) {
	if err := ValidateVideoID(videoID); err != nil {
		return 0, err
	}
	paths := []string{c.SummaryPath(videoID)}
	for _, stage := range Stages {
		paths = append(paths, c.StagePath(videoID, stage))
	}
	removed := 0
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	c.logger.Info("cleared video cache",
		logging.String(logging.FieldVideoID, videoID),
		logging.Int("files_removed", removed))
	return removed, nil
}

// ClearAll removes every *.json document in the cache directory.
func (c *Cache) ClearAll() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, clearGlob))
	if err != nil {
		return 0, fmt.Errorf("list cache files: %w", err)
	}
	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	c.logger.Info("cleared cache", logging.Int("files_removed", removed))
	return removed, nil
}

// List returns the sorted, de-duplicated IDs of every video with at least one
// cached document.
func (c *Cache) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, summaryGlob))
	if err != nil {
		return nil, fmt.Errorf("list cache files: %w", err)
	}
	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, path := range matches {
		id, ok := videoIDFromFile(filepath.Base(path))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateVideoID rejects IDs that are empty or would escape the cache directory.
func ValidateVideoID(videoID string) error {
	if strings.TrimSpace(videoID) == "" || videoID != strings.TrimSpace(videoID) {
		return fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}
	if strings.ContainsAny(videoID, `/\`) || videoID == "." || videoID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}
	return nil
}

func videoIDFromFile(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	for _, stage := range Stages {
		if id, ok := strings.CutSuffix(body, stageInfix+string(stage)); ok {
			return id, id != ""
		}
	}
	return body, body != ""
}

func (c *Cache) readDocument(path, videoID, label string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s cache: %w", label, err)
	}
	if !json.Valid(data) {
		c.warnCorrupt(videoID, label, errors.New("invalid json"))
		return nil, false, nil
	}
	return json.RawMessage(data), true, nil
}

func (c *Cache) warnCorrupt(videoID, label string, err error) {
	logging.WarnWithContext(c.logger, "ignoring unreadable cache entry", "cache_corrupt",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldStage, label),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the stage will be recomputed and the file overwritten"),
		logging.String(logging.FieldImpact, "one cached stage is recomputed"))
}
