package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"voice2sign/internal/fileutil"
	"voice2sign/internal/gloss"
	"voice2sign/internal/logging"
	"voice2sign/internal/services"
)

const stageName = "emotion"

// Neutral is the label used when there is nothing to classify.
const Neutral = "neutral"

// Labels lists the classes the emotion model emits, plus neutral.
var Labels = []string{"sadness", "joy", "love", "anger", "fear", "surprise", Neutral}

// Score is the dominant emotion of one segment.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Segment is a glossed segment with its emotion.
type Segment struct {
	gloss.Segment
	Emotion Score `json:"emotion,omitzero"`
}

// Result is the cached output of the emotion stage.
type Result struct {
	Segments []Segment `json:"segments"`
}

// Classifier scores a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Score, error)
}

// OutputFile is the name AddEmotion writes in the output directory.
const OutputFile = "emotion_output.json"

// AddEmotion classifies every segment. Blank text is neutral with score 0.
func AddEmotion(ctx context.Context, classifier Classifier, g gloss.Result, logger *slog.Logger) (Result, error) {
	if classifier == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stageName, "classify", "no classifier configured", nil)
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "emotion"))
	result := Result{Segments: make([]Segment, 0, len(g.Segments))}
	for _, seg := range g.Segments {
		out := Segment{Segment: seg, Emotion: Score{Label: Neutral}}
		if text := strings.TrimSpace(seg.Text); text != "" {
			score, err := classifier.Classify(ctx, text)
			if err != nil {
				return Result{}, services.Wrap(services.ErrExternalTool, stageName, "classify",
					fmt.Sprintf("segment %d", seg.ID), err)
			}
			out.Emotion = score
			logger.Debug("segment classified",
				logging.Int("segment", seg.ID),
				logging.String("label", score.Label),
				logging.Float64("score", score.Score))
		}
		result.Segments = append(result.Segments, out)
	}
	return result, nil
}

// FromGloss wraps gloss segments without classification, leaving Emotion zero.
func FromGloss(g gloss.Result) Result {
	result := Result{Segments: make([]Segment, 0, len(g.Segments))}
	for _, seg := range g.Segments {
		result.Segments = append(result.Segments, Segment{Segment: seg})
	}
	return result
}

// Save writes emotion_output.json into outputDir and returns its path.
func Save(result Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("save emotion output: %w", err)
	}
	path := filepath.Join(outputDir, OutputFile)
	if err := fileutil.WriteJSON(path, result); err != nil {
		return "", fmt.Errorf("save emotion output: %w", err)
	}
	return path, nil
}

// top returns the highest scoring entry, or neutral/0 when scores is empty.
func top(scores []Score) Score {
	best := Score{Label: Neutral}
	found := false
	for _, s := range scores {
		if !found || s.Score > best.Score {
			best = s
			found = true
		}
	}
	return best
}

func validLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Badge formats a score for display, e.g. "JOY (87%)".
func Badge(s Score) string {
	if s.Label == "" {
		return ""
	}
	return fmt.Sprintf("%s (%.0f%%)", strings.ToUpper(s.Label), s.Score*100)
}

// Emoji returns the icon shown next to a label.
func Emoji(label string) string {
	switch strings.ToLower(label) {
	case "joy":
		return "😊"
	case "sadness":
		return "😢"
	case "anger":
		return "😠"
	case "fear":
		return "😨"
	case "surprise":
		return "😲"
	case "love":
		return "❤️"
	default:
		return "😐"
	}
}
