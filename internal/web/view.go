package web

import (
	"fmt"
	"net/url"
	"strings"

	"voice2sign/internal/emotion"
	"voice2sign/internal/gloss"
	"voice2sign/internal/history"
	"voice2sign/internal/language"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/timeline"
	"voice2sign/internal/youtube"
)

const (
	recentLimit = 10
	signRowSize = 4
)

type sidebarView struct {
	CachedVideos int
	Recent       []history.Entry
	Notice       string
}

type indexView struct {
	Sidebar        sidebarView
	URL            string
	CachedVideoID  string
	Models         []string
	SelectedModel  string
	EmotionEnabled bool
	Error          string
}

type signCard struct {
	Token     string
	Letter    string
	Available bool
}

type segmentView struct {
	Number     int
	Start      float64
	End        float64
	Text       string
	HasEmotion bool
	Emoji      string
	Badge      string
	Gloss      string
	Tokens     []string
	Letters    []string
	Combined   string
	SignRows   [][]signCard
}

type resultsView struct {
	Sidebar         sidebarView
	VideoID         string
	EmbedURL        string
	WatchURL        string
	Language        string
	LanguageName    string
	Model           string
	StagesFromCache string
	Stats           timeline.Stats
	Segments        []segmentView
	DatasetMissing  bool
}

func newResultsView(res *pipeline.Result, dataset Dataset) resultsView {
	view := resultsView{
		VideoID:         res.VideoID,
		EmbedURL:        youtube.EmbedURL(res.VideoID),
		WatchURL:        youtube.WatchURL(res.VideoID),
		Language:        strings.ToUpper(firstNonEmpty(res.Transcript.Language, res.Summary.Language, "unknown")),
		LanguageName:    language.DisplayName(firstNonEmpty(res.Transcript.Language, res.Summary.Language)),
		Model:           firstNonEmpty(res.Transcript.Model, res.Summary.Model),
		StagesFromCache: strings.Join(res.StagesFromCache, ", "),
		Stats:           res.Summary.Stats,
		DatasetMissing:  dataset == nil || len(dataset.Available()) == 0,
	}
	for i, seg := range res.Timeline.Timeline {
		view.Segments = append(view.Segments, newSegmentView(i+1, seg, dataset))
	}
	return view
}

func newSegmentView(number int, seg timeline.Segment, dataset Dataset) segmentView {
	view := segmentView{
		Number: number,
		Start:  seg.Start,
		End:    seg.End,
		Text:   seg.Text,
		Gloss:  gloss.Display(seg.Gloss),
	}
	if seg.Emotion.Label != "" {
		view.HasEmotion = true
		view.Emoji = emotion.Emoji(seg.Emotion.Label)
		view.Badge = emotion.Badge(seg.Emotion)
	}
	for _, tok := range seg.Gloss {
		if tok == gloss.Pause || strings.TrimSpace(tok) == "" {
			continue
		}
		view.Tokens = append(view.Tokens, tok)
		view.Letters = append(view.Letters, firstLetter(tok))
	}
	if len(view.Tokens) == 0 {
		return view
	}
	view.Combined = "/gif/combined?tokens=" + url.QueryEscape(strings.Join(view.Tokens, ","))

	var row []signCard
	for _, tok := range view.Tokens {
		letter := firstLetter(tok)
		row = append(row, signCard{Token: tok, Letter: letter, Available: dataset != nil && dataset.Has(letter)})
		if len(row) == signRowSize {
			view.SignRows = append(view.SignRows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		view.SignRows = append(view.SignRows, row)
	}
	return view
}

func firstLetter(token string) string {
	for _, r := range strings.ToUpper(token) {
		return string(r)
	}
	return "?"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.1fs", v)
}
