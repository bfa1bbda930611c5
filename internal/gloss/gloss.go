package gloss

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"voice2sign/internal/fileutil"
)

// Pause marks a sentence boundary in a gloss sequence.
const Pause = "|"

//go:embed stopwords.txt
var stopwordList string

var (
	fillers = map[string]bool{
		"um": true, "uh": true, "like": true, "you_know": true,
		"i_mean": true, "basically": true, "literally": true,
	}
	negations  = map[string]bool{"no": true, "not": true, "never": true}
	pausePunct = map[string]bool{".": true, "!": true, "?": true, ";": true}
	stopwords  = loadStopwords(stopwordList)
	upper      = cases.Upper(language.English)
)

func loadStopwords(list string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(list) {
		if !negations[w] {
			words[w] = true
		}
	}
	return words
}

// IsStopword reports whether word is dropped from gloss output.
func IsStopword(word string) bool {
	return stopwords[strings.ToLower(word)]
}

// Token is one tagged word from the input text.
type Token struct {
	Text  string
	Tag   string
	Lemma string
	POS   POS
}

// Tokenize normalizes text and returns tagged tokens.
func Tokenize(text string) ([]Token, error) {
	text = norm.NFKC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	lem, err := newLemmatizer()
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		lemma := lem.lemma(tok.Text, tok.Tag)
		pos := coarsePOS(tok.Tag, lemma)
		if isPunct(tok.Text) {
			pos = PUNCT
		}
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag, Lemma: lemma, POS: pos})
	}
	return tokens, nil
}

// TextToGloss converts one sentence or segment of English into gloss tokens.
func TextToGloss(text string, keepNegation bool) ([]string, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		if fillers[strings.ToLower(tok.Text)] {
			continue
		}
		if tok.POS == PUNCT {
			if pausePunct[tok.Text] {
				out = append(out, Pause)
			}
			continue
		}
		lemma := strings.TrimSpace(strings.ToLower(tok.Lemma))
		if lemma == "" || stopwords[lemma] {
			continue
		}
		switch {
		case isNumeric(lemma):
			out = append(out, upper.String(lemma))
		case keepNegation && negations[lemma]:
			out = append(out, upper.String(lemma))
		case keptPOS[tok.POS]:
			out = append(out, upper.String(lemma))
		}
	}
	return collapsePauses(out), nil
}

// collapsePauses drops a leading pause and repeated pauses.
func collapsePauses(tokens []string) []string {
	cleaned := tokens[:0]
	for _, tok := range tokens {
		if tok == Pause && (len(cleaned) == 0 || cleaned[len(cleaned)-1] == Pause) {
			continue
		}
		cleaned = append(cleaned, tok)
	}
	return cleaned
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// Segment is a transcript segment with its gloss tokens.
type Segment struct {
	ID    int      `json:"id"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Text  string   `json:"text"`
	Gloss []string `json:"gloss"`
}

// Result is the cached output of the gloss stage.
type Result struct {
	Segments []Segment `json:"segments"`
}

// Input is the subset of a transcript segment the gloss stage reads.
type Input struct {
	ID    int
	Start float64
	End   float64
	Text  string
}

// ProcessSegments glosses every segment with non-empty text.
func ProcessSegments(segments []Input, keepNegation bool) (Result, error) {
	result := Result{Segments: make([]Segment, 0, len(segments))}
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tokens, err := TextToGloss(text, keepNegation)
		if err != nil {
			return Result{}, fmt.Errorf("segment %d: %w", seg.ID, err)
		}
		result.Segments = append(result.Segments, Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
			Gloss: tokens,
		})
	}
	return result, nil
}

// Path returns where Save writes the gloss JSON for stem.
func Path(outputDir, stem string) string {
	return filepath.Join(outputDir, stem+"_gloss.json")
}

// Save writes <stem>_gloss.json into outputDir and returns its path.
func Save(v any, stem, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("save gloss: %w", err)
	}
	path := Path(outputDir, stem)
	if err := fileutil.WriteJSON(path, v); err != nil {
		return "", fmt.Errorf("save gloss: %w", err)
	}
	return path, nil
}

// Display renders tokens for people: pauses removed, joined by arrows.
func Display(tokens []string) string {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != Pause {
			words = append(words, tok)
		}
	}
	return strings.Join(words, " → ")
}
