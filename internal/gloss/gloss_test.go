package gloss

import (
	"encoding/json"
	"os"
	"slices"
	"testing"
)

func TestTextToGloss(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		keepNegation bool
		want         []string
	}{
		{"fillers and negation", "Um, I do not like apples.", true, []string{"NOT", "APPLE", "|"}},
		{"negation dropped", "I do not like apples.", false, []string{"APPLE", "|"}},
		{"numbers", "I have 3 dogs!", true, []string{"3", "DOG", "|"}},
		{"empty", "   ", true, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TextToGloss(tt.text, tt.keepNegation)
			if err != nil {
				t.Fatalf("TextToGloss: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("TextToGloss(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCollapsePauses(t *testing.T) {
	got := collapsePauses([]string{"|", "|", "HELLO", "|", "|", "WORLD", "|"})
	want := []string{"HELLO", "|", "WORLD", "|"}
	if !slices.Equal(got, want) {
		t.Fatalf("collapsePauses = %v, want %v", got, want)
	}
}

func TestLemma(t *testing.T) {
	lem, err := newLemmatizer()
	if err != nil {
		t.Fatalf("newLemmatizer: %v", err)
	}
	tests := []struct {
		word, tag, want string
	}{
		{"apples", "NNS", "apple"},
		{"boxes", "NNS", "box"},
		{"cities", "NNS", "city"},
		{"class", "NN", "class"},
		{"children", "NNS", "child"},
		{"running", "VBG", "run"},
		{"making", "VBG", "make"},
		{"walked", "VBD", "walk"},
		{"stopped", "VBD", "stop"},
		{"created", "VBN", "create"},
		{"tried", "VBD", "try"},
		{"went", "VBD", "go"},
		{"n't", "RB", "not"},
		{"'re", "VBP", "be"},
		{"is", "VBZ", "be"},
		{"watches", "VBZ", "watch"},
		{"bigger", "JJR", "big"},
		{"happiest", "JJS", "happy"},
		{"Delhi", "NNP", "delhi"},
	}
	for _, tt := range tests {
		if got := lem.lemma(tt.word, tt.tag); got != tt.want {
			t.Errorf("lemma(%q, %s) = %q, want %q", tt.word, tt.tag, got, tt.want)
		}
	}
}

func TestCoarsePOS(t *testing.T) {
	tests := []struct {
		tag, lemma string
		want       POS
	}{
		{"NNP", "delhi", PROPN},
		{"NNS", "dog", NOUN},
		{"VBZ", "be", AUX},
		{"VBD", "walk", VERB},
		{"MD", "can", AUX},
		{"JJ", "red", ADJ},
		{"RB", "quickly", ADV},
		{"RB", "not", OTHER},
		{"PRP", "she", PRON},
		{"CD", "3", NUM},
		{".", ".", PUNCT},
		{"DT", "the", OTHER},
	}
	for _, tt := range tests {
		if got := coarsePOS(tt.tag, tt.lemma); got != tt.want {
			t.Errorf("coarsePOS(%s, %s) = %s, want %s", tt.tag, tt.lemma, got, tt.want)
		}
	}
}

func TestStopwordsKeepNegation(t *testing.T) {
	for _, w := range []string{"no", "not", "never"} {
		if IsStopword(w) {
			t.Fatalf("%q must not be a stop word", w)
		}
	}
	for _, w := range []string{"the", "The", "would", "n't"} {
		if !IsStopword(w) {
			t.Fatalf("%q should be a stop word", w)
		}
	}
}

func TestProcessSegmentsSkipsEmpty(t *testing.T) {
	result, err := ProcessSegments([]Input{
		{ID: 0, Start: 0, End: 1, Text: "   "},
		{ID: 1, Start: 1, End: 2.5, Text: " Dogs! "},
	}, true)
	if err != nil {
		t.Fatalf("ProcessSegments: %v", err)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected one segment, got %+v", result.Segments)
	}
	seg := result.Segments[0]
	if seg.ID != 1 || seg.Start != 1 || seg.End != 2.5 || seg.Text != " Dogs! " {
		t.Fatalf("unexpected segment %+v", seg)
	}
}

func TestSaveAndDisplay(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(Result{Segments: []Segment{{ID: 2, Gloss: []string{"HELLO", "|"}}}}, "vid", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != Path(dir, "vid") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Result
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Segments[0].ID != 2 {
		t.Fatalf("decode: %+v %v", decoded, err)
	}

	if got := Display([]string{"HELLO", "|", "WORLD", "|"}); got != "HELLO → WORLD" {
		t.Fatalf("unexpected display %q", got)
	}
}
