package gloss

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// clitics maps the contraction pieces the tokenizer splits off. The
// dictionary only holds whole words.
var clitics = map[string]string{
	"'m": "be", "'re": "be", "'s": "be", "'ve": "have",
	"'ll": "will", "'d": "would", "n't": "not", "nt": "not",
	"ca": "can", "wo": "will",
}

// inflected lists the Penn tags whose surface form differs from the lemma.
var inflected = map[string]bool{
	"NNS": true, "NNPS": true,
	"VB": true, "VBD": true, "VBG": true, "VBN": true, "VBP": true, "VBZ": true,
	"JJR": true, "JJS": true, "RBR": true, "RBS": true,
	"MD": true,
}

var (
	dictOnce sync.Once
	dict     *golem.Lemmatizer
	dictErr  error
)

// dictionary loads the English lemma dictionary on first use.
func dictionary() (*golem.Lemmatizer, error) {
	dictOnce.Do(func() {
		dict, dictErr = golem.New(en.New())
		if dictErr != nil {
			dictErr = fmt.Errorf("load english lemma dictionary: %w", dictErr)
		}
	})
	return dict, dictErr
}

type lemmatizer struct {
	words *golem.Lemmatizer
}

func newLemmatizer() (lemmatizer, error) {
	words, err := dictionary()
	if err != nil {
		return lemmatizer{}, err
	}
	return lemmatizer{words: words}, nil
}

// lemma returns the lowercase dictionary form of word for a Penn tag.
// Uninflected tags keep the surface form so names like "Delhi" are not
// rewritten.
func (l lemmatizer) lemma(word, tag string) string {
	lower := strings.ToLower(word)
	if lemma, ok := clitics[lower]; ok {
		return lemma
	}
	if !inflected[tag] {
		return lower
	}
	return strings.ToLower(l.words.Lemma(lower))
}
