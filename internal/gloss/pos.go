package gloss

import "strings"

// POS is a coarse part-of-speech class.
type POS string

const (
	PROPN POS = "PROPN"
	NOUN  POS = "NOUN"
	VERB  POS = "VERB"
	ADJ   POS = "ADJ"
	ADV   POS = "ADV"
	AUX   POS = "AUX"
	PRON  POS = "PRON"
	NUM   POS = "NUM"
	PUNCT POS = "PUNCT"
	OTHER POS = "OTHER"
)

var auxiliaries = map[string]bool{
	"be": true, "have": true, "do": true, "will": true, "shall": true,
	"can": true, "could": true, "would": true, "should": true, "may": true,
	"might": true, "must": true,
}

// coarsePOS maps a Penn Treebank tag to a POS. lemma separates auxiliary
// verbs from main verbs.
func coarsePOS(tag, lemma string) POS {
	switch {
	case tag == "NNP" || tag == "NNPS":
		return PROPN
	case strings.HasPrefix(tag, "NN"):
		return NOUN
	case tag == "MD":
		return AUX
	case strings.HasPrefix(tag, "VB"):
		if auxiliaries[lemma] {
			return AUX
		}
		return VERB
	case strings.HasPrefix(tag, "JJ"):
		return ADJ
	case lemma == "not":
		return OTHER
	case strings.HasPrefix(tag, "RB") || tag == "WRB":
		return ADV
	case tag == "PRP" || tag == "PRP$" || tag == "WP" || tag == "WP$":
		return PRON
	case tag == "CD":
		return NUM
	}
	switch tag {
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "HYPH", "NFP":
		return PUNCT
	}
	return OTHER
}

// keptPOS lists the classes that contribute gloss tokens.
var keptPOS = map[POS]bool{
	PROPN: true, NOUN: true, VERB: true, ADJ: true, ADV: true, AUX: true, PRON: true,
}
