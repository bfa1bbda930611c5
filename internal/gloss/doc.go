// Package gloss converts English transcript text into sign-language gloss
// tokens: uppercase content-word lemmas with "|" marking sentence pauses.
//
// Text is NFKC-normalized, tokenized and Penn-tagged with prose, and each tag
// is mapped to a coarse part of speech. Fillers, stop words and function
// words are dropped. Numbers and negation always survive.
package gloss
