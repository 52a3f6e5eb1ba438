// Package embed builds TF-IDF embedding indexes over knowledge graph nodes.
// Each graph node becomes one searchable chunk whose vector is computed from
// a synthesized text document describing the node and its neighborhood.
package embed

import (
	"strings"
	"unicode"
)

// minTokenLength filters out single-character fragments that carry no
// discriminating signal (loop variables, punctuation residue).
const minTokenLength = 2

// Tokenize splits text into normalized index terms. Identifiers are split on
// camelCase/PascalCase boundaries and on runs of non-alphanumeric characters,
// tokens shorter than two characters are dropped, and everything is
// lower-cased. Duplicates are preserved so callers can compute term
// frequencies.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	for _, word := range splitSeparators(text) {
		for _, part := range splitCamelCase(word) {
			if len(part) >= minTokenLength {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// splitSeparators breaks text on any non-alphanumeric run.
func splitSeparators(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamelCase splits a single word on case boundaries and lowercases the
// output. Acronym runs stay together: "HTTPServer" yields "http", "server".
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(unicode.ToLower(r))
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
