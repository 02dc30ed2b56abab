package plagiarism

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s'-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "can": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "me": {}, "him": {}, "her": {},
	"us": {}, "them": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "here": {}, "there": {}, "where": {}, "when": {},
	"why": {}, "how": {},
	"all": {}, "any": {}, "both": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"such": {},
	"no": {}, "nor": {}, "not": {}, "only": {}, "own": {}, "same": {}, "so": {}, "than": {}, "too": {},
	"very": {}, "just": {},
	"now": {}, "then": {}, "also": {}, "well": {}, "get": {}, "go": {}, "come": {}, "see": {}, "know": {},
	"think": {}, "take": {},
	"make": {}, "give": {}, "use": {}, "find": {}, "tell": {}, "ask": {}, "work": {}, "seem": {}, "feel": {},
	"try": {}, "leave": {},
}

// Preprocess lowercases text, replaces punctuation (except apostrophes and hyphens)
// with spaces and collapses whitespace.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// IsStopWord reports whether token is in the fixed English stop-word list
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// Tokenize returns the normalized tokens of text, dropping single-character tokens and stop words
func Tokenize(text string) []string {
	normalized := Preprocess(text)
	if normalized == "" {
		return []string{}
	}

	fields := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if utf8.RuneCountInString(token) <= 1 || IsStopWord(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// words splits already-normalized text without stop-word filtering
func words(normalized string) []string {
	return strings.Fields(normalized)
}
