// Package grading implements the answer matching and scoring rules for quiz
// attempts. Everything in this package is pure: the same inputs always
// produce the same verdicts, which is what lets live submission and bulk
// recheck share one code path.
package grading

import (
	"regexp"
	"strings"
)

var (
	answerCharset = regexp.MustCompile(`[^\w\s/-]`)
	multiSpace    = regexp.MustCompile(`\s+`)
	standaloneAnd = regexp.MustCompile(`\band\b`)
	listMarker    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// NormalizeAnswer canonicalizes free text for multiple-choice and
// identification comparison: lowercase, strip everything but word
// characters, whitespace, slash and hyphen, then fold hyphen and slash to
// spaces and collapse runs of whitespace.
func NormalizeAnswer(text string) string {
	s := strings.ToLower(text)
	s = answerCharset.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "/", " ")
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// NormalizeForEnumeration is NormalizeAnswer with two differences: the
// standalone word "and" is dropped, and slashes survive so the matcher can
// expand slash-delimited alternatives from answer-key items.
func NormalizeForEnumeration(text string) string {
	s := strings.ToLower(text)
	s = answerCharset.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-", " ")
	s = standaloneAnd.ReplaceAllString(s, " ")
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// Singularize reduces an English plural to a singular form using suffix
// rules only. It is deliberately imprecise; a wrong guess just means a
// near-match fails and the word must match exactly.
func Singularize(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case hasAnySuffix(word, "ches", "shes", "xes", "zes", "ses", "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// SplitItems breaks an enumeration answer into its items. Items are
// delimited by newlines, commas or semicolons; leading bullet and numbering
// markers ("1.", "2)", "-", "*") are tolerated on student input.
func SplitItems(text string) []string {
	var items []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	}) {
		part = listMarker.ReplaceAllString(part, "")
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
