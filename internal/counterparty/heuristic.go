// Package counterparty derives display names for the other party of a
// transaction from its free-text description.
package counterparty

import (
	"regexp"
	"strings"
	"unicode"
)

// Unknown is returned when no usable name can be derived.
const Unknown = "Unknown"

var (
	mechanismPrefix = regexp.MustCompile(`^(pos|card|trf|transfer|payment)[:\-\s]+`)
	punctuation     = regexp.MustCompile(`[^A-Za-z0-9\s\-']+`)
	whitespace      = regexp.MustCompile(`\s+`)
	nonAlnum        = regexp.MustCompile(`[^A-Za-z0-9]`)
	nonAlpha        = regexp.MustCompile(`[^A-Za-z]`)
)

var stopwords = map[string]struct{}{
	"payment":    {},
	"transfer":   {},
	"to":         {},
	"from":       {},
	"card":       {},
	"visa":       {},
	"mastercard": {},
	"purchase":   {},
}

// ExtractName maps a description to a title-cased counterparty name, or
// Unknown. Descriptions that differ only in case, spacing or punctuation
// produce the same name.
func ExtractName(description string) string {
	text := Normalize(description)
	if text == "" {
		return Unknown
	}
	tokens := DropStopwords(Tokenize(StripPunctuation(StripPrefix(text))))
	if !Plausible(tokens) {
		return Unknown
	}
	return Display(SplitHyphens(tokens))
}

// Normalize lower-cases and trims.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StripPrefix removes one leading payment mechanism marker such as "pos:" or "card ".
func StripPrefix(s string) string {
	return mechanismPrefix.ReplaceAllString(s, "")
}

// StripPunctuation blanks everything but letters, digits, whitespace,
// hyphens and apostrophes, then collapses whitespace.
func StripPunctuation(s string) string {
	s = punctuation.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func Tokenize(s string) []string {
	return strings.Fields(s)
}

func DropStopwords(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, stop := stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// Plausible rejects empty token lists, pure numeric codes and identifiers
// with fewer than three alphanumeric characters.
func Plausible(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	joined := strings.Join(tokens, " ")
	alnum := nonAlnum.ReplaceAllString(joined, "")
	alpha := nonAlpha.ReplaceAllString(alnum, "")
	return len(alnum) >= 3 && len(alpha) > 0
}

// SplitHyphens turns "coffee-island" into two words and drops empty parts.
func SplitHyphens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if !strings.Contains(t, "-") {
			out = append(out, t)
			continue
		}
		for _, part := range strings.Split(t, "-") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Display title-cases each token and joins with single spaces.
func Display(tokens []string) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = titleToken(t)
	}
	return strings.Join(words, " ")
}

func titleToken(t string) string {
	r := []rune(t)
	if len(r) <= 1 {
		return strings.ToUpper(t)
	}
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}
