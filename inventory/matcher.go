package inventory

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Matcher decides whether a path is a candidate for some phase. The two
// implementations make the predicate kind explicit instead of dispatching on
// the runtime type of a string-or-pattern value.
type Matcher interface {
	Matches(path string) bool
}

// SuffixMatcher matches paths ending in any of the listed suffixes,
// case-insensitively.
type SuffixMatcher []string

// Suffixes builds a SuffixMatcher
func Suffixes(suffixes ...string) SuffixMatcher {
	m := make(SuffixMatcher, len(suffixes))
	for i, s := range suffixes {
		m[i] = strings.ToLower(s)
	}
	return m
}

func (m SuffixMatcher) Matches(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range m {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// PatternMatcher matches paths against a compiled regular expression
type PatternMatcher struct {
	re *regexp.Regexp
}

// Pattern builds a PatternMatcher from an already-compiled expression
func Pattern(re *regexp.Regexp) PatternMatcher {
	return PatternMatcher{re: re}
}

func (m PatternMatcher) Matches(path string) bool {
	return m.re.MatchString(path)
}

// MatcherFunc adapts a plain function to the Matcher interface
type MatcherFunc func(path string) bool

func (f MatcherFunc) Matches(path string) bool {
	return f(path)
}
