package safety

import (
	"regexp"
	"strings"
)

// Matcher reports whether a normalized message triggers a rule. Matchers
// are composed with AnyOf/AllOf so a category's policy reads as data, not
// as nested conditionals.
type Matcher interface {
	Match(text string) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(text string) bool

// Match calls the wrapped function.
func (f MatcherFunc) Match(text string) bool { return f(text) }

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(text string) bool { return m.re.MatchString(text) }

// Regex compiles expr into a Matcher. The catalog is static, so a bad
// expression is a programming error and panics at load time.
func Regex(expr string) Matcher {
	return regexMatcher{re: regexp.MustCompile(expr)}
}

type anyOf struct {
	members []Matcher
}

func (m anyOf) Match(text string) bool {
	for _, member := range m.members {
		if member.Match(text) {
			return true
		}
	}
	return false
}

// AnyOf matches when at least one member matches. An empty AnyOf never
// matches.
func AnyOf(members ...Matcher) Matcher { return anyOf{members: members} }

type allOf struct {
	members []Matcher
}

func (m allOf) Match(text string) bool {
	for _, member := range m.members {
		if !member.Match(text) {
			return false
		}
	}
	return len(m.members) > 0
}

// AllOf matches only when every member matches. Used for co-occurrence
// rules, e.g. a weapon term AND a school term, so innocuous single
// mentions do not flag.
func AllOf(members ...Matcher) Matcher { return allOf{members: members} }

type tokenCountMatcher struct {
	res []*regexp.Regexp
	min int
}

func (m tokenCountMatcher) Match(text string) bool {
	count := 0
	for _, re := range m.res {
		if re.MatchString(text) {
			count++
			if count >= m.min {
				return true
			}
		}
	}
	return false
}

// TokenCount matches when at least min distinct vocabulary entries occur
// as whole words. Whole-word matching keeps "class" from counting as a
// profanity hit.
func TokenCount(vocab []string, min int) Matcher {
	res := make([]*regexp.Regexp, 0, len(vocab))
	for _, word := range vocab {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return tokenCountMatcher{res: res, min: min}
}

// lowDiversity flags long messages built from very few distinct words,
// which catches copy-paste and keyboard mashing without penalizing short
// replies.
func lowDiversity(text string) bool {
	if len(text) <= 20 {
		return false
	}
	distinct := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		distinct[word] = struct{}{}
	}
	return len(distinct) < 3
}
