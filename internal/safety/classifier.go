// Package safety screens student messages against a static catalog of
// harm categories before they reach the language model. Classification is
// deterministic pattern matching over known vocabularies; there is no
// statistical model.
package safety

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// maxMessageLength is the upper bound on classifiable input. Longer
// messages are rejected before any category evaluation.
const maxMessageLength = 2000

// minMessageLength is the lower bound below which a message short-circuits
// as safe, so greetings like "hi" never hit the catalog.
const minMessageLength = 2

// Verdict is the immutable result of classifying one message. The
// classifier never persists it; the caller decides whether to flag.
type Verdict struct {
	Safe     bool
	Category string
	Severity Severity
	Reason   string
}

// safeVerdict is returned when no category matches.
func safeVerdict() Verdict {
	return Verdict{Safe: true, Severity: SeverityLow, Reason: "OK"}
}

// Classify evaluates one message against the catalog and returns a
// severity-graded verdict. It is a pure function of its input and the
// static catalog: no side effects, identical verdicts for identical
// inputs.
//
// Evaluation order is policy: categories earlier in the catalog are more
// urgent, and the first matching category wins. If evaluation itself
// fails the classifier fails closed, returning an unsafe medium verdict
// while the internal error is logged rather than surfaced in the verdict.
func Classify(message string) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("safety: classification failed, failing closed")
			verdict = Verdict{
				Safe:     false,
				Category: "unclassifiable",
				Severity: SeverityMedium,
				Reason:   "Message could not be classified",
			}
		}
	}()

	raw := strings.TrimSpace(message)
	normalized := normalize(raw)

	if len(normalized) < minMessageLength {
		return safeVerdict()
	}
	if len(message) > maxMessageLength {
		return Verdict{
			Safe:     false,
			Category: "message-too-long",
			Severity: SeverityMedium,
			Reason:   "Message too long",
		}
	}

	for _, category := range Catalog {
		input := normalized
		if category.MatchRaw {
			input = raw
		}
		if category.Rule.Match(input) {
			return Verdict{
				Safe:     false,
				Category: category.ID,
				Severity: category.Severity,
				Reason:   category.Reason,
			}
		}
	}
	return safeVerdict()
}

// normalize case-folds and collapses whitespace for pattern matching. The
// original text is kept separately for logging and structural checks.
func normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
