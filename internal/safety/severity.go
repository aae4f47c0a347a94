package safety

import "strings"

// Severity grades how urgent the response to a flagged message is.
// Values are ordered; a higher value always demands the more urgent
// response, so tiers compare with plain integer comparison.
type Severity int

const (
	// SeverityLow covers structural noise such as spam or shouting.
	SeverityLow Severity = iota
	// SeverityMedium covers policy violations that warrant a redirect.
	SeverityMedium
	// SeverityHigh covers threats, hate speech, and harassment.
	SeverityHigh
	// SeverityCritical covers self-harm signals requiring crisis resources.
	SeverityCritical
)

// String returns the canonical lowercase name of the tier.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseSeverity maps a tier name back to its Severity. Unknown names
// resolve to SeverityLow.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
