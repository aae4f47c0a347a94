package safety

import "strings"

// Category is one harm category in the pattern catalog: an identifier, a
// single severity tier, and the rule that triggers it.
type Category struct {
	ID       string
	Severity Severity
	Reason   string
	Rule     Matcher

	// MatchRaw evaluates the rule against the original trimmed message
	// instead of the normalized text. Structural heuristics need the
	// original casing and punctuation.
	MatchRaw bool
}

// profanityVocab is the closed vocabulary for the profanity count rule.
var profanityVocab = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "dick", "pussy", "whore", "slut", "fag", "retard",
}

// profanityThreshold is the minimum count of distinct profane tokens
// before a message is flagged. A single mild profanity passes.
const profanityThreshold = 2

// Catalog is the ordered harm-category catalog. Order encodes policy
// precedence: the first matching category determines the verdict, so the
// most urgent categories come first. Loaded once, read-only afterwards.
var Catalog = []Category{
	{
		ID:       "self-harm",
		Severity: SeverityCritical,
		Reason:   "Critical safety concern detected",
		Rule: AnyOf(
			Regex(`\b(kill\s+myself|hurt\s+myself|end\s+my\s+life|suicide|want\s+to\s+die|better\s+off\s+dead|self\s*harm|cut\s+myself|harm\s+myself|take\s+my\s+life)\b`),
			Regex(`\b(planning\s+to\s+die|going\s+to\s+kill\s+myself|ending\s+it\s+all|not\s+worth\s+living)\b`),
			Regex(`\b(overdose|poison\s+myself|jump\s+off|hang\s+myself)\b`),
		),
	},
	{
		ID:       "violence",
		Severity: SeverityHigh,
		Reason:   "Violence or threat detected",
		Rule: AnyOf(
			Regex(`\b(kill\s+someone|hurt\s+someone|shoot\s+someone|stab\s+someone|attack\s+someone|bomb\s+someone)\b`),
			Regex(`\b(threaten\s+to\s+kill|going\s+to\s+shoot|planning\s+to\s+hurt|revenge\s+violence)\b`),
			// Weapon terms only flag alongside a school-context term, so a
			// history question about a weapon stays safe.
			AllOf(
				Regex(`\b(weapon|gun|knife|bomb|explosive|poison)\b`),
				Regex(`\b(school|teacher|student|classmate)\b`),
			),
			AllOf(
				Regex(`\b(violence|fight|beat\s+up|punch|hit)\b`),
				Regex(`\b(someone|people|them)\b`),
			),
		),
	},
	{
		ID:       "hate-speech",
		Severity: SeverityHigh,
		Reason:   "Hate speech or discrimination detected",
		Rule: AnyOf(
			AllOf(
				Regex(`\b(hate|despise|loathe)\b`),
				Regex(`\b(people|group|religion|race|gender|community|minority)\b`),
			),
			Regex(`\b(racist|sexist|homophobic|transphobic|discriminate)\b`),
			AllOf(
				Regex(`\b(kill\s+all|destroy\s+all|eliminate\s+all)\b`),
				Regex(`\b(people|group|race|religion)\b`),
			),
			AllOf(
				Regex(`\b(inferior|superior)\b`),
				Regex(`\b(race|people|group)\b`),
			),
			AllOf(
				Regex(`\b(slur|insult)\b`),
				Regex(`\b(racial|ethnic|religious)\b`),
			),
		),
	},
	{
		ID:       "drugs",
		Severity: SeverityMedium,
		Reason:   "Drug-related content detected",
		Rule: AnyOf(
			Regex(`\b(buy\s+drugs|sell\s+drugs|get\s+high|smoke\s+weed|do\s+drugs)\b`),
			AllOf(
				Regex(`\b(marijuana|cocaine|heroin|meth|ecstasy|lsd|pills)\b`),
				Regex(`\b(buy|sell|use|take)\b`),
			),
			Regex(`\b(drug\s+dealer|drug\s+dealing)\b`),
			AllOf(
				Regex(`\b(alcohol|beer|wine|drunk|drinking)\b`),
				Regex(`\b(underage|minor|teen)\b`),
			),
		),
	},
	{
		ID:       "sexual-content",
		Severity: SeverityHigh,
		Reason:   "Inappropriate sexual content detected",
		Rule: AnyOf(
			AllOf(
				Regex(`\b(porn|pornography|nude|naked|sex|sexual)\b`),
				Regex(`\b(video|photo|image|picture)\b`),
			),
			Regex(`\b(sexting|nude\s+photo|sexual\s+content)\b`),
			Regex(`\b(inappropriate\s+relationship|adult\s+content)\b`),
		),
	},
	{
		ID:       "academic-dishonesty",
		Severity: SeverityMedium,
		Reason:   "Academic dishonesty detected",
		Rule: AnyOf(
			Regex(`\b(cheat\s+on\s+test|copy\s+homework|plagiarize|steal\s+answers)\b`),
			Regex(`\b(essay\s+service|homework\s+help\s+for\s+money|buy\s+essay)\b`),
			Regex(`\b(cheating\s+website|test\s+answers\s+online)\b`),
			Regex(`\b(help\s+me\s+cheat|let\s+me\s+cheat|cheat\s+on\s+this)\b`),
		),
	},
	{
		ID:       "personal-info",
		Severity: SeverityMedium,
		Reason:   "Personal information sharing detected",
		Rule: AnyOf(
			Regex(`\b(phone\s+number|address|home\s+address|social\s+security)\b`),
			Regex(`\b(credit\s+card|bank\s+account|password|login)\b`),
			AllOf(
				Regex(`\b(personal\s+information|private\s+details)\b`),
				Regex(`\b(share|give|tell)\b`),
			),
		),
	},
	{
		ID:       "harassment",
		Severity: SeverityHigh,
		Reason:   "Cyberbullying or harassment detected",
		Rule: AnyOf(
			AllOf(
				Regex(`\b(bully|harass|intimidate|threaten)\b`),
				Regex(`\b(someone|student|classmate)\b`),
			),
			Regex(`\b(spread\s+rumors|gossip\s+about|make\s+fun\s+of)\b`),
			AllOf(
				Regex(`\b(exclude|ostracize)\b`),
				Regex(`\b(someone|student|classmate)\b`),
			),
		),
	},
	{
		ID:       "profanity",
		Severity: SeverityMedium,
		Reason:   "Excessive profanity detected",
		Rule:     TokenCount(profanityVocab, profanityThreshold),
	},
	{
		ID:       "spam",
		Severity: SeverityLow,
		Reason:   "Repetitive or spam-like content",
		Rule:     MatcherFunc(lowDiversity),
	},
	{
		ID:       "off-topic",
		Severity: SeverityMedium,
		Reason:   "Content inappropriate for educational setting",
		Rule: AnyOf(
			Regex(`\b(gambling|casino|betting|lottery)\b`),
			Regex(`\b(illegal\s+activities|criminal\s+behavior)\b`),
			Regex(`\b(adult\s+content|mature\s+content)\b`),
		),
	},
	{
		ID:       "excessive-punctuation",
		Severity: SeverityLow,
		Reason:   "Excessive question marks detected",
		Rule:     MatcherFunc(func(text string) bool { return strings.Count(text, "?") > 5 }),
		MatchRaw: true,
	},
	{
		ID:       "shouting",
		Severity: SeverityLow,
		Reason:   "Excessive capitalization detected",
		Rule:     MatcherFunc(allUpper),
		MatchRaw: true,
	},
	{
		ID:       "repeated-characters",
		Severity: SeverityLow,
		Reason:   "Repeated characters detected",
		Rule:     MatcherFunc(repeatedRun),
		MatchRaw: true,
	},
}

// allUpper reports whether a message longer than ten characters is
// entirely uppercase (and contains at least one cased letter).
func allUpper(text string) bool {
	if len(text) <= 10 {
		return false
	}
	return text == strings.ToUpper(text) && text != strings.ToLower(text)
}

// repeatedRun reports whether any rune repeats five or more times in a
// row. RE2 has no backreferences, so this is a plain scan.
func repeatedRun(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= 5 {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
