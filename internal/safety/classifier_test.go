package safety

import (
	"strings"
	"testing"
)

func TestClassifyCriticalSelfHarm(t *testing.T) {
	messages := []string{
		"I want to kill myself",
		"i WANT to KILL myself",
		"sometimes I think I would be better off dead, honestly",
		"I am planning to die",
	}
	for _, msg := range messages {
		verdict := Classify(msg)
		if verdict.Safe {
			t.Fatalf("expected unsafe verdict for %q", msg)
		}
		if verdict.Severity != SeverityCritical {
			t.Fatalf("expected critical severity for %q, got %s", msg, verdict.Severity)
		}
		if verdict.Category != "self-harm" {
			t.Fatalf("expected self-harm category for %q, got %s", msg, verdict.Category)
		}
	}
}

func TestClassifyShortMessagesAreSafe(t *testing.T) {
	for _, msg := range []string{"", "h", "!", " "} {
		verdict := Classify(msg)
		if !verdict.Safe {
			t.Fatalf("expected safe verdict for %q, got %+v", msg, verdict)
		}
		if verdict.Severity != SeverityLow {
			t.Fatalf("expected low severity for %q, got %s", msg, verdict.Severity)
		}
	}
}

func TestClassifyMessageTooLong(t *testing.T) {
	long := strings.Repeat("what is photosynthesis? ", 100)
	if len(long) <= 2000 {
		t.Fatalf("test input too short: %d", len(long))
	}
	verdict := Classify(long)
	if verdict.Safe {
		t.Fatal("expected unsafe verdict for oversized message")
	}
	if verdict.Reason != "Message too long" {
		t.Fatalf("expected reason %q, got %q", "Message too long", verdict.Reason)
	}
	if verdict.Severity != SeverityMedium {
		t.Fatalf("expected medium severity, got %s", verdict.Severity)
	}
}

func TestClassifyPrecedenceSelfHarmOverProfanity(t *testing.T) {
	verdict := Classify("fuck this shit, I want to kill myself")
	if verdict.Safe {
		t.Fatal("expected unsafe verdict")
	}
	if verdict.Category != "self-harm" {
		t.Fatalf("expected self-harm to win precedence, got %s", verdict.Category)
	}
	if verdict.Severity != SeverityCritical {
		t.Fatalf("expected critical severity, got %s", verdict.Severity)
	}
}

func TestClassifyProfanityCountBoundary(t *testing.T) {
	single := Classify("this homework is damn hard")
	if !single.Safe {
		t.Fatalf("one profane token should pass, got %+v", single)
	}

	double := Classify("fuck this shit")
	if double.Safe {
		t.Fatal("two profane tokens should flag")
	}
	if double.Category != "profanity" {
		t.Fatalf("expected profanity category, got %s", double.Category)
	}
	if double.Severity != SeverityMedium {
		t.Fatalf("expected medium severity, got %s", double.Severity)
	}
}

func TestClassifyProfanityWholeWordsOnly(t *testing.T) {
	// "class" contains "ass" and "hello" contains "hell"; neither counts.
	verdict := Classify("hello class, what are we learning today")
	if !verdict.Safe {
		t.Fatalf("expected safe verdict, got %+v", verdict)
	}
}

func TestClassifyWeaponCoOccurrence(t *testing.T) {
	safe := Classify("I bought a gun for hunting with my dad")
	if !safe.Safe {
		t.Fatalf("weapon term without school context should pass, got %+v", safe)
	}

	unsafe := Classify("bringing a gun to school")
	if unsafe.Safe {
		t.Fatal("weapon plus school context should flag")
	}
	if unsafe.Category != "violence" {
		t.Fatalf("expected violence category, got %s", unsafe.Category)
	}
	if unsafe.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %s", unsafe.Severity)
	}
}

func TestClassifyHateSpeech(t *testing.T) {
	verdict := Classify("you're all idiots, I hate this group")
	if verdict.Safe {
		t.Fatal("expected unsafe verdict")
	}
	if verdict.Category != "hate-speech" {
		t.Fatalf("expected hate-speech category, got %s", verdict.Category)
	}
	if verdict.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %s", verdict.Severity)
	}
}

func TestClassifySafeEducationalQuestion(t *testing.T) {
	for _, msg := range []string{
		"what is photosynthesis?",
		"can you explain the causes of World War I?",
		"help me understand fractions",
	} {
		verdict := Classify(msg)
		if !verdict.Safe {
			t.Fatalf("expected safe verdict for %q, got %+v", msg, verdict)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	inputs := []string{
		"I want to kill myself",
		"what is photosynthesis?",
		"fuck this shit",
		"HELP ME WITH MY HOMEWORK PLEASE",
	}
	for _, msg := range inputs {
		first := Classify(msg)
		second := Classify(msg)
		if first != second {
			t.Fatalf("verdicts differ for %q: %+v vs %+v", msg, first, second)
		}
	}
}

func TestClassifyStructuralHeuristics(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		category string
	}{
		{"question marks", "what? why? how? when? where? who?", "excessive-punctuation"},
		{"all caps", "HELP ME RIGHT NOW PLEASE", "shouting"},
		{"repeated characters", "hiiiiiii there friend", "repeated-characters"},
	}
	for _, tc := range cases {
		verdict := Classify(tc.message)
		if verdict.Safe {
			t.Fatalf("%s: expected unsafe verdict for %q", tc.name, tc.message)
		}
		if verdict.Category != tc.category {
			t.Fatalf("%s: expected category %s, got %s", tc.name, tc.category, verdict.Category)
		}
		if verdict.Severity != SeverityLow {
			t.Fatalf("%s: expected low severity, got %s", tc.name, verdict.Severity)
		}
	}
}

func TestClassifySpamLowDiversity(t *testing.T) {
	verdict := Classify("spam spam spam spam spam spam spam")
	if verdict.Safe {
		t.Fatal("expected unsafe verdict for low-diversity message")
	}
	if verdict.Category != "spam" {
		t.Fatalf("expected spam category, got %s", verdict.Category)
	}

	short := Classify("yes yes")
	if !short.Safe {
		t.Fatalf("short repetitive reply should pass, got %+v", short)
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Fatal("severity tiers are not totally ordered")
	}
	if ParseSeverity("CRITICAL") != SeverityCritical {
		t.Fatal("ParseSeverity should be case-insensitive")
	}
	if ParseSeverity("unknown") != SeverityLow {
		t.Fatal("unknown tier should parse as low")
	}
	if SeverityCritical.String() != "critical" || SeverityLow.String() != "low" {
		t.Fatal("severity names do not round-trip")
	}
}
