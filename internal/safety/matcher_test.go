package safety

import "testing"

func TestAnyOf(t *testing.T) {
	m := AnyOf(Regex(`\bcat\b`), Regex(`\bdog\b`))
	if !m.Match("the dog barked") {
		t.Fatal("expected match on one member")
	}
	if m.Match("the bird sang") {
		t.Fatal("expected no match")
	}
	if AnyOf().Match("anything") {
		t.Fatal("empty AnyOf must never match")
	}
}

func TestAllOf(t *testing.T) {
	m := AllOf(Regex(`\bgun\b`), Regex(`\bschool\b`))
	if !m.Match("bringing a gun to school") {
		t.Fatal("expected conjunction to match")
	}
	if m.Match("a gun for hunting") {
		t.Fatal("single member must not satisfy conjunction")
	}
	if AllOf().Match("anything") {
		t.Fatal("empty AllOf must never match")
	}
}

func TestTokenCountDistinctWholeWords(t *testing.T) {
	m := TokenCount([]string{"ass", "hell"}, 2)
	if m.Match("class assignments are hellish") {
		t.Fatal("substrings must not count as tokens")
	}
	if m.Match("what the hell") {
		t.Fatal("one distinct token is below the threshold")
	}
	if !m.Match("hell no, kiss my ass") {
		t.Fatal("two distinct tokens should match")
	}
	// Repeats of the same token count once.
	if m.Match("hell hell hell hell") {
		t.Fatal("repeated token must count as one")
	}
}

func TestRepeatedRun(t *testing.T) {
	if repeatedRun("aaaa") {
		t.Fatal("four repeats is below the threshold")
	}
	if !repeatedRun("aaaaa") {
		t.Fatal("five repeats should match")
	}
	if !repeatedRun("oh noooooo") {
		t.Fatal("run inside a word should match")
	}
}

func TestAllUpper(t *testing.T) {
	if allUpper("SHORT") {
		t.Fatal("messages of ten characters or fewer are exempt")
	}
	if !allUpper("THIS IS SHOUTING") {
		t.Fatal("long uppercase message should match")
	}
	if allUpper("This Is Not Shouting") {
		t.Fatal("mixed case must not match")
	}
	if allUpper("1234567890123") {
		t.Fatal("digits only must not match")
	}
}
