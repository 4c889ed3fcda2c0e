package pattern

import "testing"

func TestMatchStar(t *testing.T) {
	cases := []struct {
		p, s string
		want bool
	}{
		{"*", "anything", true},
		{"h*llo", "hello", true},
		{"h*llo", "hllo", true},
		{"h*llo", "heeello", true},
		{"h*llo", "hllx", false},
	}
	for _, c := range cases {
		if got := Match(c.p, c.s); got != c.want {
			t.Fatalf("Match(%q,%q) = %v, want %v", c.p, c.s, got, c.want)
		}
	}
}

func TestMatchQuestionMark(t *testing.T) {
	if !Match("h?llo", "hello") {
		t.Fatal("expected match")
	}
	if Match("h?llo", "hllo") {
		t.Fatal("expected no match, wrong length")
	}
}

func TestMatchCharClass(t *testing.T) {
	if !Match("h[ae]llo", "hello") {
		t.Fatal("expected match on class")
	}
	if !Match("h[ae]llo", "hallo") {
		t.Fatal("expected match on class")
	}
	if Match("h[ae]llo", "hillo") {
		t.Fatal("expected no match outside class")
	}
	if !Match("h[^ae]llo", "hillo") {
		t.Fatal("expected match, negated class")
	}
	if Match("h[^ae]llo", "hello") {
		t.Fatal("expected no match, negated class excludes e")
	}
}

func TestMatchCharRange(t *testing.T) {
	if !Match("key[0-9]", "key5") {
		t.Fatal("expected range match")
	}
	if Match("key[0-9]", "keyx") {
		t.Fatal("expected no range match")
	}
}

func TestMatchEscape(t *testing.T) {
	if !Match(`a\*b`, "a*b") {
		t.Fatal("expected escaped literal star to match")
	}
	if Match(`a\*b`, "aXb") {
		t.Fatal("escaped star should not behave as wildcard")
	}
}

func TestMatchEmptyPattern(t *testing.T) {
	if !Match("", "") {
		t.Fatal("empty pattern should match empty string")
	}
	if Match("", "x") {
		t.Fatal("empty pattern should not match non-empty string")
	}
}
