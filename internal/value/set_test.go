package value

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestSetIntsetToHashsetSwitch(t *testing.T) {
	s := NewSet(4)
	s.Add([]byte("1"), []byte("2"), []byte("3"), []byte("4"))
	if s.Encoding() != "intset" {
		t.Fatalf("expected intset, got %s", s.Encoding())
	}
	s.Add([]byte("notanumber"))
	if s.Encoding() != "hashtable" {
		t.Fatalf("expected hashtable after non-integer insert, got %s", s.Encoding())
	}
	if s.Card() != 5 {
		t.Fatalf("card = %d", s.Card())
	}
}

func TestSetIntsetOverflowThreshold(t *testing.T) {
	s := NewSet(2)
	s.Add([]byte("1"), []byte("2"), []byte("3"))
	if s.Encoding() != "hashtable" {
		t.Fatalf("expected conversion past threshold, got %s", s.Encoding())
	}
	if s.Card() != 3 {
		t.Fatalf("card = %d", s.Card())
	}
}

func TestSetInterUnionDiff(t *testing.T) {
	a := NewSet(512)
	a.Add([]byte("1"), []byte("2"), []byte("3"))
	b := NewSet(512)
	b.Add([]byte("2"), []byte("3"), []byte("4"))

	if got := len(Inter(a, b)); got != 2 {
		t.Fatalf("inter len = %d", got)
	}
	if got := len(Union(a, b)); got != 4 {
		t.Fatalf("union len = %d", got)
	}
	if got := len(Diff(a, b)); got != 1 {
		t.Fatalf("diff len = %d", got)
	}
}

func TestSetEncodingInvariantAcrossSwitch(t *testing.T) {
	members := func(s *Set) map[string]bool {
		m := make(map[string]bool)
		for _, v := range s.Members() {
			m[string(v)] = true
		}
		return m
	}
	s := NewSet(2)
	s.Add([]byte("1"), []byte("2"))
	before := members(s)
	s.Add([]byte("3")) // crosses threshold, converts to hashtable
	after := members(s)
	for k := range before {
		if !after[k] {
			t.Fatalf("member %q lost across encoding switch\nbefore: %s\nafter: %s", k, spew.Sdump(before), spew.Sdump(after))
		}
	}
}
