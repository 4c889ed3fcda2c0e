package store

import (
	"testing"

	"github.com/nimbusdb/nimbusdb/internal/value"
)

func TestSortNumericAscending(t *testing.T) {
	d := newTestDB()
	l := value.NewList()
	l.PushRight([]byte("3"), []byte("1"), []byte("2"))
	d.Set("mylist", l)

	got, err := d.Sort("mylist", SortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("index %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestSortByExternalWeight(t *testing.T) {
	d := newTestDB()
	l := value.NewList()
	l.PushRight([]byte("a"), []byte("b"), []byte("c"))
	d.Set("mylist", l)
	d.Set("weight_a", value.NewStr([]byte("3")))
	d.Set("weight_b", value.NewStr([]byte("1")))
	d.Set("weight_c", value.NewStr([]byte("2")))

	got, err := d.Sort("mylist", SortOptions{By: "weight_*"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c", "a"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("index %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestSortGetHashField(t *testing.T) {
	d := newTestDB()
	l := value.NewList()
	l.PushRight([]byte("1"), []byte("2"))
	d.Set("ids", l)
	h1 := value.NewHash(128, 64)
	h1.Set("name", []byte("alice"))
	d.Set("user:1", h1)
	h2 := value.NewHash(128, 64)
	h2.Set("name", []byte("bob"))
	d.Set("user:2", h2)

	got, err := d.Sort("ids", SortOptions{Get: []string{"user:*->name"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(got[0]) != "alice" || string(got[1]) != "bob" {
		t.Fatalf("got %q", got)
	}
}

func TestSortAlphaOrdering(t *testing.T) {
	d := newTestDB()
	l := value.NewList()
	l.PushRight([]byte("banana"), []byte("apple"), []byte("cherry"))
	d.Set("mylist", l)

	got, err := d.Sort("mylist", SortOptions{Alpha: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apple", "banana", "cherry"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("index %d = %q, want %q", i, got[i], w)
		}
	}
}
