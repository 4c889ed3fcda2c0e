package session

import (
	"testing"

	"github.com/nimbusdb/nimbusdb/internal/command"
)

func TestBeginMultiRejectsNesting(t *testing.T) {
	c := New(nil)
	if err := c.BeginMulti(); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginMulti(); err != ErrNestedMulti {
		t.Fatalf("expected ErrNestedMulti, got %v", err)
	}
}

func TestQueueAndEndMulti(t *testing.T) {
	c := New(nil)
	c.BeginMulti()
	c.Queue(command.New([][]byte{[]byte("SET"), []byte("a"), []byte("1")}))
	c.Queue(command.New([][]byte{[]byte("GET"), []byte("a")}))

	queued, dirty := c.EndMulti()
	if dirty {
		t.Fatal("expected clean transaction")
	}
	if len(queued) != 2 {
		t.Fatalf("queued len = %d", len(queued))
	}
	if c.InMulti() {
		t.Fatal("expected MULTI closed after EndMulti")
	}
}

func TestMarkDirtyPropagatesToEndMulti(t *testing.T) {
	c := New(nil)
	c.BeginMulti()
	c.MarkDirty()
	_, dirty := c.EndMulti()
	if !dirty {
		t.Fatal("expected dirty transaction")
	}
}

func TestSubscriptionTrackingCounts(t *testing.T) {
	c := New(nil)
	if n := c.TrackChannel("a"); n != 1 {
		t.Fatalf("count = %d", n)
	}
	if n := c.TrackPattern("b*"); n != 2 {
		t.Fatalf("count = %d", n)
	}
	if n := c.UntrackChannel("a"); n != 1 {
		t.Fatalf("count = %d", n)
	}
}
