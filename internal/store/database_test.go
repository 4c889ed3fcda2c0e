package store

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/value"
)

func newTestDB() *Database {
	return newDatabase(0, zap.NewNop())
}

func TestSetGetRoundtrip(t *testing.T) {
	d := newTestDB()
	d.Set("k", value.NewStr([]byte("v")))
	v, ok := d.Get("k")
	if !ok {
		t.Fatal("expected key present")
	}
	s, err := value.AsString(v)
	if err != nil || string(s.Bytes()) != "v" {
		t.Fatalf("Get = %v, %v", s, err)
	}
}

func TestExpireLazyEviction(t *testing.T) {
	d := newTestDB()
	d.Set("k", value.NewStr([]byte("v")))
	ok, err := d.Expire("k", time.Now().Add(-time.Second), ExpireFlags{})
	if err != nil || !ok {
		t.Fatalf("Expire = %v, %v", ok, err)
	}
	if _, ok := d.Get("k"); ok {
		t.Fatal("expected key lazily evicted past expiration")
	}
}

func TestExpireNXRefusesWhenTTLAlreadySet(t *testing.T) {
	d := newTestDB()
	d.Set("k", value.NewStr([]byte("v")))
	future := time.Now().Add(time.Hour)
	if ok, _ := d.Expire("k", future, ExpireFlags{}); !ok {
		t.Fatal("expected first EXPIRE to succeed")
	}
	if ok, _ := d.Expire("k", future, ExpireFlags{NX: true}); ok {
		t.Fatal("expected NX EXPIRE to refuse when TTL already set")
	}
}

func TestMarkWrittenDeletesEmptyCollection(t *testing.T) {
	d := newTestDB()
	l := value.NewList()
	l.PushRight([]byte("a"))
	d.Set("k", l)
	l.PopLeft()
	d.MarkWritten("k")
	if _, ok := d.Get("k"); ok {
		t.Fatal("expected key deleted once its collection went empty")
	}
}

func TestRenameMovesTTL(t *testing.T) {
	d := newTestDB()
	d.Set("src", value.NewStr([]byte("v")))
	when := time.Now().Add(time.Hour)
	d.Expire("src", when, ExpireFlags{})
	if err := d.Rename("src", "dst"); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Get("src"); ok {
		t.Fatal("src should be gone after rename")
	}
	ttl, ok := d.TTL("dst")
	if !ok || ttl <= 0 {
		t.Fatalf("dst TTL = %v, %v", ttl, ok)
	}
}

func TestWatchSetDirtyAfterWrite(t *testing.T) {
	d := newTestDB()
	d.Set("k", value.NewStr([]byte("v")))
	ws := d.NewWatchSet("k")
	if ws.Dirty() {
		t.Fatal("expected clean watch set immediately after WATCH")
	}
	d.Set("k", value.NewStr([]byte("v2")))
	if !ws.Dirty() {
		t.Fatal("expected watch set dirty after key was rewritten")
	}
}

func TestKeysGlobMatch(t *testing.T) {
	d := newTestDB()
	d.Set("user:1", value.NewStr([]byte("a")))
	d.Set("user:2", value.NewStr([]byte("b")))
	d.Set("order:1", value.NewStr([]byte("c")))
	got := d.Keys("user:*")
	if len(got) != 2 {
		t.Fatalf("Keys(user:*) = %v", got)
	}
}

func TestBlockOnWakesOnWrite(t *testing.T) {
	d := newTestDB()
	wake, cancel := d.BlockOn("k")
	defer cancel()
	done := make(chan struct{})
	go func() {
		<-wake
		close(done)
	}()
	d.Set("k", value.NewStr([]byte("v")))
	d.MarkWritten("k")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected blocked waiter to be woken")
	}
}
