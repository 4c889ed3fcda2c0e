package store

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/value"
)

func TestSelectOutOfRange(t *testing.T) {
	s := New(4, zap.NewNop())
	defer s.Close()
	if _, ok := s.Select(4); ok {
		t.Fatal("expected Select(4) out of range for a 4-db store")
	}
	if _, ok := s.Select(-1); ok {
		t.Fatal("expected Select(-1) out of range")
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	s := New(2, zap.NewNop())
	defer s.Close()
	db0, _ := s.Select(0)
	db1, _ := s.Select(1)
	db0.Set("k", value.NewStr([]byte("a")))
	if _, ok := db1.Get("k"); ok {
		t.Fatal("expected db1 unaffected by a write to db0")
	}
}

func TestFlushAllClearsEveryNamespace(t *testing.T) {
	s := New(2, zap.NewNop())
	defer s.Close()
	db0, _ := s.Select(0)
	db1, _ := s.Select(1)
	db0.Set("a", value.NewStr([]byte("1")))
	db1.Set("b", value.NewStr([]byte("2")))
	s.FlushAll()
	if db0.Size() != 0 || db1.Size() != 0 {
		t.Fatal("expected every namespace empty after FlushAll")
	}
}
