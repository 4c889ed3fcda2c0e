package command

import "testing"

func TestNewUppercasesName(t *testing.T) {
	c := New([][]byte{[]byte("get"), []byte("foo")})
	if c.Name != "GET" {
		t.Fatalf("Name = %q", c.Name)
	}
	if c.Str(1) != "foo" {
		t.Fatalf("Str(1) = %q", c.Str(1))
	}
}

func TestIntParsing(t *testing.T) {
	c := New([][]byte{[]byte("expire"), []byte("k"), []byte("42")})
	n, err := c.Int(2)
	if err != nil || n != 42 {
		t.Fatalf("Int = %d, %v", n, err)
	}
}

func TestIntParsingRejectsNonInteger(t *testing.T) {
	c := New([][]byte{[]byte("expire"), []byte("k"), []byte("nope")})
	if _, err := c.Int(2); err != ErrNotInteger {
		t.Fatalf("expected ErrNotInteger, got %v", err)
	}
}

func TestFloatParsing(t *testing.T) {
	c := New([][]byte{[]byte("zadd"), []byte("z"), []byte("1.5"), []byte("m")})
	f, err := c.Float(2)
	if err != nil || f != 1.5 {
		t.Fatalf("Float = %v, %v", f, err)
	}
}
