package value

import "testing"

func TestStrIncrBy(t *testing.T) {
	s := NewStr([]byte("9223372036854775806"))
	n, err := s.IncrBy(1)
	if err != nil || n != 9223372036854775807 {
		t.Fatalf("IncrBy: got %d, %v", n, err)
	}
	if _, err := s.IncrBy(1); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestStrGetRangeNegative(t *testing.T) {
	s := NewStr([]byte("Hello World"))
	got := s.GetRange(-5, -1)
	if string(got) != "World" {
		t.Fatalf("GetRange(-5,-1) = %q", got)
	}
}

func TestStrSetRangePads(t *testing.T) {
	s := NewStr([]byte("Hello"))
	n, err := s.SetRange(6, []byte("World"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Fatalf("len = %d", n)
	}
	if s.data[5] != 0 {
		t.Fatalf("expected zero padding at offset 5, got %v", s.data)
	}
}

func TestSetBitGetBit(t *testing.T) {
	s := NewStr(nil)
	old, err := s.SetBit(7, 1)
	if err != nil || old != 0 {
		t.Fatal(err)
	}
	bit, err := s.GetBit(7)
	if err != nil || bit != 1 {
		t.Fatalf("GetBit = %d, %v", bit, err)
	}
	if s.data[0] != 0x01 {
		t.Fatalf("expected MSB-first layout, got %08b", s.data[0])
	}
}
