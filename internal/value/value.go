// Package value implements the polymorphic value kernel: the tagged variant
// over the five concrete value kinds a key can hold (string, list, set,
// sorted set, hash; the HLL sketch is carried inside a string) together
// with the per-kind algorithms spec.md §4.1 assigns to each.
//
// There is no inheritance here by design: every kernel operation receives a
// Value, type-switches (or type-asserts) on the concrete kind it needs, and
// returns ErrWrongType when the stored kind doesn't match. Callers in
// internal/store and internal/dispatch own key lookup, creation-on-write,
// and the empty-collection-deletes-the-key rule; this package only knows
// about the value itself.
package value

import "errors"

// Kind tags the concrete representation a Value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindList
	KindSet
	KindZSet
	KindHash
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindZSet:
		return "zset"
	case KindHash:
		return "hash"
	default:
		return "unknown"
	}
}

// Value is implemented by *Str, *List, *Set, *ZSet and *Hash. A key in a
// store.Database either holds one of these or doesn't exist at all — there is no
// stored Nil variant (spec.md §3: Nil is "only as transient default; never
// stored after mutation").
type Value interface {
	Kind() Kind
	// Encoding reports the live inner representation, mirroring OBJECT
	// ENCODING (SPEC_FULL.md §12).
	Encoding() string
	// Empty reports whether the collection has zero members. Callers must
	// delete the key when a mutation leaves a collection Empty (spec.md §3
	// invariant: "an empty collection value is not preserved").
	Empty() bool
}

// ErrWrongType is returned whenever an operation is invoked against a key
// holding a Value of the wrong Kind.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// AsString type-asserts v as *Str, returning ErrWrongType on mismatch.
func AsString(v Value) (*Str, error) {
	s, ok := v.(*Str)
	if !ok {
		return nil, ErrWrongType
	}
	return s, nil
}

// AsList type-asserts v as *List, returning ErrWrongType on mismatch.
func AsList(v Value) (*List, error) {
	l, ok := v.(*List)
	if !ok {
		return nil, ErrWrongType
	}
	return l, nil
}

// AsSet type-asserts v as *Set, returning ErrWrongType on mismatch.
func AsSet(v Value) (*Set, error) {
	s, ok := v.(*Set)
	if !ok {
		return nil, ErrWrongType
	}
	return s, nil
}

// AsZSet type-asserts v as *ZSet, returning ErrWrongType on mismatch.
func AsZSet(v Value) (*ZSet, error) {
	z, ok := v.(*ZSet)
	if !ok {
		return nil, ErrWrongType
	}
	return z, nil
}

// AsHash type-asserts v as *Hash, returning ErrWrongType on mismatch.
func AsHash(v Value) (*Hash, error) {
	h, ok := v.(*Hash)
	if !ok {
		return nil, ErrWrongType
	}
	return h, nil
}
