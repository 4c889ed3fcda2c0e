package value

import (
	"sort"
	"strconv"
)

// SetEncoding tags the inner representation of a Set.
type SetEncoding uint8

const (
	// SetEncodingIntset is used while every member parses as an int64 and
	// membership stays at or below the configured threshold.
	SetEncodingIntset SetEncoding = iota
	SetEncodingHashtable
)

// DefaultSetMaxIntsetEntries is the default set-max-intset-entries.
const DefaultSetMaxIntsetEntries = 512

// Set is the Set variant. It is internally either a sorted array of unique
// int64s (intset) or a hash-set of byte-sequence members (hashset). The
// switch from intset to hashset is monotone — once the set observes a
// non-integer member, or intset membership would exceed the threshold, it
// converts to hashset and never converts back (spec.md §3).
type Set struct {
	encoding SetEncoding
	ints     []int64 // sorted ascending, unique; valid when encoding==intset
	strs     map[string]struct{}
	maxInt   int
}

// NewSet constructs an empty Set using the given set-max-intset-entries
// threshold (sourced from internal/config).
func NewSet(maxIntsetEntries int) *Set {
	if maxIntsetEntries <= 0 {
		maxIntsetEntries = DefaultSetMaxIntsetEntries
	}
	return &Set{encoding: SetEncodingIntset, maxInt: maxIntsetEntries}
}

func (s *Set) Kind() Kind { return KindSet }
func (s *Set) Empty() bool {
	if s.encoding == SetEncodingIntset {
		return len(s.ints) == 0
	}
	return len(s.strs) == 0
}

func (s *Set) Encoding() string {
	if s.encoding == SetEncodingIntset {
		return "intset"
	}
	return "hashtable"
}

// Card implements SCARD.
func (s *Set) Card() int {
	if s.encoding == SetEncodingIntset {
		return len(s.ints)
	}
	return len(s.strs)
}

// convert migrates an intset-encoded Set to hashset, preserving membership.
func (s *Set) convert() {
	if s.encoding == SetEncodingHashtable {
		return
	}
	m := make(map[string]struct{}, len(s.ints))
	for _, n := range s.ints {
		m[strconv.FormatInt(n, 10)] = struct{}{}
	}
	s.strs = m
	s.ints = nil
	s.encoding = SetEncodingHashtable
}

func (s *Set) intsetAdd(n int64) bool {
	i := sort.Search(len(s.ints), func(i int) bool { return s.ints[i] >= n })
	if i < len(s.ints) && s.ints[i] == n {
		return false
	}
	if len(s.ints)+1 > s.maxInt {
		s.convert()
		return s.hashsetAdd(strconv.FormatInt(n, 10))
	}
	s.ints = append(s.ints, 0)
	copy(s.ints[i+1:], s.ints[i:])
	s.ints[i] = n
	return true
}

func (s *Set) hashsetAdd(member string) bool {
	if s.strs == nil {
		s.strs = make(map[string]struct{})
	}
	if _, ok := s.strs[member]; ok {
		return false
	}
	s.strs[member] = struct{}{}
	return true
}

// Add implements SADD, returning the number of newly added members.
func (s *Set) Add(members ...[]byte) int {
	added := 0
	for _, m := range members {
		ms := string(m)
		if s.encoding == SetEncodingIntset {
			n, err := strconv.ParseInt(ms, 10, 64)
			if err != nil {
				s.convert()
				if s.hashsetAdd(ms) {
					added++
				}
				continue
			}
			if s.intsetAdd(n) {
				added++
			}
			continue
		}
		if s.hashsetAdd(ms) {
			added++
		}
	}
	return added
}

// IsMember implements SISMEMBER.
func (s *Set) IsMember(member []byte) bool {
	ms := string(member)
	if s.encoding == SetEncodingIntset {
		n, err := strconv.ParseInt(ms, 10, 64)
		if err != nil {
			return false
		}
		i := sort.Search(len(s.ints), func(i int) bool { return s.ints[i] >= n })
		return i < len(s.ints) && s.ints[i] == n
	}
	_, ok := s.strs[ms]
	return ok
}

// Members implements SMEMBERS, returning members in an implementation-
// defined but deterministic order (ascending for intset).
func (s *Set) Members() [][]byte {
	out := make([][]byte, 0, s.Card())
	if s.encoding == SetEncodingIntset {
		for _, n := range s.ints {
			out = append(out, []byte(strconv.FormatInt(n, 10)))
		}
		return out
	}
	for m := range s.strs {
		out = append(out, []byte(m))
	}
	return out
}

// RemoveMembers implements SREM, returning the number of members removed.
func (s *Set) RemoveMembers(members ...[]byte) int {
	removed := 0
	for _, m := range members {
		ms := string(m)
		if s.encoding == SetEncodingIntset {
			n, err := strconv.ParseInt(ms, 10, 64)
			if err != nil {
				continue
			}
			i := sort.Search(len(s.ints), func(i int) bool { return s.ints[i] >= n })
			if i < len(s.ints) && s.ints[i] == n {
				s.ints = append(s.ints[:i], s.ints[i+1:]...)
				removed++
			}
			continue
		}
		if _, ok := s.strs[ms]; ok {
			delete(s.strs, ms)
			removed++
		}
	}
	return removed
}

// Pop implements SPOP(count): removes and returns up to count random
// members. With no stable random source requirement, iteration order is
// used as the "random" source (deterministic but unspecified, matching
// spec.md's "probabilistic" wording which only binds semantics, not a PRNG).
func (s *Set) Pop(count int) [][]byte {
	members := s.Members()
	if count > len(members) {
		count = len(members)
	}
	chosen := members[:count]
	s.RemoveMembers(chosen...)
	return chosen
}

// RandMember implements SRANDMEMBER(count, allowDup). A negative count
// (signaled via allowDup=true, count=-n normalized to n by the caller)
// permits duplicates.
func (s *Set) RandMember(count int, allowDup bool) [][]byte {
	members := s.Members()
	if len(members) == 0 {
		return nil
	}
	if !allowDup {
		if count > len(members) {
			count = len(members)
		}
		return members[:count]
	}
	out := make([][]byte, count)
	for i := range out {
		out[i] = members[i%len(members)]
	}
	return out
}

// Inter implements SINTER over the given sets.
func Inter(sets ...*Set) [][]byte {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Card() < smallest.Card() {
			smallest = s
		}
	}
	var out [][]byte
	for _, m := range smallest.Members() {
		inAll := true
		for _, s := range sets {
			if s == smallest {
				continue
			}
			if !s.IsMember(m) {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, m)
		}
	}
	return out
}

// Union implements SUNION over the given sets.
func Union(sets ...*Set) [][]byte {
	seen := make(map[string]struct{})
	var out [][]byte
	for _, s := range sets {
		for _, m := range s.Members() {
			if _, ok := seen[string(m)]; !ok {
				seen[string(m)] = struct{}{}
				out = append(out, m)
			}
		}
	}
	return out
}

// Diff implements SDIFF: members of sets[0] not present in any of sets[1:].
func Diff(sets ...*Set) [][]byte {
	if len(sets) == 0 {
		return nil
	}
	var out [][]byte
	for _, m := range sets[0].Members() {
		found := false
		for _, s := range sets[1:] {
			if s.IsMember(m) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, m)
		}
	}
	return out
}
