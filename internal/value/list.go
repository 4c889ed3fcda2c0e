package value

import "errors"

// ErrIndexOutOfRange mirrors redis-server's LSET error on a missing index.
var ErrIndexOutOfRange = errors.New("ERR index out of range")

// ErrNoSuchKey mirrors redis-server's error for ops requiring an existing key.
var ErrNoSuchKey = errors.New("ERR no such key")

// listNode is a doubly linked list cell, grounded on the List/ListNode shape
// used for the reference cache's list type; generalized here to arbitrary
// byte-slice members and negative indexing per spec.md §4.1.
type listNode struct {
	val        []byte
	prev, next *listNode
}

// List is the List variant: an ordered sequence of byte sequences, index 0
// at the head, negative indices counting from the tail.
type List struct {
	head, tail *listNode
	length     int
}

// NewList constructs an empty List.
func NewList() *List { return &List{} }

func (l *List) Kind() Kind      { return KindList }
func (l *List) Empty() bool     { return l.length == 0 }
func (l *List) Encoding() string {
	if l.length <= 128 {
		return "listpack"
	}
	return "quicklist"
}

// Len implements LLEN.
func (l *List) Len() int { return l.length }

// PushLeft implements LPUSH, prepending vals in the order given (so the
// last element of vals ends up at the head).
func (l *List) PushLeft(vals ...[]byte) int {
	for _, v := range vals {
		n := &listNode{val: append([]byte(nil), v...)}
		if l.head == nil {
			l.head, l.tail = n, n
		} else {
			n.next = l.head
			l.head.prev = n
			l.head = n
		}
		l.length++
	}
	return l.length
}

// PushRight implements RPUSH.
func (l *List) PushRight(vals ...[]byte) int {
	for _, v := range vals {
		n := &listNode{val: append([]byte(nil), v...)}
		if l.tail == nil {
			l.head, l.tail = n, n
		} else {
			n.prev = l.tail
			l.tail.next = n
			l.tail = n
		}
		l.length++
	}
	return l.length
}

// PopLeft implements LPOP (without count).
func (l *List) PopLeft() ([]byte, bool) {
	if l.head == nil {
		return nil, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.length--
	return n.val, true
}

// PopRight implements RPOP (without count).
func (l *List) PopRight() ([]byte, bool) {
	if l.tail == nil {
		return nil, false
	}
	n := l.tail
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.length--
	return n.val, true
}

// PopLeftN pops up to count elements from the head, used by LPOP key count.
func (l *List) PopLeftN(count int) [][]byte {
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		v, ok := l.PopLeft()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// PopRightN pops up to count elements from the tail, used by RPOP key count.
func (l *List) PopRightN(count int) [][]byte {
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		v, ok := l.PopRight()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func (l *List) nodeAt(index int) *listNode {
	if index < 0 {
		index = l.length + index
	}
	if index < 0 || index >= l.length {
		return nil
	}
	// walk from the nearer end
	if index <= l.length/2 {
		n := l.head
		for i := 0; i < index; i++ {
			n = n.next
		}
		return n
	}
	n := l.tail
	for i := l.length - 1; i > index; i-- {
		n = n.prev
	}
	return n
}

// Index implements LINDEX.
func (l *List) Index(i int) ([]byte, bool) {
	n := l.nodeAt(i)
	if n == nil {
		return nil, false
	}
	return n.val, true
}

// Set implements LSET.
func (l *List) Set(i int, v []byte) error {
	n := l.nodeAt(i)
	if n == nil {
		return ErrIndexOutOfRange
	}
	n.val = append([]byte(nil), v...)
	return nil
}

// Range implements LRANGE(start, stop), both inclusive, clamped to bounds.
func (l *List) Range(start, stop int) [][]byte {
	n := l.length
	if n == 0 {
		return nil
	}
	start = normalizeRangeIndex(start, n)
	stop = normalizeRangeIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil
	}
	out := make([][]byte, 0, stop-start+1)
	node := l.nodeAt(start)
	for i := start; i <= stop; i++ {
		out = append(out, node.val)
		node = node.next
	}
	return out
}

// Trim implements LTRIM, keeping only [start,stop].
func (l *List) Trim(start, stop int) {
	kept := l.Range(start, stop)
	l.head, l.tail, l.length = nil, nil, 0
	l.PushRight(kept...)
}

// Insert implements LINSERT BEFORE (before=true) or AFTER. Returns the new length, or -1
// if pivot was not found.
func (l *List) Insert(before bool, pivot, v []byte) int {
	for n := l.head; n != nil; n = n.next {
		if bytesEqual(n.val, pivot) {
			nn := &listNode{val: append([]byte(nil), v...)}
			if before {
				nn.prev = n.prev
				nn.next = n
				if n.prev != nil {
					n.prev.next = nn
				} else {
					l.head = nn
				}
				n.prev = nn
			} else {
				nn.next = n.next
				nn.prev = n
				if n.next != nil {
					n.next.prev = nn
				} else {
					l.tail = nn
				}
				n.next = nn
			}
			l.length++
			return l.length
		}
	}
	return -1
}

// Rem implements LREM: count>0 scans head→tail, count<0 scans tail→head,
// count==0 removes all matches.
func (l *List) Rem(count int, v []byte) int {
	removed := 0
	if count >= 0 {
		limit := count
		n := l.head
		for n != nil {
			next := n.next
			if (limit == 0 || removed < limit) && bytesEqual(n.val, v) {
				l.unlink(n)
				removed++
			}
			n = next
		}
		return removed
	}
	limit := -count
	n := l.tail
	for n != nil {
		prev := n.prev
		if removed < limit && bytesEqual(n.val, v) {
			l.unlink(n)
			removed++
		}
		n = prev
	}
	return removed
}

func (l *List) unlink(n *listNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.length--
}

// RPopLPush moves the tail of l onto the head of dst, returning the moved
// value. Callers (internal/dispatch) are responsible for making the two-key
// move atomic by holding the dispatcher's single-threaded execution model
// (spec.md §4.1: "atomic between the two keys ... single-threaded execution
// gives this for free").
func RPopLPush(src, dst *List) ([]byte, bool) {
	v, ok := src.PopRight()
	if !ok {
		return nil, false
	}
	dst.PushLeft(v)
	return v, true
}

func normalizeRangeIndex(i, n int) int {
	if i < 0 {
		i = n + i
	}
	return i
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
