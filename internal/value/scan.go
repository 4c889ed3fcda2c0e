package value

// ScanCursor is the opaque cursor threaded through SCAN/SSCAN/HSCAN/ZSCAN
// (spec.md §4.1). The caller passes the current items in a deterministic
// order on every call and the cursor is a position in that order; cursor 0
// means "start" or "end" depending on call position. On a collection that
// does not change during the iteration every element is seen once; an
// insertion or removal between calls shifts positions, so an element
// present throughout can then be seen twice or skipped.
type ScanCursor uint64

// ScanPage walks items (already filtered to a deterministic order by the
// caller) starting at cursor, returning up to count items and the next
// cursor (0 once exhausted).
func ScanPage[T any](items []T, cursor ScanCursor, count int) (ScanCursor, []T) {
	if count <= 0 {
		count = 10
	}
	start := int(cursor)
	if start >= len(items) {
		return 0, nil
	}
	end := start + count
	if end >= len(items) {
		return 0, items[start:]
	}
	return ScanCursor(end), items[start:end]
}
