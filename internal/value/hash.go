package value

// HashEncoding tags the inner representation of a Hash.
type HashEncoding uint8

const (
	// HashEncodingZiplist is a compact, insertion-ordered field list used
	// while the hash stays small, mirroring the reference's ziplist
	// encoding (spec.md §3/§9 — implemented here as a real compact slice
	// rather than the reference's empty stub, per DESIGN.md's Open
	// Question decision).
	HashEncodingZiplist HashEncoding = iota
	HashEncodingHashtable
)

// DefaultHashMaxZiplistEntries / DefaultHashMaxZiplistValue are the default
// hash-max-ziplist-{entries,value} thresholds.
const (
	DefaultHashMaxZiplistEntries = 128
	DefaultHashMaxZiplistValue   = 64
)

type hashField struct {
	field string
	val   []byte
}

// Hash is the Hash variant: either a compact ordered field list (ziplist)
// or an open map, switching monotonically on threshold breach.
type Hash struct {
	encoding HashEncoding
	fields   []hashField // valid when encoding==ziplist; preserves insertion order
	big      map[string][]byte

	maxEntries int
	maxValue   int
}

// NewHash constructs an empty Hash using the given thresholds (sourced from
// internal/config).
func NewHash(maxEntries, maxValue int) *Hash {
	if maxEntries <= 0 {
		maxEntries = DefaultHashMaxZiplistEntries
	}
	if maxValue <= 0 {
		maxValue = DefaultHashMaxZiplistValue
	}
	return &Hash{encoding: HashEncodingZiplist, maxEntries: maxEntries, maxValue: maxValue}
}

func (h *Hash) Kind() Kind { return KindHash }
func (h *Hash) Empty() bool {
	if h.encoding == HashEncodingZiplist {
		return len(h.fields) == 0
	}
	return len(h.big) == 0
}

func (h *Hash) Encoding() string {
	if h.encoding == HashEncodingZiplist {
		return "listpack"
	}
	return "hashtable"
}

func (h *Hash) convert() {
	if h.encoding == HashEncodingHashtable {
		return
	}
	m := make(map[string][]byte, len(h.fields))
	for _, f := range h.fields {
		m[f.field] = f.val
	}
	h.big = m
	h.fields = nil
	h.encoding = HashEncodingHashtable
}

func (h *Hash) ziplistIndex(field string) int {
	for i, f := range h.fields {
		if f.field == field {
			return i
		}
	}
	return -1
}

// Len implements HLEN.
func (h *Hash) Len() int {
	if h.encoding == HashEncodingZiplist {
		return len(h.fields)
	}
	return len(h.big)
}

// Get implements HGET.
func (h *Hash) Get(field string) ([]byte, bool) {
	if h.encoding == HashEncodingZiplist {
		if i := h.ziplistIndex(field); i >= 0 {
			return h.fields[i].val, true
		}
		return nil, false
	}
	v, ok := h.big[field]
	return v, ok
}

// Set implements HSET for one field, returning true if the field is new.
func (h *Hash) Set(field string, val []byte) bool {
	isNew := !h.exists(field)
	if len(field) > h.maxValue || len(val) > h.maxValue || h.Len()+boolToInt(isNew) > h.maxEntries {
		h.convert()
	}
	if h.encoding == HashEncodingZiplist {
		if i := h.ziplistIndex(field); i >= 0 {
			h.fields[i].val = append([]byte(nil), val...)
			return false
		}
		h.fields = append(h.fields, hashField{field: field, val: append([]byte(nil), val...)})
		return true
	}
	if h.big == nil {
		h.big = make(map[string][]byte)
	}
	_, existed := h.big[field]
	h.big[field] = append([]byte(nil), val...)
	return !existed
}

func (h *Hash) exists(field string) bool {
	_, ok := h.Get(field)
	return ok
}

// SetNX implements HSETNX: only sets if the field doesn't already exist.
func (h *Hash) SetNX(field string, val []byte) bool {
	if h.exists(field) {
		return false
	}
	h.Set(field, val)
	return true
}

// Del implements HDEL, returning the number of fields removed.
func (h *Hash) Del(fields ...string) int {
	removed := 0
	for _, f := range fields {
		if h.encoding == HashEncodingZiplist {
			if i := h.ziplistIndex(f); i >= 0 {
				h.fields = append(h.fields[:i], h.fields[i+1:]...)
				removed++
			}
			continue
		}
		if _, ok := h.big[f]; ok {
			delete(h.big, f)
			removed++
		}
	}
	return removed
}

// Keys implements HKEYS.
func (h *Hash) Keys() []string {
	if h.encoding == HashEncodingZiplist {
		out := make([]string, len(h.fields))
		for i, f := range h.fields {
			out[i] = f.field
		}
		return out
	}
	out := make([]string, 0, len(h.big))
	for k := range h.big {
		out = append(out, k)
	}
	return out
}

// Vals implements HVALS.
func (h *Hash) Vals() [][]byte {
	if h.encoding == HashEncodingZiplist {
		out := make([][]byte, len(h.fields))
		for i, f := range h.fields {
			out[i] = f.val
		}
		return out
	}
	out := make([][]byte, 0, len(h.big))
	for _, v := range h.big {
		out = append(out, v)
	}
	return out
}

// All implements HGETALL.
func (h *Hash) All() map[string][]byte {
	out := make(map[string][]byte, h.Len())
	if h.encoding == HashEncodingZiplist {
		for _, f := range h.fields {
			out[f.field] = f.val
		}
		return out
	}
	for k, v := range h.big {
		out[k] = v
	}
	return out
}

// IncrBy implements HINCRBY.
func (h *Hash) IncrBy(field string, delta int64) (int64, error) {
	cur, ok := h.Get(field)
	var n int64
	if ok {
		var err error
		n, err = parseHashInt(cur)
		if err != nil {
			return 0, err
		}
	}
	next := n + delta
	h.Set(field, []byte(formatInt(next)))
	return next, nil
}

// IncrByFloat implements HINCRBYFLOAT.
func (h *Hash) IncrByFloat(field string, delta float64) (float64, error) {
	cur, ok := h.Get(field)
	var f float64
	if ok {
		var err error
		f, err = parseHashFloat(cur)
		if err != nil {
			return 0, err
		}
	}
	next := f + delta
	h.Set(field, []byte(formatFloat(next)))
	return next, nil
}
