package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nimbusdb/nimbusdb/internal/value"
)

// SortOptions carries SORT's option set (SPEC_FULL.md §12, resolving
// spec.md's Open Question on BY/GET hash-field patterns in favor of a
// real implementation rather than a stub).
type SortOptions struct {
	By         string // "" means sort by element value; "nosort" disables sorting
	Limit      bool
	Offset     int
	Count      int
	Get        []string
	Alpha      bool
	Descending bool
}

// Sort implements SORT against key, which must hold a List, Set, or ZSet
// (by rank order for ZSet, matching real Redis's "sort a zset like a
// list" behavior). BY/GET patterns containing "*" are substituted with
// each element to form a lookup key; a pattern containing "->" addresses
// a hash field instead of a plain string key.
func (d *Database) Sort(key string, opts SortOptions) ([][]byte, error) {
	v, ok := d.Get(key)
	if !ok {
		return nil, nil
	}

	var elems []string
	switch t := v.(type) {
	case *value.List:
		for _, b := range t.Range(0, -1) {
			elems = append(elems, string(b))
		}
	case *value.Set:
		for _, b := range t.Members() {
			elems = append(elems, string(b))
		}
	case *value.ZSet:
		for _, e := range t.RangeByRank(0, -1, false) {
			elems = append(elems, e.Member)
		}
	default:
		return nil, value.ErrWrongType
	}

	if opts.By != "nosort" {
		type scored struct {
			elem string
			key  string
			num  float64
		}
		rows := make([]scored, len(elems))
		for i, e := range elems {
			lookupKey := e
			if opts.By != "" {
				lookupKey = d.resolvePattern(opts.By, e)
			}
			rows[i] = scored{elem: e, key: lookupKey}
			if !opts.Alpha {
				rows[i].num, _ = strconv.ParseFloat(lookupKey, 64)
			}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			var less bool
			if opts.Alpha {
				less = rows[i].key < rows[j].key
			} else {
				less = rows[i].num < rows[j].num
			}
			if opts.Descending {
				return !less && rows[i].key != rows[j].key
			}
			return less
		})
		elems = elems[:0]
		for _, r := range rows {
			elems = append(elems, r.elem)
		}
	}

	if opts.Limit {
		start := opts.Offset
		if start < 0 {
			start = 0
		}
		if start >= len(elems) {
			elems = nil
		} else {
			end := start + opts.Count
			if opts.Count < 0 || end > len(elems) {
				end = len(elems)
			}
			elems = elems[start:end]
		}
	}

	if len(opts.Get) == 0 {
		out := make([][]byte, len(elems))
		for i, e := range elems {
			out[i] = []byte(e)
		}
		return out, nil
	}

	out := make([][]byte, 0, len(elems)*len(opts.Get))
	for _, e := range elems {
		for _, getPat := range opts.Get {
			if getPat == "#" {
				out = append(out, []byte(e))
				continue
			}
			out = append(out, []byte(d.resolvePattern(getPat, e)))
		}
	}
	return out, nil
}

// resolvePattern substitutes the first "*" in pat with elem to form a key
// name, then returns that key's string value — or, for a "key->field"
// pattern, the named hash field's value. Missing keys/fields resolve to
// "", matching real Redis's nil-as-empty-weight behavior under SORT.
func (d *Database) resolvePattern(pat, elem string) string {
	if !strings.Contains(pat, "*") {
		return pat
	}
	if hashPat, field, ok := strings.Cut(pat, "->"); ok {
		key := strings.Replace(hashPat, "*", elem, 1)
		v, ok := d.Get(key)
		if !ok {
			return ""
		}
		h, err := value.AsHash(v)
		if err != nil {
			return ""
		}
		fieldName := strings.Replace(field, "*", elem, 1)
		val, ok := h.Get(fieldName)
		if !ok {
			return ""
		}
		return string(val)
	}
	key := strings.Replace(pat, "*", elem, 1)
	v, ok := d.Get(key)
	if !ok {
		return ""
	}
	s, err := value.AsString(v)
	if err != nil {
		return ""
	}
	return string(s.Bytes())
}
