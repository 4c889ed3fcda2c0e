// Package pattern implements the glob matcher shared by KEYS, the SCAN
// family's MATCH option, and PSUBSCRIBE pattern matching (spec.md §4.2):
// '*' (any run), '?' (single char), '[...]' (character class, '^' negates),
// and '\' escaping of the next literal character.
package pattern

// Match reports whether s satisfies glob pattern p, mirroring
// redis-server's stringmatchlen semantics closely enough for KEYS/SCAN/
// PSUBSCRIBE purposes.
func Match(p, s string) bool {
	return match([]byte(p), []byte(s))
}

func match(p, s []byte) bool {
	for len(p) > 0 {
		switch p[0] {
		case '*':
			for len(p) > 1 && p[1] == '*' {
				p = p[1:]
			}
			if len(p) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if match(p[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			s = s[1:]
			p = p[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			negate := false
			p = p[1:]
			if len(p) > 0 && p[0] == '^' {
				negate = true
				p = p[1:]
			}
			matched := false
			for len(p) > 0 && p[0] != ']' {
				if len(p) >= 3 && p[1] == '-' {
					lo, hi := p[0], p[2]
					if lo > hi {
						lo, hi = hi, lo
					}
					if s[0] >= lo && s[0] <= hi {
						matched = true
					}
					p = p[3:]
					continue
				}
				if p[0] == '\\' && len(p) >= 2 {
					p = p[1:]
				}
				if p[0] == s[0] {
					matched = true
				}
				p = p[1:]
			}
			if len(p) > 0 {
				p = p[1:] // skip ']'
			}
			if matched == negate {
				return false
			}
			s = s[1:]
		case '\\':
			if len(p) >= 2 {
				p = p[1:]
			}
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p = p[1:]
			s = s[1:]
		default:
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p = p[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
