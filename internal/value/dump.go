package value

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math"
)

// Dump/Restore resolve spec.md §9's Open Question in favor of a full
// implementation (SPEC_FULL.md §12): a self-describing byte sequence of
// [type byte][body][2-byte format version][8-byte checksum]. The checksum
// is an FNV-64a digest rather than redis-server's real CRC64 — DUMP/RESTORE
// only need to round-trip within this implementation, not interoperate
// byte-for-byte with another Redis build, so a cheaper stdlib hash is used
// in its place (noted here rather than left silent).
const dumpFormatVersion uint16 = 1

var (
	ErrBadDumpPayload = errors.New("ERR DUMP payload version or checksum are wrong")
)

// Dump serializes v to its DUMP representation.
func Dump(v Value) []byte {
	body := encodeBody(v)
	buf := make([]byte, 0, 1+len(body)+10)
	buf = append(buf, byte(v.Kind()))
	buf = append(buf, body...)

	footer := make([]byte, 10)
	binary.LittleEndian.PutUint16(footer[0:2], dumpFormatVersion)
	sum := checksum(buf)
	binary.LittleEndian.PutUint64(footer[2:10], sum)
	return append(buf, footer...)
}

// Restore parses a DUMP payload back into a Value.
func Restore(payload []byte, maxIntsetEntries, hashMaxEntries, hashMaxValue int) (Value, error) {
	if len(payload) < 1+10 {
		return nil, ErrBadDumpPayload
	}
	body := payload[:len(payload)-10]
	footer := payload[len(payload)-10:]
	version := binary.LittleEndian.Uint16(footer[0:2])
	wantSum := binary.LittleEndian.Uint64(footer[2:10])
	if version != dumpFormatVersion || checksum(body) != wantSum {
		return nil, ErrBadDumpPayload
	}
	kind := Kind(body[0])
	return decodeBody(kind, body[1:], maxIntsetEntries, hashMaxEntries, hashMaxValue)
}

func checksum(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

func encodeBody(v Value) []byte {
	var buf []byte
	switch t := v.(type) {
	case *Str:
		buf = encodeBytes(nil, t.data)
	case *List:
		for _, e := range t.Range(0, -1) {
			buf = encodeBytes(buf, e)
		}
	case *Set:
		for _, m := range t.Members() {
			buf = encodeBytes(buf, m)
		}
	case *ZSet:
		for _, e := range t.RangeByRank(0, -1, false) {
			buf = encodeBytes(buf, []byte(e.Member))
			var scoreBuf [8]byte
			binary.LittleEndian.PutUint64(scoreBuf[:], math.Float64bits(e.Score))
			buf = append(buf, scoreBuf[:]...)
		}
	case *Hash:
		all := t.All()
		for k, v := range all {
			buf = encodeBytes(buf, []byte(k))
			buf = encodeBytes(buf, v)
		}
	}
	return buf
}

func decodeBody(kind Kind, body []byte, maxIntsetEntries, hashMaxEntries, hashMaxValue int) (Value, error) {
	switch kind {
	case KindString:
		b, _, ok := decodeBytes(body, 0)
		if !ok {
			return nil, ErrBadDumpPayload
		}
		return NewStr(b), nil
	case KindList:
		l := NewList()
		off := 0
		for off < len(body) {
			b, next, ok := decodeBytes(body, off)
			if !ok {
				return nil, ErrBadDumpPayload
			}
			l.PushRight(b)
			off = next
		}
		return l, nil
	case KindSet:
		s := NewSet(maxIntsetEntries)
		off := 0
		for off < len(body) {
			b, next, ok := decodeBytes(body, off)
			if !ok {
				return nil, ErrBadDumpPayload
			}
			s.Add(b)
			off = next
		}
		return s, nil
	case KindZSet:
		z := NewZSet()
		off := 0
		for off < len(body) {
			member, next, ok := decodeBytes(body, off)
			if !ok || next+8 > len(body) {
				return nil, ErrBadDumpPayload
			}
			score := math.Float64frombits(binary.LittleEndian.Uint64(body[next : next+8]))
			z.set(string(member), score)
			off = next + 8
		}
		return z, nil
	case KindHash:
		h := NewHash(hashMaxEntries, hashMaxValue)
		off := 0
		for off < len(body) {
			field, next, ok := decodeBytes(body, off)
			if !ok {
				return nil, ErrBadDumpPayload
			}
			val, next2, ok := decodeBytes(body, next)
			if !ok {
				return nil, ErrBadDumpPayload
			}
			h.Set(string(field), val)
			off = next2
		}
		return h, nil
	default:
		return nil, ErrBadDumpPayload
	}
}

func encodeBytes(buf []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

func decodeBytes(body []byte, off int) ([]byte, int, bool) {
	if off+4 > len(body) {
		return nil, 0, false
	}
	n := int(binary.LittleEndian.Uint32(body[off : off+4]))
	off += 4
	if n < 0 || off+n > len(body) {
		return nil, 0, false
	}
	return body[off : off+n], off + n, true
}
