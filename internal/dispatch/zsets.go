package dispatch

import (
	"strconv"
	"strings"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/pattern"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func (d *Dispatcher) dispatchZSet(c *session.Client, db *store.Database, cmd command.Command) Response {
	key := cmd.Str(1)
	switch cmd.Name {
	case "ZADD":
		return d.zadd(db, key, cmd)

	case "ZINCRBY":
		delta, err := cmd.Float(2)
		if err != nil {
			return Err(err)
		}
		v := db.GetOrCreate(key, func() value.Value { return value.NewZSet() })
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		_, newScore, _, err := z.Add(delta, cmd.Str(3), value.ZAddFlags{INCR: true})
		if err != nil {
			return Err(err)
		}
		db.MarkWritten(key)
		d.store.Notify(db.Index(), key, "zincrby", d.notify)
		return BulkString(formatScore(newScore))

	case "ZREM":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		members := make([]string, cmd.Arity()-2)
		for i := 2; i < cmd.Arity(); i++ {
			members[i-2] = cmd.Str(i)
		}
		n := z.Rem(members...)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "zrem", d.notify)
		}
		return Int(int64(n))

	case "ZCARD":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		return Int(int64(z.Card()))

	case "ZSCORE":
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		score, ok := z.Score(cmd.Str(2))
		if !ok {
			return Nil()
		}
		return BulkString(formatScore(score))

	case "ZRANK", "ZREVRANK":
		v, ok := db.Get(key)
		if !ok {
			return Nil()
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		r, ok := z.Rank(cmd.Str(2), cmd.Name == "ZREVRANK")
		if !ok {
			return Nil()
		}
		return Int(int64(r))

	case "ZRANGE", "ZREVRANGE":
		return d.zrangeByRank(db, key, cmd)

	case "ZRANGEBYSCORE", "ZREVRANGEBYSCORE":
		return d.zrangeByScore(db, key, cmd)

	case "ZRANGEBYLEX", "ZREVRANGEBYLEX":
		return d.zrangeByLex(db, key, cmd)

	case "ZCOUNT":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		min, max, err := parseScoreBounds(cmd.Str(2), cmd.Str(3))
		if err != nil {
			return Err(err)
		}
		return Int(int64(z.Count(min, max)))

	case "ZLEXCOUNT":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		min, max, err := parseLexBounds(cmd.Str(2), cmd.Str(3))
		if err != nil {
			return Err(err)
		}
		return Int(int64(z.LexCount(min, max)))

	case "ZREMRANGEBYRANK":
		start, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		stop, err := cmd.Int(3)
		if err != nil {
			return Err(err)
		}
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		n := z.RemRangeByRank(int(start), int(stop))
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "zremrangebyrank", d.notify)
		}
		return Int(int64(n))

	case "ZREMRANGEBYSCORE":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		min, max, err := parseScoreBounds(cmd.Str(2), cmd.Str(3))
		if err != nil {
			return Err(err)
		}
		n := z.RemRangeByScore(min, max)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "zremrangebyscore", d.notify)
		}
		return Int(int64(n))

	case "ZREMRANGEBYLEX":
		v, ok := db.Get(key)
		if !ok {
			return Int(0)
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		min, max, err := parseLexBounds(cmd.Str(2), cmd.Str(3))
		if err != nil {
			return Err(err)
		}
		n := z.RemRangeByLex(min, max)
		db.MarkWritten(key)
		if n > 0 {
			d.store.Notify(db.Index(), key, "zremrangebylex", d.notify)
		}
		return Int(int64(n))

	case "ZUNIONSTORE", "ZINTERSTORE":
		return d.zStore(db, cmd)

	case "ZSCAN":
		cursorN, err := cmd.Int(2)
		if err != nil {
			return Err(err)
		}
		match := "*"
		count := 10
		for i := 3; i < cmd.Arity(); i++ {
			switch strings.ToUpper(cmd.Str(i)) {
			case "MATCH":
				if i+1 >= cmd.Arity() {
					return Errf("ERR syntax error")
				}
				match = cmd.Str(i + 1)
				i++
			case "COUNT":
				if i+1 >= cmd.Arity() {
					return Errf("ERR syntax error")
				}
				n, err := cmd.Int(i + 1)
				if err != nil {
					return Err(err)
				}
				count = int(n)
				i++
			default:
				return Errf("ERR syntax error")
			}
		}
		v, ok := db.Get(key)
		if !ok {
			return Array(BulkString("0"), Array())
		}
		z, err := value.AsZSet(v)
		if err != nil {
			return Err(err)
		}
		entries := z.RangeByRank(0, -1, false)
		next, page := value.ScanPage(entries, value.ScanCursor(cursorN), count)
		children := make([]Response, 0, len(page)*2)
		for _, e := range page {
			if !pattern.Match(match, e.Member) {
				continue
			}
			children = append(children, BulkString(e.Member), BulkString(formatScore(e.Score)))
		}
		return Array(BulkString(strconv.FormatUint(uint64(next), 10)), Array(children...))
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) zadd(db *store.Database, key string, cmd command.Command) Response {
	flags := value.ZAddFlags{}
	i := 2
	for i < cmd.Arity() {
		switch strings.ToUpper(cmd.Str(i)) {
		case "NX":
			flags.NX = true
		case "XX":
			flags.XX = true
		case "GT":
			flags.GT = true
		case "LT":
			flags.LT = true
		case "CH":
			flags.CH = true
		case "INCR":
			flags.INCR = true
		default:
			goto pairs
		}
		i++
	}
pairs:
	if (cmd.Arity()-i)%2 != 0 || cmd.Arity() == i {
		return Errf("ERR syntax error")
	}
	if flags.INCR && cmd.Arity()-i != 2 {
		return Errf("ERR INCR option supports a single increment-element pair")
	}

	v := db.GetOrCreate(key, func() value.Value { return value.NewZSet() })
	z, err := value.AsZSet(v)
	if err != nil {
		return Err(err)
	}

	added, changed := 0, 0
	var lastIncrResult Response
	for ; i < cmd.Arity(); i += 2 {
		score, err := cmd.Float(i)
		if err != nil {
			return Err(err)
		}
		member := cmd.Str(i + 1)
		_, existedBefore := z.Score(member)
		wasChanged, newScore, skipped, err := z.Add(score, member, flags)
		if err != nil {
			return Err(err)
		}
		if flags.INCR {
			if skipped {
				lastIncrResult = Nil()
			} else {
				lastIncrResult = BulkString(formatScore(newScore))
			}
			continue
		}
		if wasChanged {
			changed++
			if !existedBefore {
				added++
			}
		}
	}
	db.MarkWritten(key)
	d.store.Notify(db.Index(), key, "zadd", d.notify)
	if flags.INCR {
		return lastIncrResult
	}
	if flags.CH {
		return Int(int64(changed))
	}
	return Int(int64(added))
}

func (d *Dispatcher) zrangeByRank(db *store.Database, key string, cmd command.Command) Response {
	start, err := cmd.Int(2)
	if err != nil {
		return Err(err)
	}
	stop, err := cmd.Int(3)
	if err != nil {
		return Err(err)
	}
	withScores := cmd.Arity() == 5 && strings.EqualFold(cmd.Str(4), "WITHSCORES")
	v, ok := db.Get(key)
	if !ok {
		return Array()
	}
	z, err := value.AsZSet(v)
	if err != nil {
		return Err(err)
	}
	entries := z.RangeByRank(int(start), int(stop), cmd.Name == "ZREVRANGE")
	return entriesToResponse(entries, withScores)
}

func (d *Dispatcher) zrangeByScore(db *store.Database, key string, cmd command.Command) Response {
	rev := cmd.Name == "ZREVRANGEBYSCORE"
	minArg, maxArg := cmd.Str(2), cmd.Str(3)
	if rev {
		minArg, maxArg = cmd.Str(3), cmd.Str(2)
	}
	min, max, err := parseScoreBounds(minArg, maxArg)
	if err != nil {
		return Err(err)
	}
	withScores, offset, count, err := parseRangeTail(cmd, 4)
	if err != nil {
		return Err(err)
	}
	v, ok := db.Get(key)
	if !ok {
		return Array()
	}
	z, err := value.AsZSet(v)
	if err != nil {
		return Err(err)
	}
	entries := z.RangeByScore(min, max, rev, offset, count)
	return entriesToResponse(entries, withScores)
}

func (d *Dispatcher) zrangeByLex(db *store.Database, key string, cmd command.Command) Response {
	rev := cmd.Name == "ZREVRANGEBYLEX"
	minArg, maxArg := cmd.Str(2), cmd.Str(3)
	if rev {
		minArg, maxArg = cmd.Str(3), cmd.Str(2)
	}
	min, max, err := parseLexBounds(minArg, maxArg)
	if err != nil {
		return Err(err)
	}
	_, offset, count, err := parseRangeTail(cmd, 4)
	if err != nil {
		return Err(err)
	}
	v, ok := db.Get(key)
	if !ok {
		return Array()
	}
	z, err := value.AsZSet(v)
	if err != nil {
		return Err(err)
	}
	entries := z.RangeByLex(min, max, rev, offset, count)
	return entriesToResponse(entries, false)
}

// parseRangeTail parses the optional trailing WITHSCORES and LIMIT
// offset count clauses shared by ZRANGEBYSCORE/ZRANGEBYLEX, starting at
// argument index i.
func parseRangeTail(cmd command.Command, i int) (withScores bool, offset, count int, err error) {
	count = -1
	for i < cmd.Arity() {
		switch strings.ToUpper(cmd.Str(i)) {
		case "WITHSCORES":
			withScores = true
			i++
		case "LIMIT":
			if i+2 >= cmd.Arity() {
				return false, 0, 0, Errf("ERR syntax error").Err
			}
			o, err := cmd.Int(i + 1)
			if err != nil {
				return false, 0, 0, err
			}
			n, err := cmd.Int(i + 2)
			if err != nil {
				return false, 0, 0, err
			}
			offset, count = int(o), int(n)
			i += 3
		default:
			return false, 0, 0, Errf("ERR syntax error").Err
		}
	}
	return withScores, offset, count, nil
}

func entriesToResponse(entries []value.Entry, withScores bool) Response {
	if !withScores {
		out := make([][]byte, len(entries))
		for i, e := range entries {
			out[i] = []byte(e.Member)
		}
		return BulkStrings(out)
	}
	children := make([]Response, 0, len(entries)*2)
	for _, e := range entries {
		children = append(children, BulkString(e.Member), BulkString(formatScore(e.Score)))
	}
	return Array(children...)
}

func (d *Dispatcher) zStore(db *store.Database, cmd command.Command) Response {
	dst := cmd.Str(1)
	numkeys, err := cmd.Int(2)
	if err != nil {
		return Err(err)
	}
	n := int(numkeys)
	if n <= 0 || 3+n > cmd.Arity() {
		return Errf("ERR syntax error")
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = cmd.Str(3 + i)
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	agg := value.AggregateSum
	i := 3 + n
	for i < cmd.Arity() {
		switch strings.ToUpper(cmd.Str(i)) {
		case "WEIGHTS":
			if i+n >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			for j := 0; j < n; j++ {
				w, err := cmd.Float(i + 1 + j)
				if err != nil {
					return Err(err)
				}
				weights[j] = w
			}
			i += 1 + n
		case "AGGREGATE":
			if i+1 >= cmd.Arity() {
				return Errf("ERR syntax error")
			}
			switch strings.ToUpper(cmd.Str(i + 1)) {
			case "SUM":
				agg = value.AggregateSum
			case "MIN":
				agg = value.AggregateMin
			case "MAX":
				agg = value.AggregateMax
			default:
				return Errf("ERR syntax error")
			}
			i += 2
		default:
			return Errf("ERR syntax error")
		}
	}

	weighted := make([]map[string]float64, n)
	for idx, k := range keys {
		m := make(map[string]float64)
		v, ok := db.Get(k)
		if ok {
			switch sv := v.(type) {
			case *value.ZSet:
				for _, e := range sv.RangeByRank(0, -1, false) {
					m[e.Member] = e.Score * weights[idx]
				}
			case *value.Set:
				for _, mem := range sv.Members() {
					m[string(mem)] = weights[idx]
				}
			default:
				return Err(value.ErrWrongType)
			}
		}
		weighted[idx] = m
	}

	var result *value.ZSet
	if cmd.Name == "ZUNIONSTORE" {
		result = value.UnionStore(agg, weighted)
	} else {
		result = value.InterStore(agg, weighted)
	}
	if result.Empty() {
		db.Delete(dst)
	} else {
		db.Set(dst, result)
	}
	d.store.Notify(db.Index(), dst, strings.ToLower(cmd.Name), d.notify)
	return Int(int64(result.Card()))
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseScoreBounds(minArg, maxArg string) (min, max value.ScoreBound, err error) {
	min, err = parseScoreBound(minArg)
	if err != nil {
		return min, max, err
	}
	max, err = parseScoreBound(maxArg)
	return min, max, err
}

func parseScoreBound(s string) (value.ScoreBound, error) {
	switch s {
	case "-inf":
		return value.ScoreBound{Inf: -1}, nil
	case "+inf":
		return value.ScoreBound{Inf: 1}, nil
	}
	exclusive := false
	if strings.HasPrefix(s, "(") {
		exclusive = true
		s = s[1:]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return value.ScoreBound{}, Errf("ERR min or max is not a float").Err
	}
	return value.ScoreBound{Value: f, Exclusive: exclusive}, nil
}

func parseLexBounds(minArg, maxArg string) (min, max value.LexBound, err error) {
	min, err = parseLexBound(minArg)
	if err != nil {
		return min, max, err
	}
	max, err = parseLexBound(maxArg)
	return min, max, err
}

func parseLexBound(s string) (value.LexBound, error) {
	switch {
	case s == "-":
		return value.LexBound{Unbounded: -1}, nil
	case s == "+":
		return value.LexBound{Unbounded: 1}, nil
	case strings.HasPrefix(s, "["):
		return value.LexBound{Value: []byte(s[1:])}, nil
	case strings.HasPrefix(s, "("):
		return value.LexBound{Value: []byte(s[1:]), Exclusive: true}, nil
	default:
		return value.LexBound{}, Errf("ERR min or max not valid string range item").Err
	}
}
