package dispatch

// Flags classify a command for auth/MULTI/COMMAND-introspection purposes.
// The bit shapes mirror original_source/command/src/command.rs's
// CommandFlags (WRITE/READONLY/ADMIN/NOSCRIPT/PUBSUB/LOADING/STALE/...),
// trimmed to the subset SPEC_FULL.md's dispatcher actually branches on.
type Flags uint16

const (
	FlagWrite Flags = 1 << iota
	FlagReadonly
	FlagAdmin
	FlagNoScript
	FlagPubSub
	FlagLoading
	FlagFast
	FlagRandom
)

// Spec is one command's entry in the properties table: arity (negative
// meaning "at least |n|"), flags, and the first/last/step key-index triple
// COMMAND GETKEYS and write-ahead key extraction both need.
type Spec struct {
	Arity    int
	Flags    Flags
	FirstKey int
	LastKey  int
	KeyStep  int
}

// ArityOK reports whether argc (including the command name) satisfies this
// Spec's arity requirement.
func (s Spec) ArityOK(argc int) bool {
	if s.Arity >= 0 {
		return argc == s.Arity
	}
	return argc >= -s.Arity
}

// Keys extracts the key arguments argv addresses, per FirstKey/LastKey/
// KeyStep (LastKey<0 means "to the end").
func (s Spec) Keys(argv [][]byte) [][]byte {
	if s.FirstKey == 0 {
		return nil
	}
	last := s.LastKey
	if last < 0 {
		last = len(argv) - 1 + (last + 1)
	}
	var out [][]byte
	for i := s.FirstKey; i <= last && i < len(argv); i += s.KeyStep {
		out = append(out, argv[i])
	}
	return out
}

// table is the static command properties table, keyed by upper-cased
// command name. Shape grounded directly on
// original_source/command/src/command.rs's per-command
// "(arity, flags, firstkey, lastkey, keystep)" tuple literal.
var table = map[string]Spec{
	// strings
	"GET":         {2, FlagReadonly | FlagFast, 1, 1, 1},
	"SET":         {-3, FlagWrite, 1, 1, 1},
	"SETNX":       {3, FlagWrite | FlagFast, 1, 1, 1},
	"SETEX":       {4, FlagWrite, 1, 1, 1},
	"PSETEX":      {4, FlagWrite, 1, 1, 1},
	"GETSET":      {3, FlagWrite, 1, 1, 1},
	"APPEND":      {3, FlagWrite, 1, 1, 1},
	"STRLEN":      {2, FlagReadonly | FlagFast, 1, 1, 1},
	"GETRANGE":    {4, FlagReadonly, 1, 1, 1},
	"SETRANGE":    {4, FlagWrite, 1, 1, 1},
	"INCR":        {2, FlagWrite | FlagFast, 1, 1, 1},
	"DECR":        {2, FlagWrite | FlagFast, 1, 1, 1},
	"INCRBY":      {3, FlagWrite | FlagFast, 1, 1, 1},
	"DECRBY":      {3, FlagWrite | FlagFast, 1, 1, 1},
	"INCRBYFLOAT": {3, FlagWrite | FlagFast, 1, 1, 1},
	"SETBIT":      {4, FlagWrite, 1, 1, 1},
	"GETBIT":      {3, FlagReadonly | FlagFast, 1, 1, 1},
	"MGET":        {-2, FlagReadonly, 1, -1, 1},
	"MSET":        {-3, FlagWrite, 1, -1, 2},
	"MSETNX":      {-3, FlagWrite, 1, -1, 2},

	// lists
	"LPUSH":      {-3, FlagWrite | FlagFast, 1, 1, 1},
	"RPUSH":      {-3, FlagWrite | FlagFast, 1, 1, 1},
	"LPUSHX":     {-3, FlagWrite | FlagFast, 1, 1, 1},
	"RPUSHX":     {-3, FlagWrite | FlagFast, 1, 1, 1},
	"LPOP":       {-2, FlagWrite | FlagFast, 1, 1, 1},
	"RPOP":       {-2, FlagWrite | FlagFast, 1, 1, 1},
	"LLEN":       {2, FlagReadonly | FlagFast, 1, 1, 1},
	"LINDEX":     {3, FlagReadonly, 1, 1, 1},
	"LINSERT":    {5, FlagWrite, 1, 1, 1},
	"LRANGE":     {4, FlagReadonly, 1, 1, 1},
	"LREM":       {4, FlagWrite, 1, 1, 1},
	"LSET":       {4, FlagWrite, 1, 1, 1},
	"LTRIM":      {4, FlagWrite, 1, 1, 1},
	"RPOPLPUSH":  {3, FlagWrite, 1, 2, 1},
	"BLPOP":      {-3, FlagWrite | FlagNoScript, 1, -2, 1},
	"BRPOP":      {-3, FlagWrite | FlagNoScript, 1, -2, 1},
	"BRPOPLPUSH": {4, FlagWrite | FlagNoScript, 1, 2, 1},

	// sets
	"SADD":        {-3, FlagWrite | FlagFast, 1, 1, 1},
	"SREM":        {-3, FlagWrite | FlagFast, 1, 1, 1},
	"SISMEMBER":   {3, FlagReadonly | FlagFast, 1, 1, 1},
	"SCARD":       {2, FlagReadonly | FlagFast, 1, 1, 1},
	"SMEMBERS":    {2, FlagReadonly, 1, 1, 1},
	"SPOP":        {-2, FlagWrite | FlagFast, 1, 1, 1},
	"SRANDMEMBER": {-2, FlagReadonly, 1, 1, 1},
	"SMOVE":       {4, FlagWrite | FlagFast, 1, 2, 1},
	"SINTER":      {-2, FlagReadonly, 1, -1, 1},
	"SUNION":      {-2, FlagReadonly, 1, -1, 1},
	"SDIFF":       {-2, FlagReadonly, 1, -1, 1},
	"SINTERSTORE": {-3, FlagWrite, 1, -1, 1},
	"SUNIONSTORE": {-3, FlagWrite, 1, -1, 1},
	"SDIFFSTORE":  {-3, FlagWrite, 1, -1, 1},
	"SSCAN":       {-3, FlagReadonly | FlagRandom, 1, 1, 1},

	// sorted sets
	"ZADD":             {-4, FlagWrite | FlagFast, 1, 1, 1},
	"ZINCRBY":          {4, FlagWrite | FlagFast, 1, 1, 1},
	"ZREM":             {-3, FlagWrite | FlagFast, 1, 1, 1},
	"ZCARD":            {2, FlagReadonly | FlagFast, 1, 1, 1},
	"ZSCORE":           {3, FlagReadonly | FlagFast, 1, 1, 1},
	"ZRANK":            {3, FlagReadonly | FlagFast, 1, 1, 1},
	"ZREVRANK":         {3, FlagReadonly | FlagFast, 1, 1, 1},
	"ZRANGE":           {-4, FlagReadonly, 1, 1, 1},
	"ZREVRANGE":        {-4, FlagReadonly, 1, 1, 1},
	"ZRANGEBYSCORE":    {-4, FlagReadonly, 1, 1, 1},
	"ZREVRANGEBYSCORE": {-4, FlagReadonly, 1, 1, 1},
	"ZRANGEBYLEX":      {-4, FlagReadonly, 1, 1, 1},
	"ZREVRANGEBYLEX":   {-4, FlagReadonly, 1, 1, 1},
	"ZCOUNT":           {4, FlagReadonly | FlagFast, 1, 1, 1},
	"ZLEXCOUNT":        {4, FlagReadonly | FlagFast, 1, 1, 1},
	"ZREMRANGEBYRANK":  {4, FlagWrite, 1, 1, 1},
	"ZREMRANGEBYSCORE": {4, FlagWrite, 1, 1, 1},
	"ZREMRANGEBYLEX":   {4, FlagWrite, 1, 1, 1},
	"ZUNIONSTORE":      {-4, FlagWrite, 0, 0, 0},
	"ZINTERSTORE":      {-4, FlagWrite, 0, 0, 0},
	"ZSCAN":            {-3, FlagReadonly | FlagRandom, 1, 1, 1},

	// hashes
	"HSET":         {-4, FlagWrite | FlagFast, 1, 1, 1},
	"HSETNX":       {4, FlagWrite | FlagFast, 1, 1, 1},
	"HGET":         {3, FlagReadonly | FlagFast, 1, 1, 1},
	"HMSET":        {-4, FlagWrite, 1, 1, 1},
	"HMGET":        {-3, FlagReadonly, 1, 1, 1},
	"HDEL":         {-3, FlagWrite | FlagFast, 1, 1, 1},
	"HLEN":         {2, FlagReadonly | FlagFast, 1, 1, 1},
	"HSTRLEN":      {3, FlagReadonly | FlagFast, 1, 1, 1},
	"HKEYS":        {2, FlagReadonly, 1, 1, 1},
	"HVALS":        {2, FlagReadonly, 1, 1, 1},
	"HGETALL":      {2, FlagReadonly, 1, 1, 1},
	"HEXISTS":      {3, FlagReadonly | FlagFast, 1, 1, 1},
	"HINCRBY":      {4, FlagWrite | FlagFast, 1, 1, 1},
	"HINCRBYFLOAT": {4, FlagWrite | FlagFast, 1, 1, 1},
	"HSCAN":        {-3, FlagReadonly | FlagRandom, 1, 1, 1},

	// HLL
	"PFADD":   {-2, FlagWrite | FlagFast, 1, 1, 1},
	"PFCOUNT": {-2, FlagReadonly, 1, -1, 1},
	"PFMERGE": {-2, FlagWrite, 1, -1, 1},

	// generic keyspace
	"DEL":       {-2, FlagWrite, 1, -1, 1},
	"UNLINK":    {-2, FlagWrite, 1, -1, 1},
	"EXISTS":    {-2, FlagReadonly | FlagFast, 1, -1, 1},
	"TYPE":      {2, FlagReadonly | FlagFast, 1, 1, 1},
	"EXPIRE":    {-3, FlagWrite | FlagFast, 1, 1, 1},
	"PEXPIRE":   {-3, FlagWrite | FlagFast, 1, 1, 1},
	"EXPIREAT":  {-3, FlagWrite | FlagFast, 1, 1, 1},
	"PEXPIREAT": {-3, FlagWrite | FlagFast, 1, 1, 1},
	"TTL":       {2, FlagReadonly | FlagFast, 1, 1, 1},
	"PTTL":      {2, FlagReadonly | FlagFast, 1, 1, 1},
	"PERSIST":   {2, FlagWrite | FlagFast, 1, 1, 1},
	"RENAME":    {3, FlagWrite, 1, 2, 1},
	"RENAMENX":  {3, FlagWrite | FlagFast, 1, 2, 1},
	"KEYS":      {2, FlagReadonly, 0, 0, 0},
	"SCAN":      {-2, FlagReadonly | FlagRandom, 0, 0, 0},
	"RANDOMKEY": {1, FlagReadonly | FlagRandom, 0, 0, 0},
	"TOUCH":     {-2, FlagReadonly | FlagFast, 1, -1, 1},
	"COPY":      {-3, FlagWrite, 1, 2, 1},
	"SORT":      {-2, FlagWrite, 1, 1, 1},
	"DUMP":      {2, FlagReadonly, 1, 1, 1},
	"RESTORE":   {-4, FlagWrite, 1, 1, 1},
	"FLUSHDB":   {1, FlagWrite, 0, 0, 0},
	"FLUSHALL":  {1, FlagWrite, 0, 0, 0},
	"DBSIZE":    {1, FlagReadonly | FlagFast, 0, 0, 0},
	"SELECT":    {2, FlagLoading | FlagFast, 0, 0, 0},

	// transactions
	"MULTI":   {1, FlagNoScript | FlagFast, 0, 0, 0},
	"EXEC":    {1, FlagNoScript, 0, 0, 0},
	"DISCARD": {1, FlagNoScript | FlagFast, 0, 0, 0},
	"WATCH":   {-2, FlagNoScript | FlagFast, 1, -1, 1},
	"UNWATCH": {1, FlagNoScript | FlagFast, 0, 0, 0},

	// pub/sub
	"SUBSCRIBE":    {-2, FlagPubSub | FlagLoading, 0, 0, 0},
	"UNSUBSCRIBE":  {-1, FlagPubSub | FlagLoading, 0, 0, 0},
	"PSUBSCRIBE":   {-2, FlagPubSub | FlagLoading, 0, 0, 0},
	"PUNSUBSCRIBE": {-1, FlagPubSub | FlagLoading, 0, 0, 0},
	"PUBLISH":      {3, FlagPubSub | FlagLoading | FlagFast, 0, 0, 0},
	"PUBSUB":       {-2, FlagPubSub | FlagLoading | FlagRandom, 0, 0, 0},

	// connection / admin / introspection
	"AUTH":         {2, FlagNoScript | FlagFast, 0, 0, 0},
	"PING":         {-1, FlagFast, 0, 0, 0},
	"ECHO":         {2, FlagFast, 0, 0, 0},
	"CLIENT":       {-2, FlagAdmin | FlagNoScript, 0, 0, 0},
	"COMMAND":      {-1, FlagLoading, 0, 0, 0},
	"CONFIG":       {-2, FlagAdmin, 0, 0, 0},
	"INFO":         {-1, FlagLoading, 0, 0, 0},
	"SLOWLOG":      {-2, FlagAdmin, 0, 0, 0},
	"OBJECT":       {3, FlagReadonly, 2, 2, 1},
	"DEBUG":        {-2, FlagAdmin | FlagNoScript, 0, 0, 0},
	"MONITOR":      {1, FlagAdmin | FlagNoScript, 0, 0, 0},
	"WAIT":         {3, FlagNoScript, 0, 0, 0},
	"LASTSAVE":     {1, FlagFast, 0, 0, 0},
	"SAVE":         {1, FlagAdmin, 0, 0, 0},
	"BGSAVE":       {1, FlagAdmin, 0, 0, 0},
	"BGREWRITEAOF": {1, FlagAdmin, 0, 0, 0},
}

// lookup returns name's Spec and whether it is known to the dispatcher.
func lookup(name string) (Spec, bool) {
	s, ok := table[name]
	return s, ok
}
