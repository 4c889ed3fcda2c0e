package dispatch

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/config"
	"github.com/nimbusdb/nimbusdb/internal/persistence"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

// ErrAuthRequired mirrors redis-server's NOAUTH error text.
var ErrAuthRequired = fmt.Errorf("NOAUTH Authentication required.")

// Dispatcher is the Command Dispatcher (spec.md §4.3): besides the
// password gate and notification flags it holds only the shared config,
// the persistence recorder, the MONITOR set and its start time, routing
// every parsed Command against a session.Client and the selected
// store.Database.
//
// spec.md §9's "Blocking continuations" note permits "thread-parked
// channels" as one valid restatement of the source's channel-passing
// design; here every client connection already runs on its own
// goroutine (the external internal/server collaborator), so a blocking
// command simply blocks that goroutine on a select over store.Database's
// wake channels and a timer — no separate continuation object is needed.
type Dispatcher struct {
	log         *zap.Logger
	store       *store.Store
	requirepass string
	notify      store.NotifyFlags
	cfg         *config.Config
	persist     *persistence.Recorder

	monitors *monitorSet
	started  time.Time
}

// New builds a Dispatcher against st. requirepass == "" disables the
// AUTH gate. A default config.Config and persistence.Recorder are
// constructed so the zero-configuration test harness (internal/dispatch's
// own *_test.go files) keeps working unchanged; cmd/nimbusd installs
// its own shared instances via SetConfig/SetPersistence once the
// collaborators that load environment overrides are wired up.
func New(st *store.Store, log *zap.Logger, requirepass string) *Dispatcher {
	return &Dispatcher{
		log:         log.Named("dispatch"),
		store:       st,
		requirepass: requirepass,
		monitors:    newMonitorSet(),
		started:     time.Now(),
		cfg:         config.New(),
		persist:     persistence.New(log),
	}
}

// SetNotifyFlags updates the keyspace-notification classes new mutations
// publish under. CONFIG SET notify-keyspace-events only stores the string
// in the config and does not call this, so the flags stay at their zero
// value (no notifications) unless a caller sets them here.
func (d *Dispatcher) SetNotifyFlags(f store.NotifyFlags) { d.notify = f }

// SetConfig installs the shared parameter store CONFIG GET/SET and the
// value kernel's encoding thresholds consult. Called once by
// cmd/nimbusd at startup.
func (d *Dispatcher) SetConfig(cfg *config.Config) { d.cfg = cfg }

// SetPersistence installs the shared save-point recorder SAVE/BGSAVE/
// BGREWRITEAOF/LASTSAVE consult. Called once by cmd/nimbusd at
// startup.
func (d *Dispatcher) SetPersistence(p *persistence.Recorder) { d.persist = p }

// setMaxIntsetEntries, hashMaxZiplistEntries and hashMaxZiplistValue read
// the live CONFIG-backed encoding thresholds (spec.md §6's
// set-max-intset-entries / hash-max-ziplist-{entries,value}) every time a
// Set or Hash is freshly created, so a CONFIG SET takes effect on the
// next write rather than requiring a restart.
func (d *Dispatcher) setMaxIntsetEntries() int {
	return d.cfg.Int("set-max-intset-entries", value.DefaultSetMaxIntsetEntries)
}

func (d *Dispatcher) hashMaxZiplistEntries() int {
	return d.cfg.Int("hash-max-ziplist-entries", value.DefaultHashMaxZiplistEntries)
}

func (d *Dispatcher) hashMaxZiplistValue() int {
	return d.cfg.Int("hash-max-ziplist-value", value.DefaultHashMaxZiplistValue)
}

// Execute runs the pipeline spec.md §4.3 describes: unknown-command and
// arity checks against the table, the AUTH gate, MULTI queueing, then
// routing to the matching handler.
func (d *Dispatcher) Execute(c *session.Client, cmd command.Command) Response {
	if cmd.Arity() == 0 {
		return NoReply()
	}

	spec, ok := lookup(cmd.Name)
	if !ok {
		if c.InMulti() {
			c.MarkDirty()
		}
		return Errf("ERR unknown command '%s'", cmd.Name)
	}
	if !spec.ArityOK(cmd.Arity()) {
		if c.InMulti() {
			c.MarkDirty()
		}
		return Errf("ERR wrong number of arguments for '%s' command", cmd.Name)
	}

	if d.requirepass != "" && !c.Authenticated() && cmd.Name != "AUTH" {
		return Err(ErrAuthRequired)
	}

	d.monitors.broadcast(c, cmd)

	switch cmd.Name {
	case "MULTI":
		if err := c.BeginMulti(); err != nil {
			return Err(err)
		}
		return OK()
	case "DISCARD":
		if !c.InMulti() {
			return Errf("ERR DISCARD without MULTI")
		}
		c.EndMulti()
		return OK()
	case "EXEC":
		return d.execTransaction(c)
	case "WATCH", "UNWATCH":
		// fallthrough to normal routing even inside MULTI; spec.md §4.3:
		// "If client is inside MULTI and command is not WATCH/UNWATCH".
	default:
		if c.InMulti() {
			if _, ok := lookup(cmd.Name); !ok {
				c.MarkDirty()
				return Errf("ERR unknown command '%s'", cmd.Name)
			}
			c.Queue(cmd)
			return Status("QUEUED")
		}
	}

	db, ok := d.store.Select(c.DBIndex())
	if !ok {
		return Errf("ERR DB index is out of range")
	}
	return d.route(c, db, cmd)
}

// execTransaction implements EXEC: verify every watched key's version is
// unchanged, then run the queued commands as a homogeneous array of
// replies. A dirtied queue (a bad command was QUEUEd) aborts with
// EXECABORT, matching redis-server.
func (d *Dispatcher) execTransaction(c *session.Client) Response {
	if !c.InMulti() {
		return Errf("ERR EXEC without MULTI")
	}
	ws := c.Watch()
	queued, dirty := c.EndMulti()
	if dirty {
		return Errf("EXECABORT Transaction discarded because of previous errors.")
	}
	if ws != nil && ws.Dirty() {
		return Nil()
	}

	db, ok := d.store.Select(c.DBIndex())
	if !ok {
		return Errf("ERR DB index is out of range")
	}
	replies := make([]Response, len(queued))
	for i, qc := range queued {
		replies[i] = d.route(c, db, qc)
	}
	return Array(replies...)
}

// route dispatches cmd to its family handler. Commands absent here but
// present in table are handled earlier (MULTI/EXEC/WATCH/UNWATCH).
func (d *Dispatcher) route(c *session.Client, db *store.Database, cmd command.Command) Response {
	switch cmd.Name {
	// strings
	case "GET", "SET", "SETNX", "SETEX", "PSETEX", "GETSET", "APPEND",
		"STRLEN", "GETRANGE", "SETRANGE", "INCR", "DECR", "INCRBY", "DECRBY",
		"INCRBYFLOAT", "SETBIT", "GETBIT", "MGET", "MSET", "MSETNX":
		return d.dispatchString(c, db, cmd)

	// lists
	case "LPUSH", "RPUSH", "LPUSHX", "RPUSHX", "LPOP", "RPOP", "LLEN",
		"LINDEX", "LINSERT", "LRANGE", "LREM", "LSET", "LTRIM", "RPOPLPUSH",
		"BLPOP", "BRPOP", "BRPOPLPUSH":
		return d.dispatchList(c, db, cmd)

	// sets
	case "SADD", "SREM", "SISMEMBER", "SCARD", "SMEMBERS", "SPOP",
		"SRANDMEMBER", "SMOVE", "SINTER", "SUNION", "SDIFF",
		"SINTERSTORE", "SUNIONSTORE", "SDIFFSTORE", "SSCAN":
		return d.dispatchSet(c, db, cmd)

	// sorted sets
	case "ZADD", "ZINCRBY", "ZREM", "ZCARD", "ZSCORE", "ZRANK", "ZREVRANK",
		"ZRANGE", "ZREVRANGE", "ZRANGEBYSCORE", "ZREVRANGEBYSCORE",
		"ZRANGEBYLEX", "ZREVRANGEBYLEX", "ZCOUNT", "ZLEXCOUNT",
		"ZREMRANGEBYRANK", "ZREMRANGEBYSCORE", "ZREMRANGEBYLEX",
		"ZUNIONSTORE", "ZINTERSTORE", "ZSCAN":
		return d.dispatchZSet(c, db, cmd)

	// hashes
	case "HSET", "HSETNX", "HGET", "HMSET", "HMGET", "HDEL", "HLEN",
		"HSTRLEN", "HKEYS", "HVALS", "HGETALL", "HEXISTS", "HINCRBY",
		"HINCRBYFLOAT", "HSCAN":
		return d.dispatchHash(c, db, cmd)

	// HLL
	case "PFADD", "PFCOUNT", "PFMERGE":
		return d.dispatchHLL(db, cmd)

	// generic keyspace
	case "DEL", "UNLINK", "EXISTS", "TYPE", "EXPIRE", "PEXPIRE", "EXPIREAT",
		"PEXPIREAT", "TTL", "PTTL", "PERSIST", "RENAME", "RENAMENX", "KEYS",
		"SCAN", "RANDOMKEY", "TOUCH", "COPY", "SORT", "DUMP", "RESTORE",
		"FLUSHDB", "FLUSHALL", "DBSIZE", "SELECT":
		return d.dispatchKeys(c, db, cmd)

	// transactions
	case "WATCH", "UNWATCH":
		return d.dispatchWatch(c, db, cmd)

	// pub/sub
	case "SUBSCRIBE", "UNSUBSCRIBE", "PSUBSCRIBE", "PUNSUBSCRIBE", "PUBLISH", "PUBSUB":
		return d.dispatchPubSub(c, cmd)

	// connection / admin
	case "AUTH", "PING", "ECHO", "CLIENT":
		return d.dispatchConn(c, cmd)
	case "COMMAND", "CONFIG", "INFO", "SLOWLOG", "OBJECT", "DEBUG",
		"MONITOR", "WAIT", "LASTSAVE", "SAVE", "BGSAVE", "BGREWRITEAOF":
		return d.dispatchAdmin(c, db, cmd)
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}
