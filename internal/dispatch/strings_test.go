package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
)

func TestSetAndGetRoundTrip(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("SET", "k", "v"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)

	r = d.dispatchString(c, db, newCmd("GET", "k"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "v", string(r.Data))
}

func TestSetNXRefusesExistingKey(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchString(c, db, newCmd("SET", "k", "v"))
	r := d.dispatchString(c, db, newCmd("SET", "k", "v2", "NX"))
	require.Equal(t, KindNil, r.Kind)

	got := d.dispatchString(c, db, newCmd("GET", "k"))
	require.Equal(t, "v", string(got.Data))
}

func TestSetXXRequiresExistingKey(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("SET", "nosuch", "v", "XX"))
	require.Equal(t, KindNil, r.Kind)
}

func TestSetNXAndXXTogetherIsSyntaxError(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("SET", "k", "v", "NX", "XX"))
	require.Equal(t, KindError, r.Kind)
}

func TestGetSetReturnsOldValue(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchString(c, db, newCmd("SET", "k", "old"))
	r := d.dispatchString(c, db, newCmd("GETSET", "k", "new"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "old", string(r.Data))

	got := d.dispatchString(c, db, newCmd("GET", "k"))
	require.Equal(t, "new", string(got.Data))
}

func TestAppendGrowsString(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("APPEND", "k", "hello"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 5, r.Integer)

	r = d.dispatchString(c, db, newCmd("APPEND", "k", " world"))
	require.EqualValues(t, 11, r.Integer)
}

func TestIncrDecr(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("INCR", "n"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)

	r = d.dispatchString(c, db, newCmd("INCRBY", "n", "10"))
	require.EqualValues(t, 11, r.Integer)

	r = d.dispatchString(c, db, newCmd("DECRBY", "n", "5"))
	require.EqualValues(t, 6, r.Integer)

	r = d.dispatchString(c, db, newCmd("DECR", "n"))
	require.EqualValues(t, 5, r.Integer)
}

func TestMSetNXFailsIfAnyKeyExists(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchString(c, db, newCmd("SET", "b", "1"))
	r := d.dispatchString(c, db, newCmd("MSETNX", "a", "1", "b", "2"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 0, r.Integer)

	_, ok := db.Get("a")
	require.False(t, ok, "MSETNX must not set any key when one already exists")
}

func TestSetEXAttachesTTL(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("SETEX", "k", "100", "v"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)

	ttl, ok := db.TTL("k")
	require.True(t, ok)
	require.Greater(t, ttl.Seconds(), 0.0)
}

func TestSetBitAndGetBit(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchString(c, db, newCmd("SETBIT", "k", "7", "1"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 0, r.Integer, "expected the prior bit value (0) returned")

	r = d.dispatchString(c, db, newCmd("GETBIT", "k", "7"))
	require.EqualValues(t, 1, r.Integer)
}

func TestMGetMixesHitsAndMisses(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchString(c, db, newCmd("SET", "a", "1"))
	r := d.dispatchString(c, db, newCmd("MGET", "a", "nosuch"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 2)
	require.Equal(t, "1", string(r.Children[0].Data))
	require.Equal(t, KindNil, r.Children[1].Kind)
}
