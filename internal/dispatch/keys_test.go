package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func TestDelCountsOnlyExistingKeys(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("a", value.NewStr([]byte("1")))
	r := d.dispatchKeys(c, db, newCmd("DEL", "a", "nosuch"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)
}

func TestTypeOnMissingKeyReportsNone(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchKeys(c, db, newCmd("TYPE", "nosuch"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "none", r.Status)
}

func TestExpireThenTTLAndPersist(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("k", value.NewStr([]byte("v")))
	r := d.dispatchKeys(c, db, newCmd("EXPIRE", "k", "100"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)

	ttl := d.dispatchKeys(c, db, newCmd("TTL", "k"))
	require.Greater(t, ttl.Integer, int64(0))
	require.LessOrEqual(t, ttl.Integer, int64(100))

	r = d.dispatchKeys(c, db, newCmd("PERSIST", "k"))
	require.EqualValues(t, 1, r.Integer)

	ttl = d.dispatchKeys(c, db, newCmd("TTL", "k"))
	require.EqualValues(t, -1, ttl.Integer)
}

func TestTTLOnMissingKeyIsMinusTwo(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchKeys(c, db, newCmd("TTL", "nosuch"))
	require.EqualValues(t, -2, r.Integer)
}

func TestRenameNXRefusesExistingDestination(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("src", value.NewStr([]byte("1")))
	db.Set("dst", value.NewStr([]byte("2")))
	r := d.dispatchKeys(c, db, newCmd("RENAMENX", "src", "dst"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 0, r.Integer)
}

func TestCopyWithoutReplaceFailsOnExistingDestination(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("src", value.NewStr([]byte("1")))
	db.Set("dst", value.NewStr([]byte("2")))
	r := d.dispatchKeys(c, db, newCmd("COPY", "src", "dst"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 0, r.Integer)

	r = d.dispatchKeys(c, db, newCmd("COPY", "src", "dst", "REPLACE"))
	require.EqualValues(t, 1, r.Integer)
}

func TestSortNumericAscending(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	l, err := value.AsList(db.GetOrCreate("l", func() value.Value { return value.NewList() }))
	require.NoError(t, err)
	l.PushRight([]byte("3"), []byte("1"), []byte("2"))

	r := d.dispatchKeys(c, db, newCmd("SORT", "l"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 3)
	require.Equal(t, "1", string(r.Children[0].Data))
	require.Equal(t, "3", string(r.Children[2].Data))
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("k", value.NewStr([]byte("hello")))
	dump := d.dispatchKeys(c, db, newCmd("DUMP", "k"))
	require.Equal(t, KindData, dump.Kind)

	db.Delete("k")
	r := d.dispatchKeys(c, db, newCmd("RESTORE", "k", "0", string(dump.Data)))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)

	got, ok := db.Get("k")
	require.True(t, ok, "expected key restored")
	s, err := value.AsString(got)
	require.NoError(t, err)
	require.Equal(t, "hello", string(s.Bytes()))
}

func TestRestoreRefusesExistingKeyWithoutReplace(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("k", value.NewStr([]byte("orig")))
	dump := d.dispatchKeys(c, db, newCmd("DUMP", "k"))
	r := d.dispatchKeys(c, db, newCmd("RESTORE", "k", "0", string(dump.Data)))
	require.Equal(t, KindError, r.Kind)
}

func TestSelectOutOfRangeLeavesDBUnchanged(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchKeys(c, db, newCmd("SELECT", "99"))
	require.Equal(t, KindError, r.Kind)
	require.Equal(t, 0, c.DBIndex())
}

func TestFlushDBEmptiesCurrentDatabase(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("a", value.NewStr([]byte("1")))
	r := d.dispatchKeys(c, db, newCmd("FLUSHDB"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)
	require.Zero(t, db.Size())
}
