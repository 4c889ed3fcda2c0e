package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/value"
)

func TestCommandCountMatchesTable(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("COMMAND", "COUNT"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, len(table), r.Integer)
}

func TestConfigGetUnknownParamReturnsEmptyArray(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("CONFIG", "GET", "no-such-param"))
	require.Equal(t, KindArray, r.Kind)
	require.Empty(t, r.Children)
}

func TestConfigGetKnownParamReturnsPair(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("CONFIG", "GET", "maxmemory"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 2)
	require.Equal(t, "maxmemory", string(r.Children[0].Data))
	require.Equal(t, "0", string(r.Children[1].Data))
}

func TestConfigSetValidatesEnumAndAppliesValue(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("CONFIG", "SET", "appendonly", "bogus"))
	require.Equal(t, KindError, r.Kind)

	r = d.dispatchAdmin(c, db, newCmd("CONFIG", "SET", "appendonly", "yes"))
	require.Equal(t, KindStatus, r.Kind)

	r = d.dispatchAdmin(c, db, newCmd("CONFIG", "GET", "appendonly"))
	require.Equal(t, "yes", string(r.Children[1].Data))
}

func TestObjectEncodingReportsKeyEncoding(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("k", value.NewStr([]byte("123")))
	r := d.dispatchAdmin(c, db, newCmd("OBJECT", "ENCODING", "k"))
	require.Equal(t, KindData, r.Kind)
	require.NotEmpty(t, r.Data)
}

func TestObjectEncodingOnMissingKeyIsNil(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("OBJECT", "ENCODING", "nosuch"))
	require.Equal(t, KindNil, r.Kind)
}

func TestMonitorRegistersClientAndReturnsOK(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(&fakeSink{})

	r := d.dispatchAdmin(c, db, newCmd("MONITOR"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)
	require.True(t, d.monitors.active())
}

func TestInfoRendersKeyspaceSection(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	db.Set("k", value.NewStr([]byte("v")))
	r := d.dispatchAdmin(c, db, newCmd("INFO"))
	require.Equal(t, KindData, r.Kind)
	require.Contains(t, string(r.Data), "db0:keys=1")
}

func TestDebugSleepZeroRepliesOK(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchAdmin(c, db, newCmd("DEBUG", "SLEEP", "0"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)
}
