package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
)

func TestWatchInsideMultiIsRejected(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	c.BeginMulti()
	r := d.dispatchWatch(c, db, newCmd("WATCH", "k"))
	require.Equal(t, KindError, r.Kind)
}

func TestUnwatchClearsActiveWatchSet(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchWatch(c, db, newCmd("WATCH", "k"))
	require.NotNil(t, c.Watch())

	r := d.dispatchWatch(c, db, newCmd("UNWATCH"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)
	require.Nil(t, c.Watch())
}

func TestWatchAddsToExistingSetRatherThanReplacing(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchWatch(c, db, newCmd("WATCH", "a"))
	first := c.Watch()
	d.dispatchWatch(c, db, newCmd("WATCH", "b"))
	require.Same(t, first, c.Watch(), "expected the second WATCH to extend the existing set, not replace it")
}
