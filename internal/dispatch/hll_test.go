package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPFAddReportsRegisterChange(t *testing.T) {
	d, db := newTestDispatcher()

	r := d.dispatchHLL(db, newCmd("PFADD", "hll", "a", "b", "c"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer, "first PFADD should report change")

	r = d.dispatchHLL(db, newCmd("PFADD", "hll", "a"))
	require.EqualValues(t, 0, r.Integer, "re-adding an already-seen element should report no change")
}

func TestPFCountOnMissingKeyIsZero(t *testing.T) {
	d, db := newTestDispatcher()

	r := d.dispatchHLL(db, newCmd("PFCOUNT", "nosuch"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 0, r.Integer)
}

func TestPFMergeCombinesSketches(t *testing.T) {
	d, db := newTestDispatcher()

	d.dispatchHLL(db, newCmd("PFADD", "a", "x", "y"))
	d.dispatchHLL(db, newCmd("PFADD", "b", "y", "z"))
	r := d.dispatchHLL(db, newCmd("PFMERGE", "dst", "a", "b"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)

	count := d.dispatchHLL(db, newCmd("PFCOUNT", "dst"))
	require.GreaterOrEqual(t, count.Integer, int64(2), "merged sketch should count x,y,z (HLL is approximate)")
}
