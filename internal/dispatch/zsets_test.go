package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
)

func TestZAddCountsNewVsUpdatedMembers(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a", "2", "b"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 2, r.Integer)

	// re-adding "a" with a new score and "c" fresh: only "c" is new.
	r = d.dispatchZSet(c, db, newCmd("ZADD", "z", "5", "a", "3", "c"))
	require.EqualValues(t, 1, r.Integer, "expected added=1 (only c is new)")
}

func TestZAddCHCountsChangedNotJustAdded(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a"))
	r := d.dispatchZSet(c, db, newCmd("ZADD", "z", "CH", "2", "a"))
	require.EqualValues(t, 1, r.Integer, "ZADD CH on score change should count changed=1")
}

func TestZAddNXSkipsExistingMember(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a"))
	d.dispatchZSet(c, db, newCmd("ZADD", "z", "NX", "99", "a"))
	r := d.dispatchZSet(c, db, newCmd("ZSCORE", "z", "a"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "1", string(r.Data), "ZADD NX must not overwrite existing score")
}

func TestZRangeByRankWithScores(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a", "2", "b", "3", "c"))
	r := d.dispatchZSet(c, db, newCmd("ZRANGE", "z", "0", "-1", "WITHSCORES"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 6)
	require.Equal(t, "a", string(r.Children[0].Data))
	require.Equal(t, "1", string(r.Children[1].Data))
}

func TestZRangeByScoreInfBounds(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a", "2", "b", "3", "c"))
	r := d.dispatchZSet(c, db, newCmd("ZRANGEBYSCORE", "z", "-inf", "+inf"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 3)
}

func TestZCountExclusiveBound(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a", "2", "b", "3", "c"))
	r := d.dispatchZSet(c, db, newCmd("ZCOUNT", "z", "(1", "3"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 2, r.Integer)
}

func TestZUnionStoreWithWeights(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z1", "1", "a"))
	d.dispatchZSet(c, db, newCmd("ZADD", "z2", "2", "a"))
	r := d.dispatchZSet(c, db, newCmd("ZUNIONSTORE", "dst", "2", "z1", "z2", "WEIGHTS", "2", "3"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)

	score := d.dispatchZSet(c, db, newCmd("ZSCORE", "dst", "a"))
	require.Equal(t, "8", string(score.Data), "weighted score should be 1*2 + 2*3")
}

func TestZIncrByReturnsNewScore(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a"))
	r := d.dispatchZSet(c, db, newCmd("ZINCRBY", "z", "4", "a"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "5", string(r.Data))
}

func TestZScanPaginatesWithScores(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	d.dispatchZSet(c, db, newCmd("ZADD", "z", "1", "a", "2", "b", "3", "c"))

	var members, scores []string
	cursor := "0"
	for {
		r := d.dispatchZSet(c, db, newCmd("ZSCAN", "z", cursor, "COUNT", "1"))
		require.Equal(t, KindArray, r.Kind)
		require.Len(t, r.Children, 2)
		cursor = string(r.Children[0].Data)
		page := r.Children[1].Children
		for i := 0; i < len(page); i += 2 {
			members = append(members, string(page[i].Data))
			scores = append(scores, string(page[i+1].Data))
		}
		if cursor == "0" {
			break
		}
	}
	require.Equal(t, []string{"a", "b", "c"}, members)
	require.Equal(t, []string{"1", "2", "3"}, scores)
}

func TestZScanOnMissingKeyReturnsEmptyPage(t *testing.T) {
	d, db := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchZSet(c, db, newCmd("ZSCAN", "nosuch", "0"))
	require.Equal(t, KindArray, r.Kind)
	require.Equal(t, "0", string(r.Children[0].Data))
	require.Empty(t, r.Children[1].Children)
}
