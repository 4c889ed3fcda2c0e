package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/session"
)

func TestSubscribePushesAckAndYieldsNoReply(t *testing.T) {
	d, _ := newTestDispatcher()
	sink := &fakeSink{}
	c := session.New(sink)

	r := d.dispatchPubSub(c, newCmd("SUBSCRIBE", "news"))
	require.Equal(t, KindNoReply, r.Kind)
	require.Len(t, sink.pushes, 1)
	require.Equal(t, []string{"subscribe", "news", "1"}, sink.pushes[0])
}

func TestPublishReturnsReceiverCount(t *testing.T) {
	d, _ := newTestDispatcher()
	subSink := &fakeSink{}
	sub := session.New(subSink)
	pub := session.New(&fakeSink{})

	d.dispatchPubSub(sub, newCmd("SUBSCRIBE", "news"))
	r := d.dispatchPubSub(pub, newCmd("PUBLISH", "news", "hello"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)
}

func TestUnsubscribeWithNoArgsUnsubscribesAll(t *testing.T) {
	d, _ := newTestDispatcher()
	sink := &fakeSink{}
	c := session.New(sink)

	d.dispatchPubSub(c, newCmd("SUBSCRIBE", "a", "b"))
	r := d.dispatchPubSub(c, newCmd("UNSUBSCRIBE"))
	require.Equal(t, KindNoReply, r.Kind)
	require.Zero(t, c.SubscriptionCount(), "expected all subscriptions dropped")
}

func TestPubSubChannelsIntrospection(t *testing.T) {
	d, _ := newTestDispatcher()
	c := session.New(&fakeSink{})

	d.dispatchPubSub(c, newCmd("SUBSCRIBE", "news", "sports"))
	r := d.dispatchPubSub(c, newCmd("PUBSUB", "CHANNELS"))
	require.Equal(t, KindArray, r.Kind)
	require.Len(t, r.Children, 2)
}

func TestPubSubNumPat(t *testing.T) {
	d, _ := newTestDispatcher()
	c := session.New(&fakeSink{})

	d.dispatchPubSub(c, newCmd("PSUBSCRIBE", "news.*"))
	r := d.dispatchPubSub(c, newCmd("PUBSUB", "NUMPAT"))
	require.Equal(t, KindInteger, r.Kind)
	require.EqualValues(t, 1, r.Integer)
}
