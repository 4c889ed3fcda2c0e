package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

func TestAuthWithWrongPasswordFails(t *testing.T) {
	st := store.New(1, zap.NewNop())
	d := New(st, zap.NewNop(), "secret")
	c := session.New(nil)

	r := d.dispatchConn(c, newCmd("AUTH", "wrong"))
	require.Equal(t, KindError, r.Kind)
	require.False(t, c.Authenticated())
}

func TestAuthWithCorrectPasswordSucceeds(t *testing.T) {
	st := store.New(1, zap.NewNop())
	d := New(st, zap.NewNop(), "secret")
	c := session.New(nil)

	r := d.dispatchConn(c, newCmd("AUTH", "secret"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)
	require.True(t, c.Authenticated())
}

func TestAuthWithoutRequirepassErrors(t *testing.T) {
	d, _ := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchConn(c, newCmd("AUTH", "anything"))
	require.Equal(t, KindError, r.Kind)
}

func TestPingEchoesOptionalMessage(t *testing.T) {
	d, _ := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchConn(c, newCmd("PING"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "PONG", r.Status)

	r = d.dispatchConn(c, newCmd("PING", "hello"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "hello", string(r.Data))
}

func TestClientSetNameAndGetName(t *testing.T) {
	d, _ := newTestDispatcher()
	c := session.New(nil)

	r := d.dispatchConn(c, newCmd("CLIENT", "SETNAME", "worker-1"))
	require.Equal(t, KindStatus, r.Kind)
	require.Equal(t, "OK", r.Status)

	r = d.dispatchConn(c, newCmd("CLIENT", "GETNAME"))
	require.Equal(t, KindData, r.Kind)
	require.Equal(t, "worker-1", string(r.Data))
}
