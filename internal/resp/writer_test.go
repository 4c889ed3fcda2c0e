package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/nimbusdb/internal/dispatch"
)

func TestWriteResponseRendersEachKind(t *testing.T) {
	cases := []struct {
		name string
		r    dispatch.Response
		want string
	}{
		{"status", dispatch.OK(), "+OK\r\n"},
		{"error", dispatch.Errf("ERR bad"), "-ERR bad\r\n"},
		{"integer", dispatch.Int(42), ":42\r\n"},
		{"nil", dispatch.Nil(), "$-1\r\n"},
		{"bulk", dispatch.BulkString("hi"), "$2\r\nhi\r\n"},
		{"nilarray", dispatch.NilArray(), "*-1\r\n"},
		{"array", dispatch.Array(dispatch.BulkString("a"), dispatch.Int(1)), "*2\r\n$1\r\na\r\n:1\r\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			require.NoError(t, w.WriteResponse(tc.r))
			require.Equal(t, tc.want, buf.String())
		})
	}
}

func TestWriteResponseNoReplyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(dispatch.NoReply()))
	require.Empty(t, buf.Bytes())
}

func TestPushRendersSubscribeAck(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Push("subscribe", "news", "1")
	require.Equal(t, "*3\r\n$9\r\nsubscribe\r\n$4\r\nnews\r\n$1\r\n1\r\n", buf.String())
}

func TestPushRendersMonitorAsBareStatus(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Push("monitor", "1627.0001 [0 127.0.0.1:1] \"PING\"")
	require.Equal(t, "+1627.0001 [0 127.0.0.1:1] \"PING\"\r\n", buf.String())
}
