package resp

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/nimbusdb/nimbusdb/internal/dispatch"
)

// Writer renders dispatch.Response values to RESP2 bytes and also
// implements session.ReplySink, so it is the single point through which
// a connection's goroutine — and any other goroutine delivering a
// Pub/Sub message or MONITOR line to the same connection — writes to the
// socket. The mutex serializes those two producers.
type Writer struct {
	mu sync.Mutex
	bw *bufio.Writer
}

// NewWriter wraps w for repeated WriteResponse/Push calls.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, 16*1024)}
}

// WriteResponse renders r and flushes it to the underlying connection.
// dispatch.KindNoReply writes nothing (the subscribe family already
// pushed its own frames via Push).
func (w *Writer) WriteResponse(r dispatch.Response) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r.Kind == dispatch.KindNoReply {
		return nil
	}
	if err := w.encode(r); err != nil {
		return err
	}
	return w.bw.Flush()
}

func (w *Writer) encode(r dispatch.Response) error {
	switch r.Kind {
	case dispatch.KindStatus:
		_, err := fmt.Fprintf(w.bw, "+%s\r\n", r.Status)
		return err
	case dispatch.KindError:
		msg := "ERR internal error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		_, err := fmt.Fprintf(w.bw, "-%s\r\n", msg)
		return err
	case dispatch.KindInteger:
		_, err := fmt.Fprintf(w.bw, ":%d\r\n", r.Integer)
		return err
	case dispatch.KindNil:
		_, err := w.bw.WriteString("$-1\r\n")
		return err
	case dispatch.KindData:
		if r.Data == nil {
			_, err := w.bw.WriteString("$-1\r\n")
			return err
		}
		if _, err := fmt.Fprintf(w.bw, "$%d\r\n", len(r.Data)); err != nil {
			return err
		}
		if _, err := w.bw.Write(r.Data); err != nil {
			return err
		}
		_, err := w.bw.WriteString("\r\n")
		return err
	case dispatch.KindArray:
		if r.Children == nil {
			_, err := w.bw.WriteString("*-1\r\n")
			return err
		}
		if _, err := fmt.Fprintf(w.bw, "*%d\r\n", len(r.Children)); err != nil {
			return err
		}
		for _, child := range r.Children {
			if err := w.encode(child); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// Push implements session.ReplySink: it renders an out-of-band frame —
// a Pub/Sub subscribe/unsubscribe ack, a "message"/"pmessage" delivery,
// or a MONITOR status line — directly to the connection, independent of
// the request/response cycle the read loop drives.
//
// kind == "monitor" is rendered as a bare status line (args[0]), matching
// spec.md §9's note that MONITOR formatting is "a bare status string".
// Every other kind is rendered as a RESP array of bulk strings, the shape
// real Redis clients (including go-redis) expect for Pub/Sub frames.
func (w *Writer) Push(kind string, args ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if kind == "monitor" {
		fmt.Fprintf(w.bw, "+%s\r\n", args[0])
		w.bw.Flush()
		return
	}

	fmt.Fprintf(w.bw, "*%d\r\n", len(args)+1)
	fmt.Fprintf(w.bw, "$%d\r\n%s\r\n", len(kind), kind)
	for _, a := range args {
		fmt.Fprintf(w.bw, "$%d\r\n%s\r\n", len(a), a)
	}
	w.bw.Flush()
}
