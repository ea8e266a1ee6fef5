package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
)

// TCPTransport is a Transport that talks to a single configured DNS server
// over TCP, using the RFC 1035 §4.2.2 length-prefixed stream framing:
// every message is preceded by a 16-bit big-endian length.
//
// Receive implements the two-state parser from spec §4.2 (Length, then
// Message) as a pair of io.ReadFull calls against a buffered reader: the
// first reads exactly the two length bytes regardless of how TCP happened
// to split them across packets, the second reads exactly that many payload
// bytes, possibly spanning several reads. That is the stream-parser
// behavior the state names describe; Go's io.ReadFull already gives it to
// us without a hand-rolled state variable.
type TCPTransport struct {
	conn net.Conn
	r    *bufio.Reader
}

// NewTCP dials a TCP connection to the given "host:port" server address.
func NewTCP(ctx context.Context, server string) (*TCPTransport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", server)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "dial tcp", Err: err, Details: server}
	}
	return &TCPTransport{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Send writes the 2-byte length prefix followed by packet.
func (t *TCPTransport) Send(ctx context.Context, packet []byte) error {
	if len(packet) > 0xffff {
		return &errors.ResolverError{Kind: errors.RequestTooLong, Op: "send"}
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetWriteDeadline(deadline); err != nil {
			return &errors.NetworkError{Operation: "set write deadline", Err: err}
		}
	}

	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(packet)))
	if _, err := t.conn.Write(prefix[:]); err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: "failed to write length prefix"}
	}
	if _, err := t.conn.Write(packet); err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: "failed to write message body"}
	}
	return nil
}

// Receive reads one complete length-prefixed message: Length state then
// Message state.
func (t *TCPTransport) Receive(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, &errors.NetworkError{Operation: "set read deadline", Err: err}
		}
	}

	var prefix [2]byte
	if _, err := io.ReadFull(t.r, prefix[:]); err != nil {
		return nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "failed to read length prefix"}
	}
	length := binary.BigEndian.Uint16(prefix[:])

	body := make([]byte, length)
	if _, err := io.ReadFull(t.r, body); err != nil {
		return nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "failed to read message body"}
	}
	return body, nil
}

// Close ends the connection; any in-flight tasks are the resolver's
// responsibility to fail with RequestUnanswered.
func (t *TCPTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		return &errors.NetworkError{Operation: "close", Err: err, Details: "failed to close TCP connection"}
	}
	return nil
}
