package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
)

var listenConfig = net.ListenConfig{Control: PlatformControl}

// UDPTransport is a Transport that talks to a single configured DNS server
// over UDP. One datagram is one message; there is no framing state.
type UDPTransport struct {
	conn net.PacketConn
	dst  net.Addr
}

// NewUDP dials a UDP socket for the given "host:port" server address. The
// socket is opened eagerly here; callers that want lazy-on-first-enqueue
// semantics (spec.md §4.2) defer calling NewUDP until the first task is
// queued rather than constructing the transport up front.
func NewUDP(server string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "resolve server address", Err: err, Details: server}
	}

	pconn, err := listenConfig.ListenPacket(context.Background(), "udp", ":0")
	if err != nil {
		return nil, &errors.NetworkError{Operation: "open udp socket", Err: err}
	}
	conn := pconn.(*net.UDPConn)
	if err := conn.SetReadBuffer(65536); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{Operation: "configure socket", Err: err, Details: "failed to set read buffer size"}
	}

	return &UDPTransport{conn: conn, dst: raddr}, nil
}

// Send transmits packet to the configured server, respecting ctx.
func (t *UDPTransport) Send(ctx context.Context, packet []byte) error {
	select {
	case <-ctx.Done():
		return &errors.NetworkError{Operation: "send", Err: ctx.Err(), Details: "context canceled before send"}
	default:
	}

	n, err := t.conn.WriteTo(packet, t.dst)
	if err != nil {
		return &errors.NetworkError{Operation: "send", Err: err, Details: fmt.Sprintf("failed to send %d bytes to %s", len(packet), t.dst)}
	}
	if n != len(packet) {
		return &errors.NetworkError{Operation: "send", Err: fmt.Errorf("partial write: %d/%d bytes", n, len(packet)), Details: "incomplete transmission"}
	}
	return nil
}

// Receive waits for a single datagram, respecting ctx's deadline.
func (t *UDPTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, &errors.NetworkError{Operation: "receive", Err: ctx.Err(), Details: "context canceled before receive"}
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, &errors.NetworkError{Operation: "set read deadline", Err: err}
		}
	}

	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	buffer := *bufPtr

	n, _, err := t.conn.ReadFrom(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "timeout"}
		}
		return nil, &errors.NetworkError{Operation: "receive", Err: err, Details: "failed to read from socket"}
	}

	result := make([]byte, n)
	copy(result, buffer[:n])
	return result, nil
}

// Close releases the socket.
func (t *UDPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		return &errors.NetworkError{Operation: "close", Err: err, Details: "failed to close UDP socket"}
	}
	return nil
}
