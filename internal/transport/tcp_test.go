package transport_test

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/arrowhead-f/go-configuration-core/internal/transport"
)

// tcpEchoServer accepts one connection and echoes every length-prefixed
// frame it reads back to the client unmodified.
func tcpEchoServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var prefix [2]byte
			if _, err := conn.Read(prefix[:]); err != nil {
				return
			}
			n := binary.BigEndian.Uint16(prefix[:])
			body := make([]byte, n)
			total := 0
			for total < int(n) {
				k, err := conn.Read(body[total:])
				if err != nil {
					return
				}
				total += k
			}
			_, _ = conn.Write(prefix[:])
			_, _ = conn.Write(body)
		}
	}()

	return ln.Addr().String()
}

func TestTCPTransport_ImplementsTransportInterface(_ *testing.T) {
	var _ transport.Transport = (*transport.TCPTransport)(nil)
}

func TestTCPTransport_SendReceiveRoundTrip(t *testing.T) {
	server := tcpEchoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tr, err := transport.NewTCP(ctx, server)
	if err != nil {
		t.Fatalf("NewTCP: %v", err)
	}
	defer func() { _ = tr.Close() }()

	packet := []byte{0x12, 0x34, 0x56, 0x78, 0x9a}
	if err := tr.Send(ctx, packet); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, err := tr.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != string(packet) {
		t.Errorf("Receive = %v, want %v", got, packet)
	}
}

func TestTCPTransport_Receive_HandlesSplitFramesAcrossMultipleMessages(t *testing.T) {
	server := tcpEchoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tr, err := transport.NewTCP(ctx, server)
	if err != nil {
		t.Fatalf("NewTCP: %v", err)
	}
	defer func() { _ = tr.Close() }()

	packets := [][]byte{{0x01}, {0x02, 0x03}, {0x04, 0x05, 0x06}}
	for _, p := range packets {
		if err := tr.Send(ctx, p); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	for _, want := range packets {
		got, err := tr.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if string(got) != string(want) {
			t.Errorf("Receive = %v, want %v", got, want)
		}
	}
}
