package transport

import "context"

// Transport is a unicast request/response byte pipe to one configured DNS
// server. UDPTransport and TCPTransport both implement it; the resolver
// (internal/resolver) is the only caller and never looks past Send/
// Receive/Close.
type Transport interface {
	Send(ctx context.Context, packet []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}
