package transport_test

import (
	"testing"

	"github.com/arrowhead-f/go-configuration-core/internal/transport"
)

// TestTransportInterface_HasRequiredMethods verifies that the mock and the
// UDP transport satisfy the Transport interface.
func TestTransportInterface_HasRequiredMethods(_ *testing.T) {
	var _ transport.Transport = (*transport.MockTransport)(nil)
	var _ transport.Transport = (*transport.UDPTransport)(nil)
}
