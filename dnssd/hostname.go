package dnssd

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/arrowhead-f/go-configuration-core/internal/message"
	"github.com/arrowhead-f/go-configuration-core/internal/network"
	"github.com/arrowhead-f/go-configuration-core/internal/resolver"
)

// discoverDomains implements spec.md §4.3's hostname discovery: when no
// registration/browsing domains are configured, enumerate external
// (non-loopback) interface addresses, issue reverse PTR lookups, drop the
// first label of each resolved name, and use the remainder as the search
// domains.
func discoverDomains(ctx context.Context, res *resolver.Resolver) ([]string, error) {
	addrs, err := network.ExternalAddresses()
	if err != nil {
		return nil, fmt.Errorf("dnssd: enumerate interfaces: %w", err)
	}

	seen := make(map[string]struct{})
	var domains []string
	for _, ip := range addrs {
		revName, ok := reverseName(ip)
		if !ok {
			continue
		}
		req := &message.Message{
			Header:    message.Header{ID: message.NewID(), RD: true},
			Questions: []message.Question{{Name: revName, Type: message.TypePTR, Class: message.ClassIN}},
		}
		resp, err := res.Send(ctx, req)
		if err != nil {
			continue
		}
		for _, rr := range resp.Answers {
			ptr, ok := rr.Data.(message.RDataName)
			if !ok {
				continue
			}
			domain := dropFirstLabel(ptr.Name)
			if domain == "" {
				continue
			}
			if _, dup := seen[domain]; dup {
				continue
			}
			seen[domain] = struct{}{}
			domains = append(domains, domain)
		}
	}

	if len(domains) == 0 {
		return nil, fmt.Errorf("dnssd: hostname discovery found no search domains")
	}
	return domains, nil
}

// reverseName builds the RFC 1035/3596 in-addr.arpa / ip6.arpa PTR query
// name for ip.
func reverseName(ip net.IP) (string, bool) {
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa.", v4[3], v4[2], v4[1], v4[0]), true
	}
	if v6 := ip.To16(); v6 != nil {
		var b strings.Builder
		for i := len(v6) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "%x.%x.", v6[i]&0x0f, v6[i]>>4)
		}
		b.WriteString("ip6.arpa.")
		return b.String(), true
	}
	return "", false
}

// dropFirstLabel removes the leftmost dot-delimited label from a
// fully-qualified name, per spec.md §4.3's "drop the first label ... use
// the remainder as the search domain".
func dropFirstLabel(name string) string {
	trimmed := strings.TrimSuffix(name, ".")
	idx := strings.IndexByte(trimmed, '.')
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:] + "."
}
