// Package dnssd composes the resolver socket, the RFC 2136 update builder,
// and the TSIG signer into a DNS-SD (RFC 6763-style) service-discovery
// interface: lookup types/identifiers/records, and publish/unpublish, per
// spec.md §4.3.
package dnssd

import (
	"context"
	"fmt"

	"github.com/arrowhead-f/go-configuration-core/internal/resolver"
	"github.com/arrowhead-f/go-configuration-core/internal/tsig"
)

// metaServiceName is the well-known PTR name RFC 6763 §9 uses to enumerate
// every service type advertised in a domain.
const metaServiceName = "_services._dns-sd._udp"

// Record is a resolved service instance (spec.md §3 "Service record").
type Record struct {
	Hostname    string
	ServiceType string
	ServiceName string
	Endpoint    string
	Port        uint16
	Metadata    map[string]string
}

// Registration describes one service instance to Publish/Unpublish.
type Registration struct {
	ServiceName string // instance label, e.g. "printer-1"
	ServiceType string // e.g. "_http._tcp"
	Endpoint    string // SRV target host, e.g. "node1.example.org."
	Port        uint16
	Metadata    map[string]string
}

// fullyQualifiedInstance returns "<instance>.<type>.<domain>.".
func (r Registration) fullyQualifiedInstance(domain string) string {
	return fmt.Sprintf("%s.%s.%s.", r.ServiceName, r.ServiceType, trimDot(domain))
}

func trimDot(s string) string {
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Client is the DNS-SD service: one Client talks to one resolver socket
// and carries the browsing/registration domains and the signer used to
// publish.
type Client struct {
	res *resolver.Resolver

	browsingDomains     []string
	registrationDomains []string
	signer              *tsig.Signer
}

// New creates a Client resolving against server ("host:port").
func New(server string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ropts := o.resolverOpts
	c := &Client{
		res:                 resolver.New(server, ropts...),
		browsingDomains:     o.browsingDomains,
		registrationDomains: o.registrationDomains,
		signer:              o.signer,
	}

	if len(c.browsingDomains) == 0 || len(c.registrationDomains) == 0 {
		discovered, err := discoverDomains(context.Background(), c.res)
		if err != nil {
			return nil, err
		}
		if len(c.browsingDomains) == 0 {
			c.browsingDomains = discovered
		}
		if len(c.registrationDomains) == 0 {
			c.registrationDomains = discovered
		}
	}

	return c, nil
}

// Close releases the underlying resolver socket.
func (c *Client) Close() error {
	return c.res.Close()
}
