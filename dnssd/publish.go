package dnssd

import (
	"context"
	"fmt"
	"strings"

	"github.com/arrowhead-f/go-configuration-core/internal/dnsupdate"
	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/message"
)

// Publish advertises reg under every configured registration domain, per
// spec.md §4.3. Every domain's UPDATE must succeed (send, receive, and a
// NOERROR rcode); the first failure aborts and is returned — publish is an
// all-or-nothing fan-out, unlike the lookup side's "at least one succeeds"
// sendAll semantics (spec.md §7).
func (c *Client) Publish(ctx context.Context, reg Registration) error {
	if c.signer == nil {
		return fmt.Errorf("dnssd: publish requires a TSIG signer (see WithTSIGSigner)")
	}

	for _, domain := range c.registrationDomains {
		if err := c.publishOne(ctx, domain, reg); err != nil {
			return fmt.Errorf("dnssd: publish to domain %q: %w", domain, err)
		}
	}
	return nil
}

func (c *Client) publishOne(ctx context.Context, domain string, reg Registration) error {
	domain = ensureDot(domain)
	instance := reg.fullyQualifiedInstance(domain)
	metaName := metaServiceName + "." + domain
	typeName := ensureDot(reg.ServiceType) + domain

	b := dnsupdate.New(message.NewID(), domain).
		WithSigner(c.signer).
		RequireAbsent(instance).
		Add(metaName, 0, message.RDataName{Type: message.TypePTR, Name: typeName}).
		Add(typeName, 4500, message.RDataName{Type: message.TypePTR, Name: instance}).
		Add(instance, 120, message.RDataSRV{Priority: 0, Weight: 0, Port: reg.Port, Target: ensureDot(reg.Endpoint)}).
		Add(instance, 4500, WriteTXT(reg.Metadata))

	for _, suffix := range intermediateTypeSuffixes(reg.ServiceType) {
		suffixName := ensureDot(suffix) + domain
		b.Add(suffixName, 4500, message.RDataName{Type: message.TypePTR, Name: typeName})
	}

	resp, err := c.res.Send(ctx, b.Message())
	if err != nil {
		return err
	}
	if resp.Header.RCode != message.RCodeNoError {
		return &errors.ResolverError{Kind: errors.ResponseBad, Op: "publish"}
	}
	return nil
}

// Unpublish retracts reg from every registration domain: it removes the
// SRV/TXT RRsets owned exclusively by this instance, and the single PTR
// value this instance contributed under its service type (sibling
// instances of the same type are untouched, per RFC 2136 §2.5.4).
func (c *Client) Unpublish(ctx context.Context, reg Registration) error {
	if c.signer == nil {
		return fmt.Errorf("dnssd: unpublish requires a TSIG signer (see WithTSIGSigner)")
	}

	for _, domain := range c.registrationDomains {
		if err := c.unpublishOne(ctx, domain, reg); err != nil {
			return fmt.Errorf("dnssd: unpublish from domain %q: %w", domain, err)
		}
	}
	return nil
}

func (c *Client) unpublishOne(ctx context.Context, domain string, reg Registration) error {
	domain = ensureDot(domain)
	instance := reg.fullyQualifiedInstance(domain)
	typeName := ensureDot(reg.ServiceType) + domain

	b := dnsupdate.New(message.NewID(), domain).
		WithSigner(c.signer).
		Delete(instance, message.TypeSRV).
		Delete(instance, message.TypeTXT).
		DeleteRR(typeName, message.RDataName{Type: message.TypePTR, Name: instance})

	resp, err := c.res.Send(ctx, b.Message())
	if err != nil {
		return err
	}
	if resp.Header.RCode != message.RCodeNoError {
		return &errors.ResolverError{Kind: errors.ResponseBad, Op: "unpublish"}
	}
	return nil
}

// intermediateTypeSuffixes returns the proper, non-trivial dot-suffixes of
// a multi-label service type (e.g. "_printer._sub._http._tcp" yields
// "_sub._http._tcp" and "_http._tcp"), the "additional PTRs for each
// intermediate type suffix" spec.md §4.3 step 3 names.
func intermediateTypeSuffixes(serviceType string) []string {
	labels := strings.Split(strings.TrimSuffix(serviceType, "."), ".")
	var suffixes []string
	for i := 1; i < len(labels)-1; i++ {
		suffixes = append(suffixes, strings.Join(labels[i:], "."))
	}
	return suffixes
}
