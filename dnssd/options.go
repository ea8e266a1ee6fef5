package dnssd

import (
	"time"

	"github.com/arrowhead-f/go-configuration-core/internal/resolver"
	"github.com/arrowhead-f/go-configuration-core/internal/tsig"
)

// options collects Option effects before New builds the Client, following
// the teacher's functional-options pattern (querier/options.go,
// responder/options.go).
type options struct {
	browsingDomains     []string
	registrationDomains []string
	signer              *tsig.Signer
	resolverOpts        []resolver.Option
}

// Option configures a Client at construction time.
type Option func(*options)

// WithBrowsingDomains sets the domains Types/Identifiers/Records search.
// If unset, New discovers them per spec.md §4.3 "Hostname discovery".
func WithBrowsingDomains(domains ...string) Option {
	return func(o *options) { o.browsingDomains = domains }
}

// WithRegistrationDomains sets the domains Publish/Unpublish target.
func WithRegistrationDomains(domains ...string) Option {
	return func(o *options) { o.registrationDomains = domains }
}

// WithTSIGSigner sets the transaction signer Publish/Unpublish use to sign
// UPDATE messages, per spec.md §4.4.
func WithTSIGSigner(s *tsig.Signer) Option {
	return func(o *options) { o.signer = s }
}

// WithResolverTimeout forwards a timeout to the underlying resolver socket.
func WithResolverTimeout(d time.Duration) Option {
	return func(o *options) { o.resolverOpts = append(o.resolverOpts, resolver.WithTimeout(d)) }
}

// WithUnhandledErrorSink forwards an unhandled-error sink to the resolver.
func WithUnhandledErrorSink(fn func(error)) Option {
	return func(o *options) { o.resolverOpts = append(o.resolverOpts, resolver.WithUnhandledErrorSink(fn)) }
}
