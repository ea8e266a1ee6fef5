package resolver

import "time"

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithTimeout sets timeoutInMs: the per-task response deadline and the
// basis for the retry-scan tick interval (timeoutInMs/20).
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithKeepOpenFor sets keepOpenForMs: how long an idle transport's socket
// stays open before the deferred-close timer fires.
func WithKeepOpenFor(d time.Duration) Option {
	return func(r *Resolver) { r.keepOpenFor = d }
}

// WithUnhandledErrorSink registers a callback for socket-level errors and
// unmatched responses that spec.md §4.2 says must not kill the process.
func WithUnhandledErrorSink(fn func(error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.onUnhandled = fn
		}
	}
}

// withDialer overrides how transports are opened; used by tests to inject
// MockTransport instead of real sockets.
func withDialer(d dialer) Option {
	return func(r *Resolver) { r.dial = d }
}
