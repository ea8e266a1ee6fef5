package dnssd

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"
	"strings"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/message"
)

// query issues a single question of the given type/class and returns the
// matching response's answers.
func (c *Client) query(ctx context.Context, name string, qtype uint16) ([]message.RR, error) {
	req := &message.Message{
		Header:    message.Header{ID: message.NewID(), RD: true},
		Questions: []message.Question{{Name: name, Type: qtype, Class: message.ClassIN}},
	}
	resp, err := c.res.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Answers, nil
}

// Types enumerates service types advertised under the client's browsing
// domains, per spec.md §4.3: PTR queries for
// "_services._dns-sd._udp.<domain>" flattened across domains.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var types []string
	var errs []error

	for _, domain := range c.browsingDomains {
		name := metaServiceName + "." + ensureDot(domain)
		answers, err := c.query(ctx, name, message.TypePTR)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rr := range answers {
			ptr, ok := rr.Data.(message.RDataName)
			if !ok {
				continue
			}
			if _, dup := seen[ptr.Name]; dup {
				continue
			}
			seen[ptr.Name] = struct{}{}
			types = append(types, ptr.Name)
		}
	}

	if len(types) == 0 && len(errs) > 0 {
		return nil, &errors.MultiError{Errs: errs}
	}
	sort.Strings(types)
	return types, nil
}

// Identifiers enumerates service instance identifiers for serviceType
// (e.g. "_http._tcp.example.org."), per spec.md §4.3: one PTR query whose
// answers are instance identifiers "<instance>.<type>.<domain>.".
func (c *Client) Identifiers(ctx context.Context, serviceType string) ([]string, error) {
	answers, err := c.query(ctx, ensureDot(serviceType), message.TypePTR)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, rr := range answers {
		if ptr, ok := rr.Data.(message.RDataName); ok {
			ids = append(ids, ptr.Name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Records resolves identifier to a Record: SRV and TXT queries issued in
// parallel, an SRV chosen by RFC 2782 weighted selection, and TXT
// attributes aggregated per spec.md §4.3.
func (c *Client) Records(ctx context.Context, identifier string) (Record, error) {
	identifier = ensureDot(identifier)

	type srvResult struct {
		answers []message.RR
		err     error
	}
	type txtResult struct {
		answers []message.RR
		err     error
	}
	srvCh := make(chan srvResult, 1)
	txtCh := make(chan txtResult, 1)

	go func() {
		a, err := c.query(ctx, identifier, message.TypeSRV)
		srvCh <- srvResult{a, err}
	}()
	go func() {
		a, err := c.query(ctx, identifier, message.TypeTXT)
		txtCh <- txtResult{a, err}
	}()

	sr, tr := <-srvCh, <-txtCh
	if sr.err != nil {
		return Record{}, sr.err
	}
	if tr.err != nil {
		return Record{}, tr.err
	}

	best, ok := chooseSRV(sr.answers, c.randByte)
	if !ok {
		return Record{}, &errors.ResolverError{Kind: errors.ResponseBad, Op: "records", Err: nil}
	}

	metadata := make(map[string]string)
	for _, rr := range tr.answers {
		if txt, ok := rr.Data.(message.RDataTXT); ok {
			for k, v := range ParseTXT(txt) {
				metadata[k] = v
			}
		}
	}

	name, typ := splitIdentifier(identifier)

	return Record{
		Hostname:    best.Target,
		ServiceType: typ,
		ServiceName: name,
		Endpoint:    best.Target,
		Port:        best.Port,
		Metadata:    metadata,
	}, nil
}

// splitIdentifier separates "<instance>.<type>.<domain>." into its
// instance label(s) and its "_svc._proto" type per spec.md §3's reserved
// DNS-SD label convention: type labels are the first two labels prefixed
// with '_' found scanning left to right.
func splitIdentifier(identifier string) (serviceName, serviceType string) {
	labels := strings.Split(strings.TrimSuffix(identifier, "."), ".")
	for i, l := range labels {
		if strings.HasPrefix(l, "_") && i+1 < len(labels) && strings.HasPrefix(labels[i+1], "_") {
			serviceName = strings.Join(labels[:i], ".")
			serviceType = labels[i] + "." + labels[i+1]
			return serviceName, serviceType
		}
	}
	return identifier, ""
}

// chooseSRV selects one SRV record per RFC 2782: minimum priority first,
// then weighted-random among that priority group, per spec.md §4.3's
// "cutoff = (random / 255) × Σweights" algorithm.
func chooseSRV(answers []message.RR, randByte func() int) (message.RDataSRV, bool) {
	var candidates []message.RDataSRV
	for _, rr := range answers {
		if srv, ok := rr.Data.(message.RDataSRV); ok {
			candidates = append(candidates, srv)
		}
	}
	if len(candidates) == 0 {
		return message.RDataSRV{}, false
	}

	minPriority := candidates[0].Priority
	for _, c := range candidates[1:] {
		if c.Priority < minPriority {
			minPriority = c.Priority
		}
	}
	var group []message.RDataSRV
	for _, c := range candidates {
		if c.Priority == minPriority {
			group = append(group, c)
		}
	}
	if len(group) == 1 {
		return group[0], true
	}

	var total uint32
	for _, g := range group {
		total += uint32(g.Weight)
	}
	if total == 0 {
		return group[0], true
	}

	cutoff := (float64(randByte()) / 255.0) * float64(total)
	running := float64(total)
	for _, g := range group {
		running -= float64(g.Weight)
		if running <= cutoff {
			return g, true
		}
	}
	return group[len(group)-1], true
}

// randByte returns a value in [0, 255], the "random source" spec.md §2
// lists as an out-of-scope collaborator this package consumes.
func (c *Client) randByte() int {
	n, err := rand.Int(rand.Reader, big.NewInt(256))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}

func ensureDot(s string) string {
	if s == "" || s[len(s)-1] == '.' {
		return s
	}
	return s + "."
}
