// Package dnsupdate builds RFC 2136 dynamic-update DNS messages:
// prerequisite and update-record sections layered on top of the wire
// codec in internal/message.
package dnsupdate

import (
	"github.com/arrowhead-f/go-configuration-core/internal/message"
)

// RFC 2136 overloads the question/answer/authority/additional sections as
// zone/prerequisite/update/additional. §2.3: a dynamic update carries
// exactly one zone, given as a single question of type SOA (class IN).
const (
	classNone = message.ClassNONE
	classANY  = message.ClassANY
	classIN   = message.ClassIN
	typeSOA   = 6
)

// Builder accumulates an UPDATE message for a single zone, per RFC 2136.
// Per DESIGN NOTES §9(a), unset flag fields default to zero: a zero-value
// Builder already has Opcode/flags zeroed except the Opcode it sets itself.
type Builder struct {
	msg *message.Message
}

// New starts a Builder targeting zone (e.g. "example.org."). id is the
// message id the resolver will track this exchange under.
func New(id uint16, zone string) *Builder {
	return &Builder{
		msg: &message.Message{
			Header: message.Header{ID: id, Opcode: message.OpcodeUpdate},
			Questions: []message.Question{
				{Name: zone, Type: typeSOA, Class: classIN},
			},
		},
	}
}

// RequireAbsent adds a prerequisite (RFC 2136 §2.4.3) that name must not
// exist: class NONE, type ANY, TTL 0, empty rdata.
func (b *Builder) RequireAbsent(name string) *Builder {
	b.msg.Answers = append(b.msg.Answers, message.RR{
		Name:  name,
		Type:  message.TypeANY,
		Class: classNone,
		TTL:   0,
		Data:  message.RDataOpaque{Type: message.TypeANY},
	})
	return b
}

// RequireExists adds a prerequisite (RFC 2136 §2.4.1) that an RRset of the
// given name and type must exist, regardless of its data: class ANY, TTL 0.
func (b *Builder) RequireExists(name string, rrType uint16) *Builder {
	b.msg.Answers = append(b.msg.Answers, message.RR{
		Name:  name,
		Type:  rrType,
		Class: classANY,
		TTL:   0,
		Data:  message.RDataOpaque{Type: rrType},
	})
	return b
}

// Add appends an update record (RFC 2136 §2.5.1): add name/type/data to the
// zone with the given ttl.
func (b *Builder) Add(name string, ttl uint32, data message.RData) *Builder {
	b.msg.Authorities = append(b.msg.Authorities, message.RR{
		Name:  name,
		Type:  message.RDataType(data),
		Class: classIN,
		TTL:   ttl,
		Data:  data,
	})
	return b
}

// Delete appends an update record deleting an entire RRset at name/type
// (RFC 2136 §2.5.2): class ANY, TTL 0, empty rdata.
func (b *Builder) Delete(name string, rrType uint16) *Builder {
	b.msg.Authorities = append(b.msg.Authorities, message.RR{
		Name:  name,
		Type:  rrType,
		Class: classANY,
		TTL:   0,
		Data:  message.RDataOpaque{Type: rrType},
	})
	return b
}

// DeleteRR appends an update record deleting one specific RR from an
// RRset (RFC 2136 §2.5.4): class NONE, TTL 0, the exact rdata to remove.
// Unlike Delete, other RRs sharing name+type survive — used to retract a
// single PTR target without disturbing sibling instances under the same
// service type.
func (b *Builder) DeleteRR(name string, data message.RData) *Builder {
	b.msg.Authorities = append(b.msg.Authorities, message.RR{
		Name:  name,
		Type:  message.RDataType(data),
		Class: classNone,
		TTL:   0,
		Data:  data,
	})
	return b
}

// WithSigner attaches a TSIG signer to be consulted at encode time.
func (b *Builder) WithSigner(s message.Signer) *Builder {
	b.msg.Signer = s
	return b
}

// Message returns the built UPDATE message.
func (b *Builder) Message() *message.Message {
	return b.msg
}
