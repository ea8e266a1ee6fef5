package message

import (
	"crypto/rand"
	"math/big"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/wire"
)

// idSpace bounds the 16-bit message id space NewID draws from.
var idSpace = big.NewInt(1 << 16)

// NewID returns a cryptographically random 16-bit message id, for callers
// building queries/updates without a caller-supplied id (the teacher's
// builder uses crypto/rand for the same reason: predictable DNS query ids
// are a cache-poisoning vector).
func NewID() uint16 {
	n, err := rand.Int(rand.Reader, idSpace)
	if err != nil {
		return 0
	}
	return uint16(n.Uint64())
}

// Encode serializes m to wire format. If m.Signer is set, the signer is
// invoked against the already-encoded base message (per spec.md §4.4), its
// resulting record is appended to ADDITIONALS, and the header's ARCOUNT is
// patched in place — the signer never sees its own trailer.
func Encode(m *Message) ([]byte, error) {
	w := wire.NewWriter(512)

	arcount := uint16(len(m.Additionals))
	h := m.Header
	h.QDCount = uint16(len(m.Questions))
	h.ANCount = uint16(len(m.Answers))
	h.NSCount = uint16(len(m.Authorities))
	h.ARCount = arcount

	w.Uint16(h.ID)
	w.Uint16(h.flags())
	w.Uint16(h.QDCount)
	w.Uint16(h.ANCount)
	w.Uint16(h.NSCount)
	arcountOffset := w.Len()
	w.Uint16(h.ARCount)

	for _, q := range m.Questions {
		w.Name(q.Name)
		w.Uint16(q.Type)
		w.Uint16(q.Class)
	}
	for _, rr := range m.Answers {
		encodeRR(w, rr)
	}
	for _, rr := range m.Authorities {
		encodeRR(w, rr)
	}
	for _, rr := range m.Additionals {
		encodeRR(w, rr)
	}

	if m.Signer != nil {
		sig, err := m.Signer.Sign(h.ID, w.Bytes())
		if err != nil {
			return nil, err
		}
		encodeRR(w, sig)
		w.PatchUint16At(arcountOffset, arcount+1)
	}

	if w.Len() > MaxMessageSize {
		return nil, &errors.ResolverError{Kind: errors.RequestTooLong, Op: "encode"}
	}
	return w.Bytes(), nil
}

func encodeRR(w *wire.Writer, rr RR) {
	w.Name(rr.Name)
	w.Uint16(rr.Type)
	w.Uint16(rr.Class)
	w.Uint32(rr.TTL)

	lenOffset := w.Len()
	w.Uint16(0) // placeholder RDLENGTH
	dataStart := w.Len()
	rr.Data.encode(w)
	w.PatchUint16At(lenOffset, uint16(w.Len()-dataStart))
}
