package message

import (
	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/wire"
)

// MaxMessageSize is the largest a DNS message may be on the wire (spec.md §3).
const MaxMessageSize = 65535

// Decode parses a complete DNS message from buf.
func Decode(buf []byte) (*Message, error) {
	if len(buf) > MaxMessageSize {
		return nil, &errors.WireFormatError{Operation: "decode", Message: "message exceeds 65535 bytes"}
	}
	r := wire.NewReader(buf)

	id, err := r.Uint16("header id")
	if err != nil {
		return nil, err
	}
	flags, err := r.Uint16("header flags")
	if err != nil {
		return nil, err
	}
	qd, err := r.Uint16("header qdcount")
	if err != nil {
		return nil, err
	}
	an, err := r.Uint16("header ancount")
	if err != nil {
		return nil, err
	}
	ns, err := r.Uint16("header nscount")
	if err != nil {
		return nil, err
	}
	ar, err := r.Uint16("header arcount")
	if err != nil {
		return nil, err
	}

	m := &Message{Header: headerFromFlags(id, flags, qd, an, ns, ar)}

	m.Questions = make([]Question, 0, qd)
	for i := 0; i < int(qd); i++ {
		q, err := decodeQuestion(r)
		if err != nil {
			return nil, err
		}
		m.Questions = append(m.Questions, q)
	}

	for i := 0; i < int(an); i++ {
		rr, err := decodeRR(r)
		if err != nil {
			return nil, err
		}
		m.Answers = append(m.Answers, rr)
	}
	for i := 0; i < int(ns); i++ {
		rr, err := decodeRR(r)
		if err != nil {
			return nil, err
		}
		m.Authorities = append(m.Authorities, rr)
	}
	for i := 0; i < int(ar); i++ {
		rr, err := decodeRR(r)
		if err != nil {
			return nil, err
		}
		m.Additionals = append(m.Additionals, rr)
	}

	return m, nil
}

func decodeQuestion(r *wire.Reader) (Question, error) {
	name, err := r.Name()
	if err != nil {
		return Question{}, err
	}
	typ, err := r.Uint16("question type")
	if err != nil {
		return Question{}, err
	}
	class, err := r.Uint16("question class")
	if err != nil {
		return Question{}, err
	}
	return Question{Name: name, Type: typ, Class: class}, nil
}

func decodeRR(r *wire.Reader) (RR, error) {
	name, err := r.Name()
	if err != nil {
		return RR{}, err
	}
	typ, err := r.Uint16("rr type")
	if err != nil {
		return RR{}, err
	}
	class, err := r.Uint16("rr class")
	if err != nil {
		return RR{}, err
	}
	ttl, err := r.Uint32("rr ttl")
	if err != nil {
		return RR{}, err
	}
	rdlength, err := r.Uint16("rr rdlength")
	if err != nil {
		return RR{}, err
	}

	start := r.Pos()
	data, err := decodeRData(r, typ, int(rdlength))
	if err != nil {
		return RR{}, err
	}
	if err := checkRDLength(r, start, int(rdlength)); err != nil {
		return RR{}, err
	}

	return RR{Name: name, Type: typ, Class: class, TTL: ttl, Data: data}, nil
}
