// Package message implements the DNS message wire format per RFC 1035,
// extended with RFC 2136 (UPDATE), RFC 2782 (SRV), RFC 2845 (TSIG), and
// RFC 3596 (AAAA).
package message

// Opcode values per RFC 1035 §4.1.1, extended with RFC 2136 UPDATE.
const (
	OpcodeQuery  = 0
	OpcodeIQuery = 1
	OpcodeStatus = 2
	OpcodeUpdate = 5
)

// RCode values per RFC 1035 §4.1.1 plus the ones RFC 2136 prerequisites use.
const (
	RCodeNoError  = 0
	RCodeFormErr  = 1
	RCodeServFail = 2
	RCodeNXDomain = 3
	RCodeNotImp   = 4
	RCodeRefused  = 5
	RCodeYXDomain = 6 // name exists when it must not (RFC 2136 §2.4.3)
	RCodeYXRRSet  = 7
	RCodeNXRRSet  = 8
	RCodeNotAuth  = 9
	RCodeNotZone  = 10
)

// Record types this codec knows how to decode into a typed RDATA. Any other
// type decodes into RDataOpaque.
const (
	TypeA     = 1
	TypeNS    = 2
	TypeCNAME = 5
	TypeSOA   = 6
	TypePTR   = 12
	TypeMX    = 15
	TypeTXT   = 16
	TypeAAAA  = 28
	TypeSRV   = 33
	TypeOPT   = 41
	TypeTSIG  = 250
	TypeANY   = 255
)

// Class values per RFC 1035 §3.2.4, plus the ones RFC 2136 prerequisites
// and TSIG use.
const (
	ClassIN   = 1
	ClassNONE = 254 // RFC 2136 §2.4.3: prerequisite "must not exist"
	ClassANY  = 255
)

// Header flag bit layout per RFC 1035 §4.1.1: {qr, opcode(4), aa, tc, rd,
// ra, z(3), rcode(4)}.
type Header struct {
	ID      uint16
	QR      bool
	Opcode  uint8
	AA      bool
	TC      bool
	RD      bool
	RA      bool
	RCode   uint8
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// flags packs the boolean/opcode/rcode fields into the 16-bit flag word.
func (h Header) flags() uint16 {
	var f uint16
	if h.QR {
		f |= 1 << 15
	}
	f |= uint16(h.Opcode&0x0f) << 11
	if h.AA {
		f |= 1 << 10
	}
	if h.TC {
		f |= 1 << 9
	}
	if h.RD {
		f |= 1 << 8
	}
	if h.RA {
		f |= 1 << 7
	}
	f |= uint16(h.RCode & 0x0f)
	return f
}

func headerFromFlags(id, flags, qd, an, ns, ar uint16) Header {
	return Header{
		ID:      id,
		QR:      flags&(1<<15) != 0,
		Opcode:  uint8(flags>>11) & 0x0f,
		AA:      flags&(1<<10) != 0,
		TC:      flags&(1<<9) != 0,
		RD:      flags&(1<<8) != 0,
		RA:      flags&(1<<7) != 0,
		RCode:   uint8(flags & 0x0f),
		QDCount: qd,
		ANCount: an,
		NSCount: ns,
		ARCount: ar,
	}
}

// Question is a question-section entry: name, type, class only.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// RR is a resource record: any section entry outside Questions.
type RR struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  RData
}

// Signer produces the TSIG trailer for an already-encoded message. It is
// consulted by Encode after the base message is serialized, per spec.md
// §4.4: "appended to ADDITIONALS after the message has been encoded."
type Signer interface {
	// Sign returns the TSIG resource record to append, for the message
	// identified by id whose encoded bytes (without any TSIG trailer) are
	// msg.
	Sign(id uint16, msg []byte) (RR, error)
}

// Message is a complete DNS message: header plus four record sections and
// an optional signer consulted at encode time.
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []RR
	Authorities []RR
	Additionals []RR
	Signer      Signer
}
