package message

import (
	"net"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/wire"
)

// RData is implemented by every typed resource-data variant plus RDataOpaque.
type RData interface {
	// rdataType returns the wire type code this variant encodes as.
	rdataType() uint16
	// encode writes the rdata payload (not including RDLENGTH) to w.
	encode(w *wire.Writer)
}

// RDataType returns the wire type code d will encode as. Builders outside
// this package (dnsupdate, dnssd) use this instead of an RR's own Type
// field when they build an RR from rdata alone.
func RDataType(d RData) uint16 { return d.rdataType() }

// RDataA holds an IPv4 address (4 bytes).
type RDataA struct{ Addr net.IP }

func (RDataA) rdataType() uint16 { return TypeA }
func (d RDataA) encode(w *wire.Writer) {
	ip := d.Addr.To4()
	if ip == nil {
		ip = make(net.IP, 4)
	}
	w.Write(ip)
}

// RDataAAAA holds an IPv6 address (16 bytes).
type RDataAAAA struct{ Addr net.IP }

func (RDataAAAA) rdataType() uint16 { return TypeAAAA }
func (d RDataAAAA) encode(w *wire.Writer) {
	ip := d.Addr.To16()
	if ip == nil {
		ip = make(net.IP, 16)
	}
	w.Write(ip)
}

// RDataName covers NS, CNAME, and PTR: a single compressed name.
type RDataName struct {
	Type uint16
	Name string
}

func (d RDataName) rdataType() uint16 { return d.Type }
func (d RDataName) encode(w *wire.Writer) { w.Name(d.Name) }

// RDataMX holds a mail-exchange preference and target name.
type RDataMX struct {
	Preference uint16
	Exchange   string
}

func (RDataMX) rdataType() uint16 { return TypeMX }
func (d RDataMX) encode(w *wire.Writer) {
	w.Uint16(d.Preference)
	w.Name(d.Exchange)
}

// RDataSOA holds the start-of-authority fields.
type RDataSOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (RDataSOA) rdataType() uint16 { return TypeSOA }
func (d RDataSOA) encode(w *wire.Writer) {
	w.Name(d.MName)
	w.Name(d.RName)
	w.Uint32(d.Serial)
	w.Uint32(d.Refresh)
	w.Uint32(d.Retry)
	w.Uint32(d.Expire)
	w.Uint32(d.Minimum)
}

// RDataSRV holds an RFC 2782 service location record.
type RDataSRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (RDataSRV) rdataType() uint16 { return TypeSRV }
func (d RDataSRV) encode(w *wire.Writer) {
	w.Uint16(d.Priority)
	w.Uint16(d.Weight)
	w.Uint16(d.Port)
	w.Name(d.Target)
}

// RDataTXT holds one or more length-prefixed text strings.
type RDataTXT struct {
	Strings [][]byte
}

func (RDataTXT) rdataType() uint16 { return TypeTXT }
func (d RDataTXT) encode(w *wire.Writer) {
	for _, s := range d.Strings {
		n := len(s)
		if n > 255 {
			n = 255
			s = s[:n]
		}
		w.Uint8(uint8(n))
		w.Write(s)
	}
}

// RDataTSIG holds an RFC 2845 transaction signature record.
type RDataTSIG struct {
	Algorithm    string
	TimeSigned   uint64 // 48-bit seconds since epoch
	Fudge        uint16
	MAC          []byte
	OriginalID   uint16
	Error        uint16
	OtherData    []byte
}

func (RDataTSIG) rdataType() uint16 { return TypeTSIG }
func (d RDataTSIG) encode(w *wire.Writer) {
	w.Name(d.Algorithm)
	w.Uint48(d.TimeSigned)
	w.Uint16(d.Fudge)
	w.Uint16(uint16(len(d.MAC)))
	w.Write(d.MAC)
	w.Uint16(d.OriginalID)
	w.Uint16(d.Error)
	w.Uint16(uint16(len(d.OtherData)))
	w.Write(d.OtherData)
}

// RDataOpaque holds raw, undecoded rdata bytes — used for ANY/OPT queries
// and any record type this codec doesn't know the layout of.
type RDataOpaque struct {
	Type uint16
	Raw  []byte
}

func (d RDataOpaque) rdataType() uint16 { return d.Type }
func (d RDataOpaque) encode(w *wire.Writer) { w.Write(d.Raw) }

// decodeRData dispatches on rrType to the matching decoder, falling back to
// RDataOpaque for unknown types. rdlength bounds how many bytes of msg this
// rdata occupies; names inside rdata (PTR/CNAME/NS/MX/SRV targets, SOA
// names) may still use compression pointers into the wider message, so the
// decoder receives the full reader rather than a sub-slice.
func decodeRData(r *wire.Reader, rrType uint16, rdlength int) (RData, error) {
	start := r.Pos()
	end := start + rdlength

	switch rrType {
	case TypeA:
		b, err := r.Bytes("rdata A", 4)
		if err != nil {
			return nil, err
		}
		return RDataA{Addr: net.IP(b)}, nil
	case TypeAAAA:
		b, err := r.Bytes("rdata AAAA", 16)
		if err != nil {
			return nil, err
		}
		return RDataAAAA{Addr: net.IP(b)}, nil
	case TypeNS, TypeCNAME, TypePTR:
		name, err := r.Name()
		if err != nil {
			return nil, err
		}
		return RDataName{Type: rrType, Name: name}, nil
	case TypeMX:
		pref, err := r.Uint16("rdata MX preference")
		if err != nil {
			return nil, err
		}
		name, err := r.Name()
		if err != nil {
			return nil, err
		}
		return RDataMX{Preference: pref, Exchange: name}, nil
	case TypeSOA:
		mname, err := r.Name()
		if err != nil {
			return nil, err
		}
		rname, err := r.Name()
		if err != nil {
			return nil, err
		}
		var nums [5]uint32
		for i := range nums {
			nums[i], err = r.Uint32("rdata SOA")
			if err != nil {
				return nil, err
			}
		}
		return RDataSOA{MName: mname, RName: rname, Serial: nums[0], Refresh: nums[1], Retry: nums[2], Expire: nums[3], Minimum: nums[4]}, nil
	case TypeSRV:
		prio, err := r.Uint16("rdata SRV priority")
		if err != nil {
			return nil, err
		}
		weight, err := r.Uint16("rdata SRV weight")
		if err != nil {
			return nil, err
		}
		port, err := r.Uint16("rdata SRV port")
		if err != nil {
			return nil, err
		}
		target, err := r.Name()
		if err != nil {
			return nil, err
		}
		return RDataSRV{Priority: prio, Weight: weight, Port: port, Target: target}, nil
	case TypeTXT:
		var strs [][]byte
		for r.Pos() < end {
			n, err := r.Uint8("rdata TXT length")
			if err != nil {
				return nil, err
			}
			s, err := r.Bytes("rdata TXT string", int(n))
			if err != nil {
				return nil, err
			}
			strs = append(strs, s)
		}
		return RDataTXT{Strings: strs}, nil
	case TypeTSIG:
		algo, err := r.Name()
		if err != nil {
			return nil, err
		}
		ts, err := r.Uint48("rdata TSIG time signed")
		if err != nil {
			return nil, err
		}
		fudge, err := r.Uint16("rdata TSIG fudge")
		if err != nil {
			return nil, err
		}
		macLen, err := r.Uint16("rdata TSIG MAC size")
		if err != nil {
			return nil, err
		}
		mac, err := r.Bytes("rdata TSIG MAC", int(macLen))
		if err != nil {
			return nil, err
		}
		origID, err := r.Uint16("rdata TSIG original id")
		if err != nil {
			return nil, err
		}
		errCode, err := r.Uint16("rdata TSIG error")
		if err != nil {
			return nil, err
		}
		otherLen, err := r.Uint16("rdata TSIG other length")
		if err != nil {
			return nil, err
		}
		other, err := r.Bytes("rdata TSIG other data", int(otherLen))
		if err != nil {
			return nil, err
		}
		return RDataTSIG{Algorithm: algo, TimeSigned: ts, Fudge: fudge, MAC: mac, OriginalID: origID, Error: errCode, OtherData: other}, nil
	default:
		raw, err := r.Bytes("rdata opaque", rdlength)
		if err != nil {
			return nil, err
		}
		return RDataOpaque{Type: rrType, Raw: raw}, nil
	}
}

// checkRDLength verifies the decoder consumed exactly rdlength bytes,
// catching both truncated and over-long rdata per spec.md §3 invariants.
func checkRDLength(r *wire.Reader, start, rdlength int) error {
	if r.Pos()-start != rdlength {
		return &errors.WireFormatError{Operation: "rdata", Offset: start, Message: "RDLENGTH does not match decoded rdata size"}
	}
	return nil
}
