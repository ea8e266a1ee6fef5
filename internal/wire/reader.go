// Package wire provides the sequential byte reader/writer primitives the
// DNS message codec, TSIG trailer, and UPDATE builder all sit on top of:
// fixed-width big-endian integers, opaque byte runs, and RFC 1035 §4.1.4
// compressed names.
package wire

import (
	"fmt"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
)

const (
	// compressionMask isolates the top two bits of a label length byte; both
	// set (0xC0) marks a 14-bit pointer rather than a label length.
	compressionMask = 0xC0
	// maxLabelLength is the largest a single label may be (RFC 1035 §3.1).
	maxLabelLength = 63
	// maxNameLength bounds the wire-format size of a name, length bytes
	// included (RFC 1035 §3.1).
	maxNameLength = 255
	// maxCompressionJumps guards against pointer loops.
	maxCompressionJumps = 128
)

// Reader is a cursor over a DNS message buffer. The buffer is retained in
// full (not just the remaining slice) because compressed names jump to
// earlier offsets in the same buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reading from offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Seek repositions the cursor. Used by callers that need to re-read a
// region already consumed (e.g. locating the TSIG record after parsing).
func (r *Reader) Seek(pos int) { r.pos = pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

func (r *Reader) need(op string, n int) error {
	if r.pos+n > len(r.buf) {
		return &errors.WireFormatError{Operation: op, Offset: r.pos, Message: "unexpected end of message"}
	}
	return nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8(op string) (uint8, error) {
	if err := r.need(op, 1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Uint16 reads a 16-bit big-endian unsigned integer.
func (r *Reader) Uint16(op string) (uint16, error) {
	if err := r.need(op, 2); err != nil {
		return 0, err
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v, nil
}

// Uint32 reads a 32-bit big-endian unsigned integer.
func (r *Reader) Uint32(op string) (uint32, error) {
	if err := r.need(op, 4); err != nil {
		return 0, err
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 | uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v, nil
}

// Uint48 reads a 48-bit big-endian unsigned integer into a uint64 (used by
// the TSIG timestamp field).
func (r *Reader) Uint48(op string) (uint64, error) {
	if err := r.need(op, 6); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 6; i++ {
		v = v<<8 | uint64(r.buf[r.pos+i])
	}
	r.pos += 6
	return v, nil
}

// Bytes reads n opaque bytes and returns a copy.
func (r *Reader) Bytes(op string, n int) ([]byte, error) {
	if err := r.need(op, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Name reads a (possibly compressed) dotted name per RFC 1035 §4.1.4 and
// advances the cursor past the name's wire-format occupancy (which, for a
// compressed name, is just the two pointer bytes — not the bytes at the
// pointer's target).
func (r *Reader) Name() (string, error) {
	name, newPos, err := readName(r.buf, r.pos)
	if err != nil {
		return "", err
	}
	r.pos = newPos
	return name, nil
}

// readName is the side-reader entry point: it can be invoked with an
// arbitrary starting offset (following a compression pointer) without
// disturbing an in-progress Reader's cursor.
func readName(buf []byte, offset int) (name string, newOffset int, err error) {
	if offset < 0 || offset > len(buf) {
		return "", offset, &errors.WireFormatError{Operation: "read name", Offset: offset, Message: "offset out of bounds"}
	}

	var labels []byte
	pos := offset
	jumps := 0
	jumped := false

	for {
		if pos >= len(buf) {
			return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: "unexpected end of message"}
		}
		length := buf[pos]

		if length&compressionMask == compressionMask {
			if pos+1 >= len(buf) {
				return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: "truncated compression pointer"}
			}
			ptr := int(length&^compressionMask)<<8 | int(buf[pos+1])
			if ptr >= pos {
				return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: fmt.Sprintf("compression pointer to %d does not precede %d", ptr, pos)}
			}
			if !jumped {
				newOffset = pos + 2
				jumped = true
			}
			pos = ptr
			jumps++
			if jumps > maxCompressionJumps {
				return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: "too many compression jumps"}
			}
			continue
		}

		if length == 0 {
			if !jumped {
				newOffset = pos + 1
			}
			break
		}

		if length > maxLabelLength {
			return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: fmt.Sprintf("label length %d exceeds %d", length, maxLabelLength)}
		}
		if pos+1+int(length) > len(buf) {
			return "", offset, &errors.WireFormatError{Operation: "read name", Offset: pos, Message: "truncated label"}
		}
		if len(labels) > 0 {
			labels = append(labels, '.')
		}
		labels = append(labels, buf[pos+1:pos+1+int(length)]...)
		pos += 1 + int(length)
	}

	// Dotted text plus the first length byte and the terminator is the
	// uncompressed wire size.
	if len(labels)+2 > maxNameLength {
		return "", offset, &errors.WireFormatError{Operation: "read name", Offset: offset, Message: "name exceeds maximum length"}
	}
	return string(labels) + ".", newOffset, nil
}
