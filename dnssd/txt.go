package dnssd

import (
	"strings"

	"github.com/arrowhead-f/go-configuration-core/internal/message"
)

// needsEscape reports whether b is backtick-escaped per spec.md §4.3's RFC
// 1464 codec: TAB, LF, SPACE, '=', and backtick itself.
func needsEscape(b byte) bool {
	switch b {
	case '\t', '\n', ' ', '=', '`':
		return true
	}
	return false
}

// printable reports whether b falls in the printable ASCII range the
// writer keeps; everything else is dropped.
func printable(b byte) bool { return b >= 0x21 && b <= 0x7e }

func escapeAttr(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsEscape(c) {
			b.WriteByte('`')
			b.WriteByte(c)
			continue
		}
		if !printable(c) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// WriteTXT encodes attrs as RFC 1464 key=value strings, per spec.md §4.3:
// keys are lower-cased; per DESIGN NOTES §9(c) this repository also
// escapes reserved characters on the value side, not just the key, so the
// round-trip property in spec.md §8 holds for any printable-ASCII value.
func WriteTXT(attrs map[string]string) message.RDataTXT {
	strs := make([][]byte, 0, len(attrs))
	for k, v := range attrs {
		key := escapeAttr(strings.ToLower(k))
		val := escapeAttr(v)
		strs = append(strs, []byte(key+"="+val))
	}
	return message.RDataTXT{Strings: strs}
}

// unescapeAttr collapses `x to x.
func unescapeAttr(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '`' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ParseTXT decodes a TXT rdata's length-prefixed strings into attributes,
// per spec.md §4.3: split each string at the first unescaped '='; strings
// without '=' are discarded; later pairs override earlier ones on key
// collision.
func ParseTXT(rdata message.RDataTXT) map[string]string {
	attrs := make(map[string]string)
	for _, raw := range rdata.Strings {
		s := string(raw)
		idx := -1
		for i := 0; i < len(s); i++ {
			if s[i] == '`' {
				i++
				continue
			}
			if s[i] == '=' {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		key := unescapeAttr(s[:idx])
		val := unescapeAttr(s[idx+1:])
		attrs[key] = val
	}
	return attrs
}
