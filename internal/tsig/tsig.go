// Package tsig implements RFC 2845 transaction signatures: an HMAC-based
// per-message signature carried as a resource record in the ADDITIONALS
// section of a DNS message.
package tsig

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"
	"time"

	"github.com/arrowhead-f/go-configuration-core/internal/message"
	"github.com/arrowhead-f/go-configuration-core/internal/wire"
)

// DefaultFudge is the fudge value spec.md §4.4 names as the default.
const DefaultFudge = 300

// algorithms maps lower-cased "hmac-shaN" style names to hash constructors,
// per spec.md §3's "algorithm name canonical is upper-case
// HMAC-MD5.SIG-ALG.REG.INT or hmac-shaN".
var algorithms = map[string]func() hash.Hash{
	"hmac-sha1":   sha1.New,
	"hmac-sha224": sha256.New224,
	"hmac-sha256": sha256.New,
	"hmac-sha384": sha512.New384,
	"hmac-sha512": sha512.New,
}

// resolveAlgorithm maps an algorithm name to its hash constructor,
// normalizing case exactly as spec.md §4.4 step 2 describes.
func resolveAlgorithm(name string) (func() hash.Hash, error) {
	if strings.EqualFold(name, "HMAC-MD5.SIG-ALG.REG.INT") {
		return md5.New, nil
	}
	if h, ok := algorithms[strings.ToLower(name)]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("tsig: unknown algorithm %q", name)
}

// nowFunc returns seconds-since-epoch; overridable in tests so signatures
// are deterministic against the fixed timestamp in spec.md §8 scenario 3.
var nowFunc func() uint64

// Signer computes and attaches RFC 2845 TSIG records to outgoing messages.
// It implements message.Signer.
type Signer struct {
	KeyName   string
	Secret    []byte // raw key bytes
	Algorithm string // canonical algorithm name, e.g. "hmac-sha256"
	Fudge     uint16
}

// New constructs a Signer from a base64-encoded secret, as DNS TSIG keys
// are conventionally distributed (see spec.md §8 scenario 3). algorithm
// accepts either the canonical wire name or a short alias ("MD5", "SHA256",
// ...).
func New(keyName, algorithm, secretBase64 string, fudge uint16) (*Signer, error) {
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("tsig: decode secret: %w", err)
	}
	if fudge == 0 {
		fudge = DefaultFudge
	}
	canonical := canonicalAlgorithmName(algorithm)
	if _, err := resolveAlgorithm(canonical); err != nil {
		return nil, err
	}
	return &Signer{KeyName: keyName, Secret: secret, Algorithm: canonical, Fudge: fudge}, nil
}

// canonicalAlgorithmName accepts a short alias ("MD5", "SHA256") or an
// already-canonical wire name and returns the canonical name per spec.md §3.
func canonicalAlgorithmName(algorithm string) string {
	switch strings.ToUpper(algorithm) {
	case "MD5":
		return "HMAC-MD5.SIG-ALG.REG.INT"
	case "SHA1":
		return "hmac-sha1"
	case "SHA224":
		return "hmac-sha224"
	case "SHA256":
		return "hmac-sha256"
	case "SHA384":
		return "hmac-sha384"
	case "SHA512":
		return "hmac-sha512"
	default:
		return algorithm
	}
}

// Sign implements message.Signer: it computes the TSIG MAC over the
// already-encoded base message plus the RFC 2845 trailer and returns the
// resulting resource record, per spec.md §4.4 steps 1-6.
func (s *Signer) Sign(id uint16, msg []byte) (message.RR, error) {
	return s.signAt(id, msg, s.timestamp())
}

func (s *Signer) timestamp() uint64 {
	if nowFunc != nil {
		return nowFunc()
	}
	return uint64(time.Now().Unix())
}

func (s *Signer) signAt(id uint16, msg []byte, timestamp uint64) (message.RR, error) {
	hashFn, err := resolveAlgorithm(s.Algorithm)
	if err != nil {
		return message.RR{}, err
	}

	trailer := wire.NewWriter(64)
	trailer.Name(s.KeyName)
	trailer.Uint16(message.ClassANY)
	trailer.Uint32(0) // TTL
	trailer.Name(s.Algorithm)
	trailer.Uint48(timestamp)
	trailer.Uint16(s.Fudge)
	trailer.Uint16(0) // error
	trailer.Uint16(0) // other length

	mac := hmac.New(hashFn, s.Secret)
	mac.Write(msg)
	mac.Write(trailer.Bytes())
	digest := mac.Sum(nil)

	return message.RR{
		Name:  s.KeyName,
		Type:  message.TypeTSIG,
		Class: message.ClassANY,
		TTL:   0,
		Data: message.RDataTSIG{
			Algorithm:  s.Algorithm,
			TimeSigned: timestamp,
			Fudge:      s.Fudge,
			MAC:        digest,
			OriginalID: id,
			Error:      0,
			OtherData:  nil,
		},
	}, nil
}
