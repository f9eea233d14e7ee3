// Package hashext wires the two external cryptographic/encoding primitives
// the spec explicitly delegates rather than defines: base58 address
// validation (§3.2's "36-char base58 string with a known prefix" rule) and
// KECCAK, used by the CRYPTO ops family (§4's supplemented cryptoops.go).
package hashext

import (
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/tzstack/michelvm/internal/vmerrors"
)

// knownPrefixes are the address kinds §3.2 recognizes: tz1/tz2/tz3 are
// implicit (hash-of-key) accounts, KT1 is an originated contract.
var knownPrefixes = []string{"tz1", "tz2", "tz3", "KT1"}

// ValidateAddress reports whether s is a syntactically well-formed address:
// exactly 36 characters, one of the known prefixes, and valid base58
// (alphabet check only — this interpreter does not carry the network's
// checksum/curve data needed to verify the encoded hash itself).
func ValidateAddress(s string) error {
	if len(s) != 36 {
		return vmerrors.New(vmerrors.KindInvalidLiteral, "address must be exactly 36 characters, got "+strconv.Itoa(len(s))).
			WithContext("literal", s)
	}
	ok := false
	for _, p := range knownPrefixes {
		if strings.HasPrefix(s, p) {
			ok = true
			break
		}
	}
	if !ok {
		return vmerrors.New(vmerrors.KindInvalidLiteral, "address must start with tz1, tz2, tz3, or KT1").
			WithContext("literal", s)
	}
	if _, err := base58.Decode(s); err != nil {
		return vmerrors.Wrap(vmerrors.KindInvalidLiteral, "address is not valid base58", err).
			WithContext("literal", s)
	}
	return nil
}

// IsContractAddress reports whether addr is an originated contract (KT1...)
// as opposed to an implicit account (tz1/tz2/tz3...). Used by
// vmvalue.ClassifyAddress.
func IsContractAddress(addr string) bool {
	return strings.HasPrefix(addr, "KT1")
}

// Keccak256 hashes data with KECCAK-256, backing the spec's supplemented
// KECCAK opcode.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
