package value

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// DomainRow separates row fingerprints from any other hash computed over
// canonical JSON. The version suffix leaves room for algorithm changes.
const DomainRow = "wgrid/row/v1"

// Fingerprint returns a hex BLAKE3 digest of the canonical JSON form of v,
// prefixed by the domain and a 0x00 separator. Equal values always yield
// equal fingerprints.
func Fingerprint(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	h := blake3.New()
	_, _ = h.Write([]byte(domain))
	_, _ = h.Write([]byte{0x00})
	_, _ = h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RowFingerprint fingerprints a row's fields under DomainRow.
func RowFingerprint(fields Object) (string, error) {
	if fields == nil {
		fields = Object{}
	}
	return Fingerprint(DomainRow, fields)
}
