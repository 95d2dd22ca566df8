package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Domain prefixes for content hashes. The version suffix allows changing
// the algorithm without colliding with old hashes.
const (
	DomainReport   = "plotcheck/report/v1"
	DomainScenario = "plotcheck/scenario/v1"
)

// reportNamespace is the UUID namespace for report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/plotcheck/report"))

// HashWithDomain returns the hex SHA-256 of domain, a NUL separator and data.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the canonical encoding of v under domain.
func Fingerprint(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return HashWithDomain(domain, data), nil
}

// ReportID derives a stable name-based UUID from a report fingerprint.
func ReportID(fingerprint string) uuid.UUID {
	return uuid.NewSHA1(reportNamespace, []byte(fingerprint))
}
