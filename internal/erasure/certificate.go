package erasure

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

var complianceStandards = []string{"GDPR_Art17", "CCPA", "DPDP"}

// SubjectFingerprint one-way hashes a subject id for certificates and
// lookups. The raw id never appears in a certificate.
func SubjectFingerprint(subjectID string) string {
	sum := sha256.Sum256([]byte(subjectID))
	return hex.EncodeToString(sum[:])
}

// newCertificate builds and seals a deletion certificate.
func newCertificate(requestID, subjectID string, layersPurged []string, issuedAt time.Time) *Certificate {
	layers := append([]string(nil), layersPurged...)
	sort.Strings(layers)

	cert := &Certificate{
		RequestID:           requestID,
		SubjectFingerprint:  SubjectFingerprint(subjectID),
		Timestamp:           issuedAt,
		LayersPurged:        layers,
		ComplianceStandards: complianceStandards,
	}
	cert.CertificateHash = ComputeCertificateHash(cert)
	return cert
}

// ComputeCertificateHash canonicalizes the certificate fields and hashes
// them. Canonical form: "key=value" pairs sorted by key and joined with
// "|"; list fields are comma-joined in sorted order; the timestamp is
// RFC 3339 with nanoseconds in UTC. Consumers recompute this to verify a
// certificate was not altered.
func ComputeCertificateHash(cert *Certificate) string {
	layers := append([]string(nil), cert.LayersPurged...)
	sort.Strings(layers)
	standards := append([]string(nil), cert.ComplianceStandards...)
	sort.Strings(standards)

	pairs := []string{
		"compliance_standards=" + strings.Join(standards, ","),
		"deletion_timestamp=" + cert.Timestamp.UTC().Format(time.RFC3339Nano),
		"layers_purged=" + strings.Join(layers, ","),
		"request_id=" + cert.RequestID,
		"subject_id_hash=" + cert.SubjectFingerprint,
	}
	sort.Strings(pairs)

	sum := sha256.Sum256([]byte(strings.Join(pairs, "|")))
	return hex.EncodeToString(sum[:])
}

// VerifyCertificate recomputes the hash and compares it to the sealed one.
func VerifyCertificate(cert *Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}
	if got := ComputeCertificateHash(cert); got != cert.CertificateHash {
		return fmt.Errorf("certificate hash mismatch")
	}
	return nil
}

// newRequestID derives a unique erasure request id from the subject and
// the trigger time.
func newRequestID(subjectID string, at time.Time) string {
	sum := sha256.Sum256([]byte(subjectID + ":" + at.UTC().Format(time.RFC3339Nano)))
	return "RTBF_" + hex.EncodeToString(sum[:])[:16]
}
