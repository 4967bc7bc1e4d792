// Package stamp defines the signed assertion embedded into media containers
// and its wire encoding.
package stamp

import (
	"bytes"
	"encoding/json"

	"identik.app/stamp/payload"
)

// Stamp is the signed assertion bound to one media artifact. Immutable once
// created; exactly one stamp per signed artifact.
//
// JSON field names are part of the wire contract.
type Stamp struct {
	Version        int    `json:"version"`
	IdentikName    string `json:"identik_name"`
	PayloadSHA256  string `json:"payload_sha256"`
	KeyFingerprint string `json:"key_fingerprint"`
	Signature      string `json:"signature"`
	SignedAt       string `json:"signed_at"`
}

// EmbeddedMetadata is the unit written into and read from a container: the
// stamp plus the canonical payload it signs.
type EmbeddedMetadata struct {
	Stamp   Stamp                    `json:"identik_stamp"`
	Payload payload.CanonicalPayload `json:"canonical_payload"`
}

// Encode renders EmbeddedMetadata as compact JSON without HTML escaping,
// matching the bytes other Identik clients embed.
func Encode(m *EmbeddedMetadata) ([]byte, error) {
	if m == nil {
		return nil, payload.NewError(payload.KindCanonical, "STAMP-CANON-011", "nil embedded metadata")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, payload.WrapError(payload.KindCanonical, "STAMP-CANON-012", "embedded metadata not serializable", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses embedded metadata JSON. It returns nil (no error) when the
// bytes are not a well-formed embedded stamp: extraction failures must degrade
// to "not protected", never abort verification.
func Decode(data []byte) *EmbeddedMetadata {
	if len(data) == 0 {
		return nil
	}
	var m EmbeddedMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if m.Stamp.Signature == "" || m.Stamp.KeyFingerprint == "" {
		return nil
	}
	if m.Payload.IdentikName == "" || m.Payload.FileSHA256 == "" {
		return nil
	}
	return &m
}

// Validate checks structural invariants of a stamp before embedding.
func Validate(s *Stamp) error {
	if s == nil {
		return payload.NewError(payload.KindInput, "STAMP-INPUT-021", "nil stamp")
	}
	if s.IdentikName == "" {
		return payload.NewError(payload.KindInput, "STAMP-INPUT-022", "stamp missing identik name")
	}
	if s.PayloadSHA256 == "" {
		return payload.NewError(payload.KindInput, "STAMP-INPUT-023", "stamp missing payload hash")
	}
	if s.KeyFingerprint == "" {
		return payload.NewError(payload.KindInput, "STAMP-INPUT-024", "stamp missing key fingerprint")
	}
	if s.Signature == "" {
		return payload.NewError(payload.KindInput, "STAMP-INPUT-025", "stamp missing signature")
	}
	return nil
}
