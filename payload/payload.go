// Package payload implements canonical payload construction and hashing for
// Identik media stamps.
package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Version is the current canonical payload version.
const Version = 1

// ISOTimestamp is the canonical timestamp layout: UTC with millisecond
// precision and a literal Z suffix. It matches the wire format produced by
// every other Identik client, so it must not change.
const ISOTimestamp = "2006-01-02T15:04:05.000Z"

// CanonicalPayload is the deterministic, field-order-independent representation
// of what is being attested.
//
// Serialization is a pure function of the field values: payloads built from the
// same fields serialize to identical bytes and hash identically, regardless of
// the insertion order of Metadata.
//
// JSON field names and their order are part of the wire contract.
type CanonicalPayload struct {
	Version     int            `json:"version"`
	IdentikName string         `json:"identik_name"`
	FileSHA256  string         `json:"file_sha256"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   string         `json:"timestamp"`
}

// Input carries the loosely-structured fields from which a canonical payload
// is built.
type Input struct {
	IdentikName string
	FileSHA256  string
	Metadata    map[string]any

	// Timestamp is optional. Zero means "now".
	Timestamp time.Time

	// TimestampText is an alternative textual timestamp; parsed and
	// re-rendered canonically. Ignored when Timestamp is set.
	TimestampText string

	// Version overrides the payload version when non-zero.
	Version int
}

// acceptedTimestampLayouts lists the textual timestamp shapes Build accepts.
// Order matters: the first matching layout wins.
var acceptedTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Build constructs a canonical payload from input fields.
//
// The identik name is lowercased; metadata keys are re-inserted in ascending
// ordinal order; the timestamp is normalized to ISOTimestamp. Malformed input
// is rejected before any cryptographic work (Kind Input).
func Build(in Input, now func() time.Time) (*CanonicalPayload, error) {
	name := strings.ToLower(strings.TrimSpace(in.IdentikName))
	if name == "" {
		return nil, NewError(KindInput, "STAMP-INPUT-001", "identik name is required")
	}
	if strings.TrimSpace(in.FileSHA256) == "" {
		return nil, NewError(KindInput, "STAMP-INPUT-002", "file hash is required")
	}

	ts, err := normalizeTimestamp(in, now)
	if err != nil {
		return nil, err
	}

	version := in.Version
	if version == 0 {
		version = Version
	}

	return &CanonicalPayload{
		Version:     version,
		IdentikName: name,
		FileSHA256:  in.FileSHA256,
		Metadata:    sortedMetadata(in.Metadata),
		Timestamp:   ts,
	}, nil
}

func normalizeTimestamp(in Input, now func() time.Time) (string, error) {
	if !in.Timestamp.IsZero() {
		return in.Timestamp.UTC().Format(ISOTimestamp), nil
	}
	if text := strings.TrimSpace(in.TimestampText); text != "" {
		for _, layout := range acceptedTimestampLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t.UTC().Format(ISOTimestamp), nil
			}
		}
		return "", NewError(KindInput, "STAMP-INPUT-011", "unparseable timestamp: "+text)
	}
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(ISOTimestamp), nil
}

// sortedMetadata rebuilds the metadata map with keys inserted in ascending
// ordinal order. The rebuild is what makes equal field sets compare and
// serialize identically; locale-aware collation is deliberately not used.
func sortedMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = metadata[k]
	}
	return out
}

// Serialize is the single mandatory canonicalization choke point for payloads.
//
// All payload hashing, signing, and CID derivation MUST pass through
// Serialize. Output is compact JSON with the canonical field order, metadata
// keys sorted ascending, and no HTML escaping (matching the wire bytes other
// Identik clients produce).
func Serialize(p *CanonicalPayload) ([]byte, error) {
	if p == nil {
		return nil, NewError(KindCanonical, "STAMP-CANON-001", "nil payload")
	}

	var buf bytes.Buffer
	buf.WriteString(`{"version":`)
	if err := encodeCompact(&buf, p.Version); err != nil {
		return nil, err
	}
	buf.WriteString(`,"identik_name":`)
	if err := encodeCompact(&buf, p.IdentikName); err != nil {
		return nil, err
	}
	buf.WriteString(`,"file_sha256":`)
	if err := encodeCompact(&buf, p.FileSHA256); err != nil {
		return nil, err
	}
	buf.WriteString(`,"metadata":`)
	if err := encodeCompact(&buf, p.Metadata); err != nil {
		return nil, err
	}
	buf.WriteString(`,"timestamp":`)
	if err := encodeCompact(&buf, p.Timestamp); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeCompact writes a single JSON value without HTML escaping and without
// the trailing newline json.Encoder appends. encoding/json marshals map keys
// in sorted order, which keeps nested metadata objects deterministic too.
func encodeCompact(buf *bytes.Buffer, v any) error {
	if m, ok := v.(map[string]any); ok && m == nil {
		buf.WriteString("{}")
		return nil
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return WrapError(KindCanonical, "STAMP-CANON-002", "payload not serializable", err)
	}
	// Encode terminates values with a newline; canonical bytes carry none.
	b := buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
	return nil
}

// Hash returns the lowercase hex SHA-256 of the canonical serialization.
func Hash(p *CanonicalPayload) (string, error) {
	b, err := Serialize(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SHA256Hex returns the lowercase hex SHA-256 of raw bytes. It is the content
// hash used for file_sha256.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
