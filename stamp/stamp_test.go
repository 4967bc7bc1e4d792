package stamp

import (
	"strings"
	"testing"

	"identik.app/stamp/payload"
)

func sampleEmbedded() *EmbeddedMetadata {
	return &EmbeddedMetadata{
		Stamp: Stamp{
			Version:        1,
			IdentikName:    "jenny.identik",
			PayloadSHA256:  "feedface",
			KeyFingerprint: "cafebabe",
			Signature:      "c2lnbmF0dXJl",
			SignedAt:       "2025-12-02T15:00:00.000Z",
		},
		Payload: payload.CanonicalPayload{
			Version:     1,
			IdentikName: "jenny.identik",
			FileSHA256:  "abc123",
			Metadata:    map[string]any{"mediaType": "photo"},
			Timestamp:   "2025-12-02T15:00:00.000Z",
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, err := Encode(sampleEmbedded())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"identik_stamp":`) {
		t.Errorf("wire shape must lead with identik_stamp: %s", b)
	}
	if strings.HasSuffix(string(b), "\n") {
		t.Errorf("encoded bytes must not carry a trailing newline")
	}

	m := Decode(b)
	if m == nil {
		t.Fatalf("decode returned nil for valid metadata")
	}
	if m.Stamp.KeyFingerprint != "cafebabe" {
		t.Errorf("stamp fingerprint lost in round trip: %q", m.Stamp.KeyFingerprint)
	}
	if m.Payload.FileSHA256 != "abc123" {
		t.Errorf("payload file hash lost in round trip: %q", m.Payload.FileSHA256)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"identik_stamp":{},"canonical_payload":{}}`,
		`{"canonical_payload":{"identik_name":"x","file_sha256":"y"}}`,
	}
	for _, tc := range cases {
		if m := Decode([]byte(tc)); m != nil {
			t.Errorf("Decode(%q) should return nil", tc)
		}
	}
}

func TestValidate(t *testing.T) {
	s := sampleEmbedded().Stamp
	if err := Validate(&s); err != nil {
		t.Fatalf("valid stamp rejected: %v", err)
	}

	missing := s
	missing.Signature = ""
	err := Validate(&missing)
	if err == nil {
		t.Fatalf("expected error for missing signature")
	}
	if payload.RuleID(err) != "STAMP-INPUT-025" {
		t.Errorf("unexpected rule id %q", payload.RuleID(err))
	}
}
