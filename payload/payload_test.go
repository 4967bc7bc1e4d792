package payload

import (
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, 12, 2, 15, 0, 0, 0, time.UTC)
}

func TestBuildLowercasesName(t *testing.T) {
	p, err := Build(Input{IdentikName: "Jenny.IDENTIK", FileSHA256: "abc123"}, fixedNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.IdentikName != "jenny.identik" {
		t.Errorf("expected lowercased name, got %q", p.IdentikName)
	}
	if p.Version != Version {
		t.Errorf("expected version %d, got %d", Version, p.Version)
	}
}

func TestBuildRejectsEmptyName(t *testing.T) {
	_, err := Build(Input{IdentikName: "   ", FileSHA256: "abc123"}, fixedNow)
	if err == nil {
		t.Fatalf("expected error for empty name")
	}
	if !IsKind(err, KindInput) {
		t.Errorf("expected Input kind, got %v", err)
	}
	if RuleID(err) != "STAMP-INPUT-001" {
		t.Errorf("unexpected rule id %q", RuleID(err))
	}
}

func TestBuildRejectsEmptyFileHash(t *testing.T) {
	_, err := Build(Input{IdentikName: "jenny.identik"}, fixedNow)
	if err == nil {
		t.Fatalf("expected error for empty file hash")
	}
	if RuleID(err) != "STAMP-INPUT-002" {
		t.Errorf("unexpected rule id %q", RuleID(err))
	}
}

func TestBuildRejectsUnparseableTimestamp(t *testing.T) {
	_, err := Build(Input{
		IdentikName:   "jenny.identik",
		FileSHA256:    "abc123",
		TimestampText: "not-a-time",
	}, fixedNow)
	if err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
	if RuleID(err) != "STAMP-INPUT-011" {
		t.Errorf("unexpected rule id %q", RuleID(err))
	}
}

func TestBuildNormalizesTimestampLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-12-02T15:00:00.000Z", "2025-12-02T15:00:00.000Z"},
		{"2025-12-02T15:00:00Z", "2025-12-02T15:00:00.000Z"},
		{"2025-12-02T16:00:00+01:00", "2025-12-02T15:00:00.000Z"},
		{"2025-12-02", "2025-12-02T00:00:00.000Z"},
	}
	for _, tc := range cases {
		p, err := Build(Input{
			IdentikName:   "jenny.identik",
			FileSHA256:    "abc123",
			TimestampText: tc.in,
		}, fixedNow)
		if err != nil {
			t.Fatalf("build %q: %v", tc.in, err)
		}
		if p.Timestamp != tc.want {
			t.Errorf("timestamp %q: expected %q, got %q", tc.in, tc.want, p.Timestamp)
		}
	}
}

func TestBuildDefaultsToNow(t *testing.T) {
	p, err := Build(Input{IdentikName: "jenny.identik", FileSHA256: "abc123"}, fixedNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Timestamp != "2025-12-02T15:00:00.000Z" {
		t.Errorf("expected injected clock output, got %q", p.Timestamp)
	}
}

func TestSerializeGolden(t *testing.T) {
	p, err := Build(Input{
		IdentikName:   "Jenny.IDENTIK",
		FileSHA256:    "abc123",
		Metadata:      map[string]any{"b": 2, "a": 1},
		TimestampText: "2025-12-02T15:00:00.000Z",
	}, fixedNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := Serialize(p)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `{"version":1,"identik_name":"jenny.identik","file_sha256":"abc123",` +
		`"metadata":{"a":1,"b":2},"timestamp":"2025-12-02T15:00:00.000Z"}`
	if string(got) != want {
		t.Errorf("canonical bytes mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSerializeDoesNotEscapeHTML(t *testing.T) {
	p, err := Build(Input{
		IdentikName:   "jenny.identik",
		FileSHA256:    "abc123",
		Metadata:      map[string]any{"caption": "a < b & c > d"},
		TimestampText: "2025-12-02T15:00:00.000Z",
	}, fixedNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := Serialize(p)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if strings.Contains(string(got), `<`) || strings.Contains(string(got), `&`) {
		t.Errorf("canonical bytes must not HTML-escape: %s", got)
	}
	if !strings.Contains(string(got), "a < b & c > d") {
		t.Errorf("metadata text must survive literally: %s", got)
	}
}

func TestSerializeNilMetadata(t *testing.T) {
	got, err := Serialize(&CanonicalPayload{
		Version:     1,
		IdentikName: "jenny.identik",
		FileSHA256:  "abc123",
		Timestamp:   "2025-12-02T15:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(got), `"metadata":{}`) {
		t.Errorf("nil metadata must serialize as an empty object: %s", got)
	}
}

func TestHashMatchesSerialization(t *testing.T) {
	p, err := Build(Input{
		IdentikName:   "jenny.identik",
		FileSHA256:    "abc123",
		TimestampText: "2025-12-02T15:00:00.000Z",
	}, fixedNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := Serialize(p)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	h, err := Hash(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h != SHA256Hex(b) {
		t.Errorf("payload hash must equal the content hash of its serialization")
	}
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
}
