package cidutil

import (
	"testing"

	"identik.app/stamp/payload"
)

func TestMediaCIDDeterministic(t *testing.T) {
	data := []byte("some media bytes")
	first := MediaCID(data)
	if first == "" {
		t.Fatalf("MediaCID returned empty string")
	}
	if second := MediaCID(data); second != first {
		t.Fatalf("MediaCID not deterministic: %s vs %s", first, second)
	}
	if other := MediaCID([]byte("other bytes")); other == first {
		t.Fatalf("distinct inputs produced the same CID")
	}

	id, ok := ParseCID(first)
	if !ok {
		t.Fatalf("ParseCID rejected MediaCID output %q", first)
	}
	if id.Version() != 1 {
		t.Fatalf("CID version = %d, want 1", id.Version())
	}
}

func TestPayloadCIDTracksSerialization(t *testing.T) {
	p := payload.CanonicalPayload{
		Version:     payload.Version,
		IdentikName: "alice",
		FileSHA256:  "aa11",
		Metadata:    map[string]any{"b": "2", "a": "1"},
		Timestamp:   "2025-01-02T03:04:05.000Z",
	}

	id1, err := PayloadCID(&p)
	if err != nil {
		t.Fatalf("PayloadCID failed: %v", err)
	}

	// Metadata insertion order must not matter.
	p.Metadata = map[string]any{"a": "1", "b": "2"}
	id2, err := PayloadCID(&p)
	if err != nil {
		t.Fatalf("PayloadCID failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("PayloadCID not stable under metadata reordering: %s vs %s", id1, id2)
	}

	p.FileSHA256 = "bb22"
	id3, err := PayloadCID(&p)
	if err != nil {
		t.Fatalf("PayloadCID failed: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("distinct payloads produced the same CID")
	}

	data, err := payload.Serialize(&p)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if MediaCID(data) != id3.String() {
		t.Fatalf("PayloadCID does not match CID of serialized bytes")
	}
}

func TestParseCIDRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-cid", "bafybadbadbad!"} {
		if _, ok := ParseCID(s); ok {
			t.Fatalf("ParseCID(%q) accepted garbage", s)
		}
	}
}
