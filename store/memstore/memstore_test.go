package memstore

import (
	"context"
	"testing"
	"time"

	"identik.app/stamp/store"
)

func TestIdentityLookupCaseInsensitive(t *testing.T) {
	s := New()
	s.AddIdentity(&store.Identity{ID: "id-1", Name: "alice", Active: true})

	for _, name := range []string{"alice", "Alice", "ALICE"} {
		got, err := s.FindIdentityByName(context.Background(), name)
		if err != nil {
			t.Fatalf("FindIdentityByName(%q) failed: %v", name, err)
		}
		if got.ID != "id-1" {
			t.Fatalf("FindIdentityByName(%q) = %q, want id-1", name, got.ID)
		}
	}

	if _, err := s.FindIdentityByName(context.Background(), "bob"); !store.IsNotFound(err) {
		t.Fatalf("missing identity: got err=%v want ErrNotFound", err)
	}
}

func TestKeyLookupAndRevoke(t *testing.T) {
	s := New()
	s.AddKey(&store.SigningKey{ID: "k1", IdentityID: "id-1", Fingerprint: "fp-1"})

	key, err := s.FindKeyByFingerprint(context.Background(), "fp-1")
	if err != nil {
		t.Fatalf("FindKeyByFingerprint failed: %v", err)
	}
	if key.Revoked {
		t.Fatalf("new key should not be revoked")
	}

	if !s.RevokeKey("fp-1") {
		t.Fatalf("RevokeKey returned false for existing key")
	}
	key, err = s.FindKeyByFingerprint(context.Background(), "fp-1")
	if err != nil {
		t.Fatalf("FindKeyByFingerprint after revoke failed: %v", err)
	}
	if !key.Revoked {
		t.Fatalf("key should be revoked")
	}

	if _, err := s.FindKeyByFingerprint(context.Background(), "fp-missing"); !store.IsNotFound(err) {
		t.Fatalf("missing key: got err=%v want ErrNotFound", err)
	}
}

func TestMediaImmutable(t *testing.T) {
	s := New()
	ctx := context.Background()
	record := &store.MediaRecord{ID: "m1", IdentityID: "id-1", FileSHA256: "f", PayloadHash: "p"}

	if err := s.PutMedia(ctx, record); err != nil {
		t.Fatalf("PutMedia failed: %v", err)
	}
	if err := s.PutMedia(ctx, record); err != nil {
		t.Fatalf("PutMedia should be idempotent for identical records: %v", err)
	}
	conflicting := &store.MediaRecord{ID: "m2", IdentityID: "id-2", FileSHA256: "g", PayloadHash: "p"}
	if err := s.PutMedia(ctx, conflicting); err != store.ErrImmutable {
		t.Fatalf("conflicting PutMedia: got err=%v want ErrImmutable", err)
	}

	if !s.HasMedia(ctx, "p") {
		t.Fatalf("HasMedia returned false after Put")
	}
	got, err := s.FindMediaByPayloadHash(ctx, "p")
	if err != nil {
		t.Fatalf("FindMediaByPayloadHash failed: %v", err)
	}
	if got.IdentityID != "id-1" {
		t.Fatalf("record identity = %q, want id-1", got.IdentityID)
	}
	if _, err := s.FindMediaByPayloadHash(ctx, "q"); !store.IsNotFound(err) {
		t.Fatalf("missing media: got err=%v want ErrNotFound", err)
	}
}

func TestEventAggregates(t *testing.T) {
	s := New()
	s.Clock = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	events := []store.Event{
		{IdentityID: "id-1", Type: store.EventMediaSigned, Weight: 1},
		{IdentityID: "id-1", Type: store.EventMediaSigned, Weight: 1},
		{IdentityID: "id-1", Type: store.EventVerificationPass, Weight: 0.5},
		{IdentityID: "id-1", Type: store.EventVerificationFail, Weight: -0.5},
		{IdentityID: "id-1", Type: store.EventReportAI, Weight: -2},
	}
	for _, e := range events {
		if err := s.AppendEvent(ctx, e); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	snap, err := s.SignerSignals(ctx, "id-1")
	if err != nil {
		t.Fatalf("SignerSignals failed: %v", err)
	}
	if snap.TotalSigned != 2 || snap.ReportCount != 1 {
		t.Fatalf("snapshot = %+v, want 2 signed / 1 report", snap)
	}
	if snap.ReportRatio != 0.5 {
		t.Fatalf("ReportRatio = %v, want 0.5", snap.ReportRatio)
	}

	total, err := s.TotalEventWeight(ctx, "id-1")
	if err != nil {
		t.Fatalf("TotalEventWeight failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("TotalEventWeight = %v, want 0", total)
	}

	if err := s.AppendEvent(ctx, store.Event{Type: "x"}); err != store.ErrInvalidRecord {
		t.Fatalf("AppendEvent without identity: got err=%v want ErrInvalidRecord", err)
	}
}

func TestReportRatioEdgeCases(t *testing.T) {
	if got := store.ReportRatio(0, 0); got != 0 {
		t.Fatalf("ReportRatio(0,0) = %v, want 0", got)
	}
	if got := store.ReportRatio(0, 3); got != 1 {
		t.Fatalf("ReportRatio(0,3) = %v, want 1", got)
	}
	if got := store.ReportRatio(4, 1); got != 0.25 {
		t.Fatalf("ReportRatio(4,1) = %v, want 0.25", got)
	}
}
