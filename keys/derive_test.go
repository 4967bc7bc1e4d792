package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
)

func TestDeriveNameSeedDeterministic(t *testing.T) {
	root := make([]byte, ed25519.SeedSize)
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DeriveNameSeed(root, "jenny.identik")
	if err != nil {
		t.Fatalf("DeriveNameSeed: %v", err)
	}
	b, err := DeriveNameSeed(root, "jenny.identik")
	if err != nil {
		t.Fatalf("DeriveNameSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveNameSeed(root, "press.identik")
	if err != nil {
		t.Fatalf("DeriveNameSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different names to derive different seeds")
	}
}

func TestEncodedKeyFromSeedFormat(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	encoded := EncodedKeyFromSeed(seed)
	if !strings.HasPrefix(encoded, "ed25519:") {
		t.Fatalf("expected ed25519 prefix, got %q", encoded)
	}
	b64 := strings.TrimPrefix(encoded, "ed25519:")
	pubBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("expected valid base64: %v", err)
	}
	if len(pubBytes) != ed25519.PublicKeySize {
		t.Fatalf("expected %d pubkey bytes, got %d", ed25519.PublicKeySize, len(pubBytes))
	}
}

func TestEncodeDecodePublicKey(t *testing.T) {
	pub, _ := mustKeypair(t, 0x42)
	encoded, err := EncodePublicKey(AlgEd25519, pub)
	if err != nil {
		t.Fatalf("EncodePublicKey: %v", err)
	}
	alg, raw, err := DecodePublicKey(encoded)
	if err != nil {
		t.Fatalf("DecodePublicKey: %v", err)
	}
	if alg != AlgEd25519 {
		t.Errorf("expected ed25519, got %q", alg)
	}
	if string(raw) != string(pub) {
		t.Errorf("public key bytes lost in round trip")
	}

	if _, _, err := DecodePublicKey("no-prefix"); err == nil {
		t.Errorf("expected error for missing algorithm prefix")
	}
	if _, _, err := DecodePublicKey("ed25519:AAAA"); err == nil {
		t.Errorf("expected error for wrong key length")
	}
}

func TestFingerprintStability(t *testing.T) {
	pubA, _ := mustKeypair(t, 0x01)
	pubB, _ := mustKeypair(t, 0x02)

	fpA1 := Fingerprint(pubA)
	fpA2 := Fingerprint(pubA)
	fpB := Fingerprint(pubB)

	if fpA1 != fpA2 {
		t.Fatalf("fingerprint is not deterministic")
	}
	if fpA1 == fpB {
		t.Fatalf("distinct keys must have distinct fingerprints")
	}
	if len(fpA1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(fpA1))
	}
}

func TestKeyStoreLifecycle(t *testing.T) {
	ks, err := CreateKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("CreateKeyStore: %v", err)
	}

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x11
	}

	rootKey, _, err := ks.InitializeRootKey("acct", seed, false)
	if err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if _, _, err := ks.InitializeRootKey("acct", seed, false); err == nil {
		t.Fatalf("expected error overwriting root key without overwrite flag")
	}

	nameKey, _, err := ks.DeriveNameKey("acct", "jenny.identik", false)
	if err != nil {
		t.Fatalf("DeriveNameKey: %v", err)
	}
	if nameKey == rootKey {
		t.Fatalf("derived name key must differ from root key")
	}

	exported, err := ks.ExportKey("acct", "jenny.identik")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if exported != nameKey {
		t.Fatalf("exported key mismatch")
	}

	loaded, err := ks.LoadSeed("", "acct", "jenny.identik", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if EncodedKeyFromSeed(loaded) != nameKey {
		t.Fatalf("loaded seed does not produce the derived key")
	}

	entries, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(entries) != 1 || entries[0].Account != "acct" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Names) != 1 || entries[0].Names[0] != "jenny.identik" {
		t.Fatalf("unexpected names: %+v", entries[0].Names)
	}
}
