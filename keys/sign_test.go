package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"identik.app/stamp/payload"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func mustKeypair(t *testing.T, seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv
}

func TestSignHashRoundTrip(t *testing.T) {
	pub, priv := mustKeypair(t, 0xA1)
	hashHex := payload.SHA256Hex([]byte("sample media bytes"))

	sig, err := SignHash(hashHex, priv)
	if err != nil {
		t.Fatalf("SignHash: %v", err)
	}
	if !VerifyHash(hashHex, sig, pub) {
		t.Fatalf("signature did not verify")
	}
}

func TestVerifyHashRejectsFlippedBytes(t *testing.T) {
	pub, priv := mustKeypair(t, 0xB2)
	hashHex := payload.SHA256Hex([]byte("sample media bytes"))

	sig, err := SignHash(hashHex, priv)
	if err != nil {
		t.Fatalf("SignHash: %v", err)
	}

	// Flip one byte of the signature.
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	for i := range raw {
		mutated := append([]byte(nil), raw...)
		mutated[i] ^= 0x01
		if VerifyHash(hashHex, base64.StdEncoding.EncodeToString(mutated), pub) {
			t.Fatalf("signature with byte %d flipped must not verify", i)
		}
	}

	// Flip one byte of the hash.
	hashBytes, _ := hex.DecodeString(hashHex)
	hashBytes[0] ^= 0x01
	if VerifyHash(hex.EncodeToString(hashBytes), sig, pub) {
		t.Fatalf("mutated hash must not verify")
	}
}

func TestVerifyHashNeverPanicsOnGarbage(t *testing.T) {
	pub, _ := mustKeypair(t, 0xC3)
	if VerifyHash("not hex", "c2ln", pub) {
		t.Errorf("non-hex hash must not verify")
	}
	if VerifyHash("abcd", "!!! not base64 !!!", pub) {
		t.Errorf("malformed base64 must not verify")
	}
	if VerifyHash("abcd", "c2hvcnQ", pub) {
		t.Errorf("short signature must not verify")
	}
	if VerifyHash("abcd", "c2ln", ed25519.PublicKey(nil)) {
		t.Errorf("empty public key must not verify")
	}
}

func TestSignHashRejectsBadInput(t *testing.T) {
	_, priv := mustKeypair(t, 0xD4)
	if _, err := SignHash("zz not hex", priv); err == nil {
		t.Errorf("expected error for non-hex hash")
	}
	if _, err := SignHash("abcd", ed25519.PrivateKey(nil)); err == nil {
		t.Errorf("expected error for malformed private key")
	}
}

func TestDilithium3RoundTrip(t *testing.T) {
	pk, sk, err := GenerateDilithium3Keypair(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	pkBytes, err := pk.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}

	hashHex := payload.SHA256Hex([]byte("sample media bytes"))
	sig, err := SignHashDilithium3(hashHex, sk)
	if err != nil {
		t.Fatalf("SignHashDilithium3: %v", err)
	}
	if !VerifyHashDilithium3(hashHex, sig, pkBytes) {
		t.Fatalf("dilithium3 signature did not verify")
	}
	if !VerifyHashAlg(AlgDilithium3, hashHex, sig, pkBytes) {
		t.Fatalf("VerifyHashAlg dilithium3 dispatch failed")
	}
	if VerifyHashDilithium3(payload.SHA256Hex([]byte("other")), sig, pkBytes) {
		t.Fatalf("dilithium3 signature must not verify a different hash")
	}
}

func TestVerifyHashAlgDispatch(t *testing.T) {
	pub, priv := mustKeypair(t, 0xE5)
	hashHex := payload.SHA256Hex([]byte("sample"))
	sig, err := SignHash(hashHex, priv)
	if err != nil {
		t.Fatalf("SignHash: %v", err)
	}
	if !VerifyHashAlg(AlgEd25519, hashHex, sig, pub) {
		t.Errorf("ed25519 dispatch failed")
	}
	if VerifyHashAlg("rsa", hashHex, sig, pub) {
		t.Errorf("unknown algorithm must not verify")
	}
}

func TestDigestFor(t *testing.T) {
	msg := []byte("hello")
	for _, alg := range []string{"sha256", "sha512", "sha3-256"} {
		d, err := DigestFor(alg, msg)
		if err != nil {
			t.Fatalf("DigestFor(%s): %v", alg, err)
		}
		if len(d) == 0 {
			t.Errorf("DigestFor(%s) returned empty digest", alg)
		}
	}
	if _, err := DigestFor("md5", msg); err == nil {
		t.Errorf("expected error for unsupported algorithm")
	}
}
