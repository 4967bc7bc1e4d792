package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Supported signature algorithms. Stamps are signed over the raw bytes of the
// hex-decoded payload hash, never over the payload itself.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// DigestFor hashes a message with the named algorithm.
// hashAlg must be one of: sha256, sha512, sha3-256.
func DigestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignHash returns a base64 Ed25519 signature over the hex-decoded hash bytes.
func SignHash(hashHex string, privateKey ed25519.PrivateKey) (string, error) {
	msg, err := hex.DecodeString(hashHex)
	if err != nil {
		return "", fmt.Errorf("payload hash is not valid hex: %w", err)
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(privateKey))
	}
	sig := ed25519.Sign(privateKey, msg)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyHash reports whether sigB64 is a valid Ed25519 signature over the
// hex-decoded hash bytes. Malformed hashes, signatures, or keys yield false,
// never an error.
func VerifyHash(hashHex, sigB64 string, publicKey ed25519.PublicKey) bool {
	msg, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	sig, err := decodeBase64(sigB64)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(publicKey, msg, sig)
}

// SignHashDilithium3 returns a base64 Dilithium3 signature over the
// hex-decoded hash bytes.
func SignHashDilithium3(hashHex string, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("missing private key")
	}
	msg, err := hex.DecodeString(hashHex)
	if err != nil {
		return "", fmt.Errorf("payload hash is not valid hex: %w", err)
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, msg, sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyHashDilithium3 reports whether sigB64 is a valid Dilithium3 signature
// over the hex-decoded hash bytes. Malformed input yields false.
func VerifyHashDilithium3(hashHex, sigB64 string, publicKeyBytes []byte) bool {
	msg, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	sig, err := decodeBase64(sigB64)
	if err != nil || len(sig) != mode3.SignatureSize {
		return false
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(publicKeyBytes); err != nil {
		return false
	}
	return mode3.Verify(&pk, msg, sig)
}

// VerifyHashAlg dispatches verification on the key record's algorithm tag.
// Unknown algorithms yield false.
func VerifyHashAlg(alg, hashHex, sigB64 string, publicKeyBytes []byte) bool {
	switch alg {
	case AlgEd25519:
		if len(publicKeyBytes) != ed25519.PublicKeySize {
			return false
		}
		return VerifyHash(hashHex, sigB64, ed25519.PublicKey(publicKeyBytes))
	case AlgDilithium3:
		return VerifyHashDilithium3(hashHex, sigB64, publicKeyBytes)
	default:
		return false
	}
}

// GenerateKeypair returns a new Ed25519 keypair.
func GenerateKeypair(rand io.Reader) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand)
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
