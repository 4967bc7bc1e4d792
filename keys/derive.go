package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Fingerprint returns the lowercase hex SHA-256 of raw public key bytes.
//
// The fingerprint, not the key itself, is what stamps carry: it keeps stamps
// short and does not leak the key material format.
func Fingerprint(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}

// EncodePublicKey renders raw public key bytes as "<alg>:<base64>".
func EncodePublicKey(alg string, publicKey []byte) (string, error) {
	switch alg {
	case AlgEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(publicKey); err != nil {
			return "", fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported key algorithm: %q", alg)
	}
	return alg + ":" + base64.StdEncoding.EncodeToString(publicKey), nil
}

// DecodePublicKey parses an "<alg>:<base64>" encoded key into its algorithm
// tag and raw bytes.
func DecodePublicKey(encoded string) (alg string, publicKey []byte, err error) {
	alg, enc, ok := strings.Cut(encoded, ":")
	if !ok {
		return "", nil, errors.New("invalid encoded key: missing algorithm prefix")
	}
	raw, err := decodeBase64(enc)
	if err != nil {
		return "", nil, fmt.Errorf("invalid encoded key base64: %w", err)
	}
	switch alg {
	case AlgEd25519:
		if len(raw) != ed25519.PublicKeySize {
			return "", nil, errors.New("invalid ed25519 public key length")
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return "", nil, fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
	default:
		return "", nil, fmt.Errorf("unsupported key algorithm: %q", alg)
	}
	return alg, raw, nil
}

// EncodedKeyFromSeed returns the encoded public key for an Ed25519 seed.
func EncodedKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return AlgEd25519 + ":" + base64.StdEncoding.EncodeToString(pub)
}

// DeriveNameSeed deterministically derives an Identik-Name-specific Ed25519
// seed from an account root seed. One root seed can back many names without
// the names' keys being linkable to each other.
func DeriveNameSeed(rootSeed []byte, name string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckName(name); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("identik-stamp-kms-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("name:"))
	_, _ = h.Write([]byte(name))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
