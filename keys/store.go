package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore keeps Identik signing seeds on the local filesystem.
//
// Layout under Directory:
//
//	<account>/root.key              account root seed
//	<account>/names/<name>.key      per-Identik-Name seed derived from the root
//
// Seed files are a single line of hex, mode 0600. Only Ed25519 seeds are
// stored; derived name keys are recomputable from the root seed, so the
// names/ tree is a cache, not the source of truth.
type KeyStore struct {
	Directory string
}

// KeyEntry is one account as reported by ListKeys.
type KeyEntry struct {
	Account string
	Names   []string
}

// GetDefaultDirectory returns ~/.identik/keys.
func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".identik", "keys"), nil
}

// CreateKeyStore opens a store rooted at directory, or at the default
// directory when directory is empty. The directory is created lazily on the
// first write.
func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

// seedPath maps an account (and optionally a derived name) to its seed file.
func (ks *KeyStore) seedPath(account, name string) string {
	if name == "" {
		return filepath.Join(ks.Directory, account, "root.key")
	}
	return filepath.Join(ks.Directory, account, "names", name+".key")
}

func checkIdentifier(kind, s string, allowDots bool) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	for _, char := range s {
		switch {
		case char >= 'a' && char <= 'z',
			char >= 'A' && char <= 'Z',
			char >= '0' && char <= '9',
			char == '-', char == '_':
		case char == '.' && allowDots:
		default:
			return fmt.Errorf("invalid character %q in %s", char, kind)
		}
	}
	return nil
}

// CheckAccount validates an account identifier for filesystem use.
func CheckAccount(account string) error {
	return checkIdentifier("account", account, false)
}

// CheckName validates an Identik Name for key derivation and filesystem use.
// Unlike accounts, names may contain dots ("jenny.identik").
func CheckName(name string) error {
	return checkIdentifier("name", name, true)
}

// ParseSeedHex decodes a 32-byte Ed25519 seed from hex text. Surrounding
// whitespace and a 0x prefix are tolerated.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimPrefix(strings.TrimSpace(seedHex), "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

// writeSeed persists a seed as a hex line. Without overwrite, an existing
// file is an error rather than silently replaced key material.
func (ks *KeyStore) writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (ks *KeyStore) readSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(data))
}

// InitializeRootKey stores an account root seed and returns its encoded
// public key and file path.
func (ks *KeyStore) InitializeRootKey(account string, seed []byte, overwrite bool) (encodedKey string, filePath string, err error) {
	if err := CheckAccount(account); err != nil {
		return "", "", err
	}
	filePath = ks.seedPath(account, "")
	if err := ks.writeSeed(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	return EncodedKeyFromSeed(seed), filePath, nil
}

// DeriveNameKey derives the signing seed for one Identik Name from the
// account root seed and stores it alongside.
func (ks *KeyStore) DeriveNameKey(account, name string, overwrite bool) (encodedKey string, filePath string, err error) {
	if err := CheckAccount(account); err != nil {
		return "", "", err
	}
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	rootSeed, err := ks.readSeed(ks.seedPath(account, ""))
	if err != nil {
		return "", "", err
	}
	nameSeed, err := DeriveNameSeed(rootSeed, name)
	if err != nil {
		return "", "", err
	}
	filePath = ks.seedPath(account, name)
	if err := ks.writeSeed(filePath, nameSeed, overwrite); err != nil {
		return "", "", err
	}
	return EncodedKeyFromSeed(nameSeed), filePath, nil
}

// ExportKey returns the encoded public key for an account root key, or for
// one of its derived name keys when name is non-empty. Seed material never
// leaves the store.
func (ks *KeyStore) ExportKey(account, name string) (string, error) {
	if err := CheckAccount(account); err != nil {
		return "", err
	}
	if name != "" {
		if err := CheckName(name); err != nil {
			return "", err
		}
	}
	seed, err := ks.readSeed(ks.seedPath(account, name))
	if err != nil {
		return "", err
	}
	return EncodedKeyFromSeed(seed), nil
}

// LoadSeed resolves a signing seed. Sources are consulted in a fixed order
// and the first one present wins:
//
//  1. seedHex — an explicit hex seed, nothing touches the filesystem
//  2. keyFile — a seed file path from key init/derive output
//  3. account (+ optional name) — a stored key in this store
//
// Callers that treat the sources as mutually exclusive must enforce that
// themselves; LoadSeed only resolves.
func (ks *KeyStore) LoadSeed(seedHex, account, name, keyFile string) ([]byte, error) {
	switch {
	case seedHex != "":
		return ParseSeedHex(seedHex)
	case keyFile != "":
		return ks.readSeed(keyFile)
	case account != "":
		if err := CheckAccount(account); err != nil {
			return nil, err
		}
		if name != "" {
			if err := CheckName(name); err != nil {
				return nil, err
			}
		}
		return ks.readSeed(ks.seedPath(account, name))
	default:
		return nil, errors.New("no signer provided")
	}
}

// ListKeys enumerates stored accounts and the Identik Names each has derived
// keys for, both sorted. A store directory that does not exist yet lists as
// empty.
func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	dirEntries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var result []KeyEntry
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		account := entry.Name()
		var names []string
		nameEntries, nerr := os.ReadDir(filepath.Join(ks.Directory, account, "names"))
		if nerr == nil {
			for _, ne := range nameEntries {
				if n, ok := strings.CutSuffix(ne.Name(), ".key"); ok && !ne.IsDir() {
					names = append(names, n)
				}
			}
			sort.Strings(names)
		}
		result = append(result, KeyEntry{Account: account, Names: names})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Account < result[j].Account })
	return result, nil
}
