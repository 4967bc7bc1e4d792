// Package fsstore is a local filesystem implementation of the store
// interfaces. Media records are immutable JSON files keyed by payload hash;
// events are an append-only JSONL log per identity.
//
// The store is offline and deterministic: it never uses the network and
// derives nothing from wall-clock time.
package fsstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"identik.app/stamp/store"
)

type Store struct {
	root string

	// eventMu serializes appends to the per-identity event logs.
	eventMu sync.Mutex
}

// New constructs a filesystem store rooted at root. The directory tree is
// created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("fsstore: root directory is required")
	}
	for _, dir := range []string{"identities", "keys", "media", "events"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{root: root}, nil
}

// SaveIdentity writes an identity record. Unlike media records, identity
// records are mutable: reputation and active flags change over time.
func (s *Store) SaveIdentity(identity *store.Identity) error {
	if identity == nil || identity.Name == "" {
		return store.ErrInvalidRecord
	}
	return writeJSON(s.identityPath(identity.Name), identity, false)
}

// SaveKey writes a signing-key record keyed by fingerprint.
func (s *Store) SaveKey(key *store.SigningKey) error {
	if key == nil || key.Fingerprint == "" {
		return store.ErrInvalidRecord
	}
	return writeJSON(s.keyPath(key.Fingerprint), key, false)
}

func (s *Store) FindIdentityByName(_ context.Context, name string) (*store.Identity, error) {
	var identity store.Identity
	if err := readJSON(s.identityPath(name), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Store) FindKeyByFingerprint(_ context.Context, fingerprint string) (*store.SigningKey, error) {
	var key store.SigningKey
	if err := readJSON(s.keyPath(fingerprint), &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *Store) PutMedia(_ context.Context, record *store.MediaRecord) error {
	if record == nil || record.PayloadHash == "" {
		return store.ErrInvalidRecord
	}
	path := s.mediaPath(record.PayloadHash)
	err := writeJSON(path, record, true)
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return err
	}
	var existing store.MediaRecord
	if rerr := readJSON(path, &existing); rerr != nil {
		// An existing but unreadable record is an immutability violation.
		return store.ErrImmutable
	}
	if existing.FileSHA256 != record.FileSHA256 || existing.IdentityID != record.IdentityID {
		return store.ErrImmutable
	}
	return nil
}

func (s *Store) FindMediaByPayloadHash(_ context.Context, payloadHash string) (*store.MediaRecord, error) {
	var record store.MediaRecord
	if err := readJSON(s.mediaPath(payloadHash), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) HasMedia(_ context.Context, payloadHash string) bool {
	_, err := os.Stat(s.mediaPath(payloadHash))
	return err == nil
}

func (s *Store) AppendEvent(_ context.Context, event store.Event) error {
	if event.IdentityID == "" || event.Type == "" {
		return store.ErrInvalidRecord
	}
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	f, err := os.OpenFile(s.eventPath(event.IdentityID), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

func (s *Store) SignerSignals(ctx context.Context, identityID string) (store.SignerSignalSnapshot, error) {
	var snap store.SignerSignalSnapshot
	err := s.scanEvents(identityID, func(e store.Event) {
		switch e.Type {
		case store.EventMediaSigned:
			snap.TotalSigned++
		case store.EventReportAI:
			snap.ReportCount++
		}
	})
	if err != nil {
		return store.SignerSignalSnapshot{}, err
	}
	snap.ReportRatio = store.ReportRatio(snap.TotalSigned, snap.ReportCount)
	return snap, nil
}

func (s *Store) TotalEventWeight(_ context.Context, identityID string) (float64, error) {
	var total float64
	err := s.scanEvents(identityID, func(e store.Event) {
		total += e.Weight
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// scanEvents streams the identity's event log. A missing log means an empty
// history, not an error.
func (s *Store) scanEvents(identityID string, visit func(store.Event)) error {
	f, err := os.Open(s.eventPath(identityID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event store.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return store.ErrInvalidRecord
		}
		visit(event)
	}
	return scanner.Err()
}

func (s *Store) identityPath(name string) string {
	return filepath.Join(s.root, "identities", safeName(strings.ToLower(name))+".json")
}

func (s *Store) keyPath(fingerprint string) string {
	return filepath.Join(s.root, "keys", safeName(fingerprint)+".json")
}

func (s *Store) mediaPath(payloadHash string) string {
	h := safeName(payloadHash)
	if len(h) < 2 {
		return filepath.Join(s.root, "media", h+".json")
	}
	return filepath.Join(s.root, "media", h[:2], h+".json")
}

func (s *Store) eventPath(identityID string) string {
	return filepath.Join(s.root, "events", safeName(identityID)+".jsonl")
}

// safeName keeps record keys from escaping the store root.
func safeName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// writeJSON writes a record file. When exclusive is true the write fails with
// os.ErrExist if the file already exists, preserving immutability; otherwise
// the write replaces the file atomically via a temporary sibling.
func writeJSON(path string, v any, exclusive bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if exclusive {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return err
		}
		return nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return store.ErrInvalidRecord
	}
	return nil
}
