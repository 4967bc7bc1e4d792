// Package memstore is an in-memory implementation of the store interfaces,
// intended for tests and single-process deployments.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"identik.app/stamp/store"
)

// Store implements store.IdentityStore, store.KeyDirectory, store.MediaStore
// and store.EventStore over mutex-guarded maps.
type Store struct {
	mu         sync.RWMutex
	identities map[string]*store.Identity // keyed by lowercase name
	keys       map[string]*store.SigningKey
	media      map[string]*store.MediaRecord // keyed by payload hash
	events     map[string][]store.Event      // keyed by identity ID

	// Clock supplies event timestamps when Event.At is zero. Tests override it.
	Clock func() time.Time
}

func New() *Store {
	return &Store{
		identities: make(map[string]*store.Identity),
		keys:       make(map[string]*store.SigningKey),
		media:      make(map[string]*store.MediaRecord),
		events:     make(map[string][]store.Event),
		Clock:      time.Now,
	}
}

// AddIdentity registers an identity. Names are matched case-insensitively.
func (s *Store) AddIdentity(id *store.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *id
	s.identities[strings.ToLower(id.Name)] = &clone
}

// AddKey registers a signing key under its fingerprint.
func (s *Store) AddKey(key *store.SigningKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *key
	s.keys[key.Fingerprint] = &clone
}

// RevokeKey marks the key with the given fingerprint as revoked.
func (s *Store) RevokeKey(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[fingerprint]
	if ok {
		key.Revoked = true
	}
	return ok
}

func (s *Store) FindIdentityByName(_ context.Context, name string) (*store.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *id
	return &clone, nil
}

func (s *Store) FindKeyByFingerprint(_ context.Context, fingerprint string) (*store.SigningKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[fingerprint]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *key
	return &clone, nil
}

func (s *Store) PutMedia(_ context.Context, record *store.MediaRecord) error {
	if record == nil || record.PayloadHash == "" {
		return store.ErrInvalidRecord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.media[record.PayloadHash]; ok {
		if existing.FileSHA256 != record.FileSHA256 || existing.IdentityID != record.IdentityID {
			return store.ErrImmutable
		}
		return nil
	}
	clone := *record
	s.media[record.PayloadHash] = &clone
	return nil
}

func (s *Store) FindMediaByPayloadHash(_ context.Context, payloadHash string) (*store.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.media[payloadHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *Store) HasMedia(_ context.Context, payloadHash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.media[payloadHash]
	return ok
}

func (s *Store) AppendEvent(_ context.Context, event store.Event) error {
	if event.IdentityID == "" || event.Type == "" {
		return store.ErrInvalidRecord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.At.IsZero() {
		event.At = s.Clock()
	}
	s.events[event.IdentityID] = append(s.events[event.IdentityID], event)
	return nil
}

func (s *Store) SignerSignals(_ context.Context, identityID string) (store.SignerSignalSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var snap store.SignerSignalSnapshot
	for _, e := range s.events[identityID] {
		switch e.Type {
		case store.EventMediaSigned:
			snap.TotalSigned++
		case store.EventReportAI:
			snap.ReportCount++
		}
	}
	snap.ReportRatio = store.ReportRatio(snap.TotalSigned, snap.ReportCount)
	return snap, nil
}

func (s *Store) TotalEventWeight(_ context.Context, identityID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.events[identityID] {
		total += e.Weight
	}
	return total, nil
}
