// Package store declares the external repository interfaces the signing and
// verification cores read from. Persistence and transport are deliberately out
// of scope: implementations range from in-memory maps to a remote vault.
package store

import (
	"context"
	"time"
)

// Identity is one registered Identik Name.
type Identity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	OwnerID         string    `json:"ownerId"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	ReputationScore float64   `json:"reputationScore"`
}

// SigningKey is a public key bound to one identity, addressed by fingerprint.
type SigningKey struct {
	ID          string `json:"id"`
	IdentityID  string `json:"identityId"`
	Algorithm   string `json:"algorithm"`
	PublicKey   []byte `json:"publicKey"`
	Fingerprint string `json:"fingerprint"`
	Revoked     bool   `json:"revoked"`
}

// MediaRecord is the vault's memory of one protected artifact, keyed by the
// canonical payload hash.
type MediaRecord struct {
	ID          string         `json:"id"`
	IdentityID  string         `json:"identityId"`
	FileSHA256  string         `json:"fileSha256"`
	PayloadHash string         `json:"payloadHash"`
	CID         string         `json:"cid,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Event is one append-only history entry feeding reputation aggregates.
// The core never reads events back directly; it consumes pre-aggregated
// totals and snapshots.
type Event struct {
	IdentityID string         `json:"identityId"`
	Type       string         `json:"type"`
	Weight     float64        `json:"weight"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	At         time.Time      `json:"at"`
}

// Event types recorded by signing and verification flows.
const (
	EventMediaSigned      = "media_signed"
	EventVerificationPass = "verification_pass"
	EventVerificationFail = "verification_fail"
	EventReportAI         = "report_ai"
)

// SignerSignalSnapshot is the read-only aggregate of one identity's signing
// history, supplied by the event store.
type SignerSignalSnapshot struct {
	TotalSigned int     `json:"totalSigned"`
	ReportCount int     `json:"reportCount"`
	ReportRatio float64 `json:"reportRatio"`
}

// ReportRatio computes the community-report ratio for a signal snapshot.
// An identity with reports but no signed media is treated as fully reported.
func ReportRatio(totalSigned, reportCount int) float64 {
	if totalSigned == 0 {
		if reportCount > 0 {
			return 1
		}
		return 0
	}
	return float64(reportCount) / float64(totalSigned)
}

// IdentityStore resolves identities by name.
type IdentityStore interface {
	FindIdentityByName(ctx context.Context, name string) (*Identity, error)
}

// KeyDirectory resolves signing keys by fingerprint.
type KeyDirectory interface {
	FindKeyByFingerprint(ctx context.Context, fingerprint string) (*SigningKey, error)
}

// MediaStore persists and resolves protected-media records.
//
// Contract:
// - PutMedia MUST be idempotent for identical records.
// - Stored records MUST be immutable.
// - FindMediaByPayloadHash MUST return ErrNotFound when the hash is absent.
type MediaStore interface {
	PutMedia(ctx context.Context, record *MediaRecord) error
	FindMediaByPayloadHash(ctx context.Context, payloadHash string) (*MediaRecord, error)
	HasMedia(ctx context.Context, payloadHash string) bool
}

// EventStore appends events and serves pre-aggregated signals.
type EventStore interface {
	AppendEvent(ctx context.Context, event Event) error
	SignerSignals(ctx context.Context, identityID string) (SignerSignalSnapshot, error)
	TotalEventWeight(ctx context.Context, identityID string) (float64, error)
}
