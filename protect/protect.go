// Package protect implements the signing pipeline: canonicalize, hash, sign,
// stamp, embed, and record. Embedding failures degrade — the caller always
// gets usable bytes back, at worst without an embedded stamp.
package protect

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"time"

	"identik.app/stamp/cidutil"
	"identik.app/stamp/container"
	"identik.app/stamp/container/exiftool"
	"identik.app/stamp/keys"
	"identik.app/stamp/payload"
	"identik.app/stamp/stamp"
	"identik.app/stamp/store"
)

// DefaultEmbedTimeout bounds the whole embed stage, fallback included. A hung
// subprocess must not block signing; on timeout the original buffer is
// returned unstamped.
const DefaultEmbedTimeout = 45 * time.Second

// Skip reasons specific to the signing pipeline; container-level reasons pass
// through unchanged.
const (
	SkipEmbedTimeout   = "embed_timeout"
	SkipFallbackFailed = "fallback_embed_failed"
)

// Request carries one signing job.
type Request struct {
	IdentikName string
	IdentityID  string
	Media       []byte
	Metadata    map[string]any
	PrivateKey  ed25519.PrivateKey

	// Timestamp is optional; zero means "now".
	Timestamp time.Time
}

// Result is the outcome of one signing job. Stamp and Payload are always
// populated on success even when embedding was skipped.
type Result struct {
	Bytes         []byte
	Stamp         stamp.Stamp
	Payload       payload.CanonicalPayload
	Embedded      bool
	SkippedReason string
	MediaRecord   *store.MediaRecord
}

// Protector wires the signing pipeline to its stores and fallback embedder.
type Protector struct {
	Media  store.MediaStore
	Events store.EventStore

	// Fallback embeds via the exiftool pool when the in-process codecs do not
	// cover the container. Nil disables the fallback.
	Fallback *exiftool.Pool

	// EmbedTimeout bounds the embed stage; zero means DefaultEmbedTimeout.
	EmbedTimeout time.Duration

	// Now is the signing clock. Tests override it.
	Now func() time.Time

	// NewID mints media record IDs. Tests override it.
	NewID func() string
}

func New(media store.MediaStore, events store.EventStore) *Protector {
	return &Protector{
		Media:  media,
		Events: events,
		Now:    time.Now,
		NewID:  randomID,
	}
}

// Sign runs the pipeline. Input and crypto failures abort; embed failures
// degrade to Embedded=false with a reason.
func (p *Protector) Sign(ctx context.Context, req Request) (*Result, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	if len(req.PrivateKey) != ed25519.PrivateKeySize {
		return nil, payload.NewError(payload.KindInput, "STAMP-INPUT-031", "invalid private key")
	}
	if len(req.Media) == 0 {
		return nil, payload.NewError(payload.KindInput, "STAMP-INPUT-032", "empty media buffer")
	}

	fileSHA256 := payload.SHA256Hex(req.Media)
	canonical, err := payload.Build(payload.Input{
		IdentikName: req.IdentikName,
		FileSHA256:  fileSHA256,
		Metadata:    req.Metadata,
		Timestamp:   req.Timestamp,
	}, now)
	if err != nil {
		return nil, err
	}

	payloadHash, err := payload.Hash(canonical)
	if err != nil {
		return nil, err
	}
	signature, err := keys.SignHash(payloadHash, req.PrivateKey)
	if err != nil {
		return nil, err
	}
	publicKey := req.PrivateKey.Public().(ed25519.PublicKey)

	st := stamp.Stamp{
		Version:        canonical.Version,
		IdentikName:    canonical.IdentikName,
		PayloadSHA256:  payloadHash,
		KeyFingerprint: keys.Fingerprint(publicKey),
		Signature:      signature,
		SignedAt:       canonical.Timestamp,
	}
	if err := stamp.Validate(&st); err != nil {
		return nil, err
	}

	wire, err := stamp.Encode(&stamp.EmbeddedMetadata{Stamp: st, Payload: *canonical})
	if err != nil {
		return nil, err
	}

	bytes, embedded, skipped := p.embed(ctx, req.Media, wire)

	result := &Result{
		Bytes:         bytes,
		Stamp:         st,
		Payload:       *canonical,
		Embedded:      embedded,
		SkippedReason: skipped,
	}

	if p.Media != nil {
		record := &store.MediaRecord{
			ID:          p.newID(),
			IdentityID:  req.IdentityID,
			FileSHA256:  fileSHA256,
			PayloadHash: payloadHash,
			CID:         cidutil.MediaCID(req.Media),
			Metadata:    canonical.Metadata,
			CreatedAt:   now().UTC(),
		}
		if err := p.Media.PutMedia(ctx, record); err != nil {
			return nil, err
		}
		result.MediaRecord = record
	}

	if p.Events != nil && req.IdentityID != "" {
		event := store.Event{
			IdentityID: req.IdentityID,
			Type:       store.EventMediaSigned,
			Weight:     1,
			Metadata: map[string]any{
				"payload_hash":      payloadHash,
				"metadata_embedded": embedded,
			},
			At: now().UTC(),
		}
		if err := p.Events.AppendEvent(ctx, event); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// embed races the embed stage against the outer timeout. On timeout the
// original buffer wins: liveness over provenance.
func (p *Protector) embed(ctx context.Context, media, wire []byte) (out []byte, embedded bool, skipped string) {
	timeout := p.EmbedTimeout
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type embedOutcome struct {
		bytes   []byte
		ok      bool
		skipped string
	}
	done := make(chan embedOutcome, 1)
	go func() {
		res := container.Embed(media, wire)
		if res.Embedded {
			done <- embedOutcome{res.Bytes, true, ""}
			return
		}
		if res.SkippedReason == container.SkipUnsupportedFormat && p.Fallback != nil {
			fb, err := p.Fallback.WriteDescription(ctx, media, string(wire), "")
			if err == nil {
				done <- embedOutcome{fb, true, ""}
				return
			}
			done <- embedOutcome{res.Bytes, false, SkipFallbackFailed}
			return
		}
		done <- embedOutcome{res.Bytes, false, res.SkippedReason}
	}()

	select {
	case o := <-done:
		return o.bytes, o.ok, o.skipped
	case <-ctx.Done():
		return media, false, SkipEmbedTimeout
	}
}

func (p *Protector) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return randomID()
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
