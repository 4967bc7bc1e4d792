// Package verifier implements stamp verification and trust scoring. A single
// Verify pass extracts the embedded stamp, re-derives the canonical payload
// hash from the stripped buffer, checks the signature against the key
// directory, and blends authenticity with the identity's trust signals.
//
// Verification never aborts: every failure downgrades the score and adds a
// warning, and the caller always receives a complete Result.
package verifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"identik.app/stamp/container"
	"identik.app/stamp/keys"
	"identik.app/stamp/payload"
	"identik.app/stamp/policy"
	"identik.app/stamp/reputation"
	"identik.app/stamp/stamp"
	"identik.app/stamp/store"
)

// Result is one verification outcome. Recomputed fresh on every request.
type Result struct {
	Verified    bool             `json:"verified"`
	Score       float64          `json:"score"`
	IdentikName string           `json:"identik_name,omitempty"`
	Label       reputation.Label `json:"label"`
	Message     string           `json:"message"`

	Checks   []string `json:"checks"`
	Warnings []string `json:"warnings"`

	Reputation      *reputation.Details        `json:"domain_reputation,omitempty"`
	SignerActivity  store.SignerSignalSnapshot `json:"signer_activity"`
	IdentityAgeDays float64                    `json:"identity_age_days"`

	// Reporting handles for follow-up flows.
	IdentityID  string `json:"identity_id,omitempty"`
	MediaID     string `json:"media_id,omitempty"`
	PayloadHash string `json:"payload_hash,omitempty"`
}

// Engine wires verification to its external reads. All store errors degrade
// to "record missing" warnings; the engine never propagates them.
type Engine struct {
	Identities store.IdentityStore
	Keys       store.KeyDirectory
	Media      store.MediaStore
	Events     store.EventStore

	Config policy.Config

	// Now is the clock used for identity age. Tests override it.
	Now func() time.Time
}

func New(identities store.IdentityStore, keyDir store.KeyDirectory, media store.MediaStore, events store.EventStore) *Engine {
	return &Engine{
		Identities: identities,
		Keys:       keyDir,
		Media:      media,
		Events:     events,
		Config:     policy.Default(),
		Now:        time.Now,
	}
}

// Verify checks a media buffer. It has no side effects; callers that want the
// outcome reflected in the identity's history call RecordOutcome afterwards.
func (e *Engine) Verify(ctx context.Context, buf []byte) *Result {
	cfg := e.Config
	now := e.Now
	if now == nil {
		now = time.Now
	}

	embedded := extractEmbedded(buf)
	if embedded == nil {
		return &Result{
			Verified: false,
			Score:    0,
			Label:    reputation.LabelNotProtected,
			Message:  "We couldn't find an Identik protection stamp on this photo.",
			Checks:   []string{},
			Warnings: []string{"No Identik metadata was found."},
		}
	}

	// Hash what the signer hashed: the buffer with all stamps removed.
	normalized := container.Strip(buf)
	fileSHA256 := payload.SHA256Hex(normalized)

	identikName := embedded.Payload.IdentikName
	payloadHash, hashErr := payload.Hash(&embedded.Payload)

	var checks, warnings []string

	fileMatch := hashErr == nil && embedded.Payload.FileSHA256 == fileSHA256
	if fileMatch {
		checks = append(checks, "Photo data matches the protected version.")
	} else {
		warnings = append(warnings, "The file contents have changed since it was protected.")
	}

	identity, err := e.Identities.FindIdentityByName(ctx, identikName)
	if err != nil || identity == nil {
		warnings = append(warnings, "We could not find this Identik Name in our records.")
		return &Result{
			Verified:    false,
			Score:       0.1,
			IdentikName: identikName,
			Label:       reputation.LabelNotProtected,
			Message:     "The Identik Name referenced in this photo is not active.",
			Checks:      ensure(checks),
			Warnings:    ensure(warnings),
			PayloadHash: payloadHash,
		}
	}

	key, keyErr := e.Keys.FindKeyByFingerprint(ctx, embedded.Stamp.KeyFingerprint)

	signatureValid := false
	if keyErr == nil && key != nil && !key.Revoked && key.IdentityID == identity.ID {
		if hashErr == nil {
			signatureValid = keys.VerifyHashAlg(key.Algorithm, payloadHash, embedded.Stamp.Signature, key.PublicKey)
		}
	} else {
		warnings = append(warnings, "The signing key referenced in the photo is not active for this Identik Name.")
	}

	if signatureValid {
		checks = append(checks, "Signature matched the Identik Name.")
	} else {
		warnings = append(warnings, "We could not confirm that the signature matches this Identik Name.")
	}

	var media *store.MediaRecord
	if e.Media != nil {
		media, _ = e.Media.FindMediaByPayloadHash(ctx, payloadHash)
	}
	if media != nil {
		checks = append(checks, "We found a matching protected photo in the Identik vault.")
	} else {
		warnings = append(warnings, "We did not find a matching protected photo in the Identik vault.")
	}

	var signals store.SignerSignalSnapshot
	var totalWeight float64
	if e.Events != nil {
		signals, _ = e.Events.SignerSignals(ctx, identity.ID)
		totalWeight, _ = e.Events.TotalEventWeight(ctx, identity.ID)
	}

	if signals.TotalSigned > 0 {
		checks = append(checks, fmt.Sprintf("This Identik Name has protected %d photo%s so far.",
			signals.TotalSigned, plural(signals.TotalSigned)))
	}
	if signals.ReportCount > 0 {
		percent := int(math.Round(signals.ReportRatio * 100))
		warnings = append(warnings, fmt.Sprintf(
			"Community members flagged %d photo%s (%d%% of their signed media) from this Identik Name as suspected AI.",
			signals.ReportCount, plural(signals.ReportCount), percent))
	}

	ageDays := 0.0
	if !identity.CreatedAt.IsZero() {
		ageDays = math.Max(now().Sub(identity.CreatedAt).Hours()/24, 0)
	}
	rep := reputation.Compute(ageDays, totalWeight, identity.Active)

	if ageDays < cfg.NewIdentityDays {
		warnings = append(warnings, "This Identik Name is still very new and building history.")
	} else if ageDays > cfg.LongStandingDays {
		checks = append(checks, "This Identik Name has been active for a long time.")
	}

	authenticity := reputation.Clamp(
		boolWeight(signatureValid, cfg.WeightValidSignature)+
			boolWeight(media != nil, cfg.WeightMediaFound)+
			boolWeight(fileMatch, cfg.WeightHashMatch)-
			boolWeight(!signatureValid, cfg.PenaltyInvalidSig)-
			boolWeight(!fileMatch, cfg.PenaltyHashMismatch),
		0, 1)

	history := reputation.Clamp(ageDays/cfg.LongStandingDays, 0, 1)
	volume := reputation.Clamp(
		math.Log10(1+float64(signals.TotalSigned))/math.Log10(1+cfg.VolumeSaturation), 0, 1)
	community := 1 - reputation.Clamp(signals.ReportRatio*cfg.ReportRatioScale, 0, cfg.ReportRatioCap)
	repScore := reputation.Clamp(rep.Score, 0, 1)

	trust := reputation.Clamp(
		history*cfg.WeightHistory+
			volume*cfg.WeightVolume+
			community*cfg.WeightCommunity+
			repScore*cfg.WeightReputation,
		0, 1)

	score := reputation.Clamp(
		authenticity*cfg.WeightAuthenticity+trust*cfg.WeightTrust, 0, cfg.ScoreCeiling)

	label := labelFor(score, cfg)
	verified := signatureValid && score >= cfg.ThresholdLimitedHistory

	mediaID := ""
	if media != nil {
		mediaID = media.ID
	}

	return &Result{
		Verified:        verified,
		Score:           score,
		IdentikName:     identikName,
		Label:           label,
		Message:         messageFor(label, identikName),
		Checks:          ensure(checks),
		Warnings:        ensure(warnings),
		Reputation:      &rep,
		SignerActivity:  signals,
		IdentityAgeDays: math.Round(ageDays),
		IdentityID:      identity.ID,
		MediaID:         mediaID,
		PayloadHash:     payloadHash,
	}
}

// RecordOutcome appends the verification_pass/verification_fail event for a
// completed result. No-op for results that never resolved an identity.
func (e *Engine) RecordOutcome(ctx context.Context, result *Result) error {
	if e.Events == nil || result == nil || result.IdentityID == "" {
		return nil
	}
	eventType := store.EventVerificationFail
	weight := -0.5
	if result.Verified {
		eventType = store.EventVerificationPass
		weight = 0.5
	}
	return e.Events.AppendEvent(ctx, store.Event{
		IdentityID: result.IdentityID,
		Type:       eventType,
		Weight:     weight,
		Metadata: map[string]any{
			"mediaId":  result.MediaID,
			"checks":   result.Checks,
			"warnings": result.Warnings,
		},
	})
}

func extractEmbedded(buf []byte) *stamp.EmbeddedMetadata {
	raw := container.Extract(buf)
	if raw == nil {
		return nil
	}
	return stamp.Decode(raw)
}

func labelFor(score float64, cfg policy.Config) reputation.Label {
	switch {
	case score >= cfg.ThresholdTrusted:
		return reputation.LabelTrusted
	case score >= cfg.ThresholdLimitedHistory:
		return reputation.LabelLimitedHistory
	case score >= cfg.ThresholdWarning:
		return reputation.LabelWarning
	default:
		return reputation.LabelNotProtected
	}
}

func messageFor(label reputation.Label, identikName string) string {
	name := identikName
	if name == "" {
		name = "an Identik Name"
	}
	switch label {
	case reputation.LabelTrusted:
		return fmt.Sprintf("This photo was signed by %s and looks authentic based on our checks.", name)
	case reputation.LabelLimitedHistory:
		return fmt.Sprintf("We found an Identik stamp from %s, but it's still building history.", name)
	case reputation.LabelWarning:
		return fmt.Sprintf("We found an Identik stamp from %s, but something looked unusual.", name)
	default:
		return "We couldn't verify Identik protection on this photo."
	}
}

func boolWeight(b bool, w float64) float64 {
	if b {
		return w
	}
	return 0
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// ensure keeps checks/warnings JSON-encoding as [] rather than null.
func ensure(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
