// Package policy implements parsing for the Identik Scoring Policy text
// format. A policy file pins the score weights and label thresholds used by
// verification, so deployments can tune them without rebuilding.
package policy

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config is the full tunable surface of verification scoring. Zero values are
// meaningful, so always start from Default() and overlay a parsed policy.
type Config struct {
	// Authenticity sub-score weights.
	WeightValidSignature float64
	WeightMediaFound     float64
	WeightHashMatch      float64
	PenaltyInvalidSig    float64
	PenaltyHashMismatch  float64

	// Trust sub-score weights.
	WeightHistory    float64
	WeightVolume     float64
	WeightCommunity  float64
	WeightReputation float64

	// Final blend and ceiling.
	WeightAuthenticity float64
	WeightTrust        float64
	ScoreCeiling       float64

	// Label thresholds, descending.
	ThresholdTrusted        float64
	ThresholdLimitedHistory float64
	ThresholdWarning        float64

	// Age buckets in days.
	NewIdentityDays  float64
	LongStandingDays float64

	// Volume saturation point: log10(1+n)/log10(1+VolumeSaturation).
	VolumeSaturation float64

	// Community report scaling.
	ReportRatioScale float64
	ReportRatioCap   float64
}

// Default returns the fixed product policy.
func Default() Config {
	return Config{
		WeightValidSignature: 0.55,
		WeightMediaFound:     0.20,
		WeightHashMatch:      0.15,
		PenaltyInvalidSig:    0.25,
		PenaltyHashMismatch:  0.05,

		WeightHistory:    0.35,
		WeightVolume:     0.25,
		WeightCommunity:  0.25,
		WeightReputation: 0.15,

		WeightAuthenticity: 0.55,
		WeightTrust:        0.45,
		ScoreCeiling:       0.98,

		ThresholdTrusted:        0.75,
		ThresholdLimitedHistory: 0.5,
		ThresholdWarning:        0.25,

		NewIdentityDays:  14,
		LongStandingDays: 180,

		VolumeSaturation: 50,

		ReportRatioScale: 1.5,
		ReportRatioCap:   0.85,
	}
}

const (
	preamble  = "-----BEGIN IDENTIK SCORING POLICY-----"
	postamble = "-----END IDENTIK SCORING POLICY-----"
)

// keyFields maps policy file keys to Config fields.
var keyFields = map[string]func(*Config) *float64{
	"Authenticity.ValidSignature":      func(c *Config) *float64 { return &c.WeightValidSignature },
	"Authenticity.MediaFound":          func(c *Config) *float64 { return &c.WeightMediaFound },
	"Authenticity.HashMatch":           func(c *Config) *float64 { return &c.WeightHashMatch },
	"Authenticity.InvalidSigPenalty":   func(c *Config) *float64 { return &c.PenaltyInvalidSig },
	"Authenticity.HashMismatchPenalty": func(c *Config) *float64 { return &c.PenaltyHashMismatch },

	"Trust.History":    func(c *Config) *float64 { return &c.WeightHistory },
	"Trust.Volume":     func(c *Config) *float64 { return &c.WeightVolume },
	"Trust.Community":  func(c *Config) *float64 { return &c.WeightCommunity },
	"Trust.Reputation": func(c *Config) *float64 { return &c.WeightReputation },

	"Blend.Authenticity": func(c *Config) *float64 { return &c.WeightAuthenticity },
	"Blend.Trust":        func(c *Config) *float64 { return &c.WeightTrust },
	"Blend.Ceiling":      func(c *Config) *float64 { return &c.ScoreCeiling },

	"Label.Trusted":        func(c *Config) *float64 { return &c.ThresholdTrusted },
	"Label.LimitedHistory": func(c *Config) *float64 { return &c.ThresholdLimitedHistory },
	"Label.Warning":        func(c *Config) *float64 { return &c.ThresholdWarning },

	"Age.NewDays":          func(c *Config) *float64 { return &c.NewIdentityDays },
	"Age.LongStandingDays": func(c *Config) *float64 { return &c.LongStandingDays },

	"Volume.Saturation": func(c *Config) *float64 { return &c.VolumeSaturation },

	"Community.ReportRatioScale": func(c *Config) *float64 { return &c.ReportRatioScale },
	"Community.ReportRatioCap":   func(c *Config) *float64 { return &c.ReportRatioCap },
}

// Parse parses a scoring policy from bytes. Keys not present keep their
// Default() values; unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return cfg, errors.New("BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return cfg, errors.New("CR line endings not allowed")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return cfg, errors.New("trailing whitespace forbidden")
		}
	}

	if !bytes.HasPrefix(data, []byte(preamble)) {
		return cfg, errors.New("missing policy preamble")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(data), []byte(postamble)) {
		return cfg, errors.New("missing policy postamble")
	}

	sections := map[string]bool{"META": true, "WEIGHTS": true}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var currSection string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == preamble || line == postamble {
			continue
		}
		if sections[line] {
			currSection = line
			continue
		}
		switch currSection {
		case "META":
			if !strings.Contains(line, ": ") {
				return cfg, fmt.Errorf("malformed META line %q", line)
			}
			// META entries are informational (Version, Spec, Description).
		case "WEIGHTS":
			kv := strings.SplitN(line, ": ", 2)
			if len(kv) != 2 {
				return cfg, fmt.Errorf("malformed WEIGHTS line %q", line)
			}
			field, ok := keyFields[kv[0]]
			if !ok {
				return cfg, fmt.Errorf("unknown weight key %q", kv[0])
			}
			v, err := strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid value for %q: %q", kv[0], kv[1])
			}
			*field(&cfg) = v
		default:
			return cfg, fmt.Errorf("line %q outside any section", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make scoring nonsensical.
func Validate(cfg Config) error {
	if cfg.ScoreCeiling <= 0 || cfg.ScoreCeiling > 1 {
		return errors.New("Blend.Ceiling must be in (0,1]")
	}
	if !(cfg.ThresholdTrusted > cfg.ThresholdLimitedHistory &&
		cfg.ThresholdLimitedHistory > cfg.ThresholdWarning &&
		cfg.ThresholdWarning > 0) {
		return errors.New("label thresholds must be strictly descending and positive")
	}
	if cfg.NewIdentityDays <= 0 || cfg.LongStandingDays <= cfg.NewIdentityDays {
		return errors.New("age buckets must satisfy 0 < NewDays < LongStandingDays")
	}
	if cfg.VolumeSaturation <= 0 {
		return errors.New("Volume.Saturation must be positive")
	}
	if cfg.ReportRatioCap <= 0 || cfg.ReportRatioCap > 1 {
		return errors.New("Community.ReportRatioCap must be in (0,1]")
	}
	return nil
}
