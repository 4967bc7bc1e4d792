// Package keys provides signing, verification, and fingerprint helpers for
// Identik stamps.
//
// Stable (SemVer-protected):
//   - Pure, deterministic primitives: hash-scoped signing and verification,
//     public-key fingerprints, encoded-key formatting, and per-name seed
//     derivation.
//
// Experimental:
//   - Filesystem-backed key storage and convenience helpers (KeyStore and
//     related functions). These are local-first utilities and are not part of
//     the long-term protocol contract.
package keys
