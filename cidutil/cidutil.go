// Package cidutil derives content identifiers for media bytes and canonical
// payloads. CIDs travel inside MediaRecords so a vault entry can be located
// in content-addressed storage independently of its payload hash.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"identik.app/stamp/payload"
)

// MediaCID returns a CIDv1 string (raw multicodec, sha2-256 multihash) for
// raw media bytes. Returns "" only on unreachable multihash failure.
func MediaCID(data []byte) string {
	id, err := rawSHA256(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// PayloadCID returns the CIDv1 of a canonical payload's serialized bytes.
// Two payloads that serialize identically share a CID.
func PayloadCID(p *payload.CanonicalPayload) (cid.Cid, error) {
	data, err := payload.Serialize(p)
	if err != nil {
		return cid.Undef, err
	}
	return rawSHA256(data)
}

// ParseCID decodes and validates a CID string from an untrusted record.
func ParseCID(s string) (cid.Cid, bool) {
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return cid.Undef, false
	}
	return id, true
}

func rawSHA256(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
