package container

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
)

// identikUUID is the fixed 16-byte extended type of the private uuid box
// carrying the stamp. It must match bit-for-bit across Identik
// implementations.
var identikUUID = [16]byte{
	0x49, 0x44, 0x4B, 0x53,
	0x01, 0x9A, 0x4F, 0x7D,
	0x8E, 0x2B, 0x63, 0x70,
	0xA4, 0x41, 0x95, 0xC6,
}

// mp4Codec walks top-level ISO-BMFF boxes: a 4-byte big-endian size (1 means
// a 64-bit size follows, 0 means "to end of buffer"), a 4-byte ASCII type,
// and for uuid boxes a 16-byte extended type. The stamp is appended as a new
// uuid box at the very end of the stream; existing boxes are never rewritten,
// which keeps offset-dependent structures such as sample tables intact.
type mp4Codec struct{}

// mp4Box describes one walked top-level box.
type mp4Box struct {
	start   int // offset of the size field
	header  int // bytes before the payload (8 or 16)
	size    int // total box size including header
	boxType string
}

// nextBox reads the box at off. ok is false when the remaining bytes do not
// form a complete box, which ends the walk.
func nextBox(buf []byte, off int) (mp4Box, bool) {
	if off+8 > len(buf) {
		return mp4Box{}, false
	}
	size := int(binary.BigEndian.Uint32(buf[off : off+4]))
	boxType := string(buf[off+4 : off+8])
	header := 8
	switch size {
	case 0:
		// Box extends to the end of the buffer.
		size = len(buf) - off
	case 1:
		if off+16 > len(buf) {
			return mp4Box{}, false
		}
		size64 := binary.BigEndian.Uint64(buf[off+8 : off+16])
		if size64 > uint64(len(buf)-off) {
			return mp4Box{}, false
		}
		size = int(size64)
		header = 16
	}
	if size < header || off+size > len(buf) {
		return mp4Box{}, false
	}
	return mp4Box{start: off, header: header, size: size, boxType: boxType}, true
}

// stampPayload returns the JSON payload when the box is the Identik uuid box.
func stampPayload(buf []byte, b mp4Box) []byte {
	if b.boxType != "uuid" {
		return nil
	}
	extStart := b.start + b.header
	if extStart+16 > b.start+b.size {
		return nil
	}
	if !bytes.Equal(buf[extStart:extStart+16], identikUUID[:]) {
		return nil
	}
	return buf[extStart+16 : b.start+b.size]
}

func (mp4Codec) embed(buf, metadataJSON []byte) EmbedResult {
	// The stamp goes at the very end of the stream, so every existing
	// top-level box must parse cleanly to the end of the buffer first: past
	// a truncated box the extraction walk can never reach the new uuid box.
	// A box claiming "to end of stream" (raw size 0) would swallow anything
	// appended after it, so it blocks embedding too.
	off := 0
	for off < len(buf) {
		b, ok := nextBox(buf, off)
		if !ok || binary.BigEndian.Uint32(buf[b.start:b.start+4]) == 0 {
			return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipMalformedContainer}
		}
		off += b.size
	}

	boxSize := 8 + 16 + len(metadataJSON)
	out := make([]byte, 0, len(buf)+boxSize)
	out = append(out, buf...)
	out = binary.BigEndian.AppendUint32(out, uint32(boxSize))
	out = append(out, "uuid"...)
	out = append(out, identikUUID[:]...)
	out = append(out, metadataJSON...)
	return EmbedResult{Bytes: out, Embedded: true}
}

func (mp4Codec) extract(buf []byte) []byte {
	off := 0
	for off < len(buf) {
		b, ok := nextBox(buf, off)
		if !ok {
			return nil
		}
		if payload := stampPayload(buf, b); payload != nil {
			if !json.Valid(payload) {
				// Truncated or malformed payload degrades to "no stamp".
				return nil
			}
			return payload
		}
		off += b.size
	}
	return nil
}

func (mp4Codec) strip(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	off := 0
	for off < len(buf) {
		b, ok := nextBox(buf, off)
		if !ok {
			// Structure lost; pass the remainder through byte-identical.
			return append(out, buf[off:]...)
		}
		if stampPayload(buf, b) != nil {
			off += b.size
			continue
		}
		out = append(out, buf[off:off+b.size]...)
		off += b.size
	}
	return out
}
