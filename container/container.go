// Package container embeds, extracts, and strips Identik stamps in JPEG, PNG,
// and MP4/ISO-BMFF byte streams.
//
// All operations work on immutable input buffers and return new buffers. They
// are total over well-formed containers; on structurally invalid input the
// walk stops early and degrades (embed returns "not embedded", extract returns
// nil) rather than corrupting the caller's bytes.
package container

import "bytes"

// Format is the closed set of containers the codec understands, determined by
// magic-byte sniffing, never by file extension.
type Format int

const (
	FormatUnsupported Format = iota
	FormatJPEG
	FormatPNG
	FormatMP4
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatMP4:
		return "mp4"
	default:
		return "unsupported"
	}
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Detect sniffs the container format from leading magic bytes.
func Detect(buf []byte) Format {
	switch {
	case len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xD8:
		return FormatJPEG
	case bytes.HasPrefix(buf, pngSignature):
		return FormatPNG
	case len(buf) >= 12 && string(buf[4:8]) == "ftyp":
		return FormatMP4
	default:
		return FormatUnsupported
	}
}

// Skip reasons reported by Embed. Callers must inspect EmbedResult rather
// than relying on errors: a failed protection attempt must not fail the
// signing operation.
const (
	SkipUnsupportedFormat  = "unsupported_format"
	SkipMalformedContainer = "malformed_container"
	SkipStampTooLarge      = "stamp_too_large"
)

// EmbedResult is the three-way outcome of an embed attempt.
type EmbedResult struct {
	Bytes         []byte
	Embedded      bool
	SkippedReason string
}

type codec interface {
	embed(buf, metadataJSON []byte) EmbedResult
	extract(buf []byte) []byte
	strip(buf []byte) []byte
}

// codecFor dispatches on the closed format variant. Adding a container format
// means a new Format value and a new codec, not another if chain.
func codecFor(f Format) codec {
	switch f {
	case FormatJPEG:
		return jpegCodec{}
	case FormatPNG:
		return pngCodec{}
	case FormatMP4:
		return mp4Codec{}
	default:
		return nil
	}
}

// Embed inserts embedded-metadata JSON into a supported container and returns
// a new buffer. For unsupported formats the original buffer is returned
// unchanged with Embedded=false.
func Embed(buf, metadataJSON []byte) EmbedResult {
	c := codecFor(Detect(buf))
	if c == nil {
		return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipUnsupportedFormat}
	}
	return c.embed(buf, metadataJSON)
}

// Extract returns the embedded-metadata JSON carried by the buffer, or nil if
// no stamp (or no supported container) is present. Extraction never mutates
// the input and never fails loudly.
func Extract(buf []byte) []byte {
	c := codecFor(Detect(buf))
	if c == nil {
		return nil
	}
	return c.extract(buf)
}

// Strip returns the buffer with any Identik stamp removed, byte-identical
// everywhere else. Unsupported formats pass through unchanged, which makes
// Strip the content-hash normalizer for verification.
func Strip(buf []byte) []byte {
	c := codecFor(Detect(buf))
	if c == nil {
		return buf
	}
	return c.strip(buf)
}
