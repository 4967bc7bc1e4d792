package container

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// pngITXtKeyword is the iTXt keyword (with terminating NUL) marking an XMP
// chunk. It must match bit-for-bit across Identik implementations.
var pngITXtKeyword = []byte("XML:com.adobe.xmp\x00")

// pngCodec walks top-level PNG chunks after the 8-byte signature: 4-byte
// big-endian data length, 4-byte ASCII type, data, then a CRC32 over
// type+data using the standard reflected polynomial table.
type pngCodec struct{}

// pngStampChunk reports whether a chunk is the Identik iTXt stamp.
func pngStampChunk(chunkType, data []byte) bool {
	return string(chunkType) == "iTXt" && bytes.HasPrefix(data, pngITXtKeyword)
}

// buildITXtChunk assembles the full stamp chunk: length, type, keyword+NUL,
// compression flag 0, compression method 0, empty language tag, empty
// translated keyword, XMP text, CRC.
func buildITXtChunk(packet []byte) []byte {
	data := make([]byte, 0, len(pngITXtKeyword)+4+len(packet))
	data = append(data, pngITXtKeyword...)
	data = append(data, 0) // compression flag: uncompressed
	data = append(data, 0) // compression method
	data = append(data, 0) // language tag terminator
	data = append(data, 0) // translated keyword terminator
	data = append(data, packet...)

	chunk := make([]byte, 0, len(data)+12)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(data)))
	chunk = append(chunk, "iTXt"...)
	chunk = append(chunk, data...)
	crc := crc32.ChecksumIEEE(chunk[4:]) // type + data
	chunk = binary.BigEndian.AppendUint32(chunk, crc)
	return chunk
}

func (pngCodec) embed(buf, metadataJSON []byte) EmbedResult {
	chunk := buildITXtChunk(buildXMPPacket(metadataJSON))

	// Insert immediately after IHDR; append at the end if IHDR is absent.
	// The walk must reach the insertion point cleanly: a chunk overrunning
	// the buffer means the extraction walk could never reach the stamp, so
	// embedding degrades to "not embedded" instead.
	insertAt := -1
	i := len(pngSignature)
	for i+8 <= len(buf) {
		dataLen := int(binary.BigEndian.Uint32(buf[i : i+4]))
		end := i + 12 + dataLen
		if end > len(buf) {
			return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipMalformedContainer}
		}
		if string(buf[i+4:i+8]) == "IHDR" {
			insertAt = end
			break
		}
		i = end
	}
	if insertAt < 0 {
		if i != len(buf) {
			// Dangling partial chunk header.
			return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipMalformedContainer}
		}
		insertAt = len(buf)
	}

	out := make([]byte, 0, len(buf)+len(chunk))
	out = append(out, buf[:insertAt]...)
	out = append(out, chunk...)
	out = append(out, buf[insertAt:]...)
	return EmbedResult{Bytes: out, Embedded: true}
}

func (pngCodec) extract(buf []byte) []byte {
	i := len(pngSignature)
	for i+8 <= len(buf) {
		dataLen := int(binary.BigEndian.Uint32(buf[i : i+4]))
		end := i + 12 + dataLen
		if end > len(buf) {
			return nil
		}
		chunkType := buf[i+4 : i+8]
		data := buf[i+8 : i+8+dataLen]
		if pngStampChunk(chunkType, data) {
			return extractJSONFromXMP(parseITXtText(data))
		}
		i = end
	}
	return nil
}

// parseITXtText walks the iTXt layout positionally: keyword, compression
// flag, compression method, language tag, translated keyword, text.
// Compressed text is unsupported and yields nil.
func parseITXtText(data []byte) []byte {
	rest := data[len(pngITXtKeyword):]
	if len(rest) < 2 {
		return nil
	}
	compressionFlag := rest[0]
	rest = rest[2:] // skip flag + method
	if compressionFlag != 0 {
		return nil
	}
	// Null-terminated language tag.
	nul := bytes.IndexByte(rest, 0)
	if nul < 0 {
		return nil
	}
	rest = rest[nul+1:]
	// Null-terminated translated keyword.
	nul = bytes.IndexByte(rest, 0)
	if nul < 0 {
		return nil
	}
	return rest[nul+1:]
}

func (pngCodec) strip(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	out = append(out, buf[:len(pngSignature)]...)

	i := len(pngSignature)
	for i+8 <= len(buf) {
		dataLen := int(binary.BigEndian.Uint32(buf[i : i+4]))
		end := i + 12 + dataLen
		if end > len(buf) {
			// Truncated chunk; pass the remainder through byte-identical.
			return append(out, buf[i:]...)
		}
		chunkType := buf[i+4 : i+8]
		data := buf[i+8 : i+8+dataLen]
		if pngStampChunk(chunkType, data) {
			i = end
			continue
		}
		// Every other chunk, known or not, passes through untouched.
		out = append(out, buf[i:end]...)
		i = end
	}
	return append(out, buf[i:]...)
}
