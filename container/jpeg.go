package container

import "encoding/binary"

// jpegXMPHeader is the fixed ASCII identifier opening the APP1 segment body.
// It must match bit-for-bit across Identik implementations.
const jpegXMPHeader = "http://ns.adobe.com/xap/1.0\x00"

// JPEG marker bytes the walker cares about.
const (
	jpegMarkerAPP1 = 0xE1
	jpegMarkerSOS  = 0xDA
	jpegMarkerEOI  = 0xD9
)

// jpegCodec walks JPEG marker segments: a 2-byte SOI, then FF-prefixed
// markers each followed by a big-endian 2-byte length (covering itself) and
// the segment body. Entropy-coded scan data after SOS is opaque and always
// passed through verbatim.
type jpegCodec struct{}

func jpegBareMarker(marker byte) bool {
	// EOI and RSTn carry no length field.
	return marker == jpegMarkerEOI || (marker >= 0xD0 && marker <= 0xD7)
}

func (jpegCodec) embed(buf, metadataJSON []byte) EmbedResult {
	if len(buf) < 2 {
		return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipMalformedContainer}
	}
	packet := buildXMPPacket(metadataJSON)
	bodyLen := len(jpegXMPHeader) + len(packet)
	// The 2-byte length field covers itself, capping the body at 65533 bytes.
	if bodyLen+2 > 0xFFFF {
		return EmbedResult{Bytes: buf, Embedded: false, SkippedReason: SkipStampTooLarge}
	}

	out := make([]byte, 0, len(buf)+bodyLen+4)
	out = append(out, buf[0], buf[1]) // SOI
	out = append(out, 0xFF, jpegMarkerAPP1)
	out = binary.BigEndian.AppendUint16(out, uint16(bodyLen+2))
	out = append(out, jpegXMPHeader...)
	out = append(out, packet...)
	out = append(out, buf[2:]...)
	return EmbedResult{Bytes: out, Embedded: true}
}

func (jpegCodec) extract(buf []byte) []byte {
	i := 2
	for i+1 < len(buf) {
		if buf[i] != 0xFF {
			return nil
		}
		marker := buf[i+1]
		if jpegBareMarker(marker) {
			return nil
		}
		if i+4 > len(buf) {
			return nil
		}
		segLen := int(binary.BigEndian.Uint16(buf[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(buf) {
			return nil
		}
		body := buf[i+4 : i+2+segLen]
		if marker == jpegMarkerAPP1 && hasXMPHeader(body) {
			return extractJSONFromXMP(body[len(jpegXMPHeader):])
		}
		if marker == jpegMarkerSOS {
			// Entropy-coded data follows; the stamp lives before the scan.
			return nil
		}
		i += 2 + segLen
	}
	return nil
}

func (jpegCodec) strip(buf []byte) []byte {
	if len(buf) < 2 {
		return buf
	}
	out := make([]byte, 0, len(buf))
	out = append(out, buf[0], buf[1])

	i := 2
	for i+1 < len(buf) {
		if buf[i] != 0xFF {
			// Structure lost; pass the remainder through byte-identical.
			return append(out, buf[i:]...)
		}
		marker := buf[i+1]
		if jpegBareMarker(marker) {
			return append(out, buf[i:]...)
		}
		if i+4 > len(buf) {
			return append(out, buf[i:]...)
		}
		segLen := int(binary.BigEndian.Uint16(buf[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(buf) {
			return append(out, buf[i:]...)
		}
		body := buf[i+4 : i+2+segLen]
		if marker == jpegMarkerAPP1 && hasXMPHeader(body) {
			// Drop only the stamp segment; every other segment passes
			// through in its original order.
			i += 2 + segLen
			continue
		}
		if marker == jpegMarkerSOS {
			return append(out, buf[i:]...)
		}
		out = append(out, buf[i:i+2+segLen]...)
		i += 2 + segLen
	}
	return append(out, buf[i:]...)
}
