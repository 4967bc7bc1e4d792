package container

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"
)

// sampleMetadata is shaped like a real embedded stamp, including characters
// that need XML escaping.
var sampleMetadata = []byte(`{"identik_stamp":{"version":1,"identik_name":"jenny.identik",` +
	`"payload_sha256":"feedface","key_fingerprint":"cafebabe","signature":"c2ln",` +
	`"signed_at":"2025-12-02T15:00:00.000Z"},"canonical_payload":{"version":1,` +
	`"identik_name":"jenny.identik","file_sha256":"abc123",` +
	`"metadata":{"caption":"a < b & \"c\""},"timestamp":"2025-12-02T15:00:00.000Z"}}`)

func sampleJPEG() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI
	// APP0 JFIF segment.
	app0 := []byte("JFIF\x00\x01\x02\x00\x00\x01\x00\x01\x00\x00")
	buf.Write([]byte{0xFF, 0xE0})
	binary.Write(&buf, binary.BigEndian, uint16(len(app0)+2))
	buf.Write(app0)
	// SOS header followed by entropy-coded data and EOI.
	sos := []byte{0x01, 0x01, 0x00, 0x00, 0x3F, 0x00}
	buf.Write([]byte{0xFF, 0xDA})
	binary.Write(&buf, binary.BigEndian, uint16(len(sos)+2))
	buf.Write(sos)
	buf.Write([]byte{0x12, 0x34, 0x56, 0x78})
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

func pngChunk(chunkType string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(chunkType)
	buf.Write(data)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(buf.Bytes()[4:]))
	return buf.Bytes()
}

func samplePNG() []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 1) // width
	binary.BigEndian.PutUint32(ihdr[4:8], 1) // height
	ihdr[8] = 8                              // bit depth
	buf.Write(pngChunk("IHDR", ihdr))
	buf.Write(pngChunk("tEXt", []byte("Comment\x00hello")))
	buf.Write(pngChunk("IDAT", []byte{0x78, 0x9C, 0x62, 0x00}))
	buf.Write(pngChunk("IEND", nil))
	return buf.Bytes()
}

func makeMP4Box(boxType string, payload []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)+8))
	buf.WriteString(boxType)
	buf.Write(payload)
	return buf.Bytes()
}

func sampleMP4() []byte {
	var buf bytes.Buffer
	buf.Write(makeMP4Box("ftyp", []byte("isom\x00\x00\x02\x00")))
	buf.Write(makeMP4Box("moov", nil))
	buf.Write(makeMP4Box("mdat", []byte{0xDE, 0xAD, 0xBE, 0xEF}))
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want Format
	}{
		{"jpeg", sampleJPEG(), FormatJPEG},
		{"png", samplePNG(), FormatPNG},
		{"mp4", sampleMP4(), FormatMP4},
		{"gif", []byte("GIF89a....."), FormatUnsupported},
		{"empty", nil, FormatUnsupported},
		{"short", []byte{0xFF}, FormatUnsupported},
	}
	for _, tc := range cases {
		if got := Detect(tc.buf); got != tc.want {
			t.Errorf("%s: Detect = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  []byte
	}{
		{"jpeg", sampleJPEG()},
		{"png", samplePNG()},
		{"mp4", sampleMP4()},
	} {
		res := Embed(tc.buf, sampleMetadata)
		if !res.Embedded {
			t.Fatalf("%s: embed failed: %s", tc.name, res.SkippedReason)
		}
		if bytes.Equal(res.Bytes, tc.buf) {
			t.Fatalf("%s: embed returned unchanged buffer", tc.name)
		}
		got := Extract(res.Bytes)
		if !bytes.Equal(got, sampleMetadata) {
			t.Fatalf("%s: extract mismatch:\n got %s\nwant %s", tc.name, got, sampleMetadata)
		}
	}
}

func TestStripIsLossless(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  []byte
	}{
		{"jpeg", sampleJPEG()},
		{"png", samplePNG()},
		{"mp4", sampleMP4()},
	} {
		res := Embed(tc.buf, sampleMetadata)
		if !res.Embedded {
			t.Fatalf("%s: embed failed: %s", tc.name, res.SkippedReason)
		}
		stripped := Strip(res.Bytes)
		if !bytes.Equal(stripped, tc.buf) {
			t.Fatalf("%s: strip(embed(buf)) != buf", tc.name)
		}
		// Stripping an unstamped buffer is a no-op.
		if !bytes.Equal(Strip(tc.buf), tc.buf) {
			t.Fatalf("%s: strip of unstamped buffer changed bytes", tc.name)
		}
	}
}

func TestEmbedUnsupportedFormatIsNoOp(t *testing.T) {
	buf := []byte("GIF89a this is not a supported container")
	res := Embed(buf, sampleMetadata)
	if res.Embedded {
		t.Fatalf("embed into unsupported format must not claim success")
	}
	if res.SkippedReason != SkipUnsupportedFormat {
		t.Errorf("unexpected skip reason %q", res.SkippedReason)
	}
	if !bytes.Equal(res.Bytes, buf) {
		t.Errorf("unsupported embed must return the buffer byte-identical")
	}
	if Extract(buf) != nil {
		t.Errorf("extract from unsupported format must return nil")
	}
	if !bytes.Equal(Strip(buf), buf) {
		t.Errorf("strip of unsupported format must return the buffer unchanged")
	}
}

func TestExtractNoStamp(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  []byte
	}{
		{"jpeg", sampleJPEG()},
		{"png", samplePNG()},
		{"mp4", sampleMP4()},
	} {
		if got := Extract(tc.buf); got != nil {
			t.Errorf("%s: extract of unstamped buffer returned %q", tc.name, got)
		}
	}
}

func TestJPEGPreservesOtherSegments(t *testing.T) {
	buf := sampleJPEG()
	res := Embed(buf, sampleMetadata)
	// The APP0 segment must survive embed and strip byte-identical.
	if !bytes.Contains(res.Bytes, []byte("JFIF\x00")) {
		t.Errorf("embed dropped the APP0 segment")
	}
	if !bytes.Contains(Strip(res.Bytes), []byte("JFIF\x00")) {
		t.Errorf("strip dropped the APP0 segment")
	}
	// The stamp segment sits immediately after SOI.
	if res.Bytes[2] != 0xFF || res.Bytes[3] != 0xE1 {
		t.Errorf("stamp APP1 must be inserted immediately after SOI")
	}
}

func TestPNGInsertsAfterIHDRAndKeepsCRCs(t *testing.T) {
	buf := samplePNG()
	res := Embed(buf, sampleMetadata)

	// First chunk is still IHDR, second is the stamp iTXt.
	i := len(pngSignature)
	if string(res.Bytes[i+4:i+8]) != "IHDR" {
		t.Fatalf("first chunk is %q, want IHDR", res.Bytes[i+4:i+8])
	}
	ihdrLen := int(binary.BigEndian.Uint32(res.Bytes[i : i+4]))
	j := i + 12 + ihdrLen
	if string(res.Bytes[j+4:j+8]) != "iTXt" {
		t.Fatalf("second chunk is %q, want iTXt", res.Bytes[j+4:j+8])
	}

	// The stamp chunk CRC covers type+data with the standard table.
	stampLen := int(binary.BigEndian.Uint32(res.Bytes[j : j+4]))
	wantCRC := crc32.ChecksumIEEE(res.Bytes[j+4 : j+8+stampLen])
	gotCRC := binary.BigEndian.Uint32(res.Bytes[j+8+stampLen : j+12+stampLen])
	if gotCRC != wantCRC {
		t.Errorf("stamp chunk CRC mismatch: got %08x want %08x", gotCRC, wantCRC)
	}

	// IEND is still the final chunk.
	if !bytes.HasSuffix(res.Bytes, pngChunk("IEND", nil)) {
		t.Errorf("IEND must remain the file terminator")
	}
}

func TestPNGCompressedITXtIsUnsupported(t *testing.T) {
	var data bytes.Buffer
	data.Write(pngITXtKeyword)
	data.WriteByte(1) // compressed
	data.WriteByte(0)
	data.WriteByte(0)
	data.WriteByte(0)
	data.WriteString("compressed bytes")

	var buf bytes.Buffer
	buf.Write(pngSignature)
	buf.Write(pngChunk("iTXt", data.Bytes()))
	buf.Write(pngChunk("IEND", nil))

	if got := Extract(buf.Bytes()); got != nil {
		t.Errorf("compressed iTXt must extract as nil, got %q", got)
	}
}

func TestMP4AppendsAtEnd(t *testing.T) {
	buf := sampleMP4()
	res := Embed(buf, sampleMetadata)
	if !bytes.HasPrefix(res.Bytes, buf) {
		t.Fatalf("embed must never rewrite existing boxes")
	}
	tail := res.Bytes[len(buf):]
	if string(tail[4:8]) != "uuid" {
		t.Errorf("appended box type is %q, want uuid", tail[4:8])
	}
	if !bytes.Equal(tail[8:24], identikUUID[:]) {
		t.Errorf("appended box does not carry the Identik UUID")
	}
}

func TestMP4LargeSizeBox(t *testing.T) {
	// A box using the 64-bit size form before the stamp.
	payload := []byte{0xAA, 0xBB}
	var large bytes.Buffer
	binary.Write(&large, binary.BigEndian, uint32(1))
	large.WriteString("mdat")
	binary.Write(&large, binary.BigEndian, uint64(16+len(payload)))
	large.Write(payload)

	var buf bytes.Buffer
	buf.Write(makeMP4Box("ftyp", []byte("isom\x00\x00\x02\x00")))
	buf.Write(large.Bytes())

	res := Embed(buf.Bytes(), sampleMetadata)
	if !res.Embedded {
		t.Fatalf("embed failed: %s", res.SkippedReason)
	}
	if !bytes.Equal(Extract(res.Bytes), sampleMetadata) {
		t.Fatalf("extract through a 64-bit size box failed")
	}
	if !bytes.Equal(Strip(res.Bytes), buf.Bytes()) {
		t.Fatalf("strip through a 64-bit size box is not lossless")
	}
}

func TestMP4MalformedPayloadDegrades(t *testing.T) {
	buf := sampleMP4()
	res := Embed(buf, []byte(`{"truncated":`))
	if got := Extract(res.Bytes); got != nil {
		t.Errorf("malformed JSON payload must extract as nil, got %q", got)
	}
}

func TestTruncatedContainersDegrade(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  []byte
	}{
		{"jpeg", sampleJPEG()},
		{"png", samplePNG()},
		{"mp4", sampleMP4()},
	} {
		res := Embed(tc.buf, sampleMetadata)
		truncated := res.Bytes[:len(res.Bytes)/4]
		// Must not panic, and must return something rather than corrupting.
		_ = Extract(truncated)
		_ = Strip(truncated)
	}
}

func TestEmbedMalformedContainerDegrades(t *testing.T) {
	// PNG whose IHDR length overruns the buffer.
	var png bytes.Buffer
	png.Write(pngSignature)
	png.Write(pngChunk("IHDR", make([]byte, 13)))
	badPNG := png.Bytes()
	binary.BigEndian.PutUint32(badPNG[len(pngSignature):], 0xFFFF)

	// MP4 whose last box is truncated.
	var mp4 bytes.Buffer
	mp4.Write(makeMP4Box("ftyp", []byte("isom\x00\x00\x02\x00")))
	mp4.Write(makeMP4Box("mdat", []byte{0xDE, 0xAD, 0xBE, 0xEF}))
	badMP4 := mp4.Bytes()[:mp4.Len()-2]

	// MP4 whose final box claims "to end of stream"; an appended stamp
	// would be swallowed by it.
	var openEnd bytes.Buffer
	openEnd.Write(makeMP4Box("ftyp", []byte("isom\x00\x00\x02\x00")))
	binary.Write(&openEnd, binary.BigEndian, uint32(0))
	openEnd.WriteString("mdat")
	openEnd.Write([]byte{0xDE, 0xAD})

	for _, tc := range []struct {
		name string
		buf  []byte
	}{
		{"png overrun chunk", badPNG},
		{"mp4 truncated box", badMP4},
		{"mp4 open-ended box", openEnd.Bytes()},
	} {
		res := Embed(tc.buf, sampleMetadata)
		if res.Embedded {
			t.Errorf("%s: embed into a malformed container claimed success", tc.name)
		}
		if res.SkippedReason != SkipMalformedContainer {
			t.Errorf("%s: skip reason %q, want %q", tc.name, res.SkippedReason, SkipMalformedContainer)
		}
		if !bytes.Equal(res.Bytes, tc.buf) {
			t.Errorf("%s: embed must return the buffer byte-identical", tc.name)
		}
	}
}

func TestXMPPacketCarriesBOMMarker(t *testing.T) {
	packet := buildXMPPacket(sampleMetadata)
	if !bytes.Contains(packet, []byte("begin=\"\ufeff\"")) {
		t.Errorf("xpacket header must carry the UTF-8 BOM begin marker")
	}
}

func TestStripPreservesUnknownPNGChunks(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(samplePNG()[:len(pngSignature)])
	ihdr := make([]byte, 13)
	buf.Write(pngChunk("IHDR", ihdr))
	buf.Write(pngChunk("prIv", []byte("unknown ancillary chunk")))
	buf.Write(pngChunk("IEND", nil))

	res := Embed(buf.Bytes(), sampleMetadata)
	stripped := Strip(res.Bytes)
	if !bytes.Equal(stripped, buf.Bytes()) {
		t.Fatalf("strip must leave unknown chunks untouched")
	}
}
