package container

import (
	"bytes"
	"strings"
)

// XMPNamespace is the custom namespace URI the stamp is published under.
const XMPNamespace = "https://identik.app/xmp/1.0/"

// buildXMPPacket wraps embedded-metadata JSON in an XMP packet. The JSON is
// carried twice: in an identik:payload attribute and in a dc:description
// element, as a defense against readers that only parse one of the two.
func buildXMPPacket(metadataJSON []byte) []byte {
	escaped := escapeXML(string(metadataJSON))
	var sb strings.Builder
	sb.WriteString("<?xpacket begin=\"\uFEFF\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	sb.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	sb.WriteString("  <rdf:RDF xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\"\n")
	sb.WriteString("           xmlns:identik=\"" + XMPNamespace + "\"\n")
	sb.WriteString("           xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	sb.WriteString("    <rdf:Description rdf:about=\"\"\n")
	sb.WriteString("        identik:payload=\"" + escaped + "\">\n")
	sb.WriteString("      <dc:description>" + escaped + "</dc:description>\n")
	sb.WriteString("    </rdf:Description>\n")
	sb.WriteString("  </rdf:RDF>\n")
	sb.WriteString("</x:xmpmeta>\n")
	sb.WriteString("<?xpacket end=\"w\"?>")
	return []byte(sb.String())
}

// extractJSONFromXMP recovers the embedded JSON from an XMP packet. The
// identik:payload attribute wins; dc:description is the fallback. Returns nil
// when neither carrier is present.
func extractJSONFromXMP(xmp []byte) []byte {
	text := string(xmp)

	candidate := ""
	if i := strings.Index(text, `identik:payload="`); i >= 0 {
		rest := text[i+len(`identik:payload="`):]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			candidate = rest[:j]
		}
	}
	if candidate == "" {
		if i := strings.Index(text, "<dc:description>"); i >= 0 {
			rest := text[i+len("<dc:description>"):]
			if j := strings.Index(rest, "</dc:description>"); j >= 0 {
				candidate = rest[:j]
			}
		}
	}
	if candidate == "" {
		return nil
	}
	return []byte(unescapeXML(candidate))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// unescapeXML reverses escapeXML. &amp; is decoded last so doubly-escaped
// sequences survive one round trip unchanged.
func unescapeXML(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&apos;", "'")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// hasXMPHeader reports whether a JPEG APP1 body carries the XMP identifier.
func hasXMPHeader(body []byte) bool {
	return bytes.HasPrefix(body, []byte(jpegXMPHeader))
}
