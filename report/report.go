// Package report renders verification results as canonical text documents.
// Reports are deterministic: the same result always renders to identical
// bytes, so a report can be content-addressed and countersigned.
package report

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"identik.app/stamp/cidutil"
	"identik.app/stamp/verifier"
)

const (
	Preamble  = "-----BEGIN IDENTIK VERIFICATION REPORT-----"
	Postamble = "-----END IDENTIK VERIFICATION REPORT-----"
)

// ReportCID returns a deterministic identifier for a rendered report.
// This is an IPFS-compatible CIDv1 (raw + sha2-256) over the report bytes.
func ReportCID(reportBytes []byte) string {
	return cidutil.MediaCID(reportBytes)
}

type RenderOptions struct {
	ReporterID string
	VerifiedAt time.Time // informational only; zero means omit

	// Optional report signing. If PrivateKey is set, the output includes a
	// CRYPTO section and Signature computed over the report bytes excluding
	// the Signature: line.
	ReporterKey string
	PrivateKey  ed25519.PrivateKey
}

// Render produces a canonical report document for a verification result.
// Sections are always present and ordering is deterministic; checks and
// warnings keep their semantic order.
func Render(res *verifier.Result, opts RenderOptions) []byte {
	reporterID := opts.ReporterID
	if reporterID == "" {
		reporterID = "identik-stamp-reference"
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	// META
	sb.WriteString("META\n")
	metaLines := []string{
		"Reporter-ID: " + reporterID,
		"Spec: identik-report-1",
		"Version: 1",
	}
	if !opts.VerifiedAt.IsZero() {
		metaLines = append(metaLines, "Verified-At: "+opts.VerifiedAt.UTC().Format(time.RFC3339))
	}
	sort.Strings(metaLines)
	for _, l := range metaLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// RESULT
	sb.WriteString("RESULT\n")
	resultLines := []string{
		"Identik-Name: " + res.IdentikName,
		"Label: " + string(res.Label),
		"Message: " + res.Message,
		"Score: " + formatScore(res.Score),
		"Verified: " + strconv.FormatBool(res.Verified),
	}
	if res.PayloadHash != "" {
		resultLines = append(resultLines, "Payload-Hash: "+res.PayloadHash)
	}
	sort.Strings(resultLines)
	for _, l := range resultLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// CHECKS
	sb.WriteString("CHECKS\n")
	for _, c := range res.Checks {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// WARNINGS
	sb.WriteString("WARNINGS\n")
	for _, w := range res.Warnings {
		sb.WriteString("- ")
		sb.WriteString(w)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// SIGNER
	sb.WriteString("SIGNER\n")
	signerLines := []string{
		"Age-Days: " + strconv.FormatFloat(res.IdentityAgeDays, 'f', 0, 64),
		"Report-Count: " + strconv.Itoa(res.SignerActivity.ReportCount),
		"Report-Ratio: " + formatScore(res.SignerActivity.ReportRatio),
		"Total-Signed: " + strconv.Itoa(res.SignerActivity.TotalSigned),
	}
	if res.Reputation != nil {
		signerLines = append(signerLines, "Reputation-Score: "+formatScore(res.Reputation.Score))
	}
	sort.Strings(signerLines)
	for _, l := range signerLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// CRYPTO
	if opts.PrivateKey != nil {
		sb.WriteString("CRYPTO\n")
		if opts.ReporterKey != "" {
			sb.WriteString("Reporter-Key: ")
			sb.WriteString(opts.ReporterKey)
			sb.WriteString("\n")
		}
		// Sign the document as it will appear with an empty Signature value;
		// verification reconstructs the same bytes.
		unsigned := sb.String() + "Signature: \n" + Postamble + "\n"
		sig := ed25519.Sign(opts.PrivateKey, []byte(unsigned))
		sb.WriteString("Signature: ")
		sb.WriteString(base64.StdEncoding.EncodeToString(sig))
		sb.WriteString("\n")
	}

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	return []byte(sb.String())
}

// VerifySignature checks the CRYPTO section of a signed report against a
// public key. Unsigned or malformed reports verify as false.
func VerifySignature(reportBytes []byte, publicKey ed25519.PublicKey) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	text := string(reportBytes)
	idx := strings.Index(text, "\nSignature: ")
	if idx < 0 {
		return false
	}
	rest := text[idx+len("\nSignature: "):]
	end := strings.Index(rest, "\n")
	if end < 0 {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(rest[:end])
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	unsigned := text[:idx] + "\nSignature: " + rest[end:]
	return ed25519.Verify(publicKey, []byte(unsigned), sig)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
