package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"identik.app/stamp/cidutil"
	"identik.app/stamp/container"
	"identik.app/stamp/container/exiftool"
	"identik.app/stamp/keys"
	"identik.app/stamp/policy"
	"identik.app/stamp/protect"
	"identik.app/stamp/report"
	"identik.app/stamp/reputation"
	"identik.app/stamp/stamp"
	"identik.app/stamp/store"
	"identik.app/stamp/store/fsstore"
	"identik.app/stamp/store/grpcvault"
	"identik.app/stamp/verifier"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "extract":
		return cmdExtract(args[1:], out, errOut)
	case "strip":
		return cmdStrip(args[1:], out, errOut)
	case "detect":
		return cmdDetect(args[1:], out, errOut)
	case "payload-cid":
		return cmdPayloadCID(args[1:], out, errOut)
	case "reputation":
		return cmdReputation(args[1:], out, errOut)
	case "identity":
		return cmdIdentity(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "identik-stamp: sign and verify Identik-protected media")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  identik-stamp key init --account <a> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  identik-stamp key derive --account <a> --name <identik-name> [--force]")
	fmt.Fprintln(w, "  identik-stamp key list")
	fmt.Fprintln(w, "  identik-stamp key export --account <a> [--name <identik-name>]")
	fmt.Fprintln(w, "  identik-stamp identity add --data-dir <dir> --id <id> --name <identik-name> [--inactive] [--created <RFC3339>]")
	fmt.Fprintln(w, "  identik-stamp identity register-key --data-dir <dir> --identity-id <id> (--seed-hex <64hex> | --account <a> [--key-name <n>] | --key-file <path>)")
	fmt.Fprintln(w, "  identik-stamp sign --in <file> --out <file> --name <identik-name> (--seed-hex <64hex> | --account <a> [--key-name <n>] | --key-file <path>) [--identity-id <id>] [--meta Key=Value ...] [--data-dir <dir> | --vault <addr>] [--exiftool-fallback]")
	fmt.Fprintln(w, "  identik-stamp verify --in <file> (--data-dir <dir> | --vault <addr>) [--policy <file>] [--record] [--report]")
	fmt.Fprintln(w, "  identik-stamp extract --in <file>")
	fmt.Fprintln(w, "  identik-stamp strip --in <file> --out <file>")
	fmt.Fprintln(w, "  identik-stamp detect --in <file>")
	fmt.Fprintln(w, "  identik-stamp payload-cid --in <file>")
	fmt.Fprintln(w, "  identik-stamp reputation (--data-dir <dir> --name <identik-name>) | (--age-days <n> --weight <w> [--inactive])")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - stored keys live under ~/.identik/keys/<account> (0600 seed files)")
	fmt.Fprintln(w, "  - --data-dir uses a local record vault; --vault a remote one")
	fmt.Fprintln(w, "  - sign writes the stamped bytes to --out ('-' for stdout)")
	fmt.Fprintln(w, "  - verify prints a JSON result, or a canonical report with --report")
}

// kvList collects repeatable Key=Value flags.
type kvList []string

func (l *kvList) String() string { return strings.Join(*l, ",") }
func (l *kvList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func parseKV(items kvList) (map[string]any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(items))
	for _, item := range items {
		kv := strings.SplitN(item, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("expected Key=Value, got %q", item)
		}
		m[kv[0]] = kv[1]
	}
	return m, nil
}

// vaultStores bundles the four store interfaces behind one handle.
type vaultStores struct {
	identities store.IdentityStore
	keyDir     store.KeyDirectory
	media      store.MediaStore
	events     store.EventStore
	close      func() error
}

func openStores(dataDir, vaultAddr string) (*vaultStores, error) {
	if dataDir != "" && vaultAddr != "" {
		return nil, errors.New("conflicting flags: --data-dir cannot be combined with --vault")
	}
	switch {
	case dataDir != "":
		s, err := fsstore.New(dataDir)
		if err != nil {
			return nil, err
		}
		return &vaultStores{identities: s, keyDir: s, media: s, events: s, close: func() error { return nil }}, nil
	case vaultAddr != "":
		c, err := grpcvault.Dial(vaultAddr, grpcvault.DialOptions{Timeout: 10 * time.Second})
		if err != nil {
			return nil, err
		}
		c.Timeout = 10 * time.Second
		return &vaultStores{identities: c, keyDir: c, media: c, events: c, close: c.Close}, nil
	default:
		return nil, errors.New("missing record vault: use --data-dir or --vault")
	}
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: identik-stamp key <init|derive|list|export> ...")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var account, seedHex string
	var force bool
	fs.StringVar(&account, "account", "", "Account name")
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars (random if omitted)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if account == "" {
		fmt.Fprintln(errOut, "missing --account")
		return 2
	}

	var seed []byte
	if seedHex != "" {
		var err error
		seed, err = keys.ParseSeedHex(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "generate seed: %v\n", err)
			return 1
		}
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	encoded, path, err := ks.InitializeRootKey(account, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "init: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Public-Key: %s\n", encoded)
	fmt.Fprintf(out, "Key-File: %s\n", path)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var account, name string
	var force bool
	fs.StringVar(&account, "account", "", "Account name")
	fs.StringVar(&name, "name", "", "Identik name to derive a key for")
	fs.BoolVar(&force, "force", false, "Overwrite an existing derived key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if account == "" || name == "" {
		fmt.Fprintln(errOut, "missing --account or --name")
		return 2
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	encoded, path, err := ks.DeriveNameKey(account, name, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Public-Key: %s\n", encoded)
	fmt.Fprintf(out, "Key-File: %s\n", path)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list: %v\n", err)
		return 1
	}
	for _, e := range entries {
		if len(e.Names) == 0 {
			fmt.Fprintln(out, e.Account)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", e.Account, strings.Join(e.Names, ","))
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var account, name string
	fs.StringVar(&account, "account", "", "Account name")
	fs.StringVar(&name, "name", "", "Identik name (omit for the root key)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if account == "" {
		fmt.Fprintln(errOut, "missing --account")
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	encoded, err := ks.ExportKey(account, name)
	if err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, encoded)
	return 0
}

// loadSigner resolves the private key from the signer flags.
func loadSigner(seedHex, account, keyName, keyFile string, errOut io.Writer) (ed25519.PrivateKey, int) {
	if seedHex == "" && account == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --account, or --key-file")
		return nil, 2
	}
	if seedHex != "" && (account != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --account or --key-file")
		return nil, 2
	}
	if account != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --account cannot be combined with --key-file")
		return nil, 2
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, 1
	}
	seed, err := ks.LoadSeed(seedHex, account, keyName, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return nil, 2
	}
	return ed25519.NewKeyFromSeed(seed), 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath, outPath, name, identityID string
	var seedHex, account, keyName, keyFile string
	var dataDir, vaultAddr string
	var meta kvList
	var fallback bool
	fs.StringVar(&inPath, "in", "", "Media file to protect")
	fs.StringVar(&outPath, "out", "", "Output file ('-' for stdout)")
	fs.StringVar(&name, "name", "", "Identik name")
	fs.StringVar(&identityID, "identity-id", "", "Identity record ID for vault bookkeeping")
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars")
	fs.StringVar(&account, "account", "", "Use a stored key by account")
	fs.StringVar(&keyName, "key-name", "", "When using --account, use this derived name key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file created by 'identik-stamp key init/derive'")
	fs.StringVar(&dataDir, "data-dir", "", "Local record vault directory")
	fs.StringVar(&vaultAddr, "vault", "", "Remote vault address")
	fs.Var(&meta, "meta", "Payload metadata as Key=Value (repeatable)")
	fs.BoolVar(&fallback, "exiftool-fallback", false, "Use the exiftool worker for unsupported containers")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" || outPath == "" || name == "" {
		fmt.Fprintln(errOut, "missing --in, --out, or --name")
		return 2
	}

	priv, code := loadSigner(seedHex, account, keyName, keyFile, errOut)
	if code != 0 {
		return code
	}
	metadata, err := parseKV(meta)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --meta: %v\n", err)
		return 2
	}
	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}

	protector := protect.New(nil, nil)
	if dataDir != "" || vaultAddr != "" {
		stores, err := openStores(dataDir, vaultAddr)
		if err != nil {
			fmt.Fprintf(errOut, "vault: %v\n", err)
			return 1
		}
		defer stores.close()
		protector.Media = stores.media
		protector.Events = stores.events
	}
	if fallback {
		protector.Fallback = exiftool.Shared()
	}

	result, err := protector.Sign(context.Background(), protect.Request{
		IdentikName: name,
		IdentityID:  identityID,
		Media:       media,
		Metadata:    metadata,
		PrivateKey:  priv,
	})
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	if outPath == "-" {
		if _, err := out.Write(result.Bytes); err != nil {
			fmt.Fprintf(errOut, "write stdout: %v\n", err)
			return 1
		}
	} else if err := os.WriteFile(outPath, result.Bytes, 0o644); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}

	fmt.Fprintf(errOut, "Payload-Hash: %s\n", result.Stamp.PayloadSHA256)
	fmt.Fprintf(errOut, "Key-Fingerprint: %s\n", result.Stamp.KeyFingerprint)
	fmt.Fprintf(errOut, "Embedded: %v\n", result.Embedded)
	if result.SkippedReason != "" {
		fmt.Fprintf(errOut, "Skipped-Reason: %s\n", result.SkippedReason)
	}
	if result.MediaRecord != nil {
		fmt.Fprintf(errOut, "Media-ID: %s\n", result.MediaRecord.ID)
	}
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath, dataDir, vaultAddr, policyPath string
	var record, renderReport bool
	fs.StringVar(&inPath, "in", "", "Media file to check")
	fs.StringVar(&dataDir, "data-dir", "", "Local record vault directory")
	fs.StringVar(&vaultAddr, "vault", "", "Remote vault address")
	fs.StringVar(&policyPath, "policy", "", "Scoring policy file (defaults built in)")
	fs.BoolVar(&record, "record", false, "Append the verification outcome to the identity's history")
	fs.BoolVar(&renderReport, "report", false, "Print a canonical verification report instead of JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}

	stores, err := openStores(dataDir, vaultAddr)
	if err != nil {
		fmt.Fprintf(errOut, "vault: %v\n", err)
		return 2
	}
	defer stores.close()

	cfg := policy.Default()
	if policyPath != "" {
		b, err := os.ReadFile(policyPath)
		if err != nil {
			fmt.Fprintf(errOut, "read --policy: %v\n", err)
			return 1
		}
		cfg, err = policy.Parse(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid policy: %v\n", err)
			return 2
		}
	}

	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}

	engine := verifier.New(stores.identities, stores.keyDir, stores.media, stores.events)
	engine.Config = cfg
	ctx := context.Background()

	result := engine.Verify(ctx, media)
	if record {
		if err := engine.RecordOutcome(ctx, result); err != nil {
			fmt.Fprintf(errOut, "record outcome: %v\n", err)
			return 1
		}
	}

	if renderReport {
		doc := report.Render(result, report.RenderOptions{VerifiedAt: time.Now()})
		_, _ = out.Write(doc)
		fmt.Fprintf(errOut, "Report-CID: %s\n", report.ReportCID(doc))
	} else {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(errOut, "encode result: %v\n", err)
			return 1
		}
	}

	if !result.Verified {
		return 1
	}
	return 0
}

func cmdExtract(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath string
	fs.StringVar(&inPath, "in", "", "Media file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	raw := container.Extract(media)
	if raw == nil {
		fmt.Fprintln(errOut, "no Identik stamp found")
		return 1
	}
	if stamp.Decode(raw) == nil {
		fmt.Fprintln(errOut, "embedded data is not a valid Identik stamp")
		return 1
	}
	fmt.Fprintln(out, string(raw))
	return 0
}

func cmdStrip(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("strip", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath, outPath string
	fs.StringVar(&inPath, "in", "", "Media file")
	fs.StringVar(&outPath, "out", "", "Output file ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" || outPath == "" {
		fmt.Fprintln(errOut, "missing --in or --out")
		return 2
	}
	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	stripped := container.Strip(media)
	if outPath == "-" {
		if _, err := out.Write(stripped); err != nil {
			fmt.Fprintf(errOut, "write stdout: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(outPath, stripped, 0o644); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}
	return 0
}

func cmdDetect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath string
	fs.StringVar(&inPath, "in", "", "Media file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, container.Detect(media).String())
	return 0
}

func cmdPayloadCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("payload-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath string
	fs.StringVar(&inPath, "in", "", "Media file with an embedded stamp")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	media, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	embedded := stamp.Decode(container.Extract(media))
	if embedded == nil {
		fmt.Fprintln(errOut, "no Identik stamp found")
		return 1
	}
	id, err := cidutil.PayloadCID(&embedded.Payload)
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdReputation(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("reputation", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dataDir, name string
	var ageDays, weight float64
	var inactive bool
	fs.StringVar(&dataDir, "data-dir", "", "Local record vault directory")
	fs.StringVar(&name, "name", "", "Identik name to look up")
	fs.Float64Var(&ageDays, "age-days", 0, "Identity age in days (standalone mode)")
	fs.Float64Var(&weight, "weight", 0, "Total event weight (standalone mode)")
	fs.BoolVar(&inactive, "inactive", false, "Treat the identity as inactive (standalone mode)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var details reputation.Details
	if dataDir != "" || name != "" {
		if dataDir == "" || name == "" {
			fmt.Fprintln(errOut, "lookup mode needs both --data-dir and --name")
			return 2
		}
		s, err := fsstore.New(dataDir)
		if err != nil {
			fmt.Fprintf(errOut, "vault: %v\n", err)
			return 1
		}
		ctx := context.Background()
		identity, err := s.FindIdentityByName(ctx, name)
		if err != nil {
			fmt.Fprintf(errOut, "identity: %v\n", err)
			return 1
		}
		totalWeight, err := s.TotalEventWeight(ctx, identity.ID)
		if err != nil {
			fmt.Fprintf(errOut, "events: %v\n", err)
			return 1
		}
		age := 0.0
		if !identity.CreatedAt.IsZero() {
			age = time.Since(identity.CreatedAt).Hours() / 24
		}
		details = reputation.Compute(age, totalWeight, identity.Active)
	} else {
		details = reputation.Compute(ageDays, weight, !inactive)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(details); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	return 0
}

func cmdIdentity(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: identik-stamp identity <add|register-key> ...")
		return 2
	}
	switch args[0] {
	case "add":
		return cmdIdentityAdd(args[1:], out, errOut)
	case "register-key":
		return cmdIdentityRegisterKey(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown identity subcommand: %s\n", args[0])
		return 2
	}
}

func cmdIdentityAdd(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("identity add", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dataDir, id, name, created string
	var inactive bool
	fs.StringVar(&dataDir, "data-dir", "", "Local record vault directory")
	fs.StringVar(&id, "id", "", "Identity record ID")
	fs.StringVar(&name, "name", "", "Identik name")
	fs.StringVar(&created, "created", "", "Creation time, RFC3339 (defaults to now)")
	fs.BoolVar(&inactive, "inactive", false, "Mark the identity inactive")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if dataDir == "" || id == "" || name == "" {
		fmt.Fprintln(errOut, "missing --data-dir, --id, or --name")
		return 2
	}

	createdAt := time.Now().UTC()
	if created != "" {
		var err error
		createdAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --created: %v\n", err)
			return 2
		}
	}

	s, err := fsstore.New(dataDir)
	if err != nil {
		fmt.Fprintf(errOut, "vault: %v\n", err)
		return 1
	}
	identity := &store.Identity{
		ID:        id,
		Name:      strings.ToLower(name),
		Active:    !inactive,
		CreatedAt: createdAt,
	}
	if err := s.SaveIdentity(identity); err != nil {
		fmt.Fprintf(errOut, "save: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Identity: %s (%s)\n", identity.Name, identity.ID)
	return 0
}

func cmdIdentityRegisterKey(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("identity register-key", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dataDir, identityID string
	var seedHex, account, keyName, keyFile string
	fs.StringVar(&dataDir, "data-dir", "", "Local record vault directory")
	fs.StringVar(&identityID, "identity-id", "", "Identity record ID the key signs for")
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars")
	fs.StringVar(&account, "account", "", "Use a stored key by account")
	fs.StringVar(&keyName, "key-name", "", "When using --account, use this derived name key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file created by 'identik-stamp key init/derive'")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if dataDir == "" || identityID == "" {
		fmt.Fprintln(errOut, "missing --data-dir or --identity-id")
		return 2
	}

	priv, code := loadSigner(seedHex, account, keyName, keyFile, errOut)
	if code != 0 {
		return code
	}
	pub := priv.Public().(ed25519.PublicKey)
	fingerprint := keys.Fingerprint(pub)

	s, err := fsstore.New(dataDir)
	if err != nil {
		fmt.Fprintf(errOut, "vault: %v\n", err)
		return 1
	}
	key := &store.SigningKey{
		ID:          "key-" + fingerprint[:12],
		IdentityID:  identityID,
		Algorithm:   keys.AlgEd25519,
		PublicKey:   []byte(pub),
		Fingerprint: fingerprint,
	}
	if err := s.SaveKey(key); err != nil {
		fmt.Fprintf(errOut, "save: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Key-Fingerprint: %s\n", fingerprint)
	return 0
}
