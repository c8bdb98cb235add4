package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"namegate.io/namegate/config"
	"namegate.io/namegate/content"
	"namegate.io/namegate/content/bundle"
	"namegate.io/namegate/evidence"
	"namegate.io/namegate/gateway"
	"namegate.io/namegate/keys"
	"namegate.io/namegate/metadata"
	"namegate.io/namegate/naming"
	"namegate.io/namegate/token"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "split":
		return cmdSplit(args[1:], out, errOut)
	case "clean":
		return cmdClean(args[1:], in, out, errOut)
	case "token":
		return cmdToken(args[1:], out, errOut)
	case "image-url":
		return cmdImageURL(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "evidence":
		return cmdEvidence(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "cache":
		return cmdCache(args[1:], out, errOut)
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
	fmt.Fprintln(w, "namegate: NFT domain metadata resolver CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  namegate split <domain>")
	fmt.Fprintln(w, "  namegate clean [<text>]")
	fmt.Fprintln(w, "  namegate token compose --low <hex> --high <hex> [--decimal]")
	fmt.Fprintln(w, "  namegate token namehash <domain> [--decimal]")
	fmt.Fprintln(w, "  namegate token parse <id>")
	fmt.Fprintln(w, "  namegate image-url [--gateway <base>] <url>")
	fmt.Fprintln(w, "  namegate resolve --registry <file> [--gateway <base>] [--mode permissive|strict] [--cache-dir <dir>] [--kubo-bin <bin>] [--evidence] [--resolver-id <id>] [--resolved-at <rfc3339>] [--seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>] <domain>")
	fmt.Fprintln(w, "  namegate evidence verify <file>")
	fmt.Fprintln(w, "  namegate evidence cid <file>")
	fmt.Fprintln(w, "  namegate key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  namegate key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  namegate key list")
	fmt.Fprintln(w, "  namegate key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  namegate cache export --dir <cache-dir> [--out <file>] [--index]")
	fmt.Fprintln(w, "  namegate cache import --dir <cache-dir> <snapshot.tar>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - clean reads stdin when no argument is given and writes the cleaned bytes verbatim")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys are stored under ~/.namegate/keys/<name> (0600 seed files)")
	fmt.Fprintln(w, "  - resolve prints the resolution as JSON; --evidence prints canonical evidence text (no trailing newline)")
	fmt.Fprintln(w, "  - cache snapshots re-verify every block CID on both export and import")
}

func cmdSplit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: namegate split <domain>")
		return 2
	}
	prefix, root := naming.SplitDomain(fs.Arg(0))
	fmt.Fprintf(out, "%s\t%s\n", prefix, root)
	return 0
}

func cmdClean(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	switch fs.NArg() {
	case 0:
		b, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(errOut, "read stdin: %v\n", err)
			return 1
		}
		_, _ = io.WriteString(out, naming.CleanString(string(b)))
		return 0
	case 1:
		fmt.Fprintln(out, naming.CleanString(fs.Arg(0)))
		return 0
	default:
		fmt.Fprintln(errOut, "usage: namegate clean [<text>]")
		return 2
	}
}

func cmdToken(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: namegate token <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: compose, namehash, parse")
		return 2
	}
	switch args[0] {
	case "compose":
		fs := flag.NewFlagSet("token compose", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var low, high string
		var decimal bool
		fs.StringVar(&low, "low", "", "Low 128-bit half, hex with optional 0x prefix")
		fs.StringVar(&high, "high", "", "High 128-bit half, hex with optional 0x prefix")
		fs.BoolVar(&decimal, "decimal", false, "Print the identifier in base 10")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if low == "" || high == "" {
			fmt.Fprintln(errOut, "usage: namegate token compose --low <hex> --high <hex> [--decimal]")
			return 2
		}
		id, err := token.Compose(low, high)
		if err != nil {
			fmt.Fprintf(errOut, "invalid halves: %v\n", err)
			return 2
		}
		printID(out, id, decimal)
		return 0
	case "namehash":
		fs := flag.NewFlagSet("token namehash", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var decimal bool
		fs.BoolVar(&decimal, "decimal", false, "Print the identifier in base 10")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: namegate token namehash <domain> [--decimal]")
			return 2
		}
		printID(out, token.Namehash(fs.Arg(0)), decimal)
		return 0
	case "parse":
		fs := flag.NewFlagSet("token parse", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: namegate token parse <id>")
			return 2
		}
		id, err := token.ParseID(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid id: %v\n", err)
			return 2
		}
		fmt.Fprintf(out, "Hex: %s\n", id.Hex())
		fmt.Fprintf(out, "Decimal: %s\n", id.Decimal())
		return 0
	default:
		fmt.Fprintf(errOut, "unknown token subcommand: %s\n", args[0])
		return 2
	}
}

func printID(out io.Writer, id token.ID, decimal bool) {
	if decimal {
		fmt.Fprintln(out, id.Decimal())
		return
	}
	fmt.Fprintln(out, id.Hex())
}

func cmdImageURL(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("image-url", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var gatewayBase string
	fs.StringVar(&gatewayBase, "gateway", "", "HTTP gateway base (defaults to "+gateway.DefaultIPFSGateway+")")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: namegate image-url [--gateway <base>] <url>")
		return 2
	}
	fmt.Fprintln(out, gateway.Rewriter{Base: gatewayBase}.Resolve(fs.Arg(0)))
	return 0
}

func cmdResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var registryPath string
	var gatewayBase string
	var mode string
	var cacheDir string
	var kuboBin string
	var asEvidence bool
	var resolverID string
	var resolvedAt string
	var seedHex string
	var signerName string
	var signerRole string
	var keyFile string

	fs.StringVar(&registryPath, "registry", "", "Registry records file (JSON)")
	fs.StringVar(&gatewayBase, "gateway", "", "HTTP gateway base for ipfs content")
	fs.StringVar(&mode, "mode", "permissive", "Verification mode: permissive or strict")
	fs.StringVar(&cacheDir, "cache-dir", "", "Optional on-disk content cache directory")
	fs.StringVar(&kuboBin, "kubo-bin", "", "Optional local Kubo binary consulted before the gateway")
	fs.BoolVar(&asEvidence, "evidence", false, "Print canonical evidence text instead of JSON")
	fs.StringVar(&resolverID, "resolver-id", evidence.DefaultResolverID, "Resolver-ID recorded in evidence")
	fs.StringVar(&resolvedAt, "resolved-at", "", "Optional RFC3339 timestamp for evidence Resolved-At (omit for deterministic output)")
	fs.StringVar(&seedHex, "seed-hex", "", "Sign evidence with an ed25519 seed as 64 hex chars")
	fs.StringVar(&signerName, "signer", "", "Sign evidence with a stored key by name (from 'namegate key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Sign evidence with a seed file created by 'namegate key init/derive'")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if registryPath == "" {
		fmt.Fprintln(errOut, "missing --registry")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: namegate resolve --registry <file> [flags] <domain>")
		return 2
	}
	domain := fs.Arg(0)

	wantSigner := seedHex != "" || signerName != "" || keyFile != ""
	if wantSigner && !asEvidence {
		fmt.Fprintln(errOut, "signer flags require --evidence")
		return 2
	}
	if seedHex != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}

	var resolvedAtTime time.Time
	if resolvedAt != "" {
		t, perr := time.Parse(time.RFC3339, resolvedAt)
		if perr != nil {
			fmt.Fprintf(errOut, "invalid --resolved-at (expected RFC3339): %v\n", perr)
			return 2
		}
		resolvedAtTime = t
	}

	cfg := config.Default()
	cfg.RegistryPath = registryPath
	cfg.Mode = mode
	cfg.CacheDir = cacheDir
	cfg.KuboBin = kuboBin
	if gatewayBase != "" {
		cfg.Gateway = gatewayBase
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "invalid flags: %v\n", err)
		return 2
	}

	src, err := cfg.OpenSource(zerolog.Nop())
	if err != nil {
		fmt.Fprintf(errOut, "open registry: %v\n", err)
		return 1
	}
	fetcher, err := cfg.OpenFetcher(zerolog.Nop())
	if err != nil {
		fmt.Fprintf(errOut, "open fetcher: %v\n", err)
		return 1
	}

	resolver := &metadata.Resolver{Source: src, Fetcher: fetcher}
	res, err := resolver.Resolve(context.Background(), domain, metadata.Options{
		Gateway: cfg.Gateway,
		Mode:    cfg.VerifyMode(),
	})
	if err != nil {
		fmt.Fprintf(errOut, "resolve: %v\n", err)
		return 1
	}

	if !asEvidence {
		b, merr := json.MarshalIndent(res, "", "  ")
		if merr != nil {
			fmt.Fprintf(errOut, "encode: %v\n", merr)
			return 1
		}
		fmt.Fprintf(out, "%s\n", b)
		return 0
	}

	doc := evidence.Build(*res, evidence.BuildOptions{
		ResolverID: resolverID,
		ResolvedAt: resolvedAtTime,
	})

	var rendered []byte
	if wantSigner {
		ks, kerr := keys.Open("")
		if kerr != nil {
			fmt.Fprintf(errOut, "keys: %v\n", kerr)
			return 1
		}
		seed, serr := ks.LoadSeed(seedHex, signerName, signerRole, keyFile)
		if serr != nil {
			fmt.Fprintf(errOut, "invalid signer: %v\n", serr)
			return 2
		}
		fmt.Fprintf(errOut, "Issuer-Key: %s\n", keys.IssuerKeyFromSeed(seed))
		rendered, err = evidence.Sign(doc, evidence.SignOptions{
			Ed25519Key: ed25519.NewKeyFromSeed(seed),
		})
	} else {
		rendered, err = evidence.Render(doc)
	}
	if err != nil {
		fmt.Fprintf(errOut, "evidence: %v\n", err)
		return 1
	}

	if cid, cerr := evidence.CID(rendered); cerr == nil {
		fmt.Fprintf(errOut, "Evidence-CID: %s\n", cid)
	}
	_, _ = out.Write(rendered)
	return 0
}

func cmdEvidence(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: namegate evidence <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: verify, cid")
		return 2
	}
	switch args[0] {
	case "verify":
		fs := flag.NewFlagSet("evidence verify", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: namegate evidence verify <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read evidence: %v\n", err)
			return 1
		}
		ev, err := evidence.Parse(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid evidence: %v\n", err)
			return 1
		}
		signed, err := ev.Verify()
		if err != nil {
			fmt.Fprintf(errOut, "verify failed: %v\n", err)
			return 1
		}
		if signed {
			fmt.Fprintf(out, "OK signed %s\n", ev.IssuerKey())
		} else {
			fmt.Fprintln(out, "OK unsigned")
		}
		return 0
	case "cid":
		fs := flag.NewFlagSet("evidence cid", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: namegate evidence cid <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read evidence: %v\n", err)
			return 1
		}
		cid, err := evidence.CID(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid evidence: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, cid)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown evidence subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
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
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "namegate key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  namegate key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  namegate key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  namegate key list")
	fmt.Fprintln(w, "  namegate key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.namegate/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible setups)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	issuerKey, rootPath, err := ks.InitRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", issuerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. resolver, gateway)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	issuerKey, rolePath, err := ks.DeriveRoleKey(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", issuerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports the derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	issuerKey, err := ks.IssuerKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, issuerKey)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Name)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func cmdCache(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: namegate cache <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdCacheExport(args[1:], out, errOut)
	case "import":
		return cmdCacheImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown cache subcommand: %s\n", args[0])
		return 2
	}
}

func cmdCacheExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cache export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var dir string
	var outPath string
	var withIndex bool

	fs.StringVar(&dir, "dir", "", "Content cache directory")
	fs.StringVar(&outPath, "out", "", "Snapshot file (defaults to stdout)")
	fs.BoolVar(&withIndex, "index", false, "Include index.json in the snapshot")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if dir == "" {
		fmt.Fprintln(errOut, "missing --dir")
		return 2
	}

	disk, err := content.NewDiskCache(dir)
	if err != nil {
		fmt.Fprintf(errOut, "open cache: %v\n", err)
		return 1
	}
	ids, err := disk.List()
	if err != nil {
		fmt.Fprintf(errOut, "list cache: %v\n", err)
		return 1
	}

	w := out
	if outPath != "" {
		f, ferr := os.Create(outPath)
		if ferr != nil {
			fmt.Fprintf(errOut, "create %s: %v\n", outPath, ferr)
			return 1
		}
		defer f.Close()
		w = f
	}

	if err := bundle.Export(w, disk, ids, bundle.ExportOptions{IncludeIndex: withIndex}); err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "exported %d blocks\n", len(ids))
	return 0
}

func cmdCacheImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cache import", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var dir string
	fs.StringVar(&dir, "dir", "", "Content cache directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if dir == "" {
		fmt.Fprintln(errOut, "missing --dir")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: namegate cache import --dir <cache-dir> <snapshot.tar>")
		return 2
	}

	disk, err := content.NewDiskCache(dir)
	if err != nil {
		fmt.Fprintf(errOut, "open cache: %v\n", err)
		return 1
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "open snapshot: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := bundle.Import(f, disk); err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}
