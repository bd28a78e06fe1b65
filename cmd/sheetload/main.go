package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sheetloader/internal/dbenv"
	"sheetloader/internal/ingest"

	// Register all backends with the storage factory. The environment decides
	// which one a run uses, so the binary builds in support for all of them.
	_ "sheetloader/internal/storage/all"
)

const usage = `usage: sheetload [flags] <command> <delivery file>

commands:
  profile         print the delivery's structural fingerprint
  reconcile       print how the delivery maps onto the target schema
  filter-preview  print predicate-chain tallies without loading
  load            load eligible rows into the resolved backend

flags:
`

// main is the entry point for the ingestion CLI. It loads the pipeline
// config, resolves the backend from the environment, and dispatches one of
// the four operations.
func main() {
	var (
		cfgPath  string
		validate bool
	)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path (empty uses the built-in reference config)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	// A local .env is a convenience for development; absence is normal.
	_ = godotenv.Load()

	cfg := ingest.DefaultConfig()
	if cfgPath != "" {
		var err error
		cfg, err = ingest.LoadConfig(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}

	issues := cfg.Validate()
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == ingest.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %s", configName(cfgPath))
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %s", configName(cfgPath))
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	command, path := flag.Arg(0), flag.Arg(1)

	backend, err := dbenv.ResolveEnv()
	if err != nil {
		fatalf("resolve backend: %v", err)
	}
	if *verbose {
		log.Printf("backend: %s", backend.Redacted())
	}

	p, err := ingest.New(cfg, backend)
	if err != nil {
		fatalf("%v", err)
	}

	ctx := context.Background()
	start := time.Now()

	var out any
	switch command {
	case "profile":
		rep, perr := p.Profile(path)
		out, err = rep, perr
	case "reconcile":
		rep, rerr := p.Reconcile(path)
		out, err = rep, rerr
	case "filter-preview":
		rep, ferr := p.FilterPreview(path)
		out, err = rep, ferr
	case "load":
		// A load that failed mid-run still returns a report worth printing.
		rep, lerr := p.Load(ctx, path)
		err = lerr
		if rep != nil {
			out = rep
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && command != "load" {
		log.Fatalf("%v", err)
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			log.Printf("encode report: %v", encErr)
		}
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// configName labels the config source in log lines.
func configName(path string) string {
	if path == "" {
		return "built-in reference config"
	}
	return path
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
