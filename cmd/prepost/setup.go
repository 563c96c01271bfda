package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/netops-tools/prepost/internal/engine"
	"github.com/netops-tools/prepost/pkg/config"
	"github.com/netops-tools/prepost/pkg/diffengine"
	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/runner"
	"github.com/netops-tools/prepost/pkg/snapshot"
	"github.com/netops-tools/prepost/pkg/snapshot/fs"
	"github.com/netops-tools/prepost/pkg/snapshot/sqlite"
	"github.com/netops-tools/prepost/pkg/spec"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	errMark  = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
)

// newEngine wires a batch engine for one change directory.
func newEngine(change string) (*engine.Engine, string, error) {
	outputDir, err := cfg.OutputDir(change)
	if err != nil {
		return nil, "", err
	}

	store, err := openStore(outputDir)
	if err != nil {
		return nil, "", err
	}

	creds, err := credentials()
	if err != nil {
		return nil, "", err
	}
	run, err := runner.New(flagTransport, creds)
	if err != nil {
		return nil, "", err
	}

	e := engine.New(inv, store, run)
	e.OutputDir = outputDir
	e.Diff = diffengine.New(cfg.Diff.SimilarityThreshold)
	e.MergeOpts = spec.Options{DedupCommands: cfg.Merge.DedupCommands}
	e.Facts = facts.NewStatic(factsDir(change))
	return e, outputDir, nil
}

func openStore(outputDir string) (snapshot.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return sqlite.Open(cfg.Store.Path)
	default:
		return fs.New(outputDir)
	}
}

func factsDir(change string) string {
	if flagFactsDir != "" {
		return flagFactsDir
	}
	return filepath.Join(cfg.ChangeDir(change), "facts")
}

// credentials resolves the device login: username from flag, env or config
// default; password from env or an interactive prompt. The mock transport
// needs neither.
func credentials() (runner.Credentials, error) {
	creds := runner.Credentials{Username: cfg.Device.Username}
	if flagTransport == "mock" {
		return creds, nil
	}

	if pword := os.Getenv(config.EnvDevicePword); pword != "" {
		creds.Password = pword
		return creds, nil
	}

	pword, err := readline.Password("Enter device password: ")
	if err != nil {
		return creds, fmt.Errorf("read device password: %w", err)
	}
	creds.Password = string(pword)
	return creds, nil
}

// loadCommandDoc reads the command document for a change directory, or a
// direct file path when the argument names one.
func loadCommandDoc(arg string) (*spec.Document, string, error) {
	if isYAMLPath(arg) {
		doc, err := spec.Load(arg, spec.KindCommand)
		return doc, filepath.Dir(arg), err
	}
	doc, err := spec.Load(cfg.CommandFile(arg), spec.KindCommand)
	return doc, arg, err
}

func isYAMLPath(arg string) bool {
	return strings.HasSuffix(arg, ".yml") || strings.HasSuffix(arg, ".yaml")
}

// printBatch reports per-host outcomes and returns an error when any host
// failed, so the process exits non-zero.
func printBatch(batch *engine.BatchResult) error {
	failed := 0
	for _, res := range batch.Results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Printf("%s %s: %v\n", errMark("✘"), res.Host, res.Err)
		default:
			for _, artifact := range res.Artifacts {
				fmt.Printf("%s %s: created %s\n", okMark("✔"), res.Host, artifact)
			}
			if len(res.Warnings) > 0 {
				fmt.Printf("%s %s: no commands to run for: %s\n",
					warnMark("⚠"), res.Host, strings.Join(res.Warnings, ", "))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d hosts failed", failed, len(batch.Results))
	}
	return nil
}

// writeMetrics dumps the batch counters when enabled.
func writeMetrics(e *engine.Engine, outputDir string) {
	if !cfg.Metrics.Enabled {
		return
	}
	path := filepath.Join(outputDir, cfg.Metrics.File)
	if err := e.Metrics.WriteTextfile(path); err != nil {
		fmt.Fprintf(os.Stderr, "write metrics: %v\n", err)
	}
}
