// Package commands contains the command-line interface for the jmerge application.
package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/lib"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"go.uber.org/zap"
)

// MergeOptions holds the configuration for the merge command.
type MergeOptions struct {
	// Inputs are file references, literal or single-wildcard. One value may
	// hold several references separated by ';'. They resolve against BaseDir
	// and are merged after the configuration document's inputs.
	Inputs []string
	// Output overrides the configuration document's output.
	Output string
	// ConfigPath is an optional XML or YAML configuration document.
	ConfigPath string
	// Excludes are gitignore-style patterns of entries to drop.
	Excludes []string
	// StripSignatures drops jar signature files from META-INF/.
	StripSignatures bool
	// BaseDir defaults to the working directory.
	BaseDir string
	Debug   bool
	// Logger defaults to a stderr logger honouring Debug.
	Logger *zap.Logger
}

// Result is the outcome of one merge run. Errors holds every warning and
// fatal error met; Success is true only when no fatal error occurred and
// the output archive was published.
type Result struct {
	Success bool
	Output  string
	Inputs  []string
	Stats   lib.WriteStats
	Errors  []error
}

// Warnings returns the recoverable errors of the run.
func (r Result) Warnings() []error {
	var warnings []error
	for _, err := range r.Errors {
		if types.IsRecoverable(err) {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Fatal returns the first error that aborted the run, or nil.
func (r Result) Fatal() error {
	for _, err := range r.Errors {
		if !types.IsRecoverable(err) {
			return err
		}
	}
	return nil
}

// splitReferences splits ';'-separated launcher values into single references.
func splitReferences(values []string) []string {
	var refs []string
	for _, v := range values {
		for _, ref := range strings.Split(v, ";") {
			if ref = strings.TrimSpace(ref); ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Merge is the main function for the 'merge' command. It selects the input
// archives, ingests them one after another and writes the merged archive.
// It never runs concurrently with itself on shared state: everything it
// builds lives for this call only.
func Merge(ctx context.Context, opts MergeOptions) Result {
	var res Result

	baseDir := opts.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("could not resolve working directory: %w", err))
			return res
		}
		baseDir = wd
	}

	// 1. Load the configuration document, if any. A broken document is a
	// warning; the launch parameters may still describe a complete merge.
	var cfg *lib.Config
	if opts.ConfigPath != "" {
		loaded, err := lib.LoadConfig(ctx, lib.ResolvePath(baseDir, opts.ConfigPath), lib.NewSelector(opts.Logger))
		if err != nil {
			res.Errors = append(res.Errors, err)
		} else {
			cfg = loaded
			res.Errors = append(res.Errors, cfg.Warnings...)
		}
	}
	if cfg == nil {
		cfg = &lib.Config{}
	}

	logger := opts.Logger
	if logger == nil {
		l, err := lib.NewLogger(opts.Debug || cfg.Debug)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("could not create logger: %w", err))
			return res
		}
		defer l.Sync()
		logger = l
	}
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	// 2. Resolve the launch parameters on top of the configuration.
	selector := lib.NewSelector(logger)
	inputs := append([]string{}, cfg.Inputs...)
	for _, ref := range splitReferences(opts.Inputs) {
		files, err := selector.Resolve(ctx, baseDir, ref)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		inputs = append(inputs, files...)
	}
	res.Inputs = inputs

	output := cfg.Output
	if opts.Output != "" {
		output = lib.ResolvePath(baseDir, opts.Output)
	}
	res.Output = output

	for _, err := range res.Warnings() {
		logger.Warn("skipped declaration", zap.Error(err))
	}
	if len(inputs) == 0 {
		res.Errors = append(res.Errors, types.ErrNothingToMerge)
		return res
	}
	if output == "" {
		res.Errors = append(res.Errors, types.ErrNoOutput)
		return res
	}

	excludes := append([]string{}, cfg.Excludes...)
	excludes = append(excludes, opts.Excludes...)
	if opts.StripSignatures {
		excludes = append(excludes, lib.DefaultExcludePatterns...)
	}
	excluder, warnings := lib.NewExcluder(excludes)
	res.Errors = append(res.Errors, warnings...)

	fmt.Printf("📦 Merging %d archives into \"%s\"...\n", len(inputs), output)

	// 3. Ingest every archive in order. Each one is closed before the next opens.
	tree := lib.NewMergeTree()
	merger := lib.NewManifestMerger(cfg.Policy)
	ingestor := lib.NewIngestor(tree, merger, excluder, logger)
	for _, input := range inputs {
		if err := ingestor.Ingest(input); err != nil {
			res.Errors = append(res.Errors, ingestor.Warnings()...)
			res.Errors = append(res.Errors, err)
			return res
		}
	}
	res.Errors = append(res.Errors, ingestor.Warnings()...)
	fmt.Printf("   - Ingested %d archives, %d directories.\n", len(tree.Sources()), len(tree.Nodes()))

	// 4. Write the merged archive.
	stats, err := lib.NewWriter(logger).Write(tree, merger, output)
	if err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}
	res.Stats = stats
	res.Success = true

	fmt.Println("✅ Merge complete!")
	fmt.Printf("   - Entries: %d regular, %d metadata\n", stats.Regular, stats.Auxiliary)
	return res
}
