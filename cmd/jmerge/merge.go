package main

import (
	"fmt"
	"os"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/commands"
	"github.com/spf13/cobra"
)

// NewMergeCommand creates the 'merge' command for the CLI.
func NewMergeCommand() *cobra.Command {
	var opts commands.MergeOptions

	cmd := &cobra.Command{
		Use:   "merge [-i input]... [-o output] [-c config]",
		Short: "Merge jar archives into one output archive.",
		Long: `Merges the input archives into one output archive. Directory structures
are unified, the main manifest attributes are merged (the first archive to
declare an attribute wins) and META-INF/ content is carried over (the first
archive to contain a path wins).

Inputs are literal paths or patterns with a single '*' in the file name,
such as lib/*.jar. Several inputs may be given in one value separated by ';'.
A configuration document (XML, or YAML with a .yaml/.yml extension) may
declare the inputs, the output, the manifest policy and exclude patterns.`,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := commands.Merge(cmd.Context(), opts)
			for _, w := range res.Warnings() {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
			}
			if !res.Success {
				if err := res.Fatal(); err != nil {
					return fmt.Errorf("merge failed: %w", err)
				}
				return fmt.Errorf("merge failed")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Inputs, "input", "i", nil, "Input archive or single-wildcard pattern (repeatable, ';'-separated)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "The archive to write")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration document")
	cmd.Flags().StringArrayVarP(&opts.Excludes, "exclude", "x", nil, "Gitignore-style pattern of entries to drop (repeatable)")
	cmd.Flags().BoolVar(&opts.StripSignatures, "strip-signatures", false, "Drop jar signature files from META-INF/")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Log every merged entry")

	_ = cmd.RegisterFlagCompletionFunc("input", archiveCompletions)
	_ = cmd.RegisterFlagCompletionFunc("output", archiveCompletions)
	_ = cmd.RegisterFlagCompletionFunc("config", configCompletions)

	return cmd
}
