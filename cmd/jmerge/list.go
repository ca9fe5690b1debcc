package main

import (
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/commands"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	var opts commands.ListOptions

	cmd := &cobra.Command{
		Use:               "list <archive>",
		Short:             "List the entries of an archive.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: archiveCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.List(args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Digest, "digest", "d", false, "Show the BLAKE3 digest of each entry's content")

	return cmd
}
