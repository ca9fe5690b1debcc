package main

import (
	"github.com/spf13/cobra"
)

// archiveCompletions restricts file completion to jar archives.
func archiveCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if cmd.Name() == "list" && len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"jar"}, cobra.ShellCompDirectiveFilterFileExt
}

// configCompletions restricts file completion to configuration documents.
func configCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"xml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
