package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/lib"
)

// ListOptions holds the configuration for the list command.
type ListOptions struct {
	Digest bool
}

// List is the main function for the 'list' command. It prints the entry
// table of one archive.
func List(archivePath string, opts ListOptions) error {
	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("could not resolve absolute path for %s: %w", archivePath, err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("archive does not exist: %s", absPath)
	}

	entries, err := lib.ListArchive(absPath, opts.Digest)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No entries in \"%s\".\n", absPath)
		return nil
	}

	fmt.Printf("Entries of \"%s\":\n", absPath)
	var total uint64
	for _, e := range entries {
		total += e.Size
		if opts.Digest {
			digest := e.Digest
			if digest == "" {
				digest = "-"
			}
			fmt.Printf("%-12s %-16s %s\n", humanize.IBytes(e.Size), shortDigest(digest), e.Name)
		} else {
			fmt.Printf("%-12s %s\n", humanize.IBytes(e.Size), e.Name)
		}
	}

	fmt.Printf("\n%d entries, %s uncompressed\n", len(entries), humanize.IBytes(total))
	return nil
}

func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
