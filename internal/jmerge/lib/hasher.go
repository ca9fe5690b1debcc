package lib

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

// GetDigest calculates the BLAKE3 digest of a stream and returns it as a
// lowercase hex-encoded string. The stream is read to its end, never
// buffered whole.
func GetDigest(r io.Reader) (string, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// EntryInfo describes one entry of an archive on disk.
type EntryInfo struct {
	Name   string
	Size   uint64
	Digest string
}

// ListArchive returns the entries of the archive at path in central
// directory order. With digest set, each entry's decompressed content is
// hashed; two entries with equal digests are content-identical regardless of
// how they were compressed.
func ListArchive(path string, digest bool) ([]EntryInfo, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	entries := make([]EntryInfo, 0, len(reader.File))
	for _, f := range reader.File {
		info := EntryInfo{Name: f.Name, Size: f.UncompressedSize64}
		if digest && !IsDirectoryMarker(f.Name) {
			info.Digest, err = entryDigest(f)
			if err != nil {
				return nil, fmt.Errorf("failed to hash %s: %w", f.Name, err)
			}
		}
		entries = append(entries, info)
	}
	return entries, nil
}

func entryDigest(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return GetDigest(rc)
}
