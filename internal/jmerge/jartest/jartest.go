// Package jartest builds and reads small jar archives for tests.
package jartest

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// Entry is one archive entry. A Name ending in "/" is a directory marker.
type Entry struct {
	Name string
	Body string
}

// Manifest returns a META-INF/MANIFEST.MF entry declaring the given
// name/value pairs in order.
func Manifest(pairs ...string) Entry {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pairs[i] + ": " + pairs[i+1] + "\r\n")
	}
	b.WriteString("\r\n")
	return Entry{Name: "META-INF/MANIFEST.MF", Body: b.String()}
}

// Write creates an archive at path holding entries in the given order and
// returns path.
func Write(t testing.TB, path string, entries ...Entry) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err, "Failed to create archive")
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		method := zip.Deflate
		if strings.HasSuffix(e.Name, "/") {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		require.NoError(t, err, "Failed to add %s", e.Name)
		_, err = io.WriteString(w, e.Body)
		require.NoError(t, err, "Failed to write %s", e.Name)
	}
	require.NoError(t, zw.Close(), "Failed to finish archive")
	return path
}

// Read returns the entries of the archive at path in order, with their
// decompressed bodies.
func Read(t testing.TB, path string) []Entry {
	t.Helper()

	r, err := zip.OpenReader(path)
	require.NoError(t, err, "Failed to open archive %s", path)
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err, "Failed to open %s", f.Name)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err, "Failed to read %s", f.Name)
		entries = append(entries, Entry{Name: f.Name, Body: string(body)})
	}
	return entries
}

// Names returns the entry names of entries.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
