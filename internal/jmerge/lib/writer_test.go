package lib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/jartest"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ingestAll ingests paths in order into a fresh tree and merger.
func ingestAll(t *testing.T, policy ManifestPolicy, paths ...string) (*MergeTree, *ManifestMerger) {
	t.Helper()
	tree := NewMergeTree()
	merger := NewManifestMerger(policy)
	ingestor := NewIngestor(tree, merger, nil, zaptest.NewLogger(t))
	for _, path := range paths {
		require.NoError(t, ingestor.Ingest(path))
	}
	return tree, merger
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"),
		jartest.Manifest("Manifest-Version", "1.0", "Main-Class", "com.a.Main"),
		jartest.Entry{Name: "META-INF/LICENSE", Body: "license a"},
		jartest.Entry{Name: "com/"},
		jartest.Entry{Name: "com/a/Foo.class", Body: "foo"},
	)
	b := jartest.Write(t, filepath.Join(dir, "b.jar"),
		jartest.Manifest("Main-Class", "com.b.Main", "Class-Path", "lib/x.jar"),
		jartest.Entry{Name: "META-INF/LICENSE", Body: "license b"},
		jartest.Entry{Name: "META-INF/NOTICE", Body: "notice b"},
		jartest.Entry{Name: "org/b/Bar.class", Body: "bar"},
	)
	tree, merger := ingestAll(t, ManifestPolicy{}, a, b)

	out := filepath.Join(dir, "out.jar")
	stats, err := NewWriter(zaptest.NewLogger(t)).Write(tree, merger, out)
	require.NoError(t, err)
	assert.Equal(t, WriteStats{Regular: 2, Auxiliary: 2}, stats)

	entries := jartest.Read(t, out)
	assert.Equal(t, []string{
		"META-INF/MANIFEST.MF",
		"com/a/Foo.class",
		"org/b/Bar.class",
		"META-INF/LICENSE",
		"META-INF/NOTICE",
	}, jartest.Names(entries))
	assert.Equal(t, "Manifest-Version: 1.0.0\r\nMain-Class: com.a.Main\r\nClass-Path: lib/x.jar\r\n\r\n", entries[0].Body)
	assert.Equal(t, "foo", entries[1].Body)
	assert.Equal(t, "bar", entries[2].Body)
	assert.Equal(t, "license a", entries[3].Body, "first metadata entry wins")
	assert.Equal(t, "notice b", entries[4].Body)
}

func TestWriter_EntriesAreDeflated(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"), jartest.Entry{Name: "a/A.class", Body: "aaaaaaaaaaaaaaaa"})
	tree, merger := ingestAll(t, ManifestPolicy{}, a)

	out := filepath.Join(dir, "out.jar")
	w := NewWriter(nil)
	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	w.now = func() time.Time { return fixed }
	_, err := w.Write(tree, merger, out)
	require.NoError(t, err)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()
	for _, f := range r.File {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
	}
	assert.True(t, fixed.Equal(r.File[0].Modified), "manifest carries the write time")
}

func TestWriter_DuplicateRegularPathsAreWrittenPerArchive(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"), jartest.Entry{Name: "com/a/Foo.class", Body: "from a"})
	b := jartest.Write(t, filepath.Join(dir, "b.jar"), jartest.Entry{Name: "com/a/Foo.class", Body: "from b"})
	tree, merger := ingestAll(t, ManifestPolicy{}, a, b)

	out := filepath.Join(dir, "out.jar")
	stats, err := NewWriter(nil).Write(tree, merger, out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Regular)

	entries := jartest.Read(t, out)
	require.Len(t, entries, 3)
	assert.Equal(t, jartest.Entry{Name: "com/a/Foo.class", Body: "from a"}, entries[1])
	assert.Equal(t, jartest.Entry{Name: "com/a/Foo.class", Body: "from b"}, entries[2])
}

func TestWriter_MissingDestinationDirectory(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"), jartest.Entry{Name: "a/A.class", Body: "a"})
	tree, merger := ingestAll(t, ManifestPolicy{}, a)

	out := filepath.Join(dir, "missing", "out.jar")
	_, err := NewWriter(nil).Write(tree, merger, out)
	require.Error(t, err)

	var awe *types.ArchiveWriteError
	require.ErrorAs(t, err, &awe)
	assert.Equal(t, out, awe.Path)
	assert.NoFileExists(t, out)
}

func TestWriter_SourceGoneBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"), jartest.Entry{Name: "a/A.class", Body: "a"})
	tree, merger := ingestAll(t, ManifestPolicy{}, a)
	require.NoError(t, os.Remove(a))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))
	out := filepath.Join(outDir, "out.jar")
	_, err := NewWriter(nil).Write(tree, merger, out)
	require.Error(t, err)

	var are *types.ArchiveReadError
	require.ErrorAs(t, err, &are)
	assert.Equal(t, a, are.Path)

	leftovers, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "neither the output nor its temporary file may remain")
}

func TestWriter_ReplacesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	a := jartest.Write(t, filepath.Join(dir, "a.jar"), jartest.Entry{Name: "a/A.class", Body: "a"})
	tree, merger := ingestAll(t, ManifestPolicy{}, a)

	out := filepath.Join(dir, "out.jar")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0644))
	_, err := NewWriter(nil).Write(tree, merger, out)
	require.NoError(t, err)

	assert.Equal(t, []string{"META-INF/MANIFEST.MF", "a/A.class"}, jartest.Names(jartest.Read(t, out)))
}
