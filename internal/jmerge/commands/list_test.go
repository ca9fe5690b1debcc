package commands_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/commands"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/jartest"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout to an in-memory buffer while f runs and
// returns what was printed.
func captureStdout(f func()) (string, error) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-outC, nil
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	path := jartest.Write(t, filepath.Join(dir, "a.jar"),
		jartest.Entry{Name: "com/"},
		jartest.Entry{Name: "com/A.class", Body: "some class bytes"},
	)

	t.Run("should list entries with their sizes", func(t *testing.T) {
		var listErr error
		output, err := captureStdout(func() {
			listErr = commands.List(path, commands.ListOptions{})
		})
		require.NoError(t, err)
		require.NoError(t, listErr)

		assert.Contains(t, output, "com/A.class")
		assert.Contains(t, output, "16 B")
		assert.Contains(t, output, "2 entries")
	})

	t.Run("should print short digests", func(t *testing.T) {
		digest, err := lib.GetDigest(strings.NewReader("some class bytes"))
		require.NoError(t, err)

		var listErr error
		output, err := captureStdout(func() {
			listErr = commands.List(path, commands.ListOptions{Digest: true})
		})
		require.NoError(t, err)
		require.NoError(t, listErr)

		assert.Contains(t, output, digest[:16])
		assert.NotContains(t, output, digest, "digest should be shortened")
	})

	t.Run("should report an empty archive", func(t *testing.T) {
		empty := jartest.Write(t, filepath.Join(dir, "empty.jar"))
		output, err := captureStdout(func() {
			require.NoError(t, commands.List(empty, commands.ListOptions{}))
		})
		require.NoError(t, err)
		assert.Contains(t, output, "No entries")
	})

	t.Run("should fail on a missing archive", func(t *testing.T) {
		err := commands.List(filepath.Join(dir, "missing.jar"), commands.ListOptions{})
		assert.Error(t, err)
	})
}
