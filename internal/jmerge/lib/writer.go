package lib

import (
	"fmt"
	"io"
	"time"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Writer serializes a MergeTree and its merged manifest into one archive.
type Writer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter returns a Writer. logger may be nil.
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: orNop(logger), now: time.Now}
}

// WriteStats summarizes one written archive.
type WriteStats struct {
	Regular   int
	Auxiliary int
}

// Write writes the manifest, then every node's entries in node creation
// order, then the auxiliary entries, to destination. The archive is built in
// a temporary file and renamed into place only when complete, so a failed
// write leaves no destination file behind. Failures writing the output are
// *types.ArchiveWriteError; failures streaming a source entry are
// *types.ArchiveReadError.
func (w *Writer) Write(tree *MergeTree, merger *ManifestMerger, destination string) (WriteStats, error) {
	var stats WriteStats
	out, err := createAtomic(destination)
	if err != nil {
		return stats, &types.ArchiveWriteError{Path: destination, Err: err}
	}
	defer out.Discard()

	zw := zip.NewWriter(out)
	cursor := &sourceCursor{tree: tree}
	defer cursor.Close()

	if err := w.writeManifest(zw, merger.BuildOutputManifest()); err != nil {
		return stats, &types.ArchiveWriteError{Path: destination, Err: err}
	}

	for _, node := range tree.Nodes() {
		for _, entry := range node.Entries {
			path := JoinPath(node.Path, entry.Name)
			w.logger.Debug("writing entry", zap.String("dir", node.Path), zap.String("path", path))
			if err := copyEntry(zw, cursor, path, entry.Ref, destination); err != nil {
				return stats, err
			}
			stats.Regular++
		}
	}

	for _, aux := range merger.Auxiliary() {
		w.logger.Debug("writing metadata entry", zap.String("path", aux.Path))
		if err := copyEntry(zw, cursor, aux.Path, aux.Ref, destination); err != nil {
			return stats, err
		}
		stats.Auxiliary++
	}
	cursor.Close()

	if err := zw.Close(); err != nil {
		return stats, &types.ArchiveWriteError{Path: destination, Err: err}
	}
	if err := out.Publish(); err != nil {
		return stats, &types.ArchiveWriteError{Path: destination, Err: err}
	}
	return stats, nil
}

func (w *Writer) writeManifest(zw *zip.Writer, attrs []types.Attribute) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     ManifestPath,
		Method:   zip.Deflate,
		Modified: w.now(),
	})
	if err != nil {
		return err
	}
	return WriteManifest(fw, attrs)
}

// copyEntry streams one source entry into zw under path. The content is
// decompressed and deflated again.
func copyEntry(zw *zip.Writer, cursor *sourceCursor, path string, ref types.EntryRef, destination string) error {
	src, err := cursor.File(ref)
	if err != nil {
		return err
	}
	rc, err := src.Open()
	if err != nil {
		return &types.ArchiveReadError{Path: cursor.path, Err: fmt.Errorf("failed to open %s: %w", ref.Name, err)}
	}
	defer rc.Close()

	hdr := &zip.FileHeader{
		Name:           path,
		Comment:        src.Comment,
		Method:         zip.Deflate,
		Modified:       src.Modified,
		CreatorVersion: src.CreatorVersion,
		ExternalAttrs:  src.ExternalAttrs,
	}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return &types.ArchiveWriteError{Path: destination, Err: err}
	}

	tw := &trackingWriter{w: dst}
	if _, err := io.Copy(tw, rc); err != nil {
		if tw.err != nil {
			return &types.ArchiveWriteError{Path: destination, Err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return &types.ArchiveReadError{Path: cursor.path, Err: fmt.Errorf("failed to read %s: %w", ref.Name, err)}
	}
	return nil
}

// trackingWriter remembers whether a copy failed on the write side.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// sourceCursor keeps at most one source archive open while writing. Entries
// come mostly grouped by archive, so an archive is reopened only when the
// next entry belongs to a different one.
type sourceCursor struct {
	tree   *MergeTree
	id     types.SourceID
	path   string
	reader *zip.ReadCloser
}

// File returns the zip.File ref points at, opening its archive if needed.
func (c *sourceCursor) File(ref types.EntryRef) (*zip.File, error) {
	if c.reader == nil || c.id != ref.Source {
		c.Close()
		source, err := c.tree.Source(ref.Source)
		if err != nil {
			return nil, &types.ArchiveReadError{Path: ref.Name, Err: err}
		}
		reader, err := zip.OpenReader(source.Path)
		if err != nil {
			return nil, &types.ArchiveReadError{Path: source.Path, Err: err}
		}
		c.reader, c.id, c.path = reader, ref.Source, source.Path
	}
	if ref.Index < 0 || ref.Index >= len(c.reader.File) || c.reader.File[ref.Index].Name != ref.Name {
		return nil, &types.ArchiveReadError{
			Path: c.path,
			Err:  fmt.Errorf("entry %s moved since the archive was ingested", ref.Name),
		}
	}
	return c.reader.File[ref.Index], nil
}

// Close releases the open archive, if any.
func (c *sourceCursor) Close() {
	if c.reader != nil {
		_ = c.reader.Close()
		c.reader = nil
	}
}
