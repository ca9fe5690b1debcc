package lib

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Ingestor streams the entry tables of source archives into a MergeTree and
// a ManifestMerger, one archive at a time.
type Ingestor struct {
	tree     *MergeTree
	merger   *ManifestMerger
	excluder *Excluder
	logger   *zap.Logger
	warnings []error
}

// NewIngestor returns an Ingestor feeding tree and merger. excluder and
// logger may be nil.
func NewIngestor(tree *MergeTree, merger *ManifestMerger, excluder *Excluder, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		tree:     tree,
		merger:   merger,
		excluder: excluder,
		logger:   orNop(logger),
	}
}

// Warnings returns the recoverable problems met so far.
func (in *Ingestor) Warnings() []error {
	return in.warnings
}

// Ingest opens the archive at path, adds every entry in central-directory
// order and closes the archive again. Any failure to open or enumerate the
// archive is returned as a *types.ArchiveReadError.
func (in *Ingestor) Ingest(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return &types.ArchiveReadError{Path: path, Err: err}
	}
	defer reader.Close()

	attrs, err := readMainAttributes(&reader.Reader)
	if err != nil {
		var mw *types.ManifestWarning
		if !errors.As(err, &mw) {
			return &types.ArchiveReadError{Path: path, Err: err}
		}
		mw.Path = path
		in.warnings = append(in.warnings, mw)
		in.logger.Warn("ignoring source manifest", zap.String("archive", path), zap.Error(mw.Err))
	}

	source := in.tree.AddSource(path, attrs)
	log := in.logger.With(zap.String("archive", path))
	log.Debug("ingesting archive", zap.Int("entries", len(reader.File)), zap.Int("attributes", len(attrs)))

	for i, f := range reader.File {
		if IsDirectoryMarker(f.Name) {
			continue
		}
		entryPath := NormalizePath(f.Name)
		if entryPath == "" || IsManifest(entryPath) {
			continue
		}
		if in.excluder.Excluded(entryPath) {
			log.Debug("excluded entry", zap.String("path", entryPath))
			continue
		}

		ref := types.EntryRef{
			Source:   source,
			Index:    i,
			Name:     f.Name,
			Segments: DecodePath(entryPath),
		}

		if IsAuxiliary(entryPath) {
			if !in.merger.MergeAuxiliary(AuxiliaryEntry{Path: entryPath, Ref: ref}) {
				log.Debug("dropped duplicate metadata entry", zap.String("path", entryPath))
			}
			continue
		}

		_, rootCreated, err := in.tree.Insert(ref)
		if err != nil {
			return &types.ArchiveReadError{Path: path, Err: err}
		}
		if rootCreated {
			in.merger.MergeMainAttributes(attrs)
		}
	}
	return nil
}

// readMainAttributes returns the main section of the archive's manifest, or
// nil when it has none. Undecodable manifests come back as a
// *types.ManifestWarning so the archive can still be merged.
func readMainAttributes(reader *zip.Reader) ([]types.Attribute, error) {
	f := findManifest(reader)
	if f == nil {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	attrs, err := ParseManifest(rc)
	switch {
	case err == nil:
		return attrs, nil
	case errors.Is(err, ErrManifestHeader), errors.Is(err, ErrManifestContinuation), errors.Is(err, bufio.ErrTooLong):
		return nil, &types.ManifestWarning{Err: err}
	default:
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
}

// findManifest prefers an exact name match and falls back to a
// case-insensitive one.
func findManifest(reader *zip.Reader) *zip.File {
	var fallback *zip.File
	for _, f := range reader.File {
		if f.Name == ManifestPath {
			return f
		}
		if fallback == nil && IsManifest(f.Name) {
			fallback = f
		}
	}
	return fallback
}
