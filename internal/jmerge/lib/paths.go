// Package lib contains the core, reusable services for the jmerge application.
package lib

import (
	"path/filepath"
	"strings"
)

// --- Constants ---

// MetaInfPrefix is the reserved metadata directory of a jar archive.
const MetaInfPrefix = "META-INF/"

// ManifestPath is the canonical manifest entry. It is never copied from a
// source archive; the merged one is synthesized at write time.
const ManifestPath = MetaInfPrefix + "MANIFEST.MF"

// ArchiveExt is the extension wildcard selection filters on.
const ArchiveExt = ".jar"

// ManifestVersionAttr is the attribute injected into every output manifest.
const ManifestVersionAttr = "Manifest-Version"

// ManifestVersion is the value of ManifestVersionAttr. It overrides whatever
// the source manifests declare.
const ManifestVersion = "1.0.0"

// --- Path Helper Functions ---
// Entry names always use forward slashes, whatever the host OS.

// DecodePath splits an entry name into its non-empty segments.
func DecodePath(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '/' })
}

// JoinPath joins a directory path and an entry name. An empty directory is
// the archive's top level.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// NormalizePath returns name with empty segments and any trailing slash removed.
func NormalizePath(name string) string {
	return strings.Join(DecodePath(name), "/")
}

// IsDirectoryMarker reports whether the entry name denotes a directory.
func IsDirectoryMarker(name string) bool {
	return strings.HasSuffix(name, "/")
}

// IsManifest reports whether the normalized path is the canonical manifest.
// Jar readers look the manifest up case-insensitively, so this does too.
func IsManifest(path string) bool {
	return strings.EqualFold(path, ManifestPath)
}

// IsAuxiliary reports whether the normalized path lives in the metadata directory.
func IsAuxiliary(path string) bool {
	return strings.HasPrefix(path, MetaInfPrefix)
}

// HasArchiveExt reports whether the file name carries the archive extension.
func HasArchiveExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ArchiveExt)
}

// ResolvePath resolves a slash-separated reference against baseDir.
// Absolute references are returned cleaned.
func ResolvePath(baseDir, ref string) string {
	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
