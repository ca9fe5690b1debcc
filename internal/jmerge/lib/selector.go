package lib

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// Wildcard is the only pattern character a file reference may contain.
const Wildcard = "*"

// Selector resolves configured file references into existing archive files.
type Selector struct {
	fs     afs.Service
	logger *zap.Logger
}

// NewSelector returns a Selector backed by the local file system. logger may be nil.
func NewSelector(logger *zap.Logger) *Selector {
	return &Selector{fs: afs.New(), logger: orNop(logger)}
}

// Resolve expands pattern relative to baseDir. A reference without a
// wildcard names one existing regular file. A reference with exactly one
// wildcard in its final segment selects every archive in the named
// directory whose file name matches. Any other reference is unparsable.
//
// The error, if any, is always a *types.ConfigParseError: the caller skips
// this reference and carries on.
func (s *Selector) Resolve(ctx context.Context, baseDir, pattern string) ([]string, error) {
	ref := filepath.ToSlash(strings.TrimSpace(pattern))
	if ref == "" {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "empty file reference"}
	}
	switch strings.Count(ref, Wildcard) {
	case 0:
		return s.resolveLiteral(ctx, baseDir, pattern, ref)
	case 1:
		return s.resolveWildcard(ctx, baseDir, pattern, ref)
	default:
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "more than one wildcard", Unparsable: true}
	}
}

func (s *Selector) resolveLiteral(ctx context.Context, baseDir, pattern, ref string) ([]string, error) {
	path := ResolvePath(baseDir, ref)
	exists, err := s.fs.Exists(ctx, fileURL(path))
	if err != nil {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "cannot access file", Err: err}
	}
	if !exists {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "not found or is not a file"}
	}
	object, err := s.fs.Object(ctx, fileURL(path))
	if err != nil {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "cannot access file", Err: err}
	}
	if object.IsDir() {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "not found or is not a file"}
	}
	return []string{path}, nil
}

// resolveWildcard splits ref into a directory, a literal name prefix and a
// literal suffix around the wildcard.
func (s *Selector) resolveWildcard(ctx context.Context, baseDir, pattern, ref string) ([]string, error) {
	star := strings.Index(ref, Wildcard)
	slash := strings.LastIndex(ref, "/")
	if star < slash {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "wildcard outside the file name", Unparsable: true}
	}

	dirRef, namePrefix := "", ref[:star]
	if slash >= 0 {
		dirRef, namePrefix = ref[:slash], ref[slash+1:star]
	}
	suffix := ref[star+1:]
	matcher := regexp.MustCompile("^" + regexp.QuoteMeta(namePrefix) + ".*" + regexp.QuoteMeta(suffix) + "$")

	dir := baseDir
	if dirRef != "" {
		dir = ResolvePath(baseDir, dirRef)
	}
	dirURL := fileURL(dir)
	object, err := s.fs.Object(ctx, dirURL)
	if err != nil || !object.IsDir() {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "directory does not exist or is not a directory", Err: err}
	}

	objects, err := s.fs.List(ctx, dirURL)
	if err != nil {
		return nil, &types.ConfigParseError{Decl: pattern, Reason: "cannot list directory", Err: err}
	}
	var names []string
	for _, o := range objects {
		// List reports the directory itself alongside its children.
		if o.IsDir() || !HasArchiveExt(o.Name()) {
			continue
		}
		if matcher.MatchString(o.Name()) {
			names = append(names, o.Name())
		}
	}
	sort.Strings(names)

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
		s.logger.Debug("selected archive", zap.String("pattern", pattern), zap.String("file", files[i]))
	}
	return files, nil
}

func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file://" + filepath.ToSlash(path)
}
