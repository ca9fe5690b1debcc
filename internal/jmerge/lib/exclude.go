package lib

import (
	"strings"

	"github.com/denormal/go-gitignore"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
)

// DefaultExcludePatterns are applied when a merge is asked to drop jar
// signature files, which no longer verify once archives are merged.
var DefaultExcludePatterns = []string{
	MetaInfPrefix + "*.SF",
	MetaInfPrefix + "*.DSA",
	MetaInfPrefix + "*.RSA",
	MetaInfPrefix + "*.EC",
}

// Excluder drops entries matching gitignore-style patterns, evaluated
// against the entry path relative to the archive root. A nil Excluder
// excludes nothing.
type Excluder struct {
	matcher gitignore.GitIgnore
}

// NewExcluder compiles patterns. Pattern errors are returned as warnings and
// the offending pattern is skipped; the result is nil when no pattern remains.
func NewExcluder(patterns []string) (*Excluder, []error) {
	var finalPatterns []string
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Entry names never contain backslashes, patterns written on Windows might.
		trimmed = strings.ReplaceAll(trimmed, "\\", "/")
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed = trimmed + "**"
		}
		finalPatterns = append(finalPatterns, trimmed)
	}
	if len(finalPatterns) == 0 {
		return nil, nil
	}

	var warnings []error
	matcher := gitignore.New(
		strings.NewReader(strings.Join(finalPatterns, "\n")),
		"",
		func(err gitignore.Error) bool {
			warnings = append(warnings, &types.ConfigParseError{
				Decl:   "exclude",
				Reason: "invalid pattern",
				Err:    err,
			})
			return true
		},
	)
	if matcher == nil {
		return nil, warnings
	}
	return &Excluder{matcher: matcher}, warnings
}

// Excluded reports whether the entry at path is dropped.
func (e *Excluder) Excluded(path string) bool {
	if e == nil {
		return false
	}
	match := e.matcher.Relative(path, false)
	if match == nil {
		return false
	}
	return match.Ignore()
}
