package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToMerge is reported when no input archive survived selection.
	ErrNothingToMerge = errors.New("no input archives to merge")
	// ErrNoOutput is reported when no output archive was configured.
	ErrNoOutput = errors.New("no output archive configured")
)

// ConfigParseError is a recoverable problem with one configured declaration:
// a malformed wildcard, a missing file, or an invalid document value. The
// declaration is skipped and processing continues.
type ConfigParseError struct {
	Decl       string
	Reason     string
	Unparsable bool
	Err        error
}

func (e *ConfigParseError) Error() string {
	msg := fmt.Sprintf("config %q: %s", e.Decl, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// ManifestWarning reports a source manifest that could not be parsed. The
// archive is still merged, it just contributes no main attributes.
type ManifestWarning struct {
	Path string
	Err  error
}

func (e *ManifestWarning) Error() string {
	return fmt.Sprintf("manifest of %s ignored: %v", e.Path, e.Err)
}

func (e *ManifestWarning) Unwrap() error { return e.Err }

// ArchiveReadError is fatal: a source archive could not be opened,
// enumerated or streamed.
type ArchiveReadError struct {
	Path string
	Err  error
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("failed to read archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveReadError) Unwrap() error { return e.Err }

// ArchiveWriteError is fatal: the destination archive could not be created
// or written. No output file is left behind.
type ArchiveWriteError struct {
	Path string
	Err  error
}

func (e *ArchiveWriteError) Error() string {
	return fmt.Sprintf("failed to write archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveWriteError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err is a warning that does not abort a merge.
func IsRecoverable(err error) bool {
	var cfg *ConfigParseError
	if errors.As(err, &cfg) {
		return true
	}
	var mw *ManifestWarning
	return errors.As(err, &mw)
}
