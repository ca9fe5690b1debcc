package lib

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
)

// maxManifestLine is the byte limit of one manifest line, excluding the
// line terminator.
const maxManifestLine = 72

var (
	ErrManifestContinuation = errors.New("continuation line without a header")
	ErrManifestHeader       = errors.New("invalid manifest header")
)

// ValidAttributeName reports whether name is a legal manifest header name:
// 1 to 70 characters of [A-Za-z0-9_-].
func ValidAttributeName(name string) bool {
	if len(name) == 0 || len(name) > 70 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// ParseManifest reads the main section of a jar manifest. Lines may end in
// CRLF, LF or CR; a line starting with a single space continues the previous
// header. Reading stops at the first blank line. A header repeated within
// the section keeps its first position and takes the later value.
func ParseManifest(r io.Reader) ([]types.Attribute, error) {
	var attrs []types.Attribute
	index := make(map[string]int)
	last := -1
	lineNo := 0

	scanner := bufio.NewScanner(r)
	scanner.Split(scanManifestLines)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			break
		}
		if line[0] == ' ' {
			if last < 0 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrManifestContinuation)
			}
			attrs[last].Value += line[1:]
			continue
		}
		sep := strings.Index(line, ": ")
		if sep <= 0 || !ValidAttributeName(line[:sep]) {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrManifestHeader, line)
		}
		name, value := line[:sep], line[sep+2:]
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			attrs[i].Value = value
			last = i
			continue
		}
		index[key] = len(attrs)
		last = len(attrs)
		attrs = append(attrs, types.Attribute{Name: name, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}

// scanManifestLines is a bufio.SplitFunc accepting CRLF, LF and CR terminators.
func scanManifestLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// A CR at the end of the buffer may be the first half of a CRLF.
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// WriteManifest writes attrs as a manifest main section followed by the
// terminating blank line. Lines are wrapped at 72 bytes without splitting a
// UTF-8 sequence.
func WriteManifest(w io.Writer, attrs []types.Attribute) error {
	bw := bufio.NewWriter(w)
	for _, attr := range attrs {
		if err := writeHeader(bw, attr.Name+": "+attr.Value); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeHeader(w *bufio.Writer, line string) error {
	limit := maxManifestLine
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if _, err := w.WriteString(line[:cut] + "\r\n "); err != nil {
			return err
		}
		line = line[cut:]
		// The leading space of a continuation counts towards the limit.
		limit = maxManifestLine - 1
	}
	_, err := w.WriteString(line + "\r\n")
	return err
}
