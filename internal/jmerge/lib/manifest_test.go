package lib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []types.Attribute
	}{
		{
			name:  "CRLF line endings",
			input: "Manifest-Version: 1.0\r\nMain-Class: com.a.Main\r\n\r\n",
			expected: []types.Attribute{
				{Name: "Manifest-Version", Value: "1.0"},
				{Name: "Main-Class", Value: "com.a.Main"},
			},
		},
		{
			name:     "LF line endings without trailing blank line",
			input:    "Main-Class: com.a.Main\nCreated-By: test",
			expected: []types.Attribute{{Name: "Main-Class", Value: "com.a.Main"}, {Name: "Created-By", Value: "test"}},
		},
		{
			name:     "CR line endings",
			input:    "Main-Class: com.a.Main\rCreated-By: test\r\r",
			expected: []types.Attribute{{Name: "Main-Class", Value: "com.a.Main"}, {Name: "Created-By", Value: "test"}},
		},
		{
			name:     "Continuation lines are joined",
			input:    "Class-Path: lib/a.jar\r\n  lib/b.jar\r\n\r\n",
			expected: []types.Attribute{{Name: "Class-Path", Value: "lib/a.jar lib/b.jar"}},
		},
		{
			name:     "Per-entry sections are not read",
			input:    "Main-Class: A\r\n\r\nName: com/a/Foo.class\r\nSHA-256-Digest: xyz\r\n\r\n",
			expected: []types.Attribute{{Name: "Main-Class", Value: "A"}},
		},
		{
			name:     "Repeated header keeps first position and last value",
			input:    "Main-Class: A\nCreated-By: x\nmain-class: B\n",
			expected: []types.Attribute{{Name: "Main-Class", Value: "B"}, {Name: "Created-By", Value: "x"}},
		},
		{
			name:     "Empty value",
			input:    "Sealed: \n",
			expected: []types.Attribute{{Name: "Sealed", Value: ""}},
		},
		{
			name:     "Empty manifest",
			input:    "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attrs, err := ParseManifest(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, attrs)
		})
	}
}

func TestParseManifest_Errors(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(" leading continuation\n"))
	assert.ErrorIs(t, err, ErrManifestContinuation)

	_, err = ParseManifest(strings.NewReader("Main-Class com.a.Main\n"))
	assert.ErrorIs(t, err, ErrManifestHeader)

	_, err = ParseManifest(strings.NewReader("Bad Name: x\n"))
	assert.ErrorIs(t, err, ErrManifestHeader)
}

func TestWriteManifest(t *testing.T) {
	var buf bytes.Buffer
	err := WriteManifest(&buf, []types.Attribute{
		{Name: "Manifest-Version", Value: "1.0.0"},
		{Name: "Main-Class", Value: "com.a.Main"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Manifest-Version: 1.0.0\r\nMain-Class: com.a.Main\r\n\r\n", buf.String())
}

func TestWriteManifest_WrapsLongLines(t *testing.T) {
	long := strings.Repeat("lib/dependency.jar ", 20)
	attrs := []types.Attribute{{Name: "Class-Path", Value: long}}

	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, attrs))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n\r\n"), "\r\n")
	require.Greater(t, len(lines), 1, "long header should be wrapped")
	for i, line := range lines {
		assert.LessOrEqual(t, len(line), maxManifestLine, "line %d too long", i)
		if i > 0 {
			assert.True(t, strings.HasPrefix(line, " "), "continuation line %d must start with a space", i)
		}
	}

	parsed, err := ParseManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, attrs, parsed)
}

func TestWriteManifest_DoesNotSplitMultiByteCharacters(t *testing.T) {
	value := strings.Repeat("é", 60)
	attrs := []types.Attribute{{Name: "Implementation-Vendor", Value: value}}

	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, attrs))
	for _, line := range strings.Split(buf.String(), "\r\n") {
		assert.True(t, strings.ToValidUTF8(line, "?") == line, "line %q holds a split character", line)
	}

	parsed, err := ParseManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, attrs, parsed)
}

func TestValidAttributeName(t *testing.T) {
	assert.True(t, ValidAttributeName("Main-Class"))
	assert.True(t, ValidAttributeName("X_Custom-1"))
	assert.False(t, ValidAttributeName(""))
	assert.False(t, ValidAttributeName("Has Space"))
	assert.False(t, ValidAttributeName("Colon:"))
	assert.False(t, ValidAttributeName(strings.Repeat("a", 71)))
}
