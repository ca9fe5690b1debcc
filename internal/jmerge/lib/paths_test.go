package lib

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, []string{"com", "a", "Foo.class"}, DecodePath("com/a/Foo.class"))
	assert.Equal(t, []string{"com", "a"}, DecodePath("/com//a/"))
	assert.Empty(t, DecodePath(""))

	assert.Equal(t, "Foo.class", JoinPath("", "Foo.class"))
	assert.Equal(t, "com/a/Foo.class", JoinPath("com/a", "Foo.class"))

	assert.True(t, IsDirectoryMarker("com/a/"))
	assert.False(t, IsDirectoryMarker("com/a"))

	assert.True(t, IsManifest("META-INF/MANIFEST.MF"))
	assert.True(t, IsManifest("meta-inf/manifest.mf"))
	assert.False(t, IsManifest("META-INF/MANIFEST.MF.bak"))

	assert.True(t, IsAuxiliary("META-INF/LICENSE"))
	assert.False(t, IsAuxiliary("com/META-INF/LICENSE"))

	assert.True(t, HasArchiveExt("a.jar"))
	assert.True(t, HasArchiveExt("A.JAR"))
	assert.False(t, HasArchiveExt("a.zip"))
}

func TestResolvePath(t *testing.T) {
	base := filepath.Join("/work", "project")
	assert.Equal(t, filepath.Join(base, "lib", "a.jar"), ResolvePath(base, "lib/a.jar"))
	abs := filepath.Join(string(filepath.Separator), "opt", "a.jar")
	assert.Equal(t, abs, ResolvePath(base, abs))
}
