package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetLines(t *testing.T) {
	path := writeTempFile(t, "first\n\n# comment\n  second  \n")

	lines, err := NewParser().GetLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestGetLinesKeepComments(t *testing.T) {
	path := writeTempFile(t, "# kept\nvalue\n")

	lines, err := NewParser(WithSkipComments(false)).GetLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"# kept", "value"}, lines)
}

func TestGetLinesErrors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := NewParser().GetLines("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewParser().GetLines(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("exceeds max size", func(t *testing.T) {
		path := writeTempFile(t, strings.Repeat("x", 64)+"\n")
		_, err := NewParser(WithMaxSize(16)).GetLines(path)
		assert.Error(t, err)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bin")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644))
		_, err := NewParser().GetLines(path)
		assert.Error(t, err)
	})
}

func TestGetMap(t *testing.T) {
	content := `NAME="Ubuntu"
ID=ubuntu
VERSION_CODENAME=jammy
# comment
malformed line
PRETTY_NAME="Ubuntu 22.04.4 LTS"
`
	path := writeTempFile(t, content)

	params, err := NewParser(WithVTrimChars(`"'`)).GetMap(path)
	require.NoError(t, err)

	assert.Equal(t, "Ubuntu", params["NAME"])
	assert.Equal(t, "ubuntu", params["ID"])
	assert.Equal(t, "jammy", params["VERSION_CODENAME"])
	assert.Equal(t, "Ubuntu 22.04.4 LTS", params["PRETTY_NAME"])
	assert.NotContains(t, params, "malformed line")
}

func TestGetMapCustomDelimiter(t *testing.T) {
	path := writeTempFile(t, "key: value\nother: thing\n")

	params, err := NewParser(WithKVDelimiter(":")).GetMap(path)
	require.NoError(t, err)
	assert.Equal(t, "value", params["key"])
	assert.Equal(t, "thing", params["other"])
}
