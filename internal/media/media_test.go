package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveDataURL(t *testing.T) {
	s := newTestStore(t)

	url, err := s.SaveDataURL(KindRecipe, pngDataURL())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/media/recipes/"), "url = %s", url)
	assert.True(t, strings.HasSuffix(url, ".png"), "url = %s", url)

	stored, err := os.ReadFile(filepath.Join(s.Root, strings.TrimPrefix(url, URLPrefix)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestSaveDataURL_BareBase64(t *testing.T) {
	s := newTestStore(t)

	url, err := s.SaveDataURL(KindAvatar, base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/avatars/"))
}

func TestSaveDataURL_Rejects(t *testing.T) {
	s := newTestStore(t)
	text := base64.StdEncoding.EncodeToString([]byte("just some text, not an image"))

	tests := map[string]string{
		"empty":           "",
		"not base64":      "data:image/png;base64,@@@",
		"not image mime":  "data:text/plain;base64," + text,
		"missing comma":   "data:image/png;base64",
		"text bytes":      "data:image/png;base64," + text,
		"not base64 flag": "data:image/png," + base64.StdEncoding.EncodeToString(pngHeader),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.SaveDataURL(KindRecipe, input)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	url, err := s.SaveDataURL(KindRecipe, pngDataURL())
	require.NoError(t, err)

	require.NoError(t, s.Delete(url))
	_, err = os.Stat(filepath.Join(s.Root, strings.TrimPrefix(url, URLPrefix)))
	assert.True(t, os.IsNotExist(err))

	// Missing files, foreign URLs and traversal attempts are no-ops.
	assert.NoError(t, s.Delete(url))
	assert.NoError(t, s.Delete("https://example.com/a.png"))
	assert.NoError(t, s.Delete("/media/../../etc/passwd"))
}
