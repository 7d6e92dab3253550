// Package media stores uploaded images on local disk.
//
// Clients send images inline as data URLs
// ("data:image/png;base64,iVBORw0..."). The store decodes them, checks that
// the bytes really are an image, writes them under Root/<kind>/ with an xid
// file name and hands back the public URL path ("/media/<kind>/<name>").
// The server mounts Root at /media.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// Kinds of stored images; each gets its own sub-directory.
const (
	KindRecipe = "recipes"
	KindAvatar = "avatars"
)

// URLPrefix is the path the media directory is served under.
const URLPrefix = "/media/"

// MaxImageBytes caps a decoded image.
const MaxImageBytes = 10 << 20

var (
	// ErrInvalidImage is returned for input that is not a base64 image.
	ErrInvalidImage = errors.New("media: not a base64-encoded image")
	// ErrTooLarge is returned when the decoded image exceeds MaxImageBytes.
	ErrTooLarge = errors.New("media: image too large")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store writes images below Root.
type Store struct {
	Root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating %s: %w", root, err)
	}
	return &Store{Root: root}, nil
}

// SaveDataURL decodes a data URL (or bare base64) and stores it under kind.
// The returned string is the URL path to serve it from.
func (s *Store) SaveDataURL(kind, data string) (string, error) {
	raw, err := decode(data)
	if err != nil {
		return "", err
	}
	if len(raw) > MaxImageBytes {
		return "", ErrTooLarge
	}

	ext, ok := extensions[http.DetectContentType(raw)]
	if !ok {
		return "", ErrInvalidImage
	}

	dir := filepath.Join(s.Root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: creating %s: %w", dir, err)
	}

	name := xid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("media: writing %s: %w", name, err)
	}
	return path.Join(URLPrefix, kind, name), nil
}

// Delete removes the file behind a URL returned by SaveDataURL. Unknown or
// foreign URLs and already-missing files are ignored.
func (s *Store) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || rel == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}

	err := os.Remove(filepath.Join(s.Root, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: removing %s: %w", url, err)
	}
	return nil
}

func decode(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrInvalidImage
	}

	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasPrefix(header, "image/") || !strings.HasSuffix(header, ";base64") {
			return nil, ErrInvalidImage
		}
		data = payload
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(raw) == 0 {
		return nil, ErrInvalidImage
	}
	return raw, nil
}
