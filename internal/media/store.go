// Package media stores uploaded attachments on local disk and resolves them
// into transport-ready media objects with a public URL. Retention and
// cleanup of stored files are deliberately out of scope here; the store only
// guarantees a stable path and a derivable URL for the lifetime of a send.
package media

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// publicPrefix is the URL path under which the media directory is served.
const publicPrefix = "/uploaded-media"

// Store writes multipart uploads into a single flat directory using
// collision-free generated names, preserving the original extension so the
// recipient-facing filename keeps its type hint.
type Store struct {
	dir string
}

// NewStore ensures dir exists and returns a store rooted at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// Save persists one uploaded file and returns the stored (base) filename.
// Names are "<unix-ms>-<short-uuid><ext>", mirroring the gateway's historical
// timestamp-plus-random layout so existing stored files sort the same way.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := sanitizeExt(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), shortID(), ext)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", fmt.Errorf("write stored file: %w", err)
	}
	return name, nil
}

// Path returns the on-disk path for a stored filename. The name is reduced
// to its base component so a crafted value cannot escape the media dir.
func (s *Store) Path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(storedName))
}

// URL returns the public URL for a stored filename under baseURL.
func (s *Store) URL(baseURL, storedName string) string {
	return baseURL + publicPrefix + "/" + filepath.Base(storedName)
}

// PublicPrefix returns the URL path the HTTP layer should serve s.Dir() under.
func (s *Store) PublicPrefix() string { return publicPrefix }

// sanitizeExt keeps only plausible filename extensions; anything odd is
// dropped rather than propagated into a stored name.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." || len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

func shortID() string {
	id := uuid.NewString()
	return id[:8]
}
