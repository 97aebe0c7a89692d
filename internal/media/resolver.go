package media

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/tbourn/go-wa-gateway/internal/session"
)

// Attachment is a resolved media object: a stored file addressable on disk
// plus the public URL logged with the send.
type Attachment struct {
	Kind      session.MediaKind
	StoredAs  string // base filename inside the store
	Path      string // on-disk path handed to the transport
	PublicURL string
	MIME      string
}

// Media converts the attachment into the transport's payload shape.
func (a Attachment) Media() session.Media {
	return session.Media{
		Kind:     a.Kind,
		Path:     a.Path,
		Filename: a.StoredAs,
		MIME:     a.MIME,
	}
}

// Resolver turns stored filenames back into attachments. It is deterministic
// given the store's contents and performs no retries: an upload that is no
// longer on disk at resolution time fails the whole request.
type Resolver struct {
	store   *Store
	baseURL string
}

// NewResolver builds a resolver over store, deriving public URLs from baseURL.
func NewResolver(store *Store, baseURL string) *Resolver {
	return &Resolver{store: store, baseURL: baseURL}
}

// Resolve maps one optional stored name per kind to at most one attachment
// per kind, in image-then-document order. Empty names produce no attachment;
// nothing is ever fabricated for an absent upload.
func (r *Resolver) Resolve(imageName, documentName string) ([]Attachment, error) {
	out := make([]Attachment, 0, 2)
	for _, req := range []struct {
		kind session.MediaKind
		name string
	}{
		{session.MediaImage, imageName},
		{session.MediaDocument, documentName},
	} {
		if req.name == "" {
			continue
		}
		att, err := r.resolveOne(req.kind, req.name)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

func (r *Resolver) resolveOne(kind session.MediaKind, storedName string) (Attachment, error) {
	path := r.store.Path(storedName)
	if _, err := os.Stat(path); err != nil {
		return Attachment{}, fmt.Errorf("%s attachment %q: %w", kind, storedName, err)
	}

	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "application/octet-stream"
	}

	return Attachment{
		Kind:      kind,
		StoredAs:  filepath.Base(storedName),
		Path:      path,
		PublicURL: r.store.URL(r.baseURL, storedName),
		MIME:      mt,
	}, nil
}
