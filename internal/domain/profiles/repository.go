package profiles

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

// AvatarStorage is the object store holding profile pictures. Upload
// overwrites an existing object at the same path.
type AvatarStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}
