package domain

import "context"

// MintRepository persists submissions and their outcome.
type MintRepository interface {
	Create(ctx context.Context, mint *Mint) error
	Update(ctx context.Context, mint *Mint) error
	GetByID(ctx context.Context, id string) (*Mint, error)
	ListRecent(ctx context.Context, limit int) ([]Mint, error)
}

// ImageGenerator turns a prompt into image bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (ImagePayload, error)
}

// ContentStore publishes bytes to a content-addressed network and returns the content path.
type ContentStore interface {
	Add(ctx context.Context, data []byte, opts AddOptions) (string, error)
}

// Archiver keeps a private copy of generated images.
type Archiver interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}
