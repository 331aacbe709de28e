package domain

import (
	"math/big"
	"time"
)

// State enumerates the phases of a generate, upload and mint submission.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateUploading  State = "uploading"
	StateMinting    State = "minting"
)

// MintStatus is the outcome of a persisted submission.
type MintStatus string

const (
	MintStatusRunning   MintStatus = "running"
	MintStatusSucceeded MintStatus = "succeeded"
	MintStatusFailed    MintStatus = "failed"
)

// ImagePayload is the raw output of the inference call.
type ImagePayload struct {
	Data        []byte
	ContentType string
}

// Metadata is the token metadata document published next to the image.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Publication holds the locators produced by the publish phase.
type Publication struct {
	ImageCID    string
	ImageURI    string
	MetadataCID string
	TokenURI    string
}

// MintReceipt describes a confirmed mint transaction.
type MintReceipt struct {
	TxHash   string
	TokenURI string
	Value    *big.Int
	Signer   string
}

// Mint tracks one submission from prompt to confirmed transaction.
type Mint struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	State     State      `json:"state"`
	Status    MintStatus `json:"status"`
	ImageURI  string     `json:"image_uri,omitempty"`
	TokenURI  string     `json:"token_uri,omitempty"`
	TxHash    string     `json:"tx_hash,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AddOptions configures a single publish call to the content store.
type AddOptions struct {
	Filename          string
	WrapWithDirectory bool
	Pin               bool
	Timeout           time.Duration
}
