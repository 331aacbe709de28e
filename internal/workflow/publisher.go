package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"minter/internal/domain"
	"minter/internal/infra"
	"minter/internal/providers/ipfs"
)

const (
	imageFilename    = "image.png"
	metadataFilename = "metadata.json"

	// DefaultPublishTimeout bounds each add call to the storage network.
	DefaultPublishTimeout = 60 * time.Second
)

// PublisherOptions configures a Publisher.
type PublisherOptions struct {
	// Gateway is the public gateway root, e.g. https://example.infura-ipfs.io.
	Gateway string
	// Name is the token name written into the metadata document.
	Name    string
	Timeout time.Duration
	// MetadataStore, when set, receives the metadata on chain before it is
	// published. Wallet must then be set as well.
	MetadataStore domain.MetadataStore
	Wallet        domain.Wallet
	Logger        *infra.Logger
}

// Publisher uploads an image and its metadata document to the storage network.
type Publisher struct {
	store         domain.ContentStore
	gateway       string
	name          string
	timeout       time.Duration
	metadataStore domain.MetadataStore
	wallet        domain.Wallet
	logger        *infra.Logger
}

func NewPublisher(store domain.ContentStore, opts PublisherOptions) *Publisher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Publisher{
		store:         store,
		gateway:       strings.TrimRight(opts.Gateway, "/"),
		name:          strings.TrimSpace(opts.Name),
		timeout:       timeout,
		metadataStore: opts.MetadataStore,
		wallet:        opts.Wallet,
		logger:        logger,
	}
}

// Publish adds the image wrapped in a directory, builds the metadata record
// around its locator, optionally records it on chain, and publishes the
// metadata itself. The returned TokenURI points at the metadata document.
func (p *Publisher) Publish(ctx context.Context, image domain.ImagePayload, description string) (*domain.Publication, error) {
	if len(image.Data) == 0 {
		return nil, domain.ErrEmptyPayload
	}

	imageCID, err := p.store.Add(ctx, image.Data, domain.AddOptions{
		Filename:          imageFilename,
		WrapWithDirectory: true,
		Pin:               true,
		Timeout:           p.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("publish image: %w", err)
	}
	imageURI := ipfs.Locator(p.gateway, imageCID+"/"+imageFilename)

	metadata := domain.Metadata{
		Name:        p.name,
		Description: description,
		Image:       imageURI,
	}
	if err := p.recordMetadata(ctx, metadata); err != nil {
		return nil, err
	}

	body, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	metadataCID, err := p.store.Add(ctx, body, domain.AddOptions{
		Filename:          metadataFilename,
		WrapWithDirectory: false,
		Pin:               true,
		Timeout:           p.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("publish metadata: %w", err)
	}

	pub := &domain.Publication{
		ImageCID:    imageCID,
		ImageURI:    imageURI,
		MetadataCID: metadataCID,
		TokenURI:    ipfs.Locator(p.gateway, metadataCID),
	}
	p.logger.Info().
		Str("image_cid", imageCID).
		Str("metadata_cid", metadataCID).
		Str("token_uri", pub.TokenURI).
		Msg("publisher: image and metadata pinned")
	return pub, nil
}

func (p *Publisher) recordMetadata(ctx context.Context, metadata domain.Metadata) error {
	if p.metadataStore == nil {
		return nil
	}
	if p.wallet == nil {
		return errors.New("record metadata: no wallet configured")
	}
	signer, err := p.wallet.Signer(ctx)
	if err != nil {
		return fmt.Errorf("record metadata: signer: %w", err)
	}
	tx, err := p.metadataStore.StoreMetadata(ctx, signer, metadata)
	if err != nil {
		return fmt.Errorf("record metadata: %w", err)
	}
	if err := tx.Wait(ctx); err != nil {
		return fmt.Errorf("record metadata: %w", err)
	}
	p.logger.Info().Str("tx_hash", tx.Hash()).Msg("publisher: metadata recorded on chain")
	return nil
}
