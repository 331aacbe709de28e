package domain

import (
	"context"
	"math/big"
)

// Signer is an account able to approve and pay for transactions.
type Signer interface {
	Address() string
}

// Wallet hands out the signer of the connected account.
type Wallet interface {
	Signer(ctx context.Context) (Signer, error)
}

// Transaction is a submitted on-chain call awaiting confirmation.
type Transaction interface {
	Hash() string
	Wait(ctx context.Context) error
}

// NFTContract is the token-issuing contract handle.
type NFTContract interface {
	Mint(ctx context.Context, signer Signer, tokenURI string, value *big.Int) (Transaction, error)
}

// MetadataStore forwards token metadata to the contract for on-chain storage.
type MetadataStore interface {
	StoreMetadata(ctx context.Context, signer Signer, metadata Metadata) (Transaction, error)
}
