package workflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"minter/internal/domain"
	"minter/internal/infra"
)

// Minter submits the fixed-price mint for a token URI and waits for it.
type Minter struct {
	contract domain.NFTContract
	wallet   domain.Wallet
	price    *big.Int
	logger   *infra.Logger
}

func NewMinter(contract domain.NFTContract, wallet domain.Wallet, price *big.Int, logger *infra.Logger) *Minter {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if price == nil {
		price = new(big.Int)
	}
	return &Minter{
		contract: contract,
		wallet:   wallet,
		price:    new(big.Int).Set(price),
		logger:   logger,
	}
}

// Price returns the amount paid per mint, in wei.
func (m *Minter) Price() *big.Int {
	return new(big.Int).Set(m.price)
}

// Mint pays the fixed price to mint tokenURI. Rejections and reverts are
// returned as is; nothing is retried.
func (m *Minter) Mint(ctx context.Context, tokenURI string) (*domain.MintReceipt, error) {
	if strings.TrimSpace(tokenURI) == "" {
		return nil, domain.ErrEmptyLocator
	}
	if m.wallet == nil {
		return nil, errors.New("mint: no wallet configured")
	}
	signer, err := m.wallet.Signer(ctx)
	if err != nil {
		return nil, fmt.Errorf("mint: signer: %w", err)
	}
	tx, err := m.contract.Mint(ctx, signer, tokenURI, m.Price())
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	m.logger.Info().Str("tx_hash", tx.Hash()).Str("token_uri", tokenURI).Msg("minter: waiting for confirmation")
	if err := tx.Wait(ctx); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	return &domain.MintReceipt{
		TxHash:   tx.Hash(),
		TokenURI: tokenURI,
		Value:    m.Price(),
		Signer:   signer.Address(),
	}, nil
}
