package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"minter/internal/domain"
)

// KeySigner signs transactions with a locally held private key.
type KeySigner struct {
	opts *bind.TransactOpts
}

func (s *KeySigner) Address() string {
	return s.opts.From.Hex()
}

// KeyWallet exposes a single key-backed signer.
type KeyWallet struct {
	signer *KeySigner
}

// NewKeyWallet loads a hex encoded private key for the given chain.
func NewKeyWallet(hexKey string, chainID *big.Int) (*KeyWallet, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain: chain id is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: load private key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("chain: build transactor: %w", err)
	}
	return &KeyWallet{signer: &KeySigner{opts: opts}}, nil
}

// Address returns the wallet's account address.
func (w *KeyWallet) Address() string {
	return w.signer.Address()
}

func (w *KeyWallet) Signer(ctx context.Context) (domain.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.signer, nil
}

// ParseEther converts a decimal ether amount such as "0.1" into wei.
func ParseEther(amount string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("chain: invalid ether amount %q", amount)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("chain: negative ether amount %q", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(big.NewInt(params.Ether)))
	if !r.IsInt() {
		return nil, fmt.Errorf("chain: ether amount %q has more than 18 decimals", amount)
	}
	return new(big.Int).Set(r.Num()), nil
}

var _ domain.Wallet = (*KeyWallet)(nil)
