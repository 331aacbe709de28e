package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"minter/internal/domain"
	"minter/internal/infra"
)

var (
	// ErrReverted is returned when a mined transaction has a failed receipt.
	ErrReverted = errors.New("chain: transaction reverted")
	// ErrMetadataUnsupported is returned when no metadata method was configured.
	ErrMetadataUnsupported = errors.New("chain: contract has no metadata method configured")
	// ErrUnsupportedSigner is returned for signers not produced by this package.
	ErrUnsupportedSigner = errors.New("chain: unsupported signer")
)

const mintMethod = "mint"

// Backend is the RPC surface needed to transact and wait for receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type transactor interface {
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type waitFunc func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// ContractOptions configures the NFT contract handle.
type ContractOptions struct {
	// MetadataMethod names a (string,string,string) method that stores token
	// metadata on chain. Empty disables on-chain metadata.
	MetadataMethod string
	Logger         *infra.Logger
}

// Contract is the NFT contract handle.
type Contract struct {
	address        common.Address
	bound          transactor
	wait           waitFunc
	metadataMethod string
	logger         *infra.Logger
}

// NewContract binds the NFT contract at address through backend.
func NewContract(backend Backend, address string, opts ContractOptions) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("chain: invalid contract address %q", address)
	}
	parsed, err := ParseABI(opts.MetadataMethod)
	if err != nil {
		return nil, err
	}
	addr := common.HexToAddress(address)
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Contract{
		address: addr,
		bound:   bind.NewBoundContract(addr, parsed, backend, backend, backend),
		wait: func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
			return bind.WaitMined(ctx, backend, tx)
		},
		metadataMethod: strings.TrimSpace(opts.MetadataMethod),
		logger:         logger,
	}, nil
}

// Address returns the contract address.
func (c *Contract) Address() string {
	return c.address.Hex()
}

// Mint calls mint(tokenURI) paying value from signer.
func (c *Contract) Mint(ctx context.Context, signer domain.Signer, tokenURI string, value *big.Int) (domain.Transaction, error) {
	opts, err := transactOpts(ctx, signer, value)
	if err != nil {
		return nil, err
	}
	tx, err := c.bound.Transact(opts, mintMethod, tokenURI)
	if err != nil {
		return nil, fmt.Errorf("chain: mint: %w", err)
	}
	c.logger.Info().
		Str("contract", c.address.Hex()).
		Str("tx_hash", tx.Hash().Hex()).
		Str("from", signer.Address()).
		Msg("chain: mint submitted")
	return &pendingTx{tx: tx, wait: c.wait}, nil
}

// StoreMetadata forwards the metadata fields to the configured metadata method.
func (c *Contract) StoreMetadata(ctx context.Context, signer domain.Signer, metadata domain.Metadata) (domain.Transaction, error) {
	if c.metadataMethod == "" {
		return nil, ErrMetadataUnsupported
	}
	opts, err := transactOpts(ctx, signer, nil)
	if err != nil {
		return nil, err
	}
	tx, err := c.bound.Transact(opts, c.metadataMethod, metadata.Name, metadata.Description, metadata.Image)
	if err != nil {
		return nil, fmt.Errorf("chain: %s: %w", c.metadataMethod, err)
	}
	c.logger.Info().
		Str("contract", c.address.Hex()).
		Str("method", c.metadataMethod).
		Str("tx_hash", tx.Hash().Hex()).
		Msg("chain: metadata submitted")
	return &pendingTx{tx: tx, wait: c.wait}, nil
}

func transactOpts(ctx context.Context, signer domain.Signer, value *big.Int) (*bind.TransactOpts, error) {
	ks, ok := signer.(*KeySigner)
	if !ok || ks == nil {
		return nil, ErrUnsupportedSigner
	}
	opts := *ks.opts
	opts.Context = ctx
	if value != nil {
		opts.Value = new(big.Int).Set(value)
	} else {
		opts.Value = nil
	}
	return &opts, nil
}

type pendingTx struct {
	tx   *types.Transaction
	wait waitFunc
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

func (p *pendingTx) Wait(ctx context.Context) error {
	receipt, err := p.wait(ctx, p.tx)
	if err != nil {
		return fmt.Errorf("chain: wait %s: %w", p.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s", ErrReverted, p.Hash())
	}
	return nil
}

type abiArgument struct {
	InternalType string `json:"internalType"`
	Name         string `json:"name"`
	Type         string `json:"type"`
}

type abiMethod struct {
	Inputs          []abiArgument `json:"inputs"`
	Name            string        `json:"name"`
	Outputs         []abiArgument `json:"outputs"`
	StateMutability string        `json:"stateMutability"`
	Type            string        `json:"type"`
}

func stringArg(name string) abiArgument {
	return abiArgument{InternalType: "string", Name: name, Type: "string"}
}

// ParseABI returns the contract ABI: a payable mint(string) plus, when
// metadataMethod is set, a nonpayable metadataMethod(string,string,string).
func ParseABI(metadataMethod string) (abi.ABI, error) {
	methods := []abiMethod{{
		Inputs:          []abiArgument{stringArg("tokenURI")},
		Name:            mintMethod,
		Outputs:         []abiArgument{},
		StateMutability: "payable",
		Type:            "function",
	}}
	if name := strings.TrimSpace(metadataMethod); name != "" {
		if name == mintMethod {
			return abi.ABI{}, fmt.Errorf("chain: metadata method cannot be %q", mintMethod)
		}
		methods = append(methods, abiMethod{
			Inputs:          []abiArgument{stringArg("name"), stringArg("description"), stringArg("image")},
			Name:            name,
			Outputs:         []abiArgument{},
			StateMutability: "nonpayable",
			Type:            "function",
		})
	}
	raw, err := json.Marshal(methods)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("chain: encode abi: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("chain: parse abi: %w", err)
	}
	return parsed, nil
}

var (
	_ domain.NFTContract   = (*Contract)(nil)
	_ domain.MetadataStore = (*Contract)(nil)
)
