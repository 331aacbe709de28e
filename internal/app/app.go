// Package app wires configuration into a ready-to-run mint workflow.
package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"minter/internal/adapter/repo"
	"minter/internal/domain"
	"minter/internal/infra"
	"minter/internal/providers/archive"
	"minter/internal/providers/chain"
	"minter/internal/providers/inference"
	"minter/internal/providers/ipfs"
	"minter/internal/storage"
	"minter/internal/workflow"
)

// Components holds the wired workflow and its persistence.
type Components struct {
	Orchestrator *workflow.Orchestrator
	Mints        domain.MintRepository
	Wallet       *chain.KeyWallet
	Contract     *chain.Contract

	closers []func()
}

// Close releases network clients and pools in reverse order of creation.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build connects every collaborator described by cfg. The caller owns the
// returned Components and must Close them.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Components, error) {
	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	mints, err := buildRepository(ctx, cfg, logger, c)
	if err != nil {
		return nil, err
	}
	c.Mints = mints

	eth, err := ethclient.DialContext(ctx, cfg.EthRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	c.closers = append(c.closers, eth.Close)

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	wallet, err := chain.NewKeyWallet(cfg.WalletPrivateKey, chainID)
	if err != nil {
		return nil, err
	}
	contract, err := chain.NewContract(eth, cfg.NFTContractAddress, chain.ContractOptions{
		MetadataMethod: cfg.NFTMetadataMethod,
		Logger:         &logger,
	})
	if err != nil {
		return nil, err
	}
	price, err := chain.ParseEther(cfg.MintPriceETH)
	if err != nil {
		return nil, fmt.Errorf("MINT_PRICE_ETH: %w", err)
	}
	c.Wallet, c.Contract = wallet, contract

	archiver, err := buildArchiver(cfg)
	if err != nil {
		return nil, err
	}

	requester := inference.NewClient(inference.Options{
		APIKey:   cfg.InferenceAPIKey,
		ModelURL: cfg.InferenceModelURL,
		Logger:   &logger,
	})
	store := ipfs.NewClient(ipfs.Options{
		APIURL:        cfg.IPFSAPIURL(),
		ProjectID:     cfg.IPFSProjectID,
		ProjectSecret: cfg.IPFSProjectSecret,
		Logger:        &logger,
	})
	pubOpts := workflow.PublisherOptions{
		Gateway: cfg.GatewayURL(),
		Name:    cfg.NFTName,
		Timeout: cfg.IPFSAddTimeout,
		Logger:  &logger,
	}
	if cfg.NFTMetadataMethod != "" {
		pubOpts.MetadataStore = contract
		pubOpts.Wallet = wallet
	}

	opts := workflow.Options{
		Repository: mints,
		Timeout:    cfg.WorkflowTimeout,
		Logger:     &logger,
	}
	if archiver != nil {
		opts.Archiver = archiver
	}
	c.Orchestrator = workflow.NewOrchestrator(
		requester,
		workflow.NewPublisher(store, pubOpts),
		workflow.NewMinter(contract, wallet, price, &logger),
		opts,
	)

	logger.Info().
		Str("contract", contract.Address()).
		Str("signer", wallet.Address()).
		Str("chain_id", chainID.String()).
		Str("price_wei", price.String()).
		Msg("app: workflow ready")
	ok = true
	return c, nil
}

func buildRepository(ctx context.Context, cfg *infra.Config, logger infra.Logger, c *Components) (domain.MintRepository, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("app: DATABASE_URL not set, mints are kept in memory")
		return repo.NewMemoryMintRepository(), nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.closers = append(c.closers, pool.Close)

	mints := repo.NewMintRepository(infra.NewSQLRunner(pool, logger))
	if err := mints.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return mints, nil
}

func buildArchiver(cfg *infra.Config) (domain.Archiver, error) {
	switch cfg.ArchiveBackend {
	case infra.ArchiveBackendFile:
		return storage.NewFileStore(cfg.ArchivePath)
	case infra.ArchiveBackendMinio:
		return archive.NewMinioArchive(archive.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, nil
	}
}
