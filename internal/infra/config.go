package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DefaultLocale string

	InferenceAPIKey   string
	InferenceModelURL string

	IPFSProjectID        string
	IPFSProjectSecret    string
	IPFSAPIHost          string
	IPFSAPIPort          int
	IPFSAPIProtocol      string
	IPFSGatewaySubdomain string
	IPFSAddTimeout       time.Duration

	EthRPCURL          string
	NFTContractAddress string
	NFTMetadataMethod  string
	WalletPrivateKey   string
	MintPriceETH       string
	NFTName            string

	WorkflowTimeout time.Duration

	DatabaseURL string
	DBMaxConns  int

	ArchiveBackend string
	ArchivePath    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

const (
	ArchiveBackendNone  = ""
	ArchiveBackendFile  = "file"
	ArchiveBackendMinio = "minio"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		InferenceAPIKey:   strings.TrimSpace(os.Getenv("INFERENCE_API_KEY")),
		InferenceModelURL: getEnv("INFERENCE_MODEL_URL", "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2"),

		IPFSProjectID:        strings.TrimSpace(os.Getenv("IPFS_PROJECT_ID")),
		IPFSProjectSecret:    strings.TrimSpace(os.Getenv("IPFS_PROJECT_SECRET")),
		IPFSAPIHost:          getEnv("IPFS_API_HOST", "ipfs.infura.io"),
		IPFSAPIPort:          getEnvInt("IPFS_API_PORT", 5001),
		IPFSAPIProtocol:      getEnv("IPFS_API_PROTOCOL", "https"),
		IPFSGatewaySubdomain: getEnv("IPFS_GATEWAY_SUBDOMAIN", "ai-gen-nft-minter.infura-ipfs.io"),
		IPFSAddTimeout:       time.Second * time.Duration(getEnvInt("IPFS_ADD_TIMEOUT_SECONDS", 60)),

		EthRPCURL:          strings.TrimSpace(os.Getenv("ETH_RPC_URL")),
		NFTContractAddress: strings.TrimSpace(os.Getenv("NFT_CONTRACT_ADDRESS")),
		NFTMetadataMethod:  strings.TrimSpace(os.Getenv("NFT_METADATA_METHOD")),
		WalletPrivateKey:   strings.TrimSpace(os.Getenv("WALLET_PRIVATE_KEY")),
		MintPriceETH:       getEnv("MINT_PRICE_ETH", "0.1"),
		NFTName:            getEnv("NFT_NAME", "Nifty Mint"),

		WorkflowTimeout: time.Second * time.Duration(getEnvInt("WORKFLOW_TIMEOUT_SECONDS", 600)),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 4),

		ArchiveBackend: strings.ToLower(strings.TrimSpace(os.Getenv("ARCHIVE_BACKEND"))),
		ArchivePath:    getEnv("ARCHIVE_PATH", "./archive"),
		MinioEndpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		MinioAccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		MinioBucket:    getEnv("MINIO_BUCKET", "generated-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", true),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.InferenceAPIKey == "" {
		return nil, fmt.Errorf("INFERENCE_API_KEY is required")
	}
	if cfg.EthRPCURL == "" {
		return nil, fmt.Errorf("ETH_RPC_URL is required")
	}
	if cfg.NFTContractAddress == "" {
		return nil, fmt.Errorf("NFT_CONTRACT_ADDRESS is required")
	}
	if cfg.WalletPrivateKey == "" {
		return nil, fmt.Errorf("WALLET_PRIVATE_KEY is required")
	}

	switch cfg.ArchiveBackend {
	case ArchiveBackendNone, ArchiveBackendFile:
	case ArchiveBackendMinio:
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when ARCHIVE_BACKEND=minio")
		}
	default:
		return nil, fmt.Errorf("unsupported ARCHIVE_BACKEND %q", cfg.ArchiveBackend)
	}

	return cfg, nil
}

// IPFSAPIURL returns the base URL of the IPFS HTTP API.
func (c *Config) IPFSAPIURL() string {
	return fmt.Sprintf("%s://%s:%d", c.IPFSAPIProtocol, c.IPFSAPIHost, c.IPFSAPIPort)
}

// GatewayURL returns the public gateway root used to build content locators.
func (c *Config) GatewayURL() string {
	gateway := strings.TrimRight(c.IPFSGatewaySubdomain, "/")
	if strings.HasPrefix(gateway, "http://") || strings.HasPrefix(gateway, "https://") {
		return gateway
	}
	return "https://" + gateway
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
