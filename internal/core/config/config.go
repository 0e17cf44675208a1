package config

import (
	"fmt"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	redisclient "github.com/BukiOffor/concordium-dapp-examples/internal/infra/redis"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Node     NodeConfig         `yaml:"node"`
	Contract ContractConfig     `yaml:"contract"`
	Verifier VerifierConfig     `yaml:"verifier"`
	Sponsor  SponsorConfig      `yaml:"sponsor"`
	Indexer  IndexerConfig      `yaml:"indexer"`
	Wallet   WalletConfig       `yaml:"wallet"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings for the backend daemon.
type ServerConfig struct {
	Port       int `yaml:"port"`        // verifier + sponsor API
	HealthPort int `yaml:"health_port"` // health + metrics
}

// NodeConfig holds the blockchain node connection settings.
type NodeConfig struct {
	Endpoint    string        `yaml:"endpoint"` // http(s)://host:port
	DialTimeout time.Duration `yaml:"dial_timeout"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// ContractConfig identifies the auction and CIS-2 token contract instances.
type ContractConfig struct {
	Auction domain.ContractAddress `yaml:"auction"`
	Token   domain.ContractAddress `yaml:"token"`
}

// VerifierConfig holds settings for the verifier service and client.
type VerifierConfig struct {
	URL          string            `yaml:"url"` // base URL, client side
	ChallengeTTL time.Duration     `yaml:"challenge_ttl"`
	SessionTTL   time.Duration     `yaml:"session_ttl"`
	Statement    []StatementConfig `yaml:"statement"`
}

// StatementConfig is one claim of the verifier's statement.
type StatementConfig struct {
	Type         string `yaml:"type"`
	AttributeTag string `yaml:"attribute_tag"`
}

// DomainStatement converts the configured statement to its domain form.
// Unknown statement kinds are a configuration error: a kind nothing can
// prove must fail loudly at boot, not be skipped at verification time.
func (v VerifierConfig) DomainStatement() (domain.Statement, error) {
	statement := make(domain.Statement, 0, len(v.Statement))
	for _, item := range v.Statement {
		kind := domain.StatementKind(item.Type)
		if kind != domain.StatementReveal {
			return nil, fmt.Errorf("unknown statement kind %q (want %q)", item.Type, domain.StatementReveal)
		}
		statement = append(statement, domain.StatementItem{
			Kind: kind,
			Tag:  domain.AttributeTag(item.AttributeTag),
		})
	}
	return statement, nil
}

// SponsorConfig holds settings for the sponsored-transaction service.
type SponsorConfig struct {
	Enabled      bool   `yaml:"enabled"`
	KeystorePath string `yaml:"keystore_path"`
	Passphrase   string `yaml:"passphrase"`  // usually ${SPONSOR_PASSPHRASE}
	DailyLimit   int    `yaml:"daily_limit"` // sponsored txs per signer per day
}

// IndexerConfig holds settings for the auction event indexer.
type IndexerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ScanInterval time.Duration `yaml:"scan_interval"`
	StartHeight  uint64        `yaml:"start_height"`
}

// WalletConfig holds client-side wallet settings.
type WalletConfig struct {
	KeystorePath string `yaml:"keystore_path"`
	Passphrase   string `yaml:"passphrase"` // usually ${WALLET_PASSPHRASE}
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
