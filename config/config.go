package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	NATS     NATSConfig     `mapstructure:"nats"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MongoConfig points at the document store holding merchant records.
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// NATSConfig enables custody event publication. An empty URL disables it.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// VaultConfig controls key custody at rest.
type VaultConfig struct {
	Passphrase string `mapstructure:"passphrase"`
	KDFSalt    string `mapstructure:"kdf_salt"`
	Backend    string `mapstructure:"backend"` // memory, postgres
}

// LedgerConfig describes the ledger node and transaction defaults.
type LedgerConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	ChainID             int64         `mapstructure:"chain_id"` // 0 = ask the node
	MarketplaceAddress  string        `mapstructure:"marketplace_address"`
	CallTimeout         time.Duration `mapstructure:"call_timeout"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
	DefaultGasLimit     uint64        `mapstructure:"default_gas_limit"`
	DefaultGasPriceWei  int64         `mapstructure:"default_gas_price_wei"` // 0 = node suggestion
	GasHeadroomPercent  uint64        `mapstructure:"gas_headroom_percent"`
	ReadRetries         uint64        `mapstructure:"read_retries"`
	NonceStaleAfter     time.Duration `mapstructure:"nonce_stale_after"`
}

// ApprovalConfig controls QR approval tokens.
type ApprovalConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	QRSize int           `mapstructure:"qr_size"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: DCG_ (Diamond Custody Gateway).
// Nested keys use underscore: DCG_LEDGER_RPC_URL, DCG_VAULT_PASSPHRASE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "diamond_custody")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "diamonds")
	v.SetDefault("mongo.collection", "merchants")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "custody")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "diamond-custody-gateway")
	v.SetDefault("vault.passphrase", "")
	v.SetDefault("vault.kdf_salt", "diamond-custody-vault")
	v.SetDefault("vault.backend", "postgres")
	v.SetDefault("ledger.rpc_url", "http://localhost:8545")
	v.SetDefault("ledger.chain_id", 0)
	v.SetDefault("ledger.marketplace_address", "")
	v.SetDefault("ledger.call_timeout", "30s")
	v.SetDefault("ledger.receipt_poll_interval", "1s")
	v.SetDefault("ledger.receipt_timeout", "2m")
	v.SetDefault("ledger.default_gas_limit", 500000)
	v.SetDefault("ledger.default_gas_price_wei", 0)
	v.SetDefault("ledger.gas_headroom_percent", 20)
	v.SetDefault("ledger.read_retries", 3)
	v.SetDefault("ledger.nonce_stale_after", "2m")
	v.SetDefault("approval.ttl", "15m")
	v.SetDefault("approval.qr_size", 256)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: DCG_LEDGER_RPC_URL -> ledger.rpc_url
	v.SetEnvPrefix("DCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the custody subsystem cannot run without.
func (c *Config) Validate() error {
	if c.Vault.Passphrase == "" {
		return fmt.Errorf("vault.passphrase is required")
	}
	if c.Vault.Backend != "memory" && c.Vault.Backend != "postgres" {
		return fmt.Errorf("vault.backend must be memory or postgres, got %q", c.Vault.Backend)
	}
	if c.Ledger.MarketplaceAddress == "" {
		return fmt.Errorf("ledger.marketplace_address is required")
	}
	if c.Ledger.CallTimeout <= 0 {
		return fmt.Errorf("ledger.call_timeout must be positive")
	}
	if c.Approval.TTL <= 0 {
		return fmt.Errorf("approval.ttl must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}
