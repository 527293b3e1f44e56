// Package app assembles the custody gateway from configuration and backends.
package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"diamond-custody-gateway/config"
	httpHandler "diamond-custody-gateway/internal/adapter/http/handler"
	"diamond-custody-gateway/internal/adapter/ledger"
	redisStore "diamond-custody-gateway/internal/adapter/storage/redis"
	"diamond-custody-gateway/internal/contract"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/internal/service"
	"diamond-custody-gateway/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Backends are the stores and clients the services run on.
type Backends struct {
	Wallets   ports.WalletRepository
	Consumed  ports.ConsumedTokenStore
	Nonces    ports.NonceTracker
	Directory ports.MerchantDirectory
	Ledger    ledger.Client
	Events    ports.EventPublisher       // nil = no publication
	Audit     ports.AuditRepository      // nil = audit logging disabled
	RateLimit *redisStore.RateLimitStore // nil = rate limiting disabled
	Health    []ports.HealthChecker
}

// App is a fully wired gateway.
type App struct {
	Router  *gin.Engine
	Vault   *service.VaultService
	Custody *service.CustodyService
	Tokens  *service.JWTTokenService
	audit   *service.AuditService
}

// New wires services over b. reg may be nil to disable metrics.
func New(cfg *config.Config, b Backends, reg *prometheus.Registry, log zerolog.Logger) (*App, error) {
	if !common.IsHexAddress(cfg.Ledger.MarketplaceAddress) {
		return nil, fmt.Errorf("ledger.marketplace_address %q is not an address", cfg.Ledger.MarketplaceAddress)
	}
	market, err := contract.NewMarketplace(common.HexToAddress(cfg.Ledger.MarketplaceAddress))
	if err != nil {
		return nil, err
	}

	cipher, err := service.NewKeyCipher(cfg.Vault.Passphrase, cfg.Vault.KDFSalt)
	if err != nil {
		return nil, err
	}

	var metrics *ledger.Metrics
	if reg != nil && cfg.Metrics.Enabled {
		metrics = ledger.NewMetrics(reg)
	}

	gateway := ledger.NewGateway(b.Ledger, ledger.Config{
		CallTimeout:         cfg.Ledger.CallTimeout,
		ReceiptPollInterval: cfg.Ledger.ReceiptPollInterval,
		ReceiptTimeout:      cfg.Ledger.ReceiptTimeout,
		ReadRetries:         cfg.Ledger.ReadRetries,
	}, metrics, logger.Component(log, "ledger"))

	vault := service.NewVaultService(b.Wallets, cipher, logger.Component(log, "vault"))

	signerCfg := service.SignerConfig{DefaultGasLimit: cfg.Ledger.DefaultGasLimit}
	if cfg.Ledger.ChainID > 0 {
		signerCfg.ChainID = big.NewInt(cfg.Ledger.ChainID)
	}
	if cfg.Ledger.DefaultGasPriceWei > 0 {
		signerCfg.DefaultGasPrice = big.NewInt(cfg.Ledger.DefaultGasPriceWei)
	}
	signer := service.NewSignerService(vault, gateway, b.Nonces, signerCfg, logger.Component(log, "signer"))

	approvals := service.NewApprovalService(cfg.Approval.TTL, cfg.Approval.QRSize)

	custody := service.NewCustodyService(
		vault,
		signer,
		gateway,
		approvals,
		b.Consumed,
		market,
		b.Directory,
		b.Events,
		service.CustodyConfig{
			GasHeadroomPercent: cfg.Ledger.GasHeadroomPercent,
			ConsumedMarkerTTL:  consumedMarkerTTL(cfg.Approval.TTL),
		},
		logger.Component(log, "custody"),
	)

	tokens := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	a := &App{Vault: vault, Custody: custody, Tokens: tokens}

	deps := httpHandler.RouterDeps{
		CustodySvc:     custody,
		TokenSvc:       tokens,
		RateLimitStore: b.RateLimit,
		HealthCheckers: b.Health,
		Logger:         log,
	}
	if b.Audit != nil {
		a.audit = service.NewAuditService(b.Audit, log)
		deps.AuditSvc = a.audit
	}
	if reg != nil && cfg.Metrics.Enabled {
		deps.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		deps.MetricsPath = cfg.Metrics.Path
	}
	a.Router = httpHandler.SetupRouter(deps)

	return a, nil
}

// consumedMarkerTTL keeps a consumed-token marker alive well past the point
// where the token itself could still verify.
func consumedMarkerTTL(approvalTTL time.Duration) time.Duration {
	return max(24*time.Hour, 2*approvalTTL)
}

// Shutdown waits for background audit writes.
func (a *App) Shutdown(ctx context.Context) error {
	if a.audit == nil {
		return nil
	}
	return a.audit.Wait(ctx)
}
