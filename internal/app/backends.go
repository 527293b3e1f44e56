package app

import (
	"context"
	"fmt"

	"diamond-custody-gateway/config"
	"diamond-custody-gateway/internal/adapter/events"
	"diamond-custody-gateway/internal/adapter/ledger"
	"diamond-custody-gateway/internal/adapter/storage/memory"
	mongoStore "diamond-custody-gateway/internal/adapter/storage/mongo"
	pgStore "diamond-custody-gateway/internal/adapter/storage/postgres"
	redisStore "diamond-custody-gateway/internal/adapter/storage/redis"

	"github.com/rs/zerolog"
)

// Connect dials every external dependency named by cfg. The returned
// close function releases them in reverse order.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backends, func(), error) {
	var (
		b       Backends
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (Backends, func(), error) {
		closeAll()
		return Backends{}, func() {}, err
	}

	// Redis: approval markers, nonce high-water marks, rate limits.
	rdb, err := redisStore.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return fail(fmt.Errorf("redis: %w", err))
	}
	closers = append(closers, func() { _ = rdb.Close() })
	b.Consumed = redisStore.NewConsumedTokenStore(rdb)
	b.Nonces = redisStore.NewNonceTracker(rdb, cfg.Ledger.NonceStaleAfter)
	b.RateLimit = redisStore.NewRateLimitStore(rdb)
	b.Health = append(b.Health, redisStore.NewHealthCheck(rdb))

	// Key vault storage and audit log.
	switch cfg.Vault.Backend {
	case "postgres":
		pool, err := pgStore.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		if err := pgStore.Migrate(ctx, pool); err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		b.Wallets = pgStore.NewWalletRepo(pool)
		b.Audit = pgStore.NewAuditRepo(pool)
		b.Health = append(b.Health, pgStore.NewHealthCheck(pool))
	default:
		log.Warn().Msg("Vault backend is memory; wallets are lost on restart")
		b.Wallets = memory.NewWalletRepo()
	}

	// Merchant directory.
	mc, err := mongoStore.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return fail(fmt.Errorf("mongo: %w", err))
	}
	closers = append(closers, func() { _ = mc.Disconnect(context.Background()) })
	coll := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	b.Directory = mongoStore.NewMerchantDirectory(coll, cfg.Mongo.Timeout)
	b.Health = append(b.Health, mongoStore.NewHealthCheck(mc))

	// Event publication is optional.
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS, log)
		if err != nil {
			return fail(fmt.Errorf("nats: %w", err))
		}
		closers = append(closers, func() { _ = nc.Drain() })
		b.Events = events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix)
		b.Health = append(b.Health, events.NewHealthCheck(nc))
	}

	// Ledger node.
	client, err := ledger.Dial(ctx, cfg.Ledger.RPCURL, log)
	if err != nil {
		return fail(fmt.Errorf("ledger: %w", err))
	}
	closers = append(closers, client.Close)
	b.Ledger = client
	b.Health = append(b.Health, ledger.NewHealthCheck(client))

	return b, closeAll, nil
}
