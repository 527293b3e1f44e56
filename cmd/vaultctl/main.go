// Command vaultctl administers the custody key vault: importing keys,
// listing custody addresses, rotating the vault passphrase and issuing
// development access tokens.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"diamond-custody-gateway/config"
	pgStore "diamond-custody-gateway/internal/adapter/storage/postgres"
	"diamond-custody-gateway/internal/service"
	"diamond-custody-gateway/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vaultctl",
		Usage: "administer the diamond custody key vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"DCG_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "store an existing private key for a merchant (key read from stdin)",
				ArgsUsage: "<merchant-id>",
				Action:    importKey,
			},
			{
				Name:   "list",
				Usage:  "list merchants and their custody addresses",
				Action: listWallets,
			},
			{
				Name:  "rekey",
				Usage: "re-encrypt every stored key under a new passphrase",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "new-passphrase",
						Usage:    "passphrase the keys are re-encrypted under",
						EnvVars:  []string{"DCG_VAULT_NEW_PASSPHRASE"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "new-salt",
						Usage: "KDF salt for the new passphrase (defaults to the current salt)",
					},
				},
				Action: rekey,
			},
			{
				Name:      "token",
				Usage:     "issue an API access token for a merchant",
				ArgsUsage: "<merchant-id>",
				Action:    issueToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "vaultctl:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if cfg.Vault.Passphrase == "" {
		return nil, errors.New("vault.passphrase is required")
	}
	if cfg.Vault.Backend != "postgres" {
		return nil, fmt.Errorf("vault backend %q is not persistent", cfg.Vault.Backend)
	}
	return cfg, nil
}

// openVault connects to the wallet store. The caller closes the pool.
func openVault(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*service.VaultService, *pgxpool.Pool, error) {
	pool, err := pgStore.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	if err := pgStore.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	cipher, err := service.NewKeyCipher(cfg.Vault.Passphrase, cfg.Vault.KDFSalt)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return service.NewVaultService(pgStore.NewWalletRepo(pool), cipher, log), pool, nil
}

func withVault(c *cli.Context, fn func(ctx context.Context, cfg *config.Config, vault *service.VaultService) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
	defer cancel()

	vault, pool, err := openVault(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, cfg, vault)
}

func merchantArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one merchant id, got %d args", c.NArg())
	}
	return c.Args().First(), nil
}

func importKey(c *cli.Context) error {
	merchantID, err := merchantArg(c)
	if err != nil {
		return err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading key from stdin: %w", err)
	}
	keyHex := strings.TrimSpace(line)

	return withVault(c, func(ctx context.Context, _ *config.Config, vault *service.VaultService) error {
		info, err := vault.ImportWallet(ctx, merchantID, keyHex)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", info.MerchantID, info.Address.Hex())
		return nil
	})
}

func listWallets(c *cli.Context) error {
	return withVault(c, func(ctx context.Context, _ *config.Config, vault *service.VaultService) error {
		wallets, err := vault.ListWallets(ctx)
		if err != nil {
			return err
		}
		for _, w := range wallets {
			fmt.Printf("%s\t%s\t%s\n", w.MerchantID, w.Address.Hex(), w.CreatedAt.UTC().Format(time.RFC3339))
		}
		return nil
	})
}

func rekey(c *cli.Context) error {
	return withVault(c, func(ctx context.Context, cfg *config.Config, vault *service.VaultService) error {
		salt := c.String("new-salt")
		if salt == "" {
			salt = cfg.Vault.KDFSalt
		}
		next, err := service.NewKeyCipher(c.String("new-passphrase"), salt)
		if err != nil {
			return err
		}
		n, err := vault.Rekey(ctx, next)
		if err != nil {
			return fmt.Errorf("rekeyed %d wallets before failing: %w", n, err)
		}
		fmt.Printf("rekeyed %d wallets\n", n)
		return nil
	})
}

func issueToken(c *cli.Context) error {
	merchantID, err := merchantArg(c)
	if err != nil {
		return err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}

	token, expiresAt, err := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer).Generate(merchantID)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
