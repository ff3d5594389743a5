package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charles1614/deepwiki-sub003/internal/auth"
	"github.com/charles1614/deepwiki-sub003/internal/config"
	"github.com/charles1614/deepwiki-sub003/internal/crypto"
	"github.com/charles1614/deepwiki-sub003/internal/db"
	"github.com/charles1614/deepwiki-sub003/internal/logging"
	"github.com/charles1614/deepwiki-sub003/internal/markdown"
	"github.com/charles1614/deepwiki-sub003/internal/metrics"
	"github.com/charles1614/deepwiki-sub003/internal/server"
	"github.com/charles1614/deepwiki-sub003/internal/server/routes"
	"github.com/charles1614/deepwiki-sub003/internal/storage"
	"github.com/charles1614/deepwiki-sub003/internal/tui"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

var serveConfigDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wiki server",
	Long: `Start the deepwiki HTTP server.

Reads deepwiki.yaml from the config directory, connects to PostgreSQL
(retrying transient failover errors), bootstraps the schema, and serves
the wiki API until interrupted.

Secrets come from the environment (or a .env file next to deepwiki.yaml):
  DEEPWIKI_DB_PASSWORD, DEEPWIKI_JWT_SECRET, DEEPWIKI_ENCRYPTION_KEY`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigDir, "config", "C", ".", "Directory containing deepwiki.yaml")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigDir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("no %s found in %s (run 'deepwiki init' first): %w",
				config.ConfigFileName, serveConfigDir, deepwiki.ErrInvalidConfig)
		}
		return err
	}

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd) || cfg.Verbose)
	progress := tui.NewProgress()
	ctx := cmd.Context()

	store, err := connectStore(ctx, cfg, logger, progress)
	if err != nil {
		return err
	}
	defer store.Close()

	deps, err := buildDeps(ctx, cfg, store)
	if err != nil {
		return err
	}

	return server.New(cfg.Server.Addr(), deps, logger).Run(ctx)
}

// connectStore resolves the database config, connects with retry, and
// bootstraps the schema.
func connectStore(ctx context.Context, cfg *config.Config, logger deepwiki.Logger, progress *tui.Progress) (deepwiki.Store, error) {
	retryOpts, err := cfg.RetryOptions()
	if err != nil {
		return nil, err
	}
	connCfg, err := cfg.ConnectionConfig()
	if err != nil {
		return nil, err
	}

	connector, err := db.NewConnector(connCfg, retryOpts, logger)
	if err != nil {
		return nil, err
	}

	progress.Start(fmt.Sprintf("Connecting to %s:%d/%s", connCfg.Host, connCfg.Port, connCfg.Database))
	store, err := connector.Connect(ctx)
	if err != nil {
		progress.Fail("Database connection failed")
		return nil, err
	}

	if err := db.Bootstrap(ctx, store); err != nil {
		store.Close()
		progress.Fail("Schema bootstrap failed")
		return nil, err
	}
	progress.Success("Database ready")
	return store, nil
}

// buildDeps assembles the service layer for the HTTP routes.
func buildDeps(ctx context.Context, cfg *config.Config, store deepwiki.Store) (routes.Deps, error) {
	secret, err := cfg.JWTSecret()
	if err != nil {
		return routes.Deps{}, err
	}
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return routes.Deps{}, err
	}
	tokens, err := auth.NewTokenIssuer([]byte(secret), ttl)
	if err != nil {
		return routes.Deps{}, err
	}

	var encryptor *crypto.Encryptor
	if hexKey := cfg.EncryptionKeyHex(); hexKey != "" {
		encryptor, err = crypto.NewFromHex(hexKey)
		if err != nil {
			return routes.Deps{}, err
		}
	}

	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Users:             wiki.NewUsers(store),
		Wikis:             wiki.NewWikis(store),
		Pages:             wiki.NewPages(store),
		Settings:          wiki.NewSettings(store, encryptor),
		Uploads:           wiki.NewUploads(store, objects),
		Search:            wiki.NewSearch(store),
		Tokens:            tokens,
		Renderer:          markdown.NewRenderer(),
		Metrics:           metrics.New(),
		AllowRegistration: cfg.Auth.RegistrationEnabled,
	}, nil
}

func buildObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return storage.NewMemoryStore(), nil
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, "")
		if err != nil {
			return nil, err
		}
		return storage.WithPrefix(gcs, cfg.Storage.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage.backend %q (want memory or gcs): %w",
			cfg.Storage.Backend, deepwiki.ErrInvalidConfig)
	}
}
