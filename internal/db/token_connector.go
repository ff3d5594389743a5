package db

import (
	"context"
	"fmt"
	"time"

	"github.com/charles1614/deepwiki-sub003/internal/retry"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the PostgreSQL password.
type TokenBasedConnector struct {
	config        *deepwiki.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	retryOpts     retry.Options
	logger        deepwiki.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *deepwiki.ConnectionConfig, tokenProvider TokenProvider, providerName string, opts retry.Options, logger deepwiki.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		retryOpts:     opts,
		logger:        logger,
	}
}

// Connect acquires a fresh token and establishes the connection pool.
// Token acquisition happens inside the retried operation so a replay after
// a transient failure never reuses a token that may have expired meanwhile.
func (c *TokenBasedConnector) Connect(ctx context.Context) (deepwiki.Store, error) {
	retrier, err := retry.New(c.retryOpts, retry.NewServerClosedClassifier(), c.logger)
	if err != nil {
		return nil, err
	}

	var store *RetryingStore
	err = retrier.Do(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if remaining := time.Until(expiresOn); c.logger != nil && remaining < 5*time.Minute {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token
		connStr := BuildConnectionString(&configWithToken)

		pool, err := openPool(ctx, connStr, c.config)
		if err != nil {
			return err
		}

		store = NewRetryingStore(pool, retrier)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return store, nil
}
