package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charles1614/deepwiki-sub003/internal/retry"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// GoogleCloudSQLConnector implements the Connector interface for Google Cloud SQL
// using IAM database authentication via the Cloud SQL Go Connector.
type GoogleCloudSQLConnector struct {
	config    *deepwiki.ConnectionConfig
	instance  string
	retryOpts retry.Options
	logger    deepwiki.Logger
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
// instance is the instance connection name in format: project:region:instance
func NewGoogleCloudSQLConnector(config *deepwiki.ConnectionConfig, instance string, opts retry.Options, logger deepwiki.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:    config,
		instance:  instance,
		retryOpts: opts,
		logger:    logger,
	}
}

// Connect establishes a connection pool using Google Cloud SQL IAM authentication.
// The Cloud SQL Go Connector handles authentication, TLS, and connection management.
// Closing the returned Store also releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (deepwiki.Store, error) {
	retrier, err := retry.New(c.retryOpts, retry.NewServerClosedClassifier(), c.logger)
	if err != nil {
		return nil, err
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable",
		c.instance,
		c.config.Username,
		c.config.Database,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	configurePool(poolConfig)

	var pool *pgxpool.Pool
	err = retrier.Do(ctx, func(ctx context.Context) error {
		p, opErr := pgxpool.NewWithConfig(ctx, poolConfig)
		if opErr != nil {
			return fmt.Errorf("failed to connect to database: %w", opErr)
		}
		if opErr := p.Ping(ctx); opErr != nil {
			p.Close()
			return fmt.Errorf("failed to ping database: %w", opErr)
		}
		pool = p
		return nil
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	return &dialerStore{
		RetryingStore: NewRetryingStore(pool, retrier),
		dialer:        dialer,
	}, nil
}

// dialerStore ties the Cloud SQL dialer's lifetime to the Store's.
type dialerStore struct {
	*RetryingStore
	dialer *cloudsqlconn.Dialer
}

func (s *dialerStore) Close() {
	s.RetryingStore.Close()
	s.dialer.Close()
}
