package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charles1614/deepwiki-sub003/internal/retry"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns limits concurrent connections so a busy wiki does not
	// exhaust the database's connection budget.
	DefaultMaxConns = 10

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections warm between request bursts.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		fmt.Println(notice.Message)
	}
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config    *deepwiki.ConnectionConfig
	retryOpts retry.Options
	logger    deepwiki.Logger
}

// NewStandardConnector creates a StandardConnector. opts governs both the
// connection attempts and the Store returned by Connect.
func NewStandardConnector(config *deepwiki.ConnectionConfig, opts retry.Options, logger deepwiki.Logger) *StandardConnector {
	return &StandardConnector{
		config:    config,
		retryOpts: opts,
		logger:    logger,
	}
}

// Connect establishes a connection pool using standard authentication with
// automatic retry, returning it wrapped in a retrying Store.
func (c *StandardConnector) Connect(ctx context.Context) (deepwiki.Store, error) {
	retrier, err := retry.New(c.retryOpts, retry.NewServerClosedClassifier(), c.logger)
	if err != nil {
		return nil, err
	}

	connStr := BuildConnectionString(c.config)
	pool, err := connectPool(ctx, retrier, connStr, c.config)
	if err != nil {
		return nil, err
	}

	return NewRetryingStore(pool, retrier), nil
}

// connectPool parses connStr, opens the pool, and verifies it with a ping,
// retrying transient failures through the given retrier.
func connectPool(ctx context.Context, retrier *retry.Retrier, connStr string, config *deepwiki.ConnectionConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		pool, opErr = openPool(ctx, connStr, config)
		return opErr
	})

	if err != nil {
		return nil, err
	}

	return pool, nil
}

// openPool performs a single connection attempt: parse, open, ping.
func openPool(ctx context.Context, connStr string, config *deepwiki.ConnectionConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return pool, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *deepwiki.ConnectionConfig, opts retry.Options, logger deepwiki.Logger) (deepwiki.Connector, error) {
	switch config.AuthMethod {
	case deepwiki.AuthMethodStandard:
		return NewStandardConnector(config, opts, logger), nil
	case deepwiki.AuthMethodAWSIAM:
		return newAWSConnector(config, opts, logger)
	case deepwiki.AuthMethodGoogleIAM:
		return newGoogleConnector(config, opts, logger)
	case deepwiki.AuthMethodAzureEntraID:
		return newAzureConnector(config, opts, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, deepwiki.ErrUnsupportedAuthMethod)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *deepwiki.ConnectionConfig, opts retry.Options, logger deepwiki.Logger) (deepwiki.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", opts, logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *deepwiki.ConnectionConfig, opts retry.Options, logger deepwiki.Logger) (deepwiki.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires an instance connection name (project:region:instance)")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a database username")
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, opts, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// If explicit credentials (tenant, client, secret) are provided, uses Service Principal auth.
// Otherwise, falls back to DefaultAzureCredential chain.
func newAzureConnector(config *deepwiki.ConnectionConfig, opts retry.Options, logger deepwiki.Logger) (deepwiki.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", opts, logger), nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $DEEPWIKI_DB_PASSWORD)
  - Wrong username
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Then run "deepwiki init" to set up the schema.

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but sslmode is wrong
  - Certificate verification failed (try sslmode: require)
  - Client certificates missing

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - Connection pool exhausted on server
  - max_connections limit reached in postgresql.conf
  - Stale connections from previous deployments

Try: SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s';

Original error: %w`, database, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
