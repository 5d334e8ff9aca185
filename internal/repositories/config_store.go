package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videoserver/provider/internal/config"
	"github.com/videoserver/provider/internal/db"
	"github.com/videoserver/provider/internal/videos"
)

// DefaultIntegrationName is the integration_settings row used for webhooks.
const DefaultIntegrationName = "default"

// PostgresConfigStore reads the provider configuration record on every call.
type PostgresConfigStore struct {
	pool       db.Pool
	externalID string
}

// NewPostgresConfigStore reads the record stored under config.ProviderExternalID.
func NewPostgresConfigStore(pool db.Pool) *PostgresConfigStore {
	return &PostgresConfigStore{pool: pool, externalID: config.ProviderExternalID}
}

// Load returns the current provider configuration.
func (s *PostgresConfigStore) Load(ctx context.Context) (config.ProviderConfig, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return config.ProviderConfig{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT backend_url, jwt_secret, validate_response_status, persist_generated_uuid
        FROM provider_config
        WHERE external_id = $1
    `, s.externalID)

	var cfg config.ProviderConfig
	if err := row.Scan(&cfg.BackendURL, &cfg.JWTSecret, &cfg.ValidateResponseStatus, &cfg.PersistGeneratedUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return config.ProviderConfig{}, fmt.Errorf("provider config %s: %w", s.externalID, ErrNotFound)
		}
		return config.ProviderConfig{}, fmt.Errorf("select provider config: %w", err)
	}

	return cfg, nil
}

// Save upserts the provider configuration record.
func (s *PostgresConfigStore) Save(ctx context.Context, cfg config.ProviderConfig) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO provider_config (external_id, backend_url, jwt_secret, validate_response_status, persist_generated_uuid)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (external_id)
        DO UPDATE SET backend_url = EXCLUDED.backend_url,
                      jwt_secret = EXCLUDED.jwt_secret,
                      validate_response_status = EXCLUDED.validate_response_status,
                      persist_generated_uuid = EXCLUDED.persist_generated_uuid
    `, s.externalID, cfg.BackendURL, cfg.JWTSecret, cfg.ValidateResponseStatus, cfg.PersistGeneratedUUID)
	if err != nil {
		return fmt.Errorf("upsert provider config: %w", err)
	}

	return nil
}

// PostgresIntegrationStore reads the integration server URL from integration_settings.
type PostgresIntegrationStore struct {
	pool db.Pool
	name string
}

// NewPostgresIntegrationStore reads the DefaultIntegrationName row.
func NewPostgresIntegrationStore(pool db.Pool) *PostgresIntegrationStore {
	return &PostgresIntegrationStore{pool: pool, name: DefaultIntegrationName}
}

// IntegrationServerURL returns the configured base URL, or "" when none is stored.
func (s *PostgresIntegrationStore) IntegrationServerURL(ctx context.Context) (string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var url string
	err = conn.QueryRow(ctx, `
        SELECT server_url
        FROM integration_settings
        WHERE name = $1
    `, s.name).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select integration server url: %w", err)
	}

	return url, nil
}

var _ videos.ConfigStore = (*PostgresConfigStore)(nil)
var _ videos.IntegrationURLProvider = (*PostgresIntegrationStore)(nil)
