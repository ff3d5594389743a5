package wiki

import (
	"context"
	"fmt"
	"time"

	"github.com/charles1614/deepwiki-sub003/internal/crypto"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Settings manages admin-editable key/value configuration. Secret values
// are AES-GCM sealed at rest and transparently opened on read.
type Settings struct {
	store     deepwiki.Store
	encryptor *crypto.Encryptor
}

func NewSettings(store deepwiki.Store, encryptor *crypto.Encryptor) *Settings {
	return &Settings{store: store, encryptor: encryptor}
}

// Put stores a setting, replacing any existing value under the key.
func (s *Settings) Put(ctx context.Context, key, value string, encrypted bool) (*deepwiki.Setting, error) {
	stored := value
	if encrypted {
		if s.encryptor == nil {
			return nil, fmt.Errorf("encrypted settings require an encryption key: %w", deepwiki.ErrInvalidConfig)
		}
		sealed, err := s.encryptor.Encrypt(value)
		if err != nil {
			return nil, err
		}
		stored = sealed
	}

	now := time.Now().UTC()
	_, err := s.store.Exec(ctx,
		`INSERT INTO settings (key, value, encrypted, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = $2, encrypted = $3, updated_at = $4`,
		key, stored, encrypted, now)
	if err != nil {
		return nil, err
	}

	return &deepwiki.Setting{Key: key, Value: value, Encrypted: encrypted, UpdatedAt: now}, nil
}

// Get returns a setting with secret values decrypted.
func (s *Settings) Get(ctx context.Context, key string) (*deepwiki.Setting, error) {
	var setting deepwiki.Setting
	err := s.store.QueryRow(ctx,
		`SELECT key, value, encrypted, updated_at FROM settings WHERE key = $1`,
		[]any{&setting.Key, &setting.Value, &setting.Encrypted, &setting.UpdatedAt}, key)
	if err != nil {
		return nil, err
	}

	if setting.Encrypted {
		if s.encryptor == nil {
			return nil, fmt.Errorf("encrypted settings require an encryption key: %w", deepwiki.ErrInvalidConfig)
		}
		plain, err := s.encryptor.Decrypt(setting.Value)
		if err != nil {
			return nil, err
		}
		setting.Value = plain
	}
	return &setting, nil
}

// List returns all settings. Secret values are masked, not decrypted; the
// admin UI shows presence, never content.
func (s *Settings) List(ctx context.Context) ([]deepwiki.Setting, error) {
	rows, err := s.store.Query(ctx,
		`SELECT key, value, encrypted, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []deepwiki.Setting
	for rows.Next() {
		var setting deepwiki.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.Encrypted, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		if setting.Encrypted {
			setting.Value = "********"
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (s *Settings) Delete(ctx context.Context, key string) error {
	tag, err := s.store.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return deepwiki.ErrNotFound
	}
	return nil
}
