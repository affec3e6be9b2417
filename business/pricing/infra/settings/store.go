package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fd1az/resale-pricer/business/pricing/app"
	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

const pricingSettingsName = "pricing"

var _ app.SettingsStore = (*Store)(nil)

// Store keeps the user's pricing configuration. Without a saved document it
// serves the defaults it was built with.
type Store struct {
	db       *sql.DB
	defaults domain.PricingConfiguration
	now      func() time.Time
}

// NewStore creates a Store over an opened and migrated database.
func NewStore(db *sql.DB, defaults domain.PricingConfiguration) *Store {
	return &Store{db: db, defaults: defaults, now: time.Now}
}

// Current returns the saved configuration, or the defaults when none is saved.
func (s *Store) Current(ctx context.Context) (domain.PricingConfiguration, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM settings WHERE name = ?`, pricingSettingsName,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return domain.PricingConfiguration{}, apperror.Wrap(err, apperror.CodeStorageError, "read pricing settings")
	}

	var cfg domain.PricingConfiguration
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return domain.PricingConfiguration{}, apperror.Wrap(err, apperror.CodeStorageError, "decode pricing settings")
	}
	return cfg, nil
}

// Save rejects invalid configurations before writing.
func (s *Store) Save(ctx context.Context, cfg domain.PricingConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(cfg)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "encode pricing settings")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		pricingSettingsName, string(doc), s.now().UnixMilli(),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "write pricing settings")
	}
	return nil
}

// Reset drops the saved configuration so the defaults apply again.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, pricingSettingsName); err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "reset pricing settings")
	}
	return nil
}

// UpdatedAt reports when settings were last saved. ok is false while the
// defaults are in effect.
func (s *Store) UpdatedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	var ms int64
	err = s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM settings WHERE name = ?`, pricingSettingsName,
	).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, apperror.Wrap(err, apperror.CodeStorageError, "read settings timestamp")
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

// Ping backs the settings_store health check. It fails when the database is
// unreachable or the settings table is missing.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&n); err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "ping settings store")
	}
	return nil
}
