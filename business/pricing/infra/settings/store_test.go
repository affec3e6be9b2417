package settings

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "pricer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore_CurrentReturnsDefaultsUntilSaved(t *testing.T) {
	ctx := context.Background()
	defaults := domain.DefaultConfiguration()
	store := NewStore(newTestDB(t), defaults)

	got, err := store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Equal(defaults.ExchangeRate))

	_, ok, err := store.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t), domain.DefaultConfiguration())
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	cfg := domain.DefaultConfiguration()
	cfg.ExchangeRate = decimal.RequireFromString("148.25")
	cfg.Shipping.Mode = domain.ShippingModeTiered
	cfg.Shipping.MethodOverride = domain.MethodEMS
	cfg.Shipping.Parcel = domain.Parcel{
		ActualWeight: 750,
		Length:       decimal.RequireFromString("30"),
		Width:        decimal.RequireFromString("20"),
		Height:       decimal.RequireFromString("10.5"),
	}

	require.NoError(t, store.Save(ctx, cfg))

	got, err := store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Equal(cfg.ExchangeRate), "exchange rate = %s", got.ExchangeRate)
	assert.Equal(t, domain.ShippingModeTiered, got.Shipping.Mode)
	assert.Equal(t, domain.MethodEMS, got.Shipping.MethodOverride)
	assert.Equal(t, domain.Grams(750), got.Shipping.Parcel.ActualWeight)
	assert.True(t, got.Shipping.Parcel.Height.Equal(cfg.Shipping.Parcel.Height))

	updated, ok, err := store.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixed, updated)

	// a second save overwrites in place
	cfg.ExchangeRate = decimal.RequireFromString("160")
	require.NoError(t, store.Save(ctx, cfg))
	got, err = store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Equal(decimal.RequireFromString("160")))

	require.NoError(t, store.Reset(ctx))
	got, err = store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.ExchangeRate.Equal(domain.DefaultConfiguration().ExchangeRate))
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t), domain.DefaultConfiguration())

	cfg := domain.DefaultConfiguration()
	cfg.MarketplaceFeeRate = decimal.RequireFromString("80")
	cfg.AdFeeRate = decimal.RequireFromString("20")

	err := store.Save(ctx, cfg)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidConfiguration, apperror.GetCode(err))

	_, ok, err := store.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "rejected settings must not be written")
}

func TestStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db, domain.DefaultConfiguration())

	_, err := db.ExecContext(ctx, `INSERT INTO settings (name, document, updated_at) VALUES (?, ?, ?)`,
		pricingSettingsName, "{not json", 0)
	require.NoError(t, err)

	_, err = store.Current(ctx)
	assert.Equal(t, apperror.CodeStorageError, apperror.GetCode(err))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, NewStore(db, domain.DefaultConfiguration()).Ping(context.Background()))
}

func TestStore_Ping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db, domain.DefaultConfiguration())
	require.NoError(t, store.Ping(ctx))

	_, err := db.ExecContext(ctx, `DROP TABLE settings`)
	require.NoError(t, err)
	err = store.Ping(ctx)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeStorageError, apperror.GetCode(err))

	require.NoError(t, db.Close())
	assert.Error(t, store.Ping(ctx))
}
