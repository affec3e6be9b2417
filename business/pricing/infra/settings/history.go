package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/app"
	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

const maxHistoryLimit = 500

var _ app.HistoryRecorder = (*History)(nil)

// History stores calculation snapshots. Records are written once and read
// back as stored.
type History struct {
	db    *sql.DB
	now   func() time.Time
	idGen func() string
}

func NewHistory(db *sql.DB) *History {
	return &History{
		db:    db,
		now:   time.Now,
		idGen: func() string { return ulid.Make().String() },
	}
}

func (h *History) Record(ctx context.Context, dir domain.Direction, input decimal.Decimal, result domain.CalculationResult) (domain.HistoryRecord, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return domain.HistoryRecord{}, apperror.Wrap(err, apperror.CodeStorageError, "encode calculation result")
	}

	rec := domain.HistoryRecord{
		ID:        h.idGen(),
		Direction: dir,
		Input:     input,
		Result:    result,
		CreatedAt: h.now().UTC().Truncate(time.Millisecond),
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO calculation_history (id, direction, input, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Direction), rec.Input.String(), string(payload), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return domain.HistoryRecord{}, apperror.Wrap(err, apperror.CodeStorageError, "insert calculation history")
	}
	return rec, nil
}

func (h *History) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, direction, input, result, created_at
		FROM calculation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "query calculation history")
	}
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var (
			rec       domain.HistoryRecord
			direction string
			input     string
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &direction, &input, &payload, &createdAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "scan calculation history")
		}

		rec.Direction = domain.Direction(direction)
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		if rec.Input, err = decimal.NewFromString(input); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "decode history input")
		}
		if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "decode history result")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "iterate calculation history")
	}
	return out, nil
}
