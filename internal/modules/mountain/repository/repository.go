package repository

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

//go:embed sql/insert-record.sql
var insertRecordSQL string

//go:embed sql/get-last-records.sql
var getLastRecordsSQL string

//go:embed sql/get-recent-records.sql
var getRecentRecordsSQL string

//go:embed sql/get-records-count.sql
var getRecordsCountSQL string

//go:embed sql/get-last-posted.sql
var getLastPostedSQL string

// HistoryRepository is the sqlite-backed classification log.
// It satisfies decision.HistoryStore.
type HistoryRepository interface {
	AppendRecord(rec types.HistoryRecord) error
	ReadLastN(n int) ([]types.HistoryRecord, error)
	GetRecent(limit int, offset int) ([]types.HistoryRecord, error)
	GetLastPosted() (*types.HistoryRecord, error)
	Count() (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) HistoryRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) AppendRecord(rec types.HistoryRecord) error {
	if !rec.Label.Valid() {
		return &types.UnknownLabelError{Value: string(rec.Label)}
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("append record: zero timestamp")
	}
	posted := 0
	if rec.WasPosted {
		posted = 1
	}
	tsStr := rec.Timestamp.UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Exec(insertRecordSQL, tsStr, string(rec.Label), posted); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ReadLastN returns the newest n records in append order.
func (r *repositoryImpl) ReadLastN(n int) ([]types.HistoryRecord, error) {
	if n <= 0 {
		return []types.HistoryRecord{}, nil
	}
	rows, err := r.db.Query(getLastRecordsSQL, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close last records rows", "error", err)
		}
	}()
	out, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetRecent pages through the history newest first.
func (r *repositoryImpl) GetRecent(limit int, offset int) ([]types.HistoryRecord, error) {
	rows, err := r.db.Query(getRecentRecordsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close recent records rows", "error", err)
		}
	}()
	return scanRecords(rows)
}

// GetLastPosted returns nil when nothing has been announced yet.
func (r *repositoryImpl) GetLastPosted() (*types.HistoryRecord, error) {
	rows, err := r.db.Query(getLastPostedSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close last posted rows", "error", err)
		}
	}()
	out, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *repositoryImpl) Count() (int, error) {
	var n int
	err := r.db.QueryRow(getRecordsCountSQL).Scan(&n)
	return n, err
}

func scanRecords(rows *sql.Rows) ([]types.HistoryRecord, error) {
	out := []types.HistoryRecord{}
	for rows.Next() {
		var (
			ts     string
			label  string
			posted int
		)
		if err := rows.Scan(&ts, &label, &posted); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		l, err := types.ParseLabel(label)
		if err != nil {
			return nil, fmt.Errorf("decode record at %s: %w", ts, err)
		}
		out = append(out, types.HistoryRecord{Timestamp: t, Label: l, WasPosted: posted != 0})
	}
	return out, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err == nil {
		return t.UTC(), nil
	}
	t, err2 := time.Parse(time.RFC3339, ts)
	if err2 != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, errors.Join(err, err2))
	}
	return t.UTC(), nil
}
