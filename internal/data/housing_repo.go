package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/konutdata/hpi-processor/internal/data/database"
	"github.com/konutdata/hpi-processor/internal/data/pgxutil"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	apperrors "github.com/konutdata/hpi-processor/internal/errors"
)

// HousingRepo provides database operations for the housing_price_index table.
type HousingRepo struct {
	DB *sql.DB
}

// NewHousingRepo creates a new HousingRepo instance with the given database connection.
func NewHousingRepo(db *sql.DB) *HousingRepo {
	return &HousingRepo{DB: db}
}

// getHousingColumnList returns a slice of housing column names for use with the query builder.
func getHousingColumnList() []string {
	return []string{
		"id", "tarih", "istanbul_turkiye", "yeni_yeni_olmayan_konut", "fiyat_endeksi", "created_at", "updated_at",
	}
}

// EnsureSchema creates the housing_price_index table and its indexes when
// missing. Safe to call repeatedly; each statement runs outside any import
// transaction and commits on its own.
func (r *HousingRepo) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS housing_price_index (
			id SERIAL PRIMARY KEY,
			tarih DATE NOT NULL,
			istanbul_turkiye VARCHAR(50) NOT NULL,
			yeni_yeni_olmayan_konut VARCHAR(50) NOT NULL,
			fiyat_endeksi DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(tarih, istanbul_turkiye, yeni_yeni_olmayan_konut)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_housing_tarih ON housing_price_index(tarih)`,
		`CREATE INDEX IF NOT EXISTS idx_housing_location ON housing_price_index(istanbul_turkiye)`,
	}

	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure housing schema: %w", apperrors.MapDBError(err))
		}
	}

	return nil
}

// upsertHousingQuery writes one row keyed on the natural key. Existing rows
// keep their created_at; only the index value and updated_at change.
const upsertHousingQuery = `
	INSERT INTO housing_price_index (tarih, istanbul_turkiye, yeni_yeni_olmayan_konut, fiyat_endeksi)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (tarih, istanbul_turkiye, yeni_yeni_olmayan_konut)
	DO UPDATE SET
		fiyat_endeksi = EXCLUDED.fiyat_endeksi,
		updated_at = CURRENT_TIMESTAMP`

// UpsertRows writes all rows in a single transaction using pgx batching.
// Each row either inserts or overwrites its natural-key match, so a key
// repeated within one batch resolves to the last occurrence. Returns the
// database-reported affected count summed across rows.
func (r *HousingRepo) UpsertRows(ctx context.Context, rows []model.HousingRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var affected int64
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
			ReadOnly:  false,
		},
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, row := range rows {
				batch.Queue(upsertHousingQuery, row.Date.Time, row.Region, row.Category, row.IndexValue)
			}

			br := tx.SendBatch(ctx, batch)
			for i := range rows {
				ct, err := br.Exec()
				if err != nil {
					return fmt.Errorf("upsert housing row %d: %w", i, err)
				}
				affected += ct.RowsAffected()
			}

			if cerr := br.Close(); cerr != nil {
				return fmt.Errorf("batch close: %w", cerr)
			}
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("upsert housing rows: %w", apperrors.MapDBError(err))
	}

	return affected, nil
}

// List retrieves housing records matching the filter, newest first with
// region and category as tie-breakers.
func (r *HousingRepo) List(ctx context.Context, filter model.HousingFilter) ([]*model.HousingRecord, error) {
	queryOpts := []database.ListQueryOption{
		database.WithColumns(getHousingColumnList()...),
		database.WithOrdering("tarih", "DESC"),
		database.WithOrdering("istanbul_turkiye", "ASC"),
		database.WithOrdering("yeni_yeni_olmayan_konut", "ASC"),
	}

	if filter.Location != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("istanbul_turkiye", database.Equal, filter.Location),
		))
	}
	if filter.Category != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("yeni_yeni_olmayan_konut", database.Equal, filter.Category),
		))
	}
	if filter.StartDate != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("tarih", database.GreaterThanOrEqual, filter.StartDate.Time),
		))
	}
	if filter.EndDate != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("tarih", database.LessThanOrEqual, filter.EndDate.Time),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("housing_price_index", queryOpts...))

	var records []*model.HousingRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		records, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.HousingRecord])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list housing data: %w", apperrors.MapDBError(err))
	}

	return records, nil
}

// Stats computes summary indicators for one (location, category) series.
// Returns ErrNoHousingData when the series has no records at all.
func (r *HousingRepo) Stats(ctx context.Context, location, category string) (*model.HousingStats, error) {
	var (
		lastDate  time.Time
		lastValue float64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT tarih, fiyat_endeksi
		FROM housing_price_index
		WHERE istanbul_turkiye = $1 AND yeni_yeni_olmayan_konut = $2
		ORDER BY tarih DESC LIMIT 1`, location, category).Scan(&lastDate, &lastValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoHousingData
		}
		return nil, fmt.Errorf("get latest housing record: %w", apperrors.MapDBError(err))
	}

	var firstValue float64
	err = r.DB.QueryRowContext(ctx, `
		SELECT fiyat_endeksi
		FROM housing_price_index
		WHERE istanbul_turkiye = $1 AND yeni_yeni_olmayan_konut = $2
		ORDER BY tarih ASC LIMIT 1`, location, category).Scan(&firstValue)
	if err != nil {
		return nil, fmt.Errorf("get first housing record: %w", apperrors.MapDBError(err))
	}

	// Closest record at or before one year prior to the latest; series that
	// do not reach back a full year fall back to their earliest record.
	oneYearAgo := lastDate.AddDate(-1, 0, 0)
	var yearAgoValue float64
	err = r.DB.QueryRowContext(ctx, `
		SELECT fiyat_endeksi
		FROM housing_price_index
		WHERE istanbul_turkiye = $1 AND yeni_yeni_olmayan_konut = $2 AND tarih <= $3
		ORDER BY tarih DESC LIMIT 1`, location, category, oneYearAgo).Scan(&yearAgoValue)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.DB.QueryRowContext(ctx, `
			SELECT fiyat_endeksi
			FROM housing_price_index
			WHERE istanbul_turkiye = $1 AND yeni_yeni_olmayan_konut = $2
			ORDER BY tarih ASC LIMIT 1`, location, category).Scan(&yearAgoValue)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get year-ago housing record: %w", apperrors.MapDBError(err))
	}

	var maxValue, minValue float64
	err = r.DB.QueryRowContext(ctx, `
		SELECT MAX(fiyat_endeksi), MIN(fiyat_endeksi)
		FROM housing_price_index
		WHERE istanbul_turkiye = $1 AND yeni_yeni_olmayan_konut = $2`, location, category).Scan(&maxValue, &minValue)
	if err != nil {
		return nil, fmt.Errorf("get housing min/max: %w", apperrors.MapDBError(err))
	}

	stats := &model.HousingStats{
		LastIndex: lastValue,
		LastDate:  model.NewDate(lastDate),
		MaxValue:  maxValue,
		MinValue:  minValue,
	}
	if firstValue > 0 {
		stats.ChangeFromStart = (lastValue - firstValue) / firstValue * 100
	}
	if yearAgoValue > 0 {
		stats.YearOverYear = (lastValue - yearAgoValue) / yearAgoValue * 100
	}

	return stats, nil
}
