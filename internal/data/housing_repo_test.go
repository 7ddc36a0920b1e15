package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/testutil"
)

func seedHousingRows(t *testing.T, repo *HousingRepo) {
	t.Helper()

	rows := []model.HousingRow{
		{Date: testutil.MustDate(t, "2023-04-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 140.00},
		{Date: testutil.MustDate(t, "2023-03-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 130.50},
		{Date: testutil.MustDate(t, "2023-03-01"), Region: "İstanbul", Category: "Yeni olmayan konut", IndexValue: 110.00},
		{Date: testutil.MustDate(t, "2023-02-01"), Region: "Türkiye", Category: "Yeni Konut", IndexValue: 115.25},
		{Date: testutil.MustDate(t, "2023-01-01"), Region: "Türkiye", Category: "Yeni olmayan konut", IndexValue: 100.00},
	}
	affected, err := repo.UpsertRows(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, int64(len(rows)), affected)
}

func TestHousingRepo_EnsureSchema(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	db := testutil.SetupTestDB(t)
	repo := NewHousingRepo(db)
	ctx := context.Background()

	// Migrations already created the table; repeated calls must be no-ops.
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err := repo.UpsertRows(ctx, []model.HousingRow{
		{Date: testutil.MustDate(t, "2023-01-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 101.10},
	})
	require.NoError(t, err)
}

func TestHousingRepo_UpsertRows(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	db := testutil.SetupTestDB(t)
	repo := NewHousingRepo(db)
	ctx := context.Background()

	t.Run("empty input", func(t *testing.T) {
		affected, err := repo.UpsertRows(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})

	t.Run("insert then overwrite", func(t *testing.T) {
		row := model.HousingRow{
			Date:       testutil.MustDate(t, "2023-05-01"),
			Region:     "İstanbul",
			Category:   "Yeni Konut",
			IndexValue: 150.00,
		}
		affected, err := repo.UpsertRows(ctx, []model.HousingRow{row})
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		var createdBefore, updatedBefore time.Time
		require.NoError(t, db.QueryRowContext(ctx, `
			SELECT created_at, updated_at FROM housing_price_index
			WHERE tarih = $1 AND istanbul_turkiye = $2 AND yeni_yeni_olmayan_konut = $3`,
			row.Date.Time, row.Region, row.Category).Scan(&createdBefore, &updatedBefore))

		row.IndexValue = 155.75
		affected, err = repo.UpsertRows(ctx, []model.HousingRow{row})
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		records, err := repo.List(ctx, model.HousingFilter{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 155.75, records[0].IndexValue)

		var createdAfter, updatedAfter time.Time
		require.NoError(t, db.QueryRowContext(ctx, `
			SELECT created_at, updated_at FROM housing_price_index
			WHERE tarih = $1 AND istanbul_turkiye = $2 AND yeni_yeni_olmayan_konut = $3`,
			row.Date.Time, row.Region, row.Category).Scan(&createdAfter, &updatedAfter))
		assert.True(t, createdAfter.Equal(createdBefore), "created_at must survive the overwrite")
		assert.True(t, updatedAfter.After(updatedBefore), "updated_at must move forward")
	})

	t.Run("duplicate key within one batch, last occurrence wins", func(t *testing.T) {
		date := testutil.MustDate(t, "2023-06-01")
		affected, err := repo.UpsertRows(ctx, []model.HousingRow{
			{Date: date, Region: "Türkiye", Category: "Yeni Konut", IndexValue: 120.00},
			{Date: date, Region: "Türkiye", Category: "Yeni Konut", IndexValue: 121.50},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)

		records, err := repo.List(ctx, model.HousingFilter{Location: "Türkiye"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 121.50, records[0].IndexValue)
	})
}

func TestHousingRepo_List(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	db := testutil.SetupTestDB(t)
	repo := NewHousingRepo(db)
	ctx := context.Background()

	seedHousingRows(t, repo)

	t.Run("no filter, newest first with tie-breakers", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{})
		require.NoError(t, err)
		require.Len(t, records, 5)

		assert.Equal(t, "2023-04-01", records[0].Date.String())
		assert.Equal(t, "2023-03-01", records[1].Date.String())
		assert.Equal(t, "2023-03-01", records[2].Date.String())
		// Same date and region: category breaks the tie.
		assert.Equal(t, "Yeni Konut", records[1].Category)
		assert.Equal(t, "Yeni olmayan konut", records[2].Category)
		assert.Equal(t, "2023-02-01", records[3].Date.String())
		assert.Equal(t, "2023-01-01", records[4].Date.String())

		assert.NotZero(t, records[0].ID)
		assert.WithinDuration(t, time.Now(), records[0].CreatedAt, 30*time.Second)
	})

	t.Run("location filter", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{Location: "İstanbul"})
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, rec := range records {
			assert.Equal(t, "İstanbul", rec.Region)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{Category: "Yeni Konut"})
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, rec := range records {
			assert.Equal(t, "Yeni Konut", rec.Category)
		}
	})

	t.Run("inclusive date range", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{
			StartDate: testutil.DatePtr(testutil.MustDate(t, "2023-02-01")),
			EndDate:   testutil.DatePtr(testutil.MustDate(t, "2023-03-01")),
		})
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, rec := range records {
			assert.GreaterOrEqual(t, rec.Date.String(), "2023-02-01")
			assert.LessOrEqual(t, rec.Date.String(), "2023-03-01")
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{
			Location: "İstanbul",
			Category: "Yeni Konut",
			EndDate:  testutil.DatePtr(testutil.MustDate(t, "2023-03-01")),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 130.50, records[0].IndexValue)
	})

	t.Run("no matches", func(t *testing.T) {
		records, err := repo.List(ctx, model.HousingFilter{Location: "Ankara"})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestHousingRepo_Stats(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	db := testutil.SetupTestDB(t)
	repo := NewHousingRepo(db)
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		_, err := repo.Stats(ctx, "İstanbul", "Yeni Konut")
		require.ErrorIs(t, err, ErrNoHousingData)
	})

	t.Run("full series", func(t *testing.T) {
		series := []model.HousingRow{
			{Date: testutil.MustDate(t, "2022-01-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 100.00},
			{Date: testutil.MustDate(t, "2022-06-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 110.00},
			{Date: testutil.MustDate(t, "2022-12-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 120.00},
			{Date: testutil.MustDate(t, "2023-01-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 125.00},
			{Date: testutil.MustDate(t, "2023-06-01"), Region: "İstanbul", Category: "Yeni Konut", IndexValue: 150.00},
			// A second series must not leak into the stats.
			{Date: testutil.MustDate(t, "2023-06-01"), Region: "Türkiye", Category: "Yeni Konut", IndexValue: 999.00},
		}
		_, err := repo.UpsertRows(ctx, series)
		require.NoError(t, err)

		stats, err := repo.Stats(ctx, "İstanbul", "Yeni Konut")
		require.NoError(t, err)
		assert.Equal(t, 150.00, stats.LastIndex)
		assert.Equal(t, "2023-06-01", stats.LastDate.String())
		// (150 - 100) / 100 over the whole series.
		assert.InDelta(t, 50.0, stats.ChangeFromStart, 0.001)
		// Year-ago anchor is 2022-06-01, value 110: (150 - 110) / 110.
		assert.InDelta(t, 36.3636, stats.YearOverYear, 0.001)
		assert.Equal(t, 150.00, stats.MaxValue)
		assert.Equal(t, 100.00, stats.MinValue)
	})

	t.Run("missing series", func(t *testing.T) {
		_, err := repo.Stats(ctx, "Ankara", "Yeni Konut")
		require.ErrorIs(t, err, ErrNoHousingData)
	})

	t.Run("series shorter than a year falls back to earliest", func(t *testing.T) {
		short := []model.HousingRow{
			{Date: testutil.MustDate(t, "2023-05-01"), Region: "İstanbul", Category: "Yeni olmayan konut", IndexValue: 200.00},
			{Date: testutil.MustDate(t, "2023-06-01"), Region: "İstanbul", Category: "Yeni olmayan konut", IndexValue: 210.00},
		}
		_, err := repo.UpsertRows(ctx, short)
		require.NoError(t, err)

		stats, err := repo.Stats(ctx, "İstanbul", "Yeni olmayan konut")
		require.NoError(t, err)
		assert.Equal(t, 210.00, stats.LastIndex)
		assert.InDelta(t, 5.0, stats.ChangeFromStart, 0.001)
		assert.InDelta(t, 5.0, stats.YearOverYear, 0.001)
	})
}
