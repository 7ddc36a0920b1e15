package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/mocks"
)

const sampleCSV = `tarih,istanbul_turkiye,yeni_yeni_olmayan_konut,fiyat_endeksi
2010-01-01,İstanbul,Yeni Konut,35.9
2010-01-01,Türkiye,Yeni Konut,44.9
2010-02-01,İstanbul,Yeni Konut,36.6`

func newTestImportService(t *testing.T) (*ImportService, *mocks.MockHousingRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHousingRepository(ctrl)
	svc := NewImportService(ImportServiceOptions{Repo: repo})
	return svc, repo
}

func TestImportService_ImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and upserts all rows", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)

		var captured []model.HousingRow
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rows []model.HousingRow) (int64, error) {
				captured = rows
				return int64(len(rows)), nil
			},
		)

		result, err := svc.ImportCSV(ctx, strings.NewReader(sampleCSV))
		require.NoError(t, err)
		assert.Equal(t, 3, result.RowsRead)
		assert.Equal(t, int64(3), result.RowsAffected)

		require.Len(t, captured, 3)
		assert.Equal(t, "2010-01-01", captured[0].Date.String())
		assert.Equal(t, "İstanbul", captured[0].Region)
		assert.Equal(t, "Yeni Konut", captured[0].Category)
		assert.Equal(t, 35.9, captured[0].IndexValue)
		assert.Equal(t, "Türkiye", captured[1].Region)
		assert.Equal(t, 36.6, captured[2].IndexValue)
	})

	t.Run("header columns matched by name", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		reordered := `fiyat_endeksi,yeni_yeni_olmayan_konut,istanbul_turkiye,tarih,kaynak
35.9,Yeni Konut,İstanbul,2010-01-01,TCMB`

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rows []model.HousingRow) (int64, error) {
				require.Len(t, rows, 1)
				assert.Equal(t, "2010-01-01", rows[0].Date.String())
				assert.Equal(t, "İstanbul", rows[0].Region)
				assert.Equal(t, "Yeni Konut", rows[0].Category)
				assert.Equal(t, 35.9, rows[0].IndexValue)
				return 1, nil
			},
		)

		result, err := svc.ImportCSV(ctx, strings.NewReader(reordered))
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowsRead)
	})

	t.Run("empty input", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Len(0)).Return(int64(0), nil)

		result, err := svc.ImportCSV(ctx, strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, 0, result.RowsRead)
		assert.Equal(t, int64(0), result.RowsAffected)
	})

	t.Run("header only", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Len(0)).Return(int64(0), nil)

		result, err := svc.ImportCSV(ctx,
			strings.NewReader("tarih,istanbul_turkiye,yeni_yeni_olmayan_konut,fiyat_endeksi\n"))
		require.NoError(t, err)
		assert.Equal(t, 0, result.RowsRead)
	})

	t.Run("missing required column", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)

		_, err := svc.ImportCSV(ctx, strings.NewReader("tarih,istanbul_turkiye,yeni_yeni_olmayan_konut\n2010-01-01,İstanbul,Yeni Konut\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing column "fiyat_endeksi"`)
	})

	t.Run("malformed index value aborts the import", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		bad := `tarih,istanbul_turkiye,yeni_yeni_olmayan_konut,fiyat_endeksi
2010-01-01,İstanbul,Yeni Konut,35.9
2010-02-01,İstanbul,Yeni Konut,not-a-number`

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)

		_, err := svc.ImportCSV(ctx, strings.NewReader(bad))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "csv line 3")
		assert.Contains(t, err.Error(), "parse index value")
	})

	t.Run("malformed date aborts the import", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		bad := `tarih,istanbul_turkiye,yeni_yeni_olmayan_konut,fiyat_endeksi
01/02/2010,İstanbul,Yeni Konut,35.9`

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)

		_, err := svc.ImportCSV(ctx, strings.NewReader(bad))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "csv line 2")
	})

	t.Run("ragged row aborts the import", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		bad := `tarih,istanbul_turkiye,yeni_yeni_olmayan_konut,fiyat_endeksi
2010-01-01,İstanbul,Yeni Konut,35.9
2010-02-01,İstanbul`

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)

		_, err := svc.ImportCSV(ctx, strings.NewReader(bad))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read csv line 3")
	})

	t.Run("schema failure aborts before parsing", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		schemaErr := errors.New("connection refused")
		repo.EXPECT().EnsureSchema(gomock.Any()).Return(schemaErr)

		_, err := svc.ImportCSV(ctx, strings.NewReader(sampleCSV))
		require.ErrorIs(t, err, schemaErr)
	})

	t.Run("upsert failure propagates", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		upsertErr := errors.New("deadlock detected")
		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Any()).Return(int64(0), upsertErr)

		_, err := svc.ImportCSV(ctx, strings.NewReader(sampleCSV))
		require.ErrorIs(t, err, upsertErr)
	})
}

func TestImportService_ImportFile(t *testing.T) {
	ctx := context.Background()

	t.Run("imports from a file path", func(t *testing.T) {
		svc, repo := newTestImportService(t)

		path := filepath.Join(t.TempDir(), "housing.csv")
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

		repo.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
		repo.EXPECT().UpsertRows(gomock.Any(), gomock.Len(3)).Return(int64(3), nil)

		result, err := svc.ImportFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 3, result.RowsRead)
		assert.Equal(t, int64(3), result.RowsAffected)
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newTestImportService(t)

		_, err := svc.ImportFile(ctx, filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open csv file")
	})
}
