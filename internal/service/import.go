package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// Column names the importer requires in the CSV header. Matching is by name,
// so column order does not matter and extra columns are ignored.
const (
	columnDate     = "tarih"
	columnRegion   = "istanbul_turkiye"
	columnCategory = "yeni_yeni_olmayan_konut"
	columnIndex    = "fiyat_endeksi"
)

// ImportServiceOptions groups dependencies for ImportService.
type ImportServiceOptions struct {
	Repo   core.HousingRepository // Required: housing data repository
	Logger *slog.Logger           // Optional: structured logger
}

// ImportService loads housing price index CSV data into the relational store.
// Each call ensures the schema, parses the whole input up front, then upserts
// every row in one transaction; any parse or database error aborts the call
// with no partial writes.
type ImportService struct {
	repo   core.HousingRepository
	logger *slog.Logger
}

// NewImportService constructs a new ImportService.
func NewImportService(opts ImportServiceOptions) *ImportService {
	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "import_service")
	}
	return &ImportService{repo: opts.Repo, logger: logger}
}

// ImportCSV imports housing records from CSV text. Empty input (no header or
// header only) reads zero rows and is not an error.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := parseHousingCSV(r)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.UpsertRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{RowsRead: len(rows), RowsAffected: affected}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "housing data imported",
			"rows_read", result.RowsRead,
			"rows_affected", result.RowsAffected,
		)
	}

	return result, nil
}

// ImportFile opens the CSV file at path and delegates to ImportCSV.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.ImportCSV(ctx, f)
}

// csvColumns holds the header positions of the required columns.
type csvColumns struct {
	date     int
	region   int
	category int
	index    int
}

func parseHousingCSV(r io.Reader) ([]model.HousingRow, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := mapHeaderColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []model.HousingRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row, err := parseHousingRecord(record, cols, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func mapHeaderColumns(header []string) (csvColumns, error) {
	cols := csvColumns{date: -1, region: -1, category: -1, index: -1}
	for i, name := range header {
		switch name {
		case columnDate:
			cols.date = i
		case columnRegion:
			cols.region = i
		case columnCategory:
			cols.category = i
		case columnIndex:
			cols.index = i
		}
	}

	required := []struct {
		name string
		pos  int
	}{
		{columnDate, cols.date},
		{columnRegion, cols.region},
		{columnCategory, cols.category},
		{columnIndex, cols.index},
	}
	for _, col := range required {
		if col.pos < 0 {
			return cols, fmt.Errorf("csv header missing column %q", col.name)
		}
	}

	return cols, nil
}

func parseHousingRecord(record []string, cols csvColumns, line int) (model.HousingRow, error) {
	date, err := model.ParseDate(record[cols.date])
	if err != nil {
		return model.HousingRow{}, fmt.Errorf("csv line %d: %w", line, err)
	}

	value, err := strconv.ParseFloat(record[cols.index], 64)
	if err != nil {
		return model.HousingRow{}, fmt.Errorf("csv line %d: parse index value %q: %w", line, record[cols.index], err)
	}

	return model.HousingRow{
		Date:       date,
		Region:     record[cols.region],
		Category:   record[cols.category],
		IndexValue: value,
	}, nil
}
