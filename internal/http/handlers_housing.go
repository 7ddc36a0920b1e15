package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/konutdata/hpi-processor/internal/data"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/service"
)

// HousingHandlers provides HTTP handlers for the housing price index dataset.
type HousingHandlers struct {
	Svc    *service.HousingService
	Import *service.ImportService
}

// importResponse reports how many CSV rows an import call touched.
type importResponse struct {
	Message      string `json:"message"`
	RowsImported int    `json:"rows_imported"`
	RowsAffected int64  `json:"rows_affected"`
}

// ImportData imports CSV text from the request body into the housing table.
// The whole import is one transaction; a failed call leaves the table as it
// was, and the response carries the underlying reason.
func (h *HousingHandlers) ImportData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CSVData *string `json:"csv_data"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.CSVData == nil {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: errors.New("missing csv_data field")},
		)
		return
	}

	result, err := h.Import.ImportCSV(r.Context(), strings.NewReader(*req.CSVData))
	if err != nil {
		WriteError(
			w,
			ErrorParams{Code: http.StatusInternalServerError, ErrCode: "import_failed", Err: fmt.Errorf("failed to import data: %w", err)},
		)
		return
	}

	WriteJSON(w, http.StatusOK, importResponse{
		Message:      "data imported successfully",
		RowsImported: result.RowsRead,
		RowsAffected: result.RowsAffected,
	})
}

// listResponse wraps filtered housing records with their count.
type listResponse struct {
	Count int                    `json:"count"`
	Data  []*model.HousingRecord `json:"data"`
}

// ListData returns housing records matching the query filters, newest first.
func (h *HousingHandlers) ListData(w http.ResponseWriter, r *http.Request) {
	filter, err := housingFilterFromQuery(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
		return
	}

	records, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: errors.New("failed to fetch data")})
		return
	}
	if records == nil {
		// An empty result serializes as [] rather than null.
		records = []*model.HousingRecord{}
	}

	WriteJSON(w, http.StatusOK, listResponse{Count: len(records), Data: records})
}

// GetStats returns the KPI block for one (location, category) series.
func (h *HousingHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	category := r.URL.Query().Get("type")
	if location == "" || category == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: errors.New("location and type parameters are required")},
		)
		return
	}

	stats, err := h.Svc.Stats(r.Context(), location, category)
	if err != nil {
		if errors.Is(err, data.ErrNoHousingData) {
			WriteError(
				w,
				ErrorParams{Code: http.StatusNotFound, ErrCode: "housing_data_not_found", Err: data.ErrNoHousingData},
			)
		} else {
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "stats_failed", Err: errors.New("failed to fetch statistics")})
		}
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// housingFilterFromQuery builds a HousingFilter from the location, type,
// start_date, and end_date query parameters. Absent parameters impose no
// constraint.
func housingFilterFromQuery(r *http.Request) (model.HousingFilter, error) {
	q := r.URL.Query()
	filter := model.HousingFilter{
		Location: q.Get("location"),
		Category: q.Get("type"),
	}

	if v := q.Get("start_date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return model.HousingFilter{}, fmt.Errorf("invalid start_date: %w", err)
		}
		filter.StartDate = &d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return model.HousingFilter{}, fmt.Errorf("invalid end_date: %w", err)
		}
		filter.EndDate = &d
	}

	return filter, nil
}
