package httpx

import (
	"net/http"

	"github.com/konutdata/hpi-processor/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs    *service.JobService
	Housing *service.HousingService
	Import  *service.ImportService
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	housingHandlers := &HousingHandlers{Svc: services.Housing, Import: services.Import}

	registerJobRoutes(mux, jobHandlers)
	registerHousingRoutes(mux, housingHandlers)
	mux.Handle("GET /health", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /health", http.HandlerFunc(healthHandler))

	return mux
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/process", h.Process)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetStatus)
	mux.HandleFunc("GET /api/stats", h.Stats)
}

func registerHousingRoutes(mux *http.ServeMux, h *HousingHandlers) {
	mux.HandleFunc("POST /api/housing/import", h.ImportData)
	mux.HandleFunc("GET /api/housing/data", h.ListData)
	mux.HandleFunc("GET /api/housing/stats", h.GetStats)
}
