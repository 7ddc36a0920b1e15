package httpx

import (
	"net/http"
	"time"
)

const serviceName = "hpi-processor"

type healthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// healthHandler reports liveness along with the service name and the
// current time, so probes and humans can tell which deployment answered.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, healthStatus{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
	})
}
