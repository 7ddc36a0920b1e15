package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// DecodeJSON decodes the request body into dst. Unknown body fields are
// ignored. On malformed input it writes a 400 response and returns false;
// callers should return immediately in that case.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON encodes v and writes it with the given status code. Encoding
// happens into a buffer first so an encode failure can still produce a 500
// instead of a half-written body.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups the inputs for WriteError: HTTP status, a stable
// machine-readable code, and the error whose message becomes the body text.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes the standard error envelope.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: p.Err.Error()})
}
