// Package response writes the JSON bodies returned by the backtest API.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx reply. Details carries the
// underlying error text, such as the failing validation fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status. A nil data writes the
// status only. HTML escaping is off so tickers such as "AT&T" and result names
// are echoed back unchanged.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes an ErrorResponse. A nil err leaves Details empty.
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err)
func RespondError(w http.ResponseWriter, status int, message string, err error) {
	body := ErrorResponse{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	RespondJSON(w, status, body)
}
