package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondJSON(w, 200, map[string]string{"API_TEST": "OK"})

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
		if w.Body.String() != "{\"API_TEST\":\"OK\"}\n" {
			t.Errorf("Unexpected body %q", w.Body.String())
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondJSON(w, 204, nil)

		if w.Code != 204 || w.Body.Len() != 0 {
			t.Errorf("Expected empty 204, got %d: %q", w.Code, w.Body.String())
		}
	})

	t.Run("does not escape ticker symbols", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondJSON(w, 200, map[string]string{"ticker": "AT&T"})

		if w.Body.String() != "{\"ticker\":\"AT&T\"}\n" {
			t.Errorf("Unexpected body %q", w.Body.String())
		}
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		RespondJSON(w, 200, map[string]any{"channel": make(chan int)})

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestRespondError(t *testing.T) {
	t.Run("carries the error text as details", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, 400, "validation failed", errors.New("startDate: is required"))

		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}
		if w.Code != 400 || body.Error != "validation failed" || body.Details != "startDate: is required" {
			t.Errorf("Unexpected error response %d %+v", w.Code, body)
		}
	})

	t.Run("omits details for a nil error", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, 500, "failed to get version information", nil)

		if strings.Contains(w.Body.String(), "details") {
			t.Errorf("Expected no details, got %s", w.Body.String())
		}
	})
}
