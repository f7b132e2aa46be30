package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not a JSON object: %v (%q)", err, rr.Body.String())
	}
	return body
}

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Set("status", "ok").
		Header("X-Custom", "value").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("custom header not set")
	}
	if body := decodeBody(t, w); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestJSONResponseBuilder_WarningAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Warning("").Write(w)
	if _, ok := decodeBody(t, w)["warning"]; ok {
		t.Error("empty warning should be omitted")
	}

	w = httptest.NewRecorder()
	NewJSONResponse().Warning("not saved").Message("empty").Write(w)
	body := decodeBody(t, w)
	if body["warning"] != "not saved" || body["message"] != "empty" {
		t.Errorf("body = %v", body)
	}
}

func TestJSONResponseBuilder_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Set("bad", make(chan int)).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
	if decodeBody(t, w)["error"] != "internal error" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantError  string
	}{
		{
			name:       "BadRequestError",
			builder:    BadRequestError("Invalid input"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid input",
		},
		{
			name:       "UnprocessableEntityError",
			builder:    UnprocessableEntityError("amount must be positive"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "amount must be positive",
		},
		{
			name:       "InternalServerError",
			builder:    InternalServerError("internal error"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
		{
			name:       "ForbiddenError",
			builder:    ForbiddenError("local only"),
			wantStatus: http.StatusForbidden,
			wantError:  "local only",
		},
		{
			name:       "TooManyRequestsError",
			builder:    TooManyRequestsError("slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantError:  "slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decodeBody(t, w)["error"]; got != tt.wantError {
				t.Errorf("error = %v, want %q", got, tt.wantError)
			}
		})
	}
}
