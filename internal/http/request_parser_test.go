package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finman/internal/core"
)

func newParser(t *testing.T, body, contentType string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, `{"amount": 0.10, "category": "  Food ", "description": "a\u0000b", "is_income": true}`, "application/json")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false")
	}
	if got := p.Get("amount"); got != "0.10" {
		t.Errorf("amount = %q, want exact decimal text", got)
	}
	if got := p.Get("category"); got != "Food" {
		t.Errorf("category = %q", got)
	}
	if got := p.Get("description"); got != "ab" {
		t.Errorf("description = %q, control characters should be dropped", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("missing = %q", got)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "amount=12%2C50&category=Rent&type=expense", "application/x-www-form-urlencoded")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true for form body")
	}
	m, err := p.Amount("amount")
	if err != nil {
		t.Fatalf("Amount() error = %v", err)
	}
	if m.String() != "12.50" {
		t.Errorf("Amount() = %s", m)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		if err := newParser(t, `{"amount":`, "").Parse(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("body too large", func(t *testing.T) {
		body := `{"description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		err := newParser(t, body, "").Parse()
		if !errors.Is(err, errBodyTooLarge) {
			t.Fatalf("Parse() error = %v, want errBodyTooLarge", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		p := newParser(t, "", "")
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if _, err := p.Amount("amount"); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("Amount() error = %v", err)
		}
	})
}

func TestRequestBodyParser_IsIncome(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    bool
		wantErr bool
	}{
		{"type income", `{"type":"income"}`, true, false},
		{"type expense", `{"type":"Expense"}`, false, false},
		{"type unknown", `{"type":"transfer"}`, false, true},
		{"is_income bool", `{"is_income":true}`, true, false},
		{"is_income string", `is_income=false`, false, false},
		{"is_income garbage", `{"is_income":"maybe"}`, false, true},
		{"defaults to expense", `{}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.body, "")
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := p.IsIncome()
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsIncome() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrValidation) {
				t.Errorf("error should be a validation error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsIncome() = %v, want %v", got, tt.want)
			}
		})
	}
}
