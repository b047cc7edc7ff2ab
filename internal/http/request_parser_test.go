package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/core"
)

func parserFor(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	parser := parserFor(t, `{"item": "Bread", "category": "Food", "amount": 42.5, "index": 3}`)

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := parser.Get("item"); got != "Bread" {
		t.Errorf("Get('item') = %q, want 'Bread'", got)
	}
	if got := parser.Get("amount"); got != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", got)
	}
	if got := parser.Get("index"); got != "3" {
		t.Errorf("Get('index') = %q, want '3'", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	parser := parserFor(t, "item=Bus+ticket&amount=2.5&note=%01x")

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := parser.Get("item"); got != "Bus ticket" {
		t.Errorf("Get('item') = %q, want 'Bus ticket'", got)
	}
	if got := parser.Get("note"); got != "x" {
		t.Errorf("control characters should be stripped, got %q", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	parser := parserFor(t, "")
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"item":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for malformed JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+1)
	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("item="+big))
	if err := NewRequestBodyParser(req).Parse(); !errors.Is(err, errBodyTooLarge) {
		t.Errorf("expected errBodyTooLarge, got %v", err)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"HEAD allowed with multiple", http.MethodHead, []string{http.MethodGet, http.MethodHead}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	if result := RequirePOST(httptest.NewRequest(http.MethodPost, "/test", nil)); result != nil {
		t.Error("RequirePOST should allow POST requests")
	}
	if result := RequirePOST(httptest.NewRequest(http.MethodGet, "/test", nil)); result == nil {
		t.Error("RequirePOST should reject GET requests")
	}
}

func TestParseExpense(t *testing.T) {
	rec, err := ParseExpense(parserFor(t, "date=2024-03-01&category=food&item=Bread&amount=10"))
	if err != nil {
		t.Fatalf("ParseExpense() error = %v", err)
	}
	if rec.Category != core.Food || rec.Amount.Cents != 1000 || rec.Item != "Bread" || rec.Date.String() != "2024-03-01" {
		t.Errorf("unexpected record %+v", rec)
	}

	_, err = ParseExpense(parserFor(t, "date=2024-03-01&category=Food&amount=abc"))
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Errorf("expected amount validation error, got %v", err)
	}
}

func TestParseDeleteTarget(t *testing.T) {
	tests := []struct {
		body      string
		wantID    string
		wantIndex int
		wantErr   bool
	}{
		{"id=01HX", "01HX", -1, false},
		{"id=01HX&index=2", "01HX", -1, false},
		{"index=2", "", 2, false},
		{"index=0", "", 0, false},
		{"index=-1", "", 0, true},
		{"index=two", "", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got, err := ParseDeleteTarget(parserFor(t, tt.body))
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidIndex) {
					t.Fatalf("expected ErrInvalidIndex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got.ID != tt.wantID || got.Index != tt.wantIndex {
				t.Errorf("got %+v, want id %q index %d", got, tt.wantID, tt.wantIndex)
			}
		})
	}
}
