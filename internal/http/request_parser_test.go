package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"brokemate/internal/core"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    core.Filter
		wantErr error
	}{
		{"empty", url.Values{}, core.Filter{}, nil},
		{
			name:  "all fields",
			query: url.Values{"from": {"2024-01-01"}, "to": {"2024-01-31"}, "category": {" Food "}, "type": {"expense"}},
			want:  core.Filter{From: core.NewDate(2024, 1, 1), To: core.NewDate(2024, 1, 31), Category: "Food", Type: core.Expense},
		},
		{"bad from", url.Values{"from": {"01/02/2024"}}, core.Filter{}, core.ErrInvalidDate},
		{"bad to", url.Values{"to": {"2024-13-01"}}, core.Filter{}, core.ErrInvalidDate},
		{"bad type", url.Values{"type": {"gift"}}, core.Filter{}, core.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseFilter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter() unexpected error: %v", err)
			}
			if !got.From.Equal(tt.want.From) || !got.To.Equal(tt.want.To) || got.Category != tt.want.Category || got.Type != tt.want.Type {
				t.Errorf("ParseFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2024-02", "2024-02", false},
		{" 2024-12 ", "2024-12", false},
		{"2024-13", "", true},
		{"2024/02", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(url.Values{"month": {tt.in}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !core.IsValidation(err) {
				t.Errorf("ParseMonth(%q) error should be a validation error", tt.in)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     bool
	}{
		{"valid", "application/json", `{"name":"x"}`, false},
		{"charset", "application/json; charset=utf-8", `{"name":"x"}`, false},
		{"no content type", "", `{"name":"x"}`, false},
		{"form", "application/x-www-form-urlencoded", `name=x`, true},
		{"unknown field", "application/json", `{"nom":"x"}`, true},
		{"empty", "application/json", ``, true},
		{"trailing", "application/json", `{"name":"x"} {}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			var p payload
			err := decodeJSON(httptest.NewRecorder(), r, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBadRequest) {
				t.Errorf("decodeJSON() error = %v, want errBadRequest", err)
			}
		})
	}
}

func TestReadReceipt(t *testing.T) {
	t.Run("raw image", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("PNGDATA"))
		r.Header.Set("Content-Type", "image/png; name=receipt.png")
		data, mime, err := readReceipt(httptest.NewRecorder(), r)
		if err != nil || string(data) != "PNGDATA" || mime != "image/png" {
			t.Errorf("readReceipt() = %q, %q, %v", data, mime, err)
		}
	})

	t.Run("json base64", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"image":"aGVsbG8=","mimeType":"image/webp"}`))
		r.Header.Set("Content-Type", "application/json")
		data, mime, err := readReceipt(httptest.NewRecorder(), r)
		if err != nil || string(data) != "hello" || mime != "image/webp" {
			t.Errorf("readReceipt() = %q, %q, %v", data, mime, err)
		}
	})

	t.Run("empty image", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"image":""}`))
		if _, _, err := readReceipt(httptest.NewRecorder(), r); !errors.Is(err, errBadRequest) {
			t.Errorf("readReceipt() error = %v, want errBadRequest", err)
		}
	})
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Jolli\x00bee\x07 "); got != "Jollibee" {
		t.Errorf("sanitizeInput() = %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Errorf("sanitizeInput() dropped a newline: %q", got)
	}
}
