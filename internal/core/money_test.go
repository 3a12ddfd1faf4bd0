package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "199", want: "199"},
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: "12,5", want: "12.5"},
		{in: "1,234.50", want: "1234.5"},
		{in: "1,234,567", want: "1234567"},
		{in: "1,234,567.891", want: "1234567.89"},
		{in: "1,234", wantErr: true},
		{in: "12,34.5", wantErr: true},
		{in: "1234,567.5", wantErr: true},
		{in: ",234.5", wantErr: true},
		{in: "1.234,5", wantErr: true},
		{in: "12.345", want: "12.35"},
		{in: " 0.5 ", want: "0.5"},
		{in: ".75", want: "0.75"},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "0.001", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "+5", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmount_JSON(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`199.5`), &a); err != nil {
		t.Fatalf("Unmarshal(number) error: %v", err)
	}
	if !a.Equal(AmountFromFloat(199.5)) {
		t.Errorf("Unmarshal(number) = %s", a)
	}
	if err := json.Unmarshal([]byte(`"42"`), &a); err != nil {
		t.Fatalf("Unmarshal(string) error: %v", err)
	}
	if !a.Equal(AmountFromInt(42)) {
		t.Errorf("Unmarshal(string) = %s", a)
	}
	b, _ := json.Marshal(AmountFromFloat(12.5))
	if string(b) != "12.5" {
		t.Errorf("Marshal() = %s, want bare number", b)
	}
}

func TestFormatAmount(t *testing.T) {
	got := FormatAmount(AmountFromFloat(1234.5), "USD")
	if got != "$1,234.50" {
		t.Errorf("FormatAmount(USD) = %q, want $1,234.50", got)
	}
}
