package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"brokemate/internal/core"
	ports "brokemate/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("expected missing spreadsheet id error, got %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "test-id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "test-id", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestNew_InvalidOAuthClient(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: "invalid-json",
		OAuthTokenFile:  filepath.Join(t.TempDir(), "token.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestOptions_UsesOAuth(t *testing.T) {
	if (Options{OAuthClientJSON: "{}"}).UsesOAuth() {
		t.Error("client JSON alone should not enable OAuth")
	}
	if !(Options{OAuthClientJSON: "{}", OAuthTokenFile: "token.json"}).UsesOAuth() {
		t.Error("client JSON and token file should enable OAuth")
	}
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := WriteToken(path, &oauth2.Token{AccessToken: "test", RefreshToken: "refresh"}); err != nil {
		t.Fatalf("WriteToken() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	tok, err := ReadToken(path)
	if err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if tok.RefreshToken != "refresh" {
		t.Errorf("RefreshToken = %q, want refresh", tok.RefreshToken)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadToken(empty); err == nil {
		t.Error("ReadToken() should reject a token without credentials")
	}
}

func TestClient_NilService(t *testing.T) {
	c := newClient(nil, "test", "Ledger")
	row := ports.NewRow("alice", core.Transaction{ID: "tx", Date: core.MustParseDate("2024-01-01")})

	if _, err := c.Append(context.Background(), row); err == nil {
		t.Error("Append() expected error without service")
	}
	if _, err := c.Remove(context.Background(), row); err == nil {
		t.Error("Remove() expected error without service")
	}
	if _, err := c.Rows(context.Background(), 2024); err == nil {
		t.Error("Rows() expected error without service")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Ledger", 2024, "2024 Ledger"},
		{"2023 Ledger", 2024, "2023 Ledger"},
		{"  Ledger  ", 2025, "2025 Ledger"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestA1(t *testing.T) {
	if got := a1("2024 Ledger", "A:H"); got != "'2024 Ledger'!A:H" {
		t.Errorf("a1() = %q", got)
	}
	if got := a1("Bob's", "A1"); got != "'Bob''s'!A1" {
		t.Errorf("a1() = %q", got)
	}
}

func TestParseRowsAndFindRow(t *testing.T) {
	values := [][]any{
		{"Date", "Merchant", "Category", "Type", "Amount", "Recurrence", "User", "Ref"},
		{"2024-03-01", "Netflix", "Bills 🧾", "expense", 549.0, "monthly", "alice", "tx-1"},
		{},
		{"2024-03-02", "Salary", "Salary 💼", "income", 50000.0, "", "bob", "tx-2"},
		{"garbage"},
	}

	rows := parseRows(context.Background(), values)
	if len(rows) != 2 {
		t.Fatalf("parseRows() len = %d, want 2", len(rows))
	}
	if rows[0].Merchant != "Netflix" || !rows[0].Amount.Equal(core.AmountFromInt(549)) {
		t.Errorf("rows[0] = %+v", rows[0])
	}

	if got := findRow(values, "bob", "tx-2"); got != 3 {
		t.Errorf("findRow(bob, tx-2) = %d, want 3", got)
	}
	if got := findRow(values, "alice", "tx-2"); got != -1 {
		t.Errorf("findRow(alice, tx-2) = %d, want -1", got)
	}
}
