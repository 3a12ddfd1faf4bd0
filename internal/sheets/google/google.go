package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	ports "brokemate/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports ledger rows into one sheet per year, "<year> <base>".
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	mu     sync.Mutex
	known  map[string]bool
	loaded bool
}

// Ensure interface conformance
var (
	_ ports.LedgerExporter = (*Client)(nil)
	_ ports.LedgerReader   = (*Client)(nil)
)

// Options configures New. Service account credentials come from
// CredentialsJSON or CredentialsFile, with GOOGLE_APPLICATION_CREDENTIALS as
// the fallback. Setting both OAuth fields authenticates as a user instead,
// using the token written by cmd/sheets-auth.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON string
	OAuthTokenFile  string
}

// UsesOAuth reports whether the user token flow is configured.
func (o Options) UsesOAuth() bool {
	return strings.TrimSpace(o.OAuthClientJSON) != "" && strings.TrimSpace(o.OAuthTokenFile) != ""
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Ledger"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return newClient(svc, spreadsheetID, base), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, base string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
		known:         make(map[string]bool),
	}
}

// newSheetsService initializes a Sheets Service using OAuth user credentials
// when configured, Service Account credentials otherwise.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	if opts.UsesOAuth() {
		return newOAuthSheetsService(ctx, opts)
	}

	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

func newOAuthSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	cfg, err := OAuthConfig([]byte(opts.OAuthClientJSON))
	if err != nil {
		return nil, err
	}
	tok, err := ReadToken(opts.OAuthTokenFile)
	if err != nil {
		return nil, err
	}

	// The token source refreshes expired access tokens over the pooled client.
	base := newHTTPClientWithPooling()
	src := cfg.TokenSource(context.WithValue(ctx, oauth2.HTTPClient, base), tok)
	client := &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base.Transport},
		Timeout:   base.Timeout,
	}

	slog.InfoContext(ctx, "Using OAuth user credentials", "token_file", opts.OAuthTokenFile)
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// OAuthConfig parses an OAuth client JSON with the spreadsheets scope.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// ReadToken loads a token saved by WriteToken.
func ReadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("oauth token has neither access nor refresh token")
	}
	return &tok, nil
}

// WriteToken stores tok at path, readable by the owner only.
func WriteToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) Append(ctx context.Context, row ports.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if row.Ref == "" || row.User == "" {
		return "", fmt.Errorf("%w: missing user or ref", ports.ErrMalformedRow)
	}

	sheet := yearPrefixedName(c.sheetBase, row.Date.Year())
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(sheet, "A:H"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheet, nil
}

// Remove clears the matching row in place. Rows are not deleted so earlier
// row references stay valid.
func (c *Client) Remove(ctx context.Context, row ports.Row) (bool, error) {
	if c.svc == nil {
		return false, errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, row.Date.Year())
	rng := a1(sheet, "A:H")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}

	idx := findRow(resp.Values, row.User, row.Ref)
	if idx < 0 {
		return false, nil
	}
	n := idx + 1
	target := a1(sheet, fmt.Sprintf("A%d:H%d", n, n))
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, target, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("clear %s: %w", target, err)
	}
	return true, nil
}

// Rows reads every parseable row of the year's sheet. Cleared and malformed
// rows are skipped.
func (c *Client) Rows(ctx context.Context, year int) ([]ports.Row, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, year)
	rng := a1(sheet, "A:H")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(ctx, resp.Values), nil
}

// ensureSheet creates the yearly sheet with its header on first use.
func (c *Client) ensureSheet(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("get spreadsheet: %w", err)
		}
		for _, s := range ss.Sheets {
			if s.Properties != nil {
				c.known[s.Properties.Title] = true
			}
		}
		c.loaded = true
	}
	if c.known[name] {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(name, "A1:H1"), &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Created ledger sheet", "sheet", name)
	c.known[name] = true
	return nil
}

func parseRows(ctx context.Context, values [][]any) []ports.Row {
	var out []ports.Row
	for i, raw := range values {
		cells := toStrings(raw)
		if len(cells) == 0 || (i == 0 && ports.IsHeader(cells)) {
			continue
		}
		row, err := ports.ParseRow(cells)
		if err != nil {
			if strings.Join(cells, "") != "" {
				slog.DebugContext(ctx, "Skipping ledger row", "row", i+1, "error", err)
			}
			continue
		}
		out = append(out, row)
	}
	return out
}

// findRow returns the zero-based index of the row with the given user and
// ref columns, or -1.
func findRow(values [][]any, user, ref string) int {
	for i, raw := range values {
		cells := toStrings(raw)
		if len(cells) < 8 {
			continue
		}
		if cells[6] == user && cells[7] == ref {
			return i
		}
	}
	return -1
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// a1 quotes the sheet name for A1 notation.
func a1(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), rng)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
