package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brokemate/internal/core"
)

const (
	maxJSONBody    = 1 << 20
	maxReceiptBody = 10 << 20
)

// decodeJSON reads a single JSON value from the body into dst. Unknown
// fields are rejected so typos surface as 400 instead of silent defaults.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeJSONLimit(w, r, dst, maxJSONBody)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: content type %q, want application/json", errBadRequest, ct)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", errBadRequest)
	}
	return nil
}

// ParseFilter reads the from, to, category and type query parameters.
func ParseFilter(query url.Values) (core.Filter, error) {
	var f core.Filter
	var err error
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return core.Filter{}, err
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return core.Filter{}, err
		}
	}
	f.Category = sanitizeInput(query.Get("category"))
	switch t := core.TransactionType(strings.TrimSpace(query.Get("type"))); t {
	case "", core.Income, core.Expense:
		f.Type = t
	default:
		return core.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidType, t)
	}
	return f, nil
}

// ParseMonth validates an optional YYYY-MM query value. Empty means the
// current month and is returned unchanged.
func ParseMonth(query url.Values) (string, error) {
	m := strings.TrimSpace(query.Get("month"))
	if m == "" {
		return "", nil
	}
	if _, err := time.Parse(core.MonthFormat, m); err != nil {
		return "", fmt.Errorf("%w: month %q, want YYYY-MM", core.ErrInvalidDate, m)
	}
	return m, nil
}

// readReceipt accepts either a raw image body (Content-Type image/*) or a
// JSON object with a base64 image.
func readReceipt(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "image/") {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReceiptBody))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if len(data) == 0 {
			return nil, "", fmt.Errorf("%w: empty image", errBadRequest)
		}
		mime, _, _ := strings.Cut(ct, ";")
		return data, strings.TrimSpace(mime), nil
	}

	var req struct {
		Image    []byte `json:"image"`
		MimeType string `json:"mimeType"`
	}
	if err := decodeJSONLimit(w, r, &req, maxReceiptBody); err != nil {
		return nil, "", err
	}
	if len(req.Image) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", errBadRequest)
	}
	return req.Image, strings.TrimSpace(req.MimeType), nil
}
