package http

import (
	"net/http"
	"strings"
)

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("userID"))
}

// overviewKey scopes cached overviews by user so a change hook can drop
// them with a prefix delete.
func overviewKey(user, month string) string {
	return user + "|" + month
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

// updatedResponse answers edits of an id that no longer exists.
type updatedResponse struct {
	Updated bool `json:"updated"`
}
