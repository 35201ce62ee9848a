package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors let handlers pick a view state without inspecting status
// codes.  An *APIError matches the sentinel for its status via errors.Is.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("permission denied")
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("request timed out")
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a non-2xx response from the reservations API.
type APIError struct {
	Method string
	Path   string
	Status int
	Detail string // human readable message extracted from the body
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// ServerError reports whether the API failed on its side (5xx).
func (e *APIError) ServerError() bool { return e.Status >= 500 }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message extracts the text shown to the user for a failed call.  It prefers
// the API's "detail" then "message" fields, then a plain string body, then a
// "field: problem" listing of validation errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return http.StatusText(apiErr.Status)
	}
	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond. Please try again."
	}
	return "An unexpected error occurred"
}

func detailFromBody(body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		// not JSON: HTML error pages are useless to a guest
		if strings.HasPrefix(string(body), "<") {
			return ""
		}
		return string(body)
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if d, ok := t["detail"].(string); ok && d != "" {
			return d
		}
		if m, ok := t["message"].(string); ok && m != "" {
			return m
		}
		if e, ok := t["error"].(string); ok && e != "" {
			return e
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, flatten(t[k])))
		}
		return strings.Join(lines, "\n")
	case []any:
		return flatten(t)
	}
	return ""
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, flatten(p))
		}
		return strings.Join(parts, ",")
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
