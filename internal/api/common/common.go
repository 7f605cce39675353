// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// IdentityParam extracts and decodes an identity from the chi route or, when the route has
// no such parameter, from the query string. Identities must be non-empty and free of
// whitespace.
func IdentityParam(r *http.Request, paramName string) (string, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		raw = r.URL.Query().Get(paramName)
	} else {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return "", fmt.Errorf("invalid URL encoding in %s", paramName)
		}
		raw = decoded
	}

	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}
	if strings.ContainsAny(raw, " \t\n\r") {
		return "", fmt.Errorf("%s cannot contain whitespace", paramName)
	}
	return raw, nil
}
