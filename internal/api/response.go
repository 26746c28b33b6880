package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// CollectionResponse is a list response.
type CollectionResponse struct {
	Results []any   `json:"results"`
	Paging  *Paging `json:"paging,omitempty"`
}

// Paging holds cursor-based pagination info.
type Paging struct {
	Next *PagingNext `json:"next,omitempty"`
}

// PagingNext holds the cursor for the next page.
type PagingNext struct {
	After string `json:"after"`
}

// Collection wraps a typed slice in a CollectionResponse.
func Collection[T any](items []T) CollectionResponse {
	results := make([]any, len(items))
	for i, it := range items {
		results[i] = it
	}
	return CollectionResponse{Results: results}
}

// DecodeJSON decodes the request body into v. On failure it writes a 400
// and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, NewValidationError("Invalid input JSON", CorrelationID(r.Context()), nil))
		return false
	}
	return true
}

// QueryLimit reads a positive integer "limit" query parameter, falling back
// to def when it is missing or malformed and capping it at maxLimit.
func QueryLimit(r *http.Request, def, maxLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
