// Package httpx holds the HTTP plumbing shared by module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorBody.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields and
// oversized bodies.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// StatusRule maps a sentinel error to an HTTP status.
type StatusRule struct {
	Err    error
	Status int
}

// StatusFor returns the status of the first rule matching err, or 500.
func StatusFor(err error, rules ...StatusRule) int {
	for _, rule := range rules {
		if errors.Is(err, rule.Err) {
			return rule.Status
		}
	}
	return http.StatusInternalServerError
}

// WriteServiceError maps err through rules. Errors without a rule are
// reported without their details.
func WriteServiceError(w http.ResponseWriter, err error, rules ...StatusRule) {
	status := StatusFor(err, rules...)
	if status == http.StatusInternalServerError {
		WriteError(w, status, "internal error")
		return
	}
	WriteError(w, status, err.Error())
}
