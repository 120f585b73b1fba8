// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success bodies take whatever shape the endpoint documents (a record, a
// list, a confirmation message). Error bodies always look like:
//
//	{ "status": "error", "error": "Estudiante no encontrado" }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
// Headers must be set before WriteHeader; the body follows.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Message builds a confirmation body: {"mensaje": msg} plus, when key is
// not empty, the record under key.
func Message(msg, key string, record any) map[string]any {
	body := map[string]any{"mensaje": msg}
	if key != "" {
		body[key] = record
	}
	return body
}

// ValidationError converts validator.FieldError values into a single
// human-readable Response.
//
// Example output:
//
//	{ "status": "error", "error": "field Nombre is required, field Edad must be at least 0" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "gte":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
