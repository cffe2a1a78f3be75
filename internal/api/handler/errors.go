package handler

import (
	"encoding/json"
	"net/http"

	"github.com/partyroom/partyroom/internal/api/apierr"
)

// WriteError writes err as a JSON error body
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates a 400 with the given message
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody reads a JSON request body into v
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return NewInvalidRequestError("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}

// RouteNotFound answers paths no route serves
func RouteNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, apierr.NewRouteNotFoundError())
}

// MethodNotAllowed answers known paths requested with an unsupported method
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, apierr.NewMethodNotAllowedError())
}
