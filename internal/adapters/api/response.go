package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// envelope is the uniform JSON response wrapper.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// writeSuccess writes a 200 envelope, with optional payload.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data})
}

// writeError maps a domain error to its HTTP status: unknown entities
// are 404, validation and state conflicts are 400, anything else is a
// 500.
func writeError(w http.ResponseWriter, err error) {
	var notFound *shared.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, envelope{Status: "error", Message: err.Error()})
		return
	}

	var validation *shared.ValidationError
	var conflict *shared.StateConflictError
	if errors.As(err, &validation) || errors.As(err, &conflict) {
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusInternalServerError, envelope{Status: "error", Message: err.Error()})
}

// writeBadRequest writes a 400 envelope for malformed input.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
