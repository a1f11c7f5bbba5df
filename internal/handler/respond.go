package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rosterup/platform/internal/domain"
)

// envelope is the response shape every endpoint speaks: a success flag, and
// either data or an error code plus message. Internal error objects never
// leave the process.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespondJSON writes a success envelope with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// RespondError writes an error envelope, detecting domain.AppError for the
// status code and message; anything else becomes a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*domain.AppError); ok {
		w.WriteHeader(appErr.Status)
		json.NewEncoder(w).Encode(envelope{
			Success: false,
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst, capped at 1 MiB.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
