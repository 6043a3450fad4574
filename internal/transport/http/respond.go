package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator"

	dErrors "pharmaops/pkg/domain-errors"
)

var validate = validator.New()

// errorResponse is the JSON envelope every failed request gets.
type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError translates a coded domain error into the HTTP envelope. Unknown
// errors map to 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		writeJSON(w, dErrors.ToHTTPStatus(de.Code), errorResponse{
			Error:   string(de.Code),
			Message: de.Message,
			Details: de.Details,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   string(dErrors.CodeInternal),
		Message: "internal error",
	})
}

// decode parses and validates a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "request failed validation")
	}
	return nil
}
