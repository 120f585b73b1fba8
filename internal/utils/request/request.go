// Package request decodes and validates JSON request bodies and parses
// path ids. On failure each helper writes the 400 response itself and
// returns false, so handlers only need to return.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// validate caches struct metadata, so one instance serves every request.
var validate = validator.New()

// DecodeJSON reads r.Body into dst and runs its validate:"..." rules.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return false
	}
	return true
}

// PathID parses the {id} path segment as an integer.
func PathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}
