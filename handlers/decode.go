package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/towerpro/utils"
)

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator. It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	if err := utils.Validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": utils.ProcessValidationErrors(err),
		})
		return false
	}
	return true
}
