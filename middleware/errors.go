package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
)

func reject(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus())
	_ = json.NewEncoder(w).Encode(e)
}
