package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// envelope is the body of every successful response.
type envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Message: message, Data: data})
}

// writeError renders err as {message, code, details}. Causes of unexpected errors are logged
// and never rendered.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindUnexpected {
		logger.ErrorContext(r.Context(), e.Message, "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, e.HTTPStatus(), e)
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("Request body is too large")
		}
		return apperr.Validation("Invalid JSON body").WithCause(err)
	}
	return nil
}

// decodeFields reads a JSON object body for partial updates.
func decodeFields(r *http.Request) (map[string]any, error) {
	fields := map[string]any{}
	if err := decodeJSON(r, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// pathID parses the named URL parameter as an ObjectID.
func pathID(r *http.Request, param, entity string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, param)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidID(entity, raw)
	}
	return id, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}
