package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

type ReviewsHandler struct {
	Reviews *service.Reviews
	Logger  *slog.Logger
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.List(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Reviews retrieved", reviews)
}

func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "review")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	review, err := h.Reviews.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Review with id %s retrieved", id.Hex()), review)
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	review, err := h.Reviews.Create(r.Context(), middleware.IdentityFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, "Review created and added to book and user", review)
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "review")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	review, err := h.Reviews.Update(r.Context(), middleware.IdentityFrom(r.Context()), id, fields)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Review updated successfully.", review)
}

func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "review")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Reviews.Delete(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Review with ID %s deleted successfully.", id.Hex()), nil)
}
