package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/kevinaaaquil/readingbud/backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CollectionsHandler struct {
	Collections *service.Collections
	Validator   *validation.Validator
	Logger      *slog.Logger
}

// CollectionResponse is a written collection plus the book ids that were left out of it.
type CollectionResponse struct {
	*models.Collection
	DroppedBookIDs []string `json:"dropped_book_ids,omitempty"`
}

type bookRefRequest struct {
	BookID string `json:"bookId" validate:"required,objectid"`
}

func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	cols, err := h.Collections.List(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Collections retrieved", cols)
}

func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "collection")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	col, err := h.Collections.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Collection with id %s retrieved", id.Hex()), col)
}

func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CollectionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	res, err := h.Collections.Create(r.Context(), middleware.IdentityFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, "Collection created successfully",
		CollectionResponse{Collection: res.Collection, DroppedBookIDs: res.DroppedBookIDs})
}

func (h *CollectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "collection")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	res, err := h.Collections.Update(r.Context(), middleware.IdentityFrom(r.Context()), id, fields)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Collection with id %s updated successfully", id.Hex()),
		CollectionResponse{Collection: res.Collection, DroppedBookIDs: res.DroppedBookIDs})
}

func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "collection")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Collections.Delete(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf(
		"Collection with id %s deleted successfully, and references removed from associated user and books.", id.Hex()), nil)
}

// AddBook handles POST /collections/{id}/add_book with body {"bookId": "..."}.
func (h *CollectionsHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	id, bookID, err := h.bookRef(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	col, err := h.Collections.AddBook(r.Context(), middleware.IdentityFrom(r.Context()), id, bookID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK,
		fmt.Sprintf("Book with id %s added to collection %s successfully", bookID.Hex(), id.Hex()), col)
}

func (h *CollectionsHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	id, bookID, err := h.bookRef(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	col, err := h.Collections.RemoveBook(r.Context(), middleware.IdentityFrom(r.Context()), id, bookID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK,
		fmt.Sprintf("Book with id %s removed from collection %s successfully", bookID.Hex(), id.Hex()), col)
}

func (h *CollectionsHandler) bookRef(r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	id, err := pathID(r, "id", "collection")
	if err != nil {
		return id, primitive.NilObjectID, err
	}
	var req bookRefRequest
	if err := decodeJSON(r, &req); err != nil {
		return id, primitive.NilObjectID, err
	}
	if err := h.Validator.Validate(req); err != nil {
		return id, primitive.NilObjectID, err
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		return id, primitive.NilObjectID, apperr.InvalidID("book", req.BookID)
	}
	return id, bookID, nil
}
