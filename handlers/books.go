package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

type BooksHandler struct {
	Catalog *service.Catalog
	Uploads UploadParser
	Logger  *slog.Logger
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.List(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Books retrieved", books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "book")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	book, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Book with id %s retrieved", id.Hex()), book)
}

// Create accepts multipart/form-data (image files under image_path_S|M|L) or JSON.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.Uploads.Parse(w, r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer cleanup()

	book, err := h.Catalog.Create(r.Context(), middleware.IdentityFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, "Book created successfully", book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "book")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	in, cleanup, err := h.Uploads.Parse(w, r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	defer cleanup()

	book, err := h.Catalog.Update(r.Context(), middleware.IdentityFrom(r.Context()), id, in)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Book with id %s updated successfully", id.Hex()), book)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "book")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Catalog.Delete(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Book with id %s and all associated reviews deleted successfully", id.Hex()), nil)
}

// Image serves a stored cover or redirects to its URL.
func (h *BooksHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "book")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	img, err := h.Catalog.Image(r.Context(), id, chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if img.URL != "" {
		http.Redirect(w, r, img.URL, http.StatusFound)
		return
	}
	defer img.Body.Close()
	if img.ContentType != "" {
		w.Header().Set("Content-Type", img.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, img.Body); err != nil {
		h.Logger.Warn("failed to stream image", "book_id", id.Hex(), "error", err)
	}
}
