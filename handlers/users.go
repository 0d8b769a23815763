package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

type UsersHandler struct {
	Identity *service.Identity
	Logger   *slog.Logger
}

// List returns every user. Admin only.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Identity.List(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Users retrieved successfully.", users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	user, err := h.Identity.Get(r.Context(), middleware.IdentityFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "User retrieved successfully.", user)
}

// DeleteMe deletes the caller's own account.
func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFrom(r.Context())
	if caller == nil {
		writeError(w, r, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	if err := h.Identity.DeleteUser(r.Context(), caller, caller.ID); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "User account, collections, and associated data deleted successfully.", nil)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Identity.DeleteUser(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK,
		fmt.Sprintf("User with ID %s, their collections, and associated data deleted successfully.", id.Hex()), nil)
}

func (h *UsersHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Identity.Follow(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "You are now following this user.", nil)
}

func (h *UsersHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Identity.Unfollow(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "You have unfollowed this user.", nil)
}
