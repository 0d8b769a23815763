package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

type AuthHandler struct {
	Identity *service.Identity
	Logger   *slog.Logger
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	user, err := h.Identity.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	token, user, err := h.Identity.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Login successful", LoginResponse{Token: token, User: user})
}
