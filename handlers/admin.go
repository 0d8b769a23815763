package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

type AdminHandler struct {
	Reconciler *service.Reconciler
	Logger     *slog.Logger
}

// Reconcile runs one repair sweep and returns what it changed.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reconciler.Run(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, "Reconciliation complete", report)
}
