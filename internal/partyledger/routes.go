package partyledger

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{ownerType}/{ownerID}/transactions", h.ListTransactions)
}
