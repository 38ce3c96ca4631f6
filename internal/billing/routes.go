package billing

import "github.com/go-chi/chi/v5"

// MountInvoiceRoutes attaches the invoice endpoints.
func (h *Handler) MountInvoiceRoutes(r chi.Router) {
	r.Get("/", h.ListInvoices)
	r.Post("/", h.CreateInvoice)
	r.Get("/{id}", h.ShowInvoice)
}

// MountPaymentRoutes attaches the payment endpoints.
func (h *Handler) MountPaymentRoutes(r chi.Router) {
	r.Get("/", h.ListPayments)
	r.Post("/", h.ProcessPayment)
	r.Post("/allocate", h.AllocateExcess)
}
