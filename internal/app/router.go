package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parcelops/backoffice/internal/accounting/accounts"
	"github.com/parcelops/backoffice/internal/accounting/closing"
	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/billing"
	"github.com/parcelops/backoffice/internal/masterdata/customers"
	"github.com/parcelops/backoffice/internal/masterdata/vendors"
	"github.com/parcelops/backoffice/internal/observability"
	"github.com/parcelops/backoffice/internal/partyledger"
	"github.com/parcelops/backoffice/internal/platform/httpx"
	"github.com/parcelops/backoffice/jobs"
)

// RouterParams collects the handlers mounted on the API router.
type RouterParams struct {
	Middlewares []func(http.Handler) http.Handler
	Metrics     *observability.Metrics

	Accounts  *accounts.Handler
	Journals  *journals.Handler
	Closings  *closing.Handler
	Billing   *billing.Handler
	Ledgers   *partyledger.Handler
	Customers *customers.Handler
	Vendors   *vendors.Handler
	Jobs      *jobs.Handler
}

// NewRouter wires the full HTTP surface.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	r.Use(p.Middlewares...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", p.Accounts.MountRoutes)
		r.Route("/journal-entries", p.Journals.MountRoutes)
		r.Route("/closings", p.Closings.MountRoutes)
		r.Route("/invoices", p.Billing.MountInvoiceRoutes)
		r.Route("/payments", p.Billing.MountPaymentRoutes)
		r.Route("/ledgers", p.Ledgers.MountRoutes)
		r.Route("/customers", p.Customers.MountRoutes)
		r.Route("/vendors", p.Vendors.MountRoutes)
		if p.Jobs != nil {
			r.Route("/jobs", p.Jobs.MountRoutes)
		}
	})
	return r
}
