package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/parcelops/backoffice/internal/accounting/shared"
	"github.com/parcelops/backoffice/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type processPaymentRequest struct {
	InvoiceNumber   string  `json:"invoice_number" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	TransactionType string  `json:"transaction_type" validate:"required,oneof=INCOME EXPENSE"`
	Mode            string  `json:"mode" validate:"omitempty,oneof=CASH BANK_TRANSFER CARD CHEQUE"`
	Reference       string  `json:"reference" validate:"omitempty,max=100"`
	Description     string  `json:"description" validate:"omitempty,max=255"`
	DebitAccountID  int64   `json:"debit_account_id" validate:"required,gt=0"`
	CreditAccountID int64   `json:"credit_account_id" validate:"required,gt=0"`
	PaidAt          string  `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type allocateExcessRequest struct {
	Profile         string  `json:"profile" validate:"required,oneof=CUSTOMER VENDOR"`
	PartyID         int64   `json:"party_id" validate:"required,gt=0"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	TransactionType string  `json:"transaction_type" validate:"omitempty,oneof=INCOME EXPENSE"`
	Reference       string  `json:"reference" validate:"omitempty,max=100"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	invoice, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) ShowInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	req := ListInvoicesRequest{
		Profile: r.URL.Query().Get("profile"),
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("party_id"); v != "" {
		req.PartyID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	invoices, total, err := h.service.ListInvoices(r.Context(), req)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices, "total": total})
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	input := ProcessPaymentInput{
		InvoiceNumber:   req.InvoiceNumber,
		Amount:          req.Amount,
		TransactionType: TransactionType(req.TransactionType),
		Mode:            PaymentMode(req.Mode),
		Reference:       req.Reference,
		Description:     req.Description,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
	}
	if req.PaidAt != "" {
		input.PaidAt, _ = time.Parse("2006-01-02", req.PaidAt)
	}
	result, err := h.service.ProcessPayment(r.Context(), input)
	if err != nil {
		h.respondError(w, "process payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) AllocateExcess(w http.ResponseWriter, r *http.Request) {
	var req allocateExcessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.AllocateExcessPayment(r.Context(), AllocateExcessInput{
		Profile:         InvoiceProfile(req.Profile),
		PartyID:         req.PartyID,
		Amount:          req.Amount,
		TransactionType: TransactionType(req.TransactionType),
		Reference:       req.Reference,
	})
	if err != nil {
		h.respondError(w, "allocate excess payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	req := ListPaymentsRequest{
		TransactionType: r.URL.Query().Get("transaction_type"),
	}
	if v := r.URL.Query().Get("invoice_id"); v != "" {
		req.InvoiceID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	payments, total, err := h.service.ListPayments(r.Context(), req)
	if err != nil {
		h.respondError(w, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments, "total": total})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		status := shared.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(action, slog.Any("error", err))
			httpx.Problem(w, status, "Internal Error", "")
			return
		}
		httpx.Problem(w, status, http.StatusText(status), err.Error())
	}
}
