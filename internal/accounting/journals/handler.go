package journals

import (
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

type createEntryRequest struct {
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	Description string      `json:"description" validate:"required,max=500"`
	Reference   string      `json:"reference,omitempty" validate:"omitempty,max=100"`
	Lines       []LineInput `json:"lines" validate:"required,min=2,dive"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), EntryInput{
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		Source:      "manual",
		Lines:       req.Lines,
	})
	if err != nil {
		h.respondError(w, "create journal entry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	entry, err := h.service.PostEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, "post journal entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be numeric")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, "get journal entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListEntriesRequest{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("date_from"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			req.DateFrom = &parsed
		}
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			req.DateTo = &parsed
		}
	}
	if v := r.URL.Query().Get("is_posted"); v != "" {
		posted := v == "true"
		req.IsPosted = &posted
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			req.Limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			req.Offset = parsed
		}
	}
	entries, total, err := h.service.ListEntries(r.Context(), req)
	if err != nil {
		h.respondError(w, "list journal entries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries, "total": total})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	status := shared.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(action, slog.Any("error", err))
		httpx.Problem(w, status, "Internal Error", "")
		return
	}
	httpx.Problem(w, status, http.StatusText(status), err.Error())
}
