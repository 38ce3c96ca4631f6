package vendors

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	vendor, err := h.service.CreateVendor(r.Context(), req)
	if err != nil {
		h.respondError(w, "create vendor", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vendor)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "vendor id must be numeric")
		return
	}
	var req UpdateVendorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	vendor, err := h.service.UpdateVendor(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update vendor", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendor)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "vendor id must be numeric")
		return
	}
	vendor, err := h.service.GetVendor(r.Context(), id)
	if err != nil {
		h.respondError(w, "get vendor", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendor)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListVendorsRequest{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := v == "true"
		req.IsActive = &active
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	out, total, err := h.service.ListVendors(r.Context(), req)
	if err != nil {
		h.respondError(w, "list vendors", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vendors": out, "total": total})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error(action, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
