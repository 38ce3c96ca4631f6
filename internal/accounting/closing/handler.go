package closing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

type closePeriodRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	var req closePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	result, err := h.service.ClosePeriod(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, ErrNothingToClose) {
			httpx.Problem(w, http.StatusConflict, "Nothing To Close", err.Error())
			return
		}
		status := shared.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("close period", slog.Any("error", err))
			httpx.Problem(w, status, "Internal Error", "")
			return
		}
		httpx.Problem(w, status, http.StatusText(status), err.Error())
		return
	}
	status := http.StatusCreated
	if result.AlreadyClosed {
		status = http.StatusOK
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}
	closings, total, err := h.service.ListClosings(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list closings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"closings": closings, "total": total})
}
