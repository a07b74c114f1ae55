package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// List handles GET /deliveries.
// @Summary List deliveries
// @Tags deliveries
// @Produce json
// @Param status query string false "pending|preparing|out_for_delivery|delivered|cancelled"
// @Param from_date query string false "YYYY-MM-DD or RFC3339, inclusive"
// @Param to_date query string false "YYYY-MM-DD or RFC3339, inclusive"
// @Param employee_id query int false "assigned driver"
// @Param search query string false "case-insensitive substring"
// @Param sort query string false "sort field"
// @Param order query string false "asc|desc"
// @Param page query int false "1-based page"
// @Param page_size query int false "page size"
// @Success 200 {object} deliveryPageDTO
// @Failure 400 {object} errResponse
// @Router /deliveries [get]
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	q, msg := parseListQuery(r.URL.Query())
	if msg != "" {
		writeError(h.logger, w, r, http.StatusBadRequest, msg)
		return
	}

	page, err := h.usecase.List(r.Context(), q)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, pageToResponse(page))
}

// Get handles GET /deliveries/{id}.
// @Summary Get a delivery with its order and employee
// @Tags deliveries
// @Produce json
// @Param id path int true "delivery id"
// @Success 200 {object} deliveryDetailsDTO
// @Failure 400 {object} errResponse
// @Failure 404 {object} errResponse
// @Router /deliveries/{id} [get]
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, detailsToResponse(d))
}

// UpdateStatus handles PATCH /deliveries/{id}/status.
// @Summary Change delivery status
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path int true "delivery id"
// @Param request body updateStatusRequest true "new status"
// @Success 200 {object} deliveryDTO
// @Failure 400 {object} errResponse
// @Failure 404 {object} errResponse
// @Failure 409 {object} errResponse "invalid transition"
// @Router /deliveries/{id}/status [patch]
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.UpdateStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// UpdateTime handles PATCH /deliveries/{id}/time.
// @Summary Change estimated or actual delivery time
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path int true "delivery id"
// @Param request body updateTimeRequest true "time update"
// @Success 200 {object} deliveryDTO
// @Failure 400 {object} errResponse "invalid time"
// @Failure 404 {object} errResponse
// @Failure 409 {object} errResponse "delivery cancelled"
// @Router /deliveries/{id}/time [patch]
func (h *DeliveryHandler) UpdateTime(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateTimeRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.UpdateTime(r.Context(), id, req.toModel())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

func (h *DeliveryHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		transitionErr *domain.InvalidTransitionError
		timeErr       *domain.InvalidTimeError
	)
	switch {
	case errors.As(err, &transitionErr):
		writeError(h.logger, w, r, http.StatusConflict, transitionErr.Error())
	case errors.As(err, &timeErr):
		writeError(h.logger, w, r, http.StatusBadRequest, timeErr.Error())
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "conflict")
	default:
		h.logger.Error("delivery request failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// parseListQuery returns the query or a client-facing message naming the bad parameter.
func parseListQuery(v url.Values) (domain.ListQuery, string) {
	var q domain.ListQuery

	if s := strings.TrimSpace(v.Get("status")); s != "" {
		st, ok := domain.ParseStatus(s)
		if !ok {
			return q, "invalid status"
		}
		q.Status = &st
	}
	if s := strings.TrimSpace(v.Get("from_date")); s != "" {
		t, err := parseDate(s, false)
		if err != nil {
			return q, "invalid from_date"
		}
		q.From = &t
	}
	if s := strings.TrimSpace(v.Get("to_date")); s != "" {
		t, err := parseDate(s, true)
		if err != nil {
			return q, "invalid to_date"
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, "to_date precedes from_date"
	}
	if s := strings.TrimSpace(v.Get("employee_id")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return q, "invalid employee_id"
		}
		q.EmployeeID = &id
	}
	q.Search = strings.TrimSpace(v.Get("search"))
	q.SortField = strings.TrimSpace(v.Get("sort"))

	switch o := domain.SortOrder(strings.ToLower(strings.TrimSpace(v.Get("order")))); o {
	case "":
	case domain.SortAsc, domain.SortDesc:
		q.SortOrder = o
	default:
		return q, "invalid order"
	}

	var ok bool
	if q.Page, ok = positiveInt(v.Get("page")); !ok {
		return q, "invalid page"
	}
	if q.PageSize, ok = positiveInt(v.Get("page_size")); !ok {
		return q, "invalid page_size"
	}
	return q, ""
}

// parseDate accepts a calendar date or any time domain.ParseTime accepts.
// A bare date used as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), nil
		}
		return d, nil
	}
	return domain.ParseTime(s)
}

func positiveInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
