package quotes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/calyx-commerce/quotes/internal/format"
	"github.com/calyx-commerce/quotes/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	quotation, err := h.service.Create(r.Context(), req, h.currentUserID(r))
	if err != nil {
		h.respondError(w, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quotation)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListQuotationsRequest{Limit: 50}

	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status "+s)
			return
		}
		req.Status = &status
	}
	if email := r.URL.Query().Get("customer_email"); email != "" {
		req.CustomerEmail = &email
	}
	req.DateFrom = parseDate(r.URL.Query().Get("date_from"))
	if to := parseDate(r.URL.Query().Get("date_to")); to != nil {
		// date_to names a whole day. The repository applies an exclusive
		// upper bound, so advance to the next midnight to include it.
		next := to.AddDate(0, 0, 1)
		req.DateTo = &next
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			req.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			req.Offset = n
		}
	}

	quotations, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list quotations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListQuotationsResponse{
		Quotations: quotations,
		Total:      total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	quotation, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

// Preview computes totals without persisting. The storefront recalculates on
// every form change through this endpoint so client and server never disagree.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, h.service.Preview(req))
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.Send(r.Context(), id)
	if err != nil {
		h.respondError(w, "send quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.Approve(r.Context(), id, h.currentUserID(r))
	if err != nil {
		h.respondError(w, "approve quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req RejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	quotation, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.respondError(w, "reject quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req ConvertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	quotation, err := h.service.Convert(r.Context(), id, req.OrderID)
	if err != nil {
		h.respondError(w, "convert quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	actions, err := h.service.Actions(r.Context(), id)
	if err != nil {
		h.respondError(w, "list quotation actions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"allowed_actions": actions})
}

// PublicShow serves the customer-facing share link. It hides internal notes
// and audit detail and pre-formats display fields for the storefront.
func (h *Handler) PublicShow(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing token")
		return
	}

	q, err := h.service.GetByToken(r.Context(), token)
	if err != nil {
		h.respondError(w, "get public quotation", err)
		return
	}

	httpx.JSON(w, http.StatusOK, PublicQuotationResponse{
		Number:             q.Number,
		Status:             EffectiveStatus(q, time.Now()),
		ValidUntil:         q.ValidUntil,
		CustomerName:       q.CustomerName,
		Currency:           q.Currency,
		Subtotal:           q.Subtotal,
		DiscountAmount:     q.DiscountAmount,
		TaxAmount:          q.TaxAmount,
		ShippingAmount:     q.ShippingAmount,
		TotalAmount:        q.TotalAmount,
		TotalFormatted:     format.Currency(q.TotalAmount, q.Currency),
		ValidUntilDisplay:  format.Date(q.ValidUntil),
		Notes:              q.Notes,
		TermsAndConditions: q.TermsAndConditions,
		Items:              q.Items,
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation id")
		return 0, false
	}
	return id, true
}

// respondError keeps domain-specific titles for the lifecycle conflicts and
// hands everything else to the shared sentinel mapping. Unrecognized errors
// are logged before the generic 500.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotAllowed):
		httpx.Problem(w, http.StatusConflict, "Transition Not Permitted", err.Error())
	case errors.Is(err, ErrNotEditable):
		httpx.Problem(w, http.StatusConflict, "Not Editable", err.Error())
	default:
		if !httpx.IsClientError(err) {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

// currentUserID reads the operator identity forwarded by the auth gateway.
func (h *Handler) currentUserID(r *http.Request) int64 {
	if v := r.Header.Get("X-User-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
