package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calyx-commerce/quotes/internal/platform/httpx"
	"github.com/calyx-commerce/quotes/internal/pricing"
)

var (
	ErrNotAllowed   = fmt.Errorf("transition not permitted: %w", httpx.ErrConflict)
	ErrNotEditable  = fmt.Errorf("only draft quotations can be edited: %w", httpx.ErrConflict)
	ErrInvalidInput = fmt.Errorf("invalid quotation input: %w", httpx.ErrValidation)
)

// ExpiryScheduler schedules a one-shot expiration check for a quotation.
// In production this is the asynq client; tests pass nil or a stub.
type ExpiryScheduler interface {
	ScheduleExpireCheck(ctx context.Context, at time.Time) error
}

type Service struct {
	repo      Repository
	cache     *Cache
	scheduler ExpiryScheduler
	now       func() time.Time
}

func NewService(repo Repository, cache *Cache, scheduler ExpiryScheduler) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Preview runs the pricing pass without touching storage.
func (s *Service) Preview(req PreviewRequest) PreviewResponse {
	lines := make([]pricing.LineInput, len(req.Items))
	lineTotals := make([]float64, len(req.Items))
	for i, item := range req.Items {
		lines[i] = pricingLine(item)
		lineTotals[i] = pricing.LineTotal(lines[i])
	}

	totals := pricing.Calculate(pricing.DocumentInput{
		Lines:           lines,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		TaxPercent:      req.TaxPercent,
		ShippingAmount:  req.ShippingAmount,
	})

	return PreviewResponse{Totals: totals, LineTotals: lineTotals}
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy int64) (*Quotation, error) {
	if !req.ValidUntil.After(s.now()) {
		return nil, fmt.Errorf("%w: valid_until must be in the future", ErrInvalidInput)
	}

	totals := s.documentTotals(req.Items, req.DiscountPercent, req.DiscountAmount, req.TaxPercent, req.ShippingAmount)

	quotation := Quotation{
		PublicToken:        uuid.NewString(),
		Status:             StatusDraft,
		ValidUntil:         req.ValidUntil,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		CustomerCompany:    req.CustomerCompany,
		CustomerAddress:    req.CustomerAddress,
		Currency:           req.Currency,
		Subtotal:           totals.Subtotal,
		DiscountPercent:    req.DiscountPercent,
		DiscountAmount:     totals.DiscountAmount,
		TaxPercent:         req.TaxPercent,
		TaxAmount:          totals.TaxAmount,
		ShippingAmount:     totals.ShippingAmount,
		TotalAmount:        totals.TotalAmount,
		Notes:              req.Notes,
		InternalNotes:      req.InternalNotes,
		TermsAndConditions: req.TermsAndConditions,
		CreatedBy:          createdBy,
	}

	var quotationID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, s.now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		quotation.Number = number

		id, err := repo.Create(ctx, quotation)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id

		for i, itemReq := range req.Items {
			if _, err := repo.InsertItem(ctx, buildItem(quotationID, i, itemReq)); err != nil {
				return fmt.Errorf("insert quotation item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, quotationID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	if !IsEditable(existing) {
		return nil, ErrNotEditable
	}

	updates := make(map[string]any)
	if req.CustomerName != nil {
		updates["customer_name"] = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		updates["customer_email"] = *req.CustomerEmail
	}
	if req.CustomerPhone != nil {
		updates["customer_phone"] = *req.CustomerPhone
	}
	if req.CustomerCompany != nil {
		updates["customer_company"] = *req.CustomerCompany
	}
	if req.CustomerAddress != nil {
		updates["customer_address"] = *req.CustomerAddress
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.InternalNotes != nil {
		updates["internal_notes"] = *req.InternalNotes
	}
	if req.TermsAndConditions != nil {
		updates["terms_and_conditions"] = *req.TermsAndConditions
	}

	// Any pricing input change forces a full recompute over the effective
	// item set, so totals never drift from their inputs.
	discountPercent := existing.DiscountPercent
	if req.DiscountPercent != nil {
		discountPercent = *req.DiscountPercent
		updates["discount_percentage"] = discountPercent
	}
	// The stored discount_amount holds the computed document discount. While
	// a percentage is the active mode that value is an artifact of the
	// percentage, not an operator-entered fixed discount, so it must not be
	// read back as input when the percentage is cleared.
	discountAmount := existing.DiscountAmount
	if existing.DiscountPercent > 0 {
		discountAmount = 0
	}
	if req.DiscountAmount != nil {
		discountAmount = *req.DiscountAmount
	}
	taxPercent := existing.TaxPercent
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
		updates["tax_percentage"] = taxPercent
	}
	shippingAmount := existing.ShippingAmount
	if req.ShippingAmount != nil {
		shippingAmount = *req.ShippingAmount
	}

	itemReqs := itemRequestsFromExisting(existing.Items)
	if req.Items != nil {
		itemReqs = *req.Items
	}

	totals := s.documentTotals(itemReqs, discountPercent, discountAmount, taxPercent, shippingAmount)
	updates["subtotal"] = totals.Subtotal
	updates["discount_amount"] = totals.DiscountAmount
	updates["tax_amount"] = totals.TaxAmount
	updates["shipping_amount"] = totals.ShippingAmount
	updates["total_amount"] = totals.TotalAmount

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, id, updates); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}
		if req.Items != nil {
			if err := repo.DeleteItems(ctx, id); err != nil {
				return fmt.Errorf("delete quotation items: %w", err)
			}
			for i, itemReq := range *req.Items {
				if _, err := repo.InsertItem(ctx, buildItem(id, i, itemReq)); err != nil {
					return fmt.Errorf("insert quotation item: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

// Send moves a draft to sent. Zero-total drafts cannot be sent.
func (s *Service) Send(ctx context.Context, id int64) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	now := s.now()
	if !CanPerform(existing, ActionSend, now) {
		return nil, fmt.Errorf("%w: %s cannot be sent", ErrNotAllowed, existing.Status)
	}

	sentAt := now
	if err := s.repo.UpdateStatus(ctx, id, StatusUpdate{Status: StatusSent, SentAt: &sentAt}); err != nil {
		return nil, fmt.Errorf("send quotation: %w", err)
	}

	if s.scheduler != nil {
		// Persist the expired status as soon as validity lapses rather than
		// waiting for the next cron sweep.
		if err := s.scheduler.ScheduleExpireCheck(ctx, existing.ValidUntil); err != nil {
			return nil, fmt.Errorf("schedule expiry check: %w", err)
		}
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id int64, approvedBy int64) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	now := s.now()
	if !CanPerform(existing, ActionApprove, now) {
		return nil, fmt.Errorf("%w: %s cannot be approved", ErrNotAllowed, EffectiveStatus(existing, now))
	}

	approvedAt := now
	err = s.repo.UpdateStatus(ctx, id, StatusUpdate{
		Status:     StatusApproved,
		ApprovedBy: &approvedBy,
		ApprovedAt: &approvedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("approve quotation: %w", err)
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	now := s.now()
	if !CanPerform(existing, ActionReject, now) {
		return nil, fmt.Errorf("%w: %s cannot be rejected", ErrNotAllowed, EffectiveStatus(existing, now))
	}

	rejectedAt := now
	err = s.repo.UpdateStatus(ctx, id, StatusUpdate{
		Status:          StatusRejected,
		RejectedAt:      &rejectedAt,
		RejectionReason: &reason,
	})
	if err != nil {
		return nil, fmt.Errorf("reject quotation: %w", err)
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

// Convert records the order produced from an approved quotation. The order
// itself is created by the order system; this only stamps the reference, and
// refuses a second conversion.
func (s *Service) Convert(ctx context.Context, id int64, orderID string) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	now := s.now()
	if !CanPerform(existing, ActionConvert, now) {
		return nil, fmt.Errorf("%w: %s cannot be converted", ErrNotAllowed, EffectiveStatus(existing, now))
	}

	err = s.repo.UpdateStatus(ctx, id, StatusUpdate{
		Status:           StatusConverted,
		ConvertedOrderID: &orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("convert quotation: %w", err)
	}

	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*QuotationResponse, error) {
	if s.cache != nil {
		var resp QuotationResponse
		err := s.cache.FetchDetail(ctx, id, &resp, func(ctx context.Context) (any, error) {
			return s.loadResponse(ctx, id)
		})
		if err == nil {
			// Derived fields depend on the clock, so recompute them even on
			// a cache hit.
			resp.EffectiveStatus = EffectiveStatus(&resp.Quotation, s.now())
			resp.AllowedActions = AllowedActions(&resp.Quotation, s.now())
			return &resp, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// Cache trouble falls through to the database.
	}
	return s.loadResponse(ctx, id)
}

func (s *Service) loadResponse(ctx context.Context, id int64) (*QuotationResponse, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &QuotationResponse{
		Quotation:       *q,
		EffectiveStatus: EffectiveStatus(q, now),
		AllowedActions:  AllowedActions(q, now),
	}, nil
}

func (s *Service) GetByToken(ctx context.Context, token string) (*Quotation, error) {
	return s.repo.GetByToken(ctx, token)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// Actions reports which lifecycle operations are currently permitted.
func (s *Service) Actions(ctx context.Context, id int64) ([]Action, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return AllowedActions(q, s.now()), nil
}

// ExpireStale persists the expired status for every overdue sent or approved
// quotation. Invoked by the background sweep; safe to run repeatedly.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire stale quotations: %w", err)
	}
	if n > 0 {
		s.bumpCache(ctx)
	}
	return n, nil
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx)
	}
}

func (s *Service) documentTotals(items []QuotationItemRequest, discountPercent, discountAmount, taxPercent, shippingAmount float64) pricing.Totals {
	lines := make([]pricing.LineInput, len(items))
	for i, item := range items {
		lines[i] = pricingLine(item)
	}
	return pricing.Calculate(pricing.DocumentInput{
		Lines:           lines,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TaxPercent:      taxPercent,
		ShippingAmount:  shippingAmount,
	})
}

func pricingLine(item QuotationItemRequest) pricing.LineInput {
	return pricing.LineInput{
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		DiscountAmount:  item.DiscountAmount,
	}
}

func buildItem(quotationID int64, index int, req QuotationItemRequest) QuotationItem {
	item := QuotationItem{
		QuotationID:     quotationID,
		ProductID:       req.ProductID,
		ProductName:     req.ProductName,
		ProductSKU:      req.ProductSKU,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		LineTotal:       pricing.LineTotal(pricingLine(req)),
		SortOrder:       req.SortOrder,
	}
	if item.SortOrder == 0 {
		item.SortOrder = index + 1
	}
	return item
}

func itemRequestsFromExisting(items []QuotationItem) []QuotationItemRequest {
	out := make([]QuotationItemRequest, len(items))
	for i, it := range items {
		out[i] = QuotationItemRequest{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductSKU:      it.ProductSKU,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,
			SortOrder:       it.SortOrder,
		}
	}
	return out
}
