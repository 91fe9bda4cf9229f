package quotes

import (
	"time"

	"github.com/calyx-commerce/quotes/internal/pricing"
)

type CreateQuotationRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string  `json:"customer_email" validate:"required,email"`
	CustomerPhone   *string `json:"customer_phone,omitempty" validate:"omitempty,max=50"`
	CustomerCompany *string `json:"customer_company,omitempty" validate:"omitempty,max=255"`
	CustomerAddress *string `json:"customer_address,omitempty"`

	ValidUntil time.Time `json:"valid_until" validate:"required"`
	Currency   string    `json:"currency" validate:"required,len=3"`

	DiscountPercent float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount  float64 `json:"discount_amount" validate:"gte=0"`
	TaxPercent      float64 `json:"tax_percentage" validate:"gte=0,lte=100"`
	ShippingAmount  float64 `json:"shipping_amount" validate:"gte=0"`

	Notes              *string `json:"notes,omitempty"`
	InternalNotes      *string `json:"internal_notes,omitempty"`
	TermsAndConditions *string `json:"terms_and_conditions,omitempty"`

	Items []QuotationItemRequest `json:"items" validate:"required,min=1,dive"`
}

type QuotationItemRequest struct {
	ProductID       string  `json:"product_id" validate:"required,max=64"`
	ProductName     string  `json:"product_name" validate:"required,max=255"`
	ProductSKU      string  `json:"product_sku" validate:"required,max=100"`
	Description     *string `json:"description,omitempty"`
	Quantity        int64   `json:"quantity" validate:"required,gte=1"`
	UnitPrice       float64 `json:"unit_price" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount  float64 `json:"discount_amount" validate:"gte=0"`
	SortOrder       int     `json:"sort_order" validate:"gte=0"`
}

type UpdateQuotationRequest struct {
	CustomerName    *string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CustomerEmail   *string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone   *string `json:"customer_phone,omitempty" validate:"omitempty,max=50"`
	CustomerCompany *string `json:"customer_company,omitempty" validate:"omitempty,max=255"`
	CustomerAddress *string `json:"customer_address,omitempty"`

	ValidUntil *time.Time `json:"valid_until,omitempty"`

	DiscountPercent *float64 `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount  *float64 `json:"discount_amount,omitempty" validate:"omitempty,gte=0"`
	TaxPercent      *float64 `json:"tax_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	ShippingAmount  *float64 `json:"shipping_amount,omitempty" validate:"omitempty,gte=0"`

	Notes              *string `json:"notes,omitempty"`
	InternalNotes      *string `json:"internal_notes,omitempty"`
	TermsAndConditions *string `json:"terms_and_conditions,omitempty"`

	Items *[]QuotationItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type ListQuotationsRequest struct {
	Status        *Status    `json:"status,omitempty"`
	CustomerEmail *string    `json:"customer_email,omitempty"`
	DateFrom      *time.Time `json:"date_from,omitempty"` // inclusive lower bound on created_at
	DateTo        *time.Time `json:"date_to,omitempty"`   // exclusive upper bound on created_at
	Limit         int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset        int        `json:"offset" validate:"gte=0"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ConvertRequest struct {
	OrderID string `json:"order_id" validate:"required,max=64"`
}

// PreviewRequest recomputes totals without persisting anything. The SPA calls
// this on every form change.
type PreviewRequest struct {
	DiscountPercent float64                `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount  float64                `json:"discount_amount" validate:"gte=0"`
	TaxPercent      float64                `json:"tax_percentage" validate:"gte=0,lte=100"`
	ShippingAmount  float64                `json:"shipping_amount" validate:"gte=0"`
	Items           []QuotationItemRequest `json:"items" validate:"required,min=1,dive"`
}

type PreviewResponse struct {
	pricing.Totals
	LineTotals []float64 `json:"line_totals"`
}

// QuotationResponse decorates a quotation with read-time derived fields.
type QuotationResponse struct {
	Quotation
	EffectiveStatus Status   `json:"effective_status"`
	AllowedActions  []Action `json:"allowed_actions"`
}

type ListQuotationsResponse struct {
	Quotations []Quotation `json:"quotations"`
	Total      int         `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// PublicQuotationResponse is the customer-facing projection served by the
// share link. Internal notes and audit fields stay out of it.
type PublicQuotationResponse struct {
	Number             string          `json:"number"`
	Status             Status          `json:"status"`
	ValidUntil         time.Time       `json:"valid_until"`
	CustomerName       string          `json:"customer_name"`
	Currency           string          `json:"currency"`
	Subtotal           float64         `json:"subtotal"`
	DiscountAmount     float64         `json:"discount_amount"`
	TaxAmount          float64         `json:"tax_amount"`
	ShippingAmount     float64         `json:"shipping_amount"`
	TotalAmount        float64         `json:"total_amount"`
	TotalFormatted     string          `json:"total_formatted"`
	ValidUntilDisplay  string          `json:"valid_until_display"`
	Notes              *string         `json:"notes,omitempty"`
	TermsAndConditions *string         `json:"terms_and_conditions,omitempty"`
	Items              []QuotationItem `json:"items"`
}
