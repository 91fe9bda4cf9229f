package quotes

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusConverted Status = "converted"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusConverted, StatusExpired:
		return true
	}
	return false
}

type Quotation struct {
	ID          int64     `json:"id" db:"id"`
	Number      string    `json:"number" db:"number"`
	PublicToken string    `json:"public_token" db:"public_token"`
	Status      Status    `json:"status" db:"status"`
	ValidUntil  time.Time `json:"valid_until" db:"valid_until"`

	CustomerName    string  `json:"customer_name" db:"customer_name"`
	CustomerEmail   string  `json:"customer_email" db:"customer_email"`
	CustomerPhone   *string `json:"customer_phone,omitempty" db:"customer_phone"`
	CustomerCompany *string `json:"customer_company,omitempty" db:"customer_company"`
	CustomerAddress *string `json:"customer_address,omitempty" db:"customer_address"`

	Currency        string  `json:"currency" db:"currency"`
	Subtotal        float64 `json:"subtotal" db:"subtotal"`
	DiscountPercent float64 `json:"discount_percentage" db:"discount_percentage"`
	DiscountAmount  float64 `json:"discount_amount" db:"discount_amount"`
	TaxPercent      float64 `json:"tax_percentage" db:"tax_percentage"`
	TaxAmount       float64 `json:"tax_amount" db:"tax_amount"`
	ShippingAmount  float64 `json:"shipping_amount" db:"shipping_amount"`
	TotalAmount     float64 `json:"total_amount" db:"total_amount"`

	Notes              *string `json:"notes,omitempty" db:"notes"`
	InternalNotes      *string `json:"internal_notes,omitempty" db:"internal_notes"`
	TermsAndConditions *string `json:"terms_and_conditions,omitempty" db:"terms_and_conditions"`

	CreatedBy        int64      `json:"created_by" db:"created_by"`
	ApprovedBy       *int64     `json:"approved_by,omitempty" db:"approved_by"`
	SentAt           *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason  *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ConvertedOrderID *string    `json:"converted_order_id,omitempty" db:"converted_order_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []QuotationItem `json:"items,omitempty" db:"-"`
}

// QuotationItem is one priced line. Product fields are snapshotted at add
// time, not live-linked to a catalog.
type QuotationItem struct {
	ID          int64   `json:"id" db:"id"`
	QuotationID int64   `json:"quotation_id" db:"quotation_id"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	ProductSKU  string  `json:"product_sku" db:"product_sku"`
	Description *string `json:"description,omitempty" db:"description"`

	Quantity        int64   `json:"quantity" db:"quantity"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	DiscountPercent float64 `json:"discount_percentage" db:"discount_percentage"`
	DiscountAmount  float64 `json:"discount_amount" db:"discount_amount"`
	LineTotal       float64 `json:"line_total" db:"line_total"`
	SortOrder       int     `json:"sort_order" db:"sort_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
