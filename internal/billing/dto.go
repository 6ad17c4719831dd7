package billing

import "time"

// LineInput is one requested product row. Rows with a missing product
// or a non-positive quantity are skipped silently rather than rejected,
// so no required tags here.
type LineInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// NewClientInput creates a client inline with a document.
type NewClientInput struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone1  *string `json:"phone1,omitempty" validate:"omitempty,max=30"`
	Phone2  *string `json:"phone2,omitempty" validate:"omitempty,max=30"`
	TaxID   *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
}

// CreateDocumentRequest covers the client-referencing variants: delivery
// notes, VAT invoices, receipts and quotations. Exactly one of ClientID
// and NewClient must be set.
type CreateDocumentRequest struct {
	ClientID  *int64          `json:"client_id,omitempty"`
	NewClient *NewClientInput `json:"new_client,omitempty"`
	Discount  float64         `json:"discount" validate:"gte=0"`
	StampDuty float64         `json:"stamp_duty" validate:"gte=0"`
	Note      *string         `json:"note,omitempty" validate:"omitempty,max=1000"`
	Lines     []LineInput     `json:"lines" validate:"required,dive"`
}

// UpdateDocumentRequest replaces a document's lines and header figures.
type UpdateDocumentRequest struct {
	ClientID  *int64      `json:"client_id,omitempty"`
	Discount  float64     `json:"discount" validate:"gte=0"`
	StampDuty float64     `json:"stamp_duty" validate:"gte=0"`
	Note      *string     `json:"note,omitempty" validate:"omitempty,max=1000"`
	Lines     []LineInput `json:"lines" validate:"required,dive"`
}

// OrderCustomerInput carries the inline purchaser details of an order.
type OrderCustomerInput struct {
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"required,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
}

// CreateOrderRequest creates an order from the back office. Stock is
// decremented for each accepted line.
type CreateOrderRequest struct {
	Customer    OrderCustomerInput `json:"customer" validate:"required"`
	Discount    float64            `json:"discount" validate:"gte=0"`
	ShippingFee float64            `json:"shipping_fee" validate:"gte=0"`
	Note        *string            `json:"note,omitempty" validate:"omitempty,max=1000"`
	Lines       []LineInput        `json:"lines" validate:"required,dive"`
}

// UpdateOrderRequest replaces an order's lines and patches its header.
// A status change is appended to the order's history; SendNotification
// additionally queues a status SMS to the customer.
type UpdateOrderRequest struct {
	Customer         *OrderCustomerInput `json:"customer,omitempty"`
	Status           *OrderStatus        `json:"status,omitempty"`
	SendNotification bool                `json:"send_notification"`
	Discount         float64             `json:"discount" validate:"gte=0"`
	ShippingFee      float64             `json:"shipping_fee" validate:"gte=0"`
	Note             *string             `json:"note,omitempty" validate:"omitempty,max=1000"`
	Lines            []LineInput         `json:"lines" validate:"required,dive"`
}

// StorefrontOrderRequest is the public shop's order intake. No discount
// and no stock movement; confirmation messages go out after commit.
type StorefrontOrderRequest struct {
	Customer    OrderCustomerInput `json:"customer" validate:"required"`
	ShippingFee float64            `json:"shipping_fee" validate:"gte=0"`
	Note        *string            `json:"note,omitempty" validate:"omitempty,max=1000"`
	Lines       []LineInput        `json:"lines" validate:"required,dive"`
}

// ListDocumentsRequest filters document listings of one variant.
type ListDocumentsRequest struct {
	DocType  DocType      `json:"doc_type" validate:"required"`
	Status   *OrderStatus `json:"status,omitempty"`
	Search   *string      `json:"search,omitempty"`
	DateFrom *time.Time   `json:"date_from,omitempty"`
	DateTo   *time.Time   `json:"date_to,omitempty"`
	Limit    int          `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int          `json:"offset" validate:"gte=0"`
}
