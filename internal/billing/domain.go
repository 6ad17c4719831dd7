// Package billing implements the sales document engine: orders, delivery
// notes, VAT invoices, receipts and quotations share one pricing and
// persistence pipeline, differentiated by a per-variant policy.
package billing

import (
	"fmt"
	"time"
)

type DocType string

const (
	DocTypeOrder        DocType = "order"
	DocTypeDeliveryNote DocType = "delivery_note"
	DocTypeVatInvoice   DocType = "vat_invoice"
	DocTypeReceipt      DocType = "receipt"
	DocTypeQuotation    DocType = "quotation"
)

// ParseDocType validates a document type carried in a URL.
func ParseDocType(s string) (DocType, error) {
	switch DocType(s) {
	case DocTypeOrder, DocTypeDeliveryNote, DocTypeVatInvoice, DocTypeReceipt, DocTypeQuotation:
		return DocType(s), nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Policy describes how one document variant is priced and persisted.
type Policy struct {
	// TaxedLines adds per-line VAT at the current rate.
	TaxedLines bool
	// MovesStock decrements product quantities on create and restores
	// them on update before lines are replaced.
	MovesStock bool
	// StampDuty includes the fiscal stamp in the total.
	StampDuty bool
	// ShippingFee includes a delivery fee in the total.
	ShippingFee bool
	// FloorTotal clamps the stored total at zero.
	FloorTotal bool
}

var policies = map[DocType]Policy{
	DocTypeOrder:        {MovesStock: true, ShippingFee: true},
	DocTypeDeliveryNote: {MovesStock: true, FloorTotal: true},
	DocTypeVatInvoice:   {TaxedLines: true, MovesStock: true, StampDuty: true, FloorTotal: true},
	DocTypeReceipt:      {MovesStock: true, FloorTotal: true},
	DocTypeQuotation:    {TaxedLines: true, StampDuty: true, FloorTotal: true},
}

// PolicyFor returns the pricing policy of a document variant.
func PolicyFor(t DocType) Policy {
	return policies[t]
}

// OrderStatus values match the historical French wire values, stored
// verbatim in the database and in the status history field.
type OrderStatus string

const (
	StatusNew        OrderStatus = "nouvelle_commande"
	StatusPreparing  OrderStatus = "en_cours_de_preparation"
	StatusReady      OrderStatus = "prete"
	StatusDelivering OrderStatus = "en_cours_de_livraison"
	StatusShipped    OrderStatus = "expidee"
	StatusCancelled  OrderStatus = "annuler"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPreparing, StatusReady, StatusDelivering, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Label returns the display form used in SMS bodies and printed documents.
func (s OrderStatus) Label() string {
	switch s {
	case StatusNew:
		return "Nouvelle commande"
	case StatusPreparing:
		return "En cours de préparation"
	case StatusReady:
		return "Prête"
	case StatusDelivering:
		return "En cours de livraison"
	case StatusShipped:
		return "Expédiée"
	case StatusCancelled:
		return "Annulée"
	}
	return string(s)
}

// OrderCustomer carries the inline purchaser details an order stores,
// as opposed to client-referencing variants.
type OrderCustomer struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

// Document is a persisted sales document of any variant.
type Document struct {
	ID      int64   `json:"id"`
	DocType DocType `json:"doc_type"`
	Number  string  `json:"number"`

	ClientID *int64         `json:"client_id,omitempty"`
	Customer *OrderCustomer `json:"customer,omitempty"`

	Status  *OrderStatus `json:"status,omitempty"`
	History string       `json:"history,omitempty"`
	Note    *string      `json:"note,omitempty"`

	TotalHT     float64 `json:"total_ht"`
	TotalTVA    float64 `json:"total_tva"`
	Discount    float64 `json:"discount"`
	StampDuty   float64 `json:"stamp_duty"`
	ShippingFee float64 `json:"shipping_fee"`
	TotalTTC    float64 `json:"total_ttc"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lines []Line `json:"lines,omitempty"`
}

// Line is one priced product row of a document.
type Line struct {
	ID          int64   `json:"id"`
	DocumentID  int64   `json:"document_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalHT     float64 `json:"total_ht"`
	TVA         float64 `json:"tva"`
	TotalTTC    float64 `json:"total_ttc"`
}

// AppendHistory records a status transition in the semicolon-delimited
// history field, matching the historical format.
func AppendHistory(history string, status OrderStatus, at time.Time) string {
	return history + ";" + string(status) + "," + at.Format("2006-01-02 15:04:05")
}
