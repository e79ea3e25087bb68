package models

import (
	"hms/src/types"
	"time"
)

// Invoice is the billing document derived from a finalized reservation. The
// unique index on reservation_id is the authoritative at-most-once guard; the
// pre-insert existence check only exists to name the already-issued number in
// the error message.
type Invoice struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	Number        string              `gorm:"uniqueIndex" json:"number,omitempty"`
	ClientID      *uint               `json:"client_id,omitempty"`
	ReservationID *uint               `gorm:"uniqueIndex" json:"reservation_id,omitempty"`
	Status        types.InvoiceStatus `gorm:"default:'draft'" json:"status,omitempty"`
	Total         float64             `json:"total"`
	Currency      string              `gorm:"default:'CLP'" json:"currency,omitempty"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	PaymentTerms  string              `json:"payment_terms,omitempty"`

	Client   *Client          `gorm:"foreignKey:client_id" json:"client,omitempty"`
	Lines    []InvoiceLine    `gorm:"foreignKey:invoice_id" json:"lines,omitempty"`
	Payments []InvoicePayment `gorm:"foreignKey:invoice_id" json:"payments,omitempty"`

	types.Timestamps
}

type InvoiceLine struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	InvoiceID        uint             `json:"invoice_id,omitempty"`
	ProductID        *uint            `json:"product_id,omitempty"`
	ModularProductID *uint            `json:"modular_product_id,omitempty"`
	Name             string           `json:"name,omitempty"`
	Description      string           `json:"description,omitempty"`
	Quantity         float64          `json:"quantity"`
	UnitPrice        float64          `json:"unit_price"`
	Unit             string           `gorm:"default:'UND'" json:"unit,omitempty"`
	DiscountPercent  float64          `json:"discount_percent"`
	Taxes            types.JSONBArray `gorm:"type:jsonb" json:"taxes,omitempty"`
	Subtotal         float64          `json:"subtotal"`

	types.Timestamps
}

type InvoicePayment struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	InvoiceID       uint       `json:"invoice_id,omitempty"`
	Amount          float64    `json:"amount"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	ProcessedBy     string     `json:"processed_by,omitempty"`
	Status          string     `gorm:"default:'completed'" json:"status,omitempty"`

	types.Timestamps
}
