package models

import (
	"hms/src/types"
	"time"
)

// Reservation is the principal booking record covering a guest's entire stay.
// Modular rows, products, payments and comments all hang off it.
type Reservation struct {
	ID             uint                    `gorm:"primarykey" json:"id"`
	GuestName      string                  `json:"guest_name,omitempty"`
	GuestEmail     string                  `json:"guest_email,omitempty"`
	GuestPhone     string                  `json:"guest_phone,omitempty"`
	CheckIn        *time.Time              `json:"check_in,omitempty"`
	CheckOut       *time.Time              `json:"check_out,omitempty"`
	Guests         uint                    `json:"guests,omitempty"`
	BillingName    string                  `json:"billing_name,omitempty"`
	BillingRUT     string                  `gorm:"column:billing_rut" json:"billing_rut,omitempty"`
	BillingAddress string                  `json:"billing_address,omitempty"`
	TotalAmount    float64                 `json:"total_amount"`
	PaidAmount     float64                 `json:"paid_amount"`
	PendingAmount  float64                 `json:"pending_amount"`
	Status         types.ReservationStatus `gorm:"default:'prereserva'" json:"status,omitempty"`
	PaymentStatus  types.PaymentStatus     `gorm:"default:'no_payment'" json:"payment_status,omitempty"`
	RoomCode       string                  `json:"room_code,omitempty"`
	ClientID       *uint                   `json:"client_id,omitempty"`

	Client              *Client              `gorm:"foreignKey:client_id" json:"client,omitempty"`
	ModularReservations []ModularReservation `gorm:"foreignKey:reservation_id" json:"modular_reservations,omitempty"`
	Products            []ReservationProduct `gorm:"foreignKey:reservation_id" json:"products,omitempty"`
	Payments            []ReservationPayment `gorm:"foreignKey:reservation_id" json:"payments,omitempty"`
	Comments            []ReservationComment `gorm:"foreignKey:reservation_id" json:"comments,omitempty"`

	types.Timestamps
}

// ModularReservation is the per-room sub-record of a principal reservation.
// Its status is expected to mirror the principal's; the sync utilities exist
// because history shows it often does not.
type ModularReservation struct {
	ID            uint                    `gorm:"primarykey" json:"id"`
	ReservationID uint                    `json:"reservation_id,omitempty"`
	RoomCode      string                  `json:"room_code,omitempty"`
	GuestName     string                  `json:"guest_name,omitempty"`
	Status        types.ReservationStatus `gorm:"default:'prereserva'" json:"status,omitempty"`

	Reservation *Reservation `gorm:"foreignKey:reservation_id" json:"reservation,omitempty"`

	types.Timestamps
}

type ReservationProduct struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	ReservationID    uint    `json:"reservation_id,omitempty"`
	ProductType      string  `json:"product_type,omitempty"`
	ModularProductID *uint   `json:"modular_product_id,omitempty"`
	ProductID        *uint   `json:"product_id,omitempty"`
	Quantity         float64 `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	TotalPrice       float64 `json:"total_price"`

	types.Timestamps
}

type ReservationPayment struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	ReservationID   uint    `json:"reservation_id,omitempty"`
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Status          string  `gorm:"default:'completed'" json:"status,omitempty"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	ProcessedBy     string  `json:"processed_by,omitempty"`

	types.Timestamps
}

// ReservationComment is the append-only audit trail. Every state change and
// side effect leaves one behind.
type ReservationComment struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	ReservationID uint   `json:"reservation_id,omitempty"`
	Text          string `json:"text,omitempty"`
	Author        string `json:"author,omitempty"`
	CommentType   string `gorm:"default:'system'" json:"comment_type,omitempty"`

	types.Timestamps
}
