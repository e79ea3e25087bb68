package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type JSONBArray []any

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type ReservationStatus string

const (
	RESERVATION_PRERESERVA ReservationStatus = "prereserva"
	RESERVATION_CONFIRMADA ReservationStatus = "confirmada"
	RESERVATION_EN_CURSO   ReservationStatus = "en_curso"
	RESERVATION_FINALIZADA ReservationStatus = "finalizada"
	RESERVATION_CANCELLED  ReservationStatus = "cancelled"
	RESERVATION_FACTURADA  ReservationStatus = "facturada"
)

type PaymentStatus string

const (
	PAYMENT_NO_PAYMENT PaymentStatus = "no_payment"
	PAYMENT_PARTIAL    PaymentStatus = "partial"
	PAYMENT_PAID       PaymentStatus = "paid"
	PAYMENT_OVERDUE    PaymentStatus = "overdue"
)

type InvoiceStatus string

const (
	INVOICE_DRAFT InvoiceStatus = "draft"
	INVOICE_SENT  InvoiceStatus = "sent"
	INVOICE_PAID  InvoiceStatus = "paid"
)

type OutboxStatus string

const (
	OUTBOX_PENDING OutboxStatus = "pending"
	OUTBOX_DONE    OutboxStatus = "done"
	OUTBOX_FAILED  OutboxStatus = "failed"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type UpdateStatusRequestBody struct {
	Status        string  `json:"status" binding:"required,reservationstatus"`
	PaymentStatus *string `json:"payment_status,omitempty" binding:"omitempty,paymentstatus"`
}

type FixCheckoutRequestBody struct {
	ForceToStatus *string `json:"force_to_status,omitempty" binding:"omitempty,oneof=en_curso confirmada"`
}

type BatchCheckoutRequestBody struct {
	ModularIDs []uint `json:"modular_ids" binding:"required,min=1"`
}

type CreateInvoiceFromReservationInput struct {
	ReservationID uint   `json:"reservation_id" binding:"required"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PaymentTerms  string `json:"payment_terms,omitempty"`
}

type AddPaymentRequestBody struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// ResolvedReservation is what the status resolver hands back: the identity of
// the principal row plus enough display fields to spare the caller a second
// round trip.
type ResolvedReservation struct {
	PrincipalID   uint              `json:"principal_id"`
	OriginalID    uint              `json:"original_id"`
	IsModular     bool              `json:"is_modular"`
	Status        ReservationStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	GuestName     string            `json:"guest_name"`
	RoomCode      string            `json:"room_code,omitempty"`
}

type StatusUpdateResult struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
	IsModular   bool   `json:"isModularReservation"`
	OriginalID  uint   `json:"originalId,omitempty"`
	PrincipalID uint   `json:"principalId,omitempty"`
}

type CheckoutResult struct {
	StatusUpdateResult
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceError  string `json:"invoice_error,omitempty"`
}

type DiagnosisResult struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	ReservationID uint              `json:"reservationId"`
	GuestName     string            `json:"guestName,omitempty"`
	Issues        []string          `json:"issues,omitempty"`
	RoomsInfo     []string          `json:"roomsProcessed,omitempty"`
	CanCheckout   bool              `json:"canCheckout"`
	NeedsSync     bool              `json:"needsSync"`
	CurrentStatus ReservationStatus `json:"currentStatus,omitempty"`
	PaymentStatus PaymentStatus     `json:"paymentStatus,omitempty"`
}

type RepairResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ReservationID uint     `json:"reservationId"`
	GuestName     string   `json:"guestName,omitempty"`
	RoomsInfo     []string `json:"roomsProcessed,omitempty"`
}

type SyncResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	RoomsSynced int    `json:"roomsSynced,omitempty"`
}

type SyncAllResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Checked  int    `json:"checked"`
	Repaired int    `json:"repaired"`
}

type BatchCheckoutResult struct {
	Success bool                  `json:"success"`
	Results []BatchCheckoutDetail `json:"results"`
}

type BatchCheckoutDetail struct {
	ModularID   uint   `json:"modular_id"`
	PrincipalID uint   `json:"principal_id,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type ModularMapping struct {
	ModularID   uint              `json:"modular_id"`
	PrincipalID uint              `json:"principal_id"`
	RoomCode    string            `json:"room_code"`
	Status      ReservationStatus `json:"status"`
}

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)
