package models

import (
	"hms/src/types"
	"time"

	"github.com/google/uuid"
)

// OutboxTask durably records a best-effort follow-up that failed inline
// (payment carry-over, cache invalidation, comment insert) so the scheduler
// can retry it instead of leaving only a warning in the server log.
type OutboxTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Kind          string             `json:"-"`
	ReservationID uint               `json:"-"`
	Payload       types.JSONB        `gorm:"type:jsonb" json:"-"`
	Status        types.OutboxStatus `gorm:"default:'pending'" json:"-"`
	Attempts      uint               `json:"-"`
	LastError     string             `json:"-"`
	RunsAt        time.Time          `json:"-"`

	types.Timestamps
}
