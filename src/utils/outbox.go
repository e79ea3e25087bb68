package utils

import (
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"log"
	"time"
)

// EnqueueOutboxTask records a failed follow-up so the scheduler can retry it.
// Enqueueing is itself best-effort; a failure here only leaves a log line.
func EnqueueOutboxTask(kind string, reservationId uint, payload types.JSONB, cause string) {
	db := db.GetDb()
	task := models.OutboxTask{
		Kind:          kind,
		ReservationID: reservationId,
		Payload:       payload,
		Status:        types.OUTBOX_PENDING,
		LastError:     cause,
		RunsAt:        time.Now(),
	}
	if err := db.Create(&task).Error; err != nil {
		log.Printf("Error enqueuing outbox task %q for reservation %d: %s\n", kind, reservationId, err.Error())
		return
	}
	log.Printf("Outbox task %q enqueued for reservation %d\n", kind, reservationId)
}
