package common

import (
	"fmt"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"
	"log"
	"time"
)

const maxOutboxAttempts = 5

// ProcessPendingOutboxTasks drains the outbox: every pending task whose
// runs_at has passed gets one more attempt. Tasks that keep failing are parked
// as failed after maxOutboxAttempts so the sweep does not loop on them
// forever.
func ProcessPendingOutboxTasks() {
	db := db.GetDb()
	var tasks []models.OutboxTask
	err := db.
		Where("status = ? AND runs_at <= ?", types.OUTBOX_PENDING, time.Now()).
		Order("created_at").
		Limit(50).
		Find(&tasks).
		Error
	if err != nil {
		log.Printf("Error loading outbox tasks: %s\n", err.Error())
		return
	}
	if len(tasks) == 0 {
		return
	}
	log.Printf("Outbox: processing %d pending task(s)\n", len(tasks))

	for _, task := range tasks {
		var taskErr error
		switch task.Kind {
		case "create_invoice":
			taskErr = retryCreateInvoice(task)
		case "transfer_payment":
			taskErr = retryTransferPayment(task)
		default:
			taskErr = fmt.Errorf("tipo de tarea desconocido: %s", task.Kind)
		}

		updates := map[string]any{
			"attempts":   task.Attempts + 1,
			"updated_at": time.Now(),
		}
		if taskErr == nil {
			updates["status"] = types.OUTBOX_DONE
			updates["last_error"] = ""
		} else {
			log.Printf("Outbox task %s (%s) failed: %s\n", task.ID, task.Kind, taskErr.Error())
			updates["last_error"] = taskErr.Error()
			if task.Attempts+1 >= maxOutboxAttempts {
				updates["status"] = types.OUTBOX_FAILED
			} else {
				updates["runs_at"] = time.Now().Add(time.Duration(task.Attempts+1) * 5 * time.Minute)
			}
		}
		if err := db.
			Model(&models.OutboxTask{}).
			Where("id = ?", task.ID).
			Updates(updates).
			Error; err != nil {
			log.Printf("Error updating outbox task %s: %s\n", task.ID, err.Error())
		}
	}
}

func retryCreateInvoice(task models.OutboxTask) error {
	notes, _ := task.Payload["notes"].(string)
	paymentTerms, _ := task.Payload["payment_terms"].(string)
	result := utils.CreateInvoiceFromReservation(types.CreateInvoiceFromReservationInput{
		ReservationID: task.ReservationID,
		Notes:         notes,
		PaymentTerms:  paymentTerms,
	})
	if !result.Success {
		// A duplicate means an earlier attempt or a manual creation already
		// won. That is success for the retry's purposes.
		if result.Invoice == nil && utils.AlreadyInvoiced(result.Error) {
			return nil
		}
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

func retryTransferPayment(task models.OutboxTask) error {
	invoiceId, ok := task.Payload["invoice_id"].(float64)
	if !ok {
		return fmt.Errorf("payload sin invoice_id")
	}
	paymentId, ok := task.Payload["payment_id"].(float64)
	if !ok {
		return fmt.Errorf("payload sin payment_id")
	}
	amount, _ := task.Payload["amount"].(float64)
	paymentMethod, _ := task.Payload["payment_method"].(string)
	referenceNumber, _ := task.Payload["reference_number"].(string)
	processedBy, _ := task.Payload["processed_by"].(string)
	notes, _ := task.Payload["notes"].(string)

	db := db.GetDb()
	var existing int64
	if err := db.
		Model(&models.InvoicePayment{}).
		Where("invoice_id = ? AND notes = ?", uint(invoiceId), notes).
		Count(&existing).
		Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("Outbox: payment %d already transferred to invoice %d\n", uint(paymentId), uint(invoiceId))
		return nil
	}

	now := time.Now()
	payment := models.InvoicePayment{
		InvoiceID:       uint(invoiceId),
		Amount:          amount,
		PaymentMethod:   paymentMethod,
		PaymentDate:     &now,
		ReferenceNumber: referenceNumber,
		Notes:           notes,
		ProcessedBy:     processedBy,
		Status:          "completed",
	}
	if err := db.Create(&payment).Error; err != nil {
		return err
	}
	return nil
}
