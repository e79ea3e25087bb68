package utils

import (
	"errors"
	"fmt"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

// AddReservationPayment registers a payment against the principal reservation
// and recomputes its paid, pending and payment_status columns in the same
// transaction. Payments land on the principal even when the caller addressed a
// modular id.
func AddReservationPayment(actor string, id uint, body types.AddPaymentRequestBody) types.StatusUpdateResult {
	if actor == "" {
		return types.StatusUpdateResult{Success: false, Error: "Usuario no autenticado"}
	}

	resolved, err := ResolveReservation(id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.StatusUpdateResult{Success: false, Error: "Reserva no encontrada (ni principal ni modular)"}
		}
		return types.StatusUpdateResult{Success: false, Error: err.Error()}
	}

	db := db.GetDb()
	var paymentStatus types.PaymentStatus
	err = db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Select("id", "total_amount", "paid_amount").
			First(&reservation, resolved.PrincipalID).
			Error; err != nil {
			return err
		}

		payment := models.ReservationPayment{
			ReservationID:   resolved.PrincipalID,
			Amount:          body.Amount,
			PaymentMethod:   body.PaymentMethod,
			ReferenceNumber: body.ReferenceNumber,
			Notes:           body.Notes,
			ProcessedBy:     actor,
			Status:          "completed",
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		paid := reservation.PaidAmount + body.Amount
		pending := reservation.TotalAmount - paid
		if pending < 0 {
			pending = 0
		}
		paymentStatus = types.PAYMENT_PARTIAL
		if reservation.TotalAmount > 0 && paid >= reservation.TotalAmount {
			paymentStatus = types.PAYMENT_PAID
		}

		if err := tx.
			Model(&models.Reservation{}).
			Where("id = ?", resolved.PrincipalID).
			Updates(map[string]any{
				"paid_amount":    paid,
				"pending_amount": pending,
				"payment_status": paymentStatus,
				"updated_at":     time.Now(),
			}).
			Error; err != nil {
			return err
		}

		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          fmt.Sprintf("Pago registrado: $%.0f (%s)", body.Amount, body.PaymentMethod),
			Author:        actor,
			CommentType:   "system",
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error registering payment for reservation %d: %s\n", resolved.PrincipalID, err.Error())
		return types.StatusUpdateResult{Success: false, Error: err.Error()}
	}

	go lib.InvalidateDashboardCache(resolved.PrincipalID)

	return types.StatusUpdateResult{
		Success:     true,
		Message:     fmt.Sprintf("Pago de $%.0f registrado para la reserva #%d", body.Amount, resolved.PrincipalID),
		IsModular:   resolved.IsModular,
		OriginalID:  resolved.OriginalID,
		PrincipalID: resolved.PrincipalID,
	}
}
