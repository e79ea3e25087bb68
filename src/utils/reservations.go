package utils

import (
	"errors"
	"fmt"
	"hms/src/config"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

var ErrReservationNotFound = errors.New("reservation not found")

// ResolveReservation determines whether id names a principal reservation or a
// modular (per-room) row and returns the principal's identity either way. The
// UI hands out both kinds of id interchangeably, so every status operation
// starts here.
func ResolveReservation(id uint) (*types.ResolvedReservation, error) {
	db := db.GetDb()

	var reservation models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Select("id", "status", "payment_status", "guest_name", "room_code").
		Where(&models.Reservation{ID: id}).
		First(&reservation).
		Error
	if err == nil {
		return &types.ResolvedReservation{
			PrincipalID:   reservation.ID,
			OriginalID:    id,
			IsModular:     false,
			Status:        reservation.Status,
			PaymentStatus: reservation.PaymentStatus,
			GuestName:     reservation.GuestName,
			RoomCode:      reservation.RoomCode,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var modular models.ModularReservation
	err = db.
		Model(&models.ModularReservation{}).
		Where(&models.ModularReservation{ID: id}).
		Preload("Reservation").
		First(&modular).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if modular.Reservation == nil {
		return nil, ErrReservationNotFound
	}

	return &types.ResolvedReservation{
		PrincipalID:   modular.ReservationID,
		OriginalID:    id,
		IsModular:     true,
		Status:        modular.Reservation.Status,
		PaymentStatus: modular.Reservation.PaymentStatus,
		GuestName:     modular.Reservation.GuestName,
		RoomCode:      modular.RoomCode,
	}, nil
}

// UpdateReservationStatus moves the principal reservation to newStatus and
// keeps the addressed modular row in step. Principal update, modular update
// and the audit comment commit atomically; no validation is performed that
// the transition is reachable from the current state.
func UpdateReservationStatus(actor string, id uint, newStatus types.ReservationStatus, paymentStatus *types.PaymentStatus) types.StatusUpdateResult {
	if actor == "" {
		return types.StatusUpdateResult{Success: false, Error: "Usuario no autenticado"}
	}

	resolved, err := ResolveReservation(id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.StatusUpdateResult{Success: false, Error: "Reserva no encontrada (ni principal ni modular)"}
		}
		log.Printf("Error resolving reservation %d: %s\n", id, err.Error())
		return types.StatusUpdateResult{Success: false, Error: err.Error()}
	}

	modularSuffix := ""
	if resolved.IsModular {
		modularSuffix = " (reserva modular)"
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     newStatus,
			"updated_at": time.Now(),
		}
		if paymentStatus != nil {
			updates["payment_status"] = *paymentStatus
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where("id = ?", resolved.PrincipalID).
			Updates(updates).
			Error; err != nil {
			return fmt.Errorf("error al actualizar reserva principal: %w", err)
		}
		if resolved.IsModular {
			if err := tx.
				Model(&models.ModularReservation{}).
				Where("id = ?", resolved.OriginalID).
				Updates(map[string]any{"status": newStatus, "updated_at": time.Now()}).
				Error; err != nil {
				return fmt.Errorf("error al actualizar reserva modular: %w", err)
			}
		}
		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          fmt.Sprintf("Estado cambiado de %q a %q%s", resolved.Status, newStatus, modularSuffix),
			Author:        "Sistema",
			CommentType:   "system",
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating reservation status: %s\n", err.Error())
		return types.StatusUpdateResult{Success: false, Error: err.Error()}
	}

	go lib.InvalidateDashboardCache(resolved.PrincipalID, resolved.OriginalID)

	return types.StatusUpdateResult{
		Success:     true,
		Message:     fmt.Sprintf("Estado actualizado a %q para %s%s", newStatus, resolved.GuestName, modularSuffix),
		IsModular:   resolved.IsModular,
		OriginalID:  resolved.OriginalID,
		PrincipalID: resolved.PrincipalID,
	}
}

// CheckInReservation moves a reservation to en_curso and leaves a check-in
// comment behind. The extra comment is best-effort.
func CheckInReservation(actor string, id uint) types.StatusUpdateResult {
	result := UpdateReservationStatus(actor, id, types.RESERVATION_EN_CURSO, nil)
	if !result.Success {
		return result
	}

	modularSuffix := ""
	if result.IsModular {
		modularSuffix = " (reserva modular)"
	}
	comment := models.ReservationComment{
		ReservationID: result.PrincipalID,
		Text:          "Check-in realizado - Huésped registrado" + modularSuffix,
		Author:        "Sistema",
		CommentType:   "system",
	}
	if err := db.GetDb().Create(&comment).Error; err != nil {
		log.Printf("Warning: could not record check-in comment for reservation %d: %s\n", result.PrincipalID, err.Error())
	}

	result.Message = fmt.Sprintf("Check-in realizado exitosamente%s", modularSuffix)
	return result
}

// ConfirmReservation confirms a pre-reservation once a deposit comes in.
func ConfirmReservation(actor string, id uint) types.StatusUpdateResult {
	partial := types.PAYMENT_PARTIAL
	return UpdateReservationStatus(actor, id, types.RESERVATION_CONFIRMADA, &partial)
}

func CancelReservation(actor string, id uint) types.StatusUpdateResult {
	return UpdateReservationStatus(actor, id, types.RESERVATION_CANCELLED, nil)
}

// CheckOutReservation finalizes a stay and synthesizes the draft invoice. The
// checkout itself commits first; if invoicing fails the reservation stays
// finalizada, a comment advises manual invoice creation, and an outbox task
// is queued for retry. Guest-facing checkout is never blocked by billing.
func CheckOutReservation(actor string, id uint) types.CheckoutResult {
	if actor == "" {
		return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{Success: false, Error: "Usuario no autenticado"}}
	}

	resolved, err := ResolveReservation(id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{Success: false, Error: "Reserva no encontrada para check-out"}}
		}
		log.Printf("Error resolving reservation %d: %s\n", id, err.Error())
		return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{Success: false, Error: err.Error()}}
	}

	if resolved.Status == types.RESERVATION_FINALIZADA {
		return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{Success: false, Error: "La reserva ya ha sido finalizada"}}
	}

	modularSuffix := ""
	roomInfo := ""
	if resolved.IsModular {
		modularSuffix = " (reserva modular)"
		if resolved.RoomCode != "" {
			roomInfo = fmt.Sprintf(" - Habitación(es): %s", resolved.RoomCode)
		}
	} else if resolved.RoomCode != "" {
		roomInfo = fmt.Sprintf(" - Habitación: %s", resolved.RoomCode)
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Reservation{}).
			Where("id = ?", resolved.PrincipalID).
			Updates(map[string]any{"status": types.RESERVATION_FINALIZADA, "updated_at": time.Now()}).
			Error; err != nil {
			return fmt.Errorf("error al actualizar reserva principal: %w", err)
		}
		if resolved.IsModular {
			if err := tx.
				Model(&models.ModularReservation{}).
				Where("id = ?", resolved.OriginalID).
				Updates(map[string]any{"status": types.RESERVATION_FINALIZADA, "updated_at": time.Now()}).
				Error; err != nil {
				return fmt.Errorf("error al actualizar reserva modular: %w", err)
			}
		}
		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          fmt.Sprintf("Check-out realizado - Reserva finalizada%s%s", roomInfo, modularSuffix),
			Author:        "Sistema",
			CommentType:   "system",
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error on checkout of reservation %d: %s\n", resolved.PrincipalID, err.Error())
		return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{Success: false, Error: err.Error()}}
	}

	result := types.CheckoutResult{
		StatusUpdateResult: types.StatusUpdateResult{
			Success:     true,
			Message:     fmt.Sprintf("Check-out realizado exitosamente para %s%s%s", resolved.GuestName, roomInfo, modularSuffix),
			IsModular:   resolved.IsModular,
			OriginalID:  resolved.OriginalID,
			PrincipalID: resolved.PrincipalID,
		},
	}

	autoNumber := AutoInvoiceNumber(resolved.PrincipalID, resolved.IsModular, time.Now())
	invoiceResult := CreateInvoiceFromReservation(types.CreateInvoiceFromReservationInput{
		ReservationID: resolved.PrincipalID,
		InvoiceNumber: autoNumber,
		Notes:         fmt.Sprintf("Factura generada automáticamente desde checkout de reserva #%d%s", resolved.PrincipalID, modularSuffix),
		PaymentTerms:  "30 días",
	})
	if invoiceResult.Success {
		result.InvoiceNumber = invoiceResult.Invoice.Number
		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          fmt.Sprintf("Factura %s creada automáticamente%s", invoiceResult.Invoice.Number, modularSuffix),
			Author:        "Sistema",
			CommentType:   "system",
		}
		if err := db.Create(&comment).Error; err != nil {
			log.Printf("Warning: could not record invoice comment for reservation %d: %s\n", resolved.PrincipalID, err.Error())
		}
	} else if AlreadyInvoiced(invoiceResult.Error) {
		// Re-checkout of an already invoiced reservation. The duplicate is
		// expected, nothing to advise or retry.
		result.InvoiceError = invoiceResult.Error
	} else {
		log.Printf("Error al crear factura automática para reserva %d: %s\n", resolved.PrincipalID, invoiceResult.Error)
		result.InvoiceError = invoiceResult.Error
		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          "Check-out completado pero falló la creación automática de factura. Puede crear la factura manualmente.",
			Author:        "Sistema",
			CommentType:   "system",
		}
		if err := db.Create(&comment).Error; err != nil {
			log.Printf("Warning: could not record invoice-failure comment: %s\n", err.Error())
		}
		EnqueueOutboxTask("create_invoice", resolved.PrincipalID, types.JSONB{
			"reservation_id": resolved.PrincipalID,
			"notes":          fmt.Sprintf("Factura generada automáticamente desde checkout de reserva #%d%s", resolved.PrincipalID, modularSuffix),
			"payment_terms":  "30 días",
		}, invoiceResult.Error)
	}

	go lib.InvalidateDashboardCache(resolved.PrincipalID, resolved.OriginalID)

	return result
}

// AutoInvoiceNumber builds the checkout-generated invoice number, e.g.
// F-RES-0042-20260830 or F-MOD-0042-20260830 when checkout was addressed by a
// modular id.
func AutoInvoiceNumber(principalId uint, isModular bool, now time.Time) string {
	kind := "RES"
	if isModular {
		kind = "MOD"
	}
	return fmt.Sprintf("F-%s-%04d-%s", kind, principalId, now.Format(config.INVOICE_DAY_FORMAT))
}
