package utils

import (
	"errors"
	"fmt"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/types"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DiagnoseMultipleRoomCheckout inspects a multi-room reservation for status
// divergence between the principal row and its modular rows. canCheckout is
// true only when everything sits in en_curso; needsSync flags any divergence.
func DiagnoseMultipleRoomCheckout(id uint) types.DiagnosisResult {
	resolved, err := ResolveReservation(id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.DiagnosisResult{Success: false, Message: "Reserva no encontrada", ReservationID: id}
		}
		log.Printf("Error resolving reservation %d: %s\n", id, err.Error())
		return types.DiagnosisResult{Success: false, Message: fmt.Sprintf("Error de diagnóstico: %s", err.Error()), ReservationID: id}
	}

	db := db.GetDb()
	var modulars []models.ModularReservation
	if err := db.
		Select("id", "room_code", "status").
		Where(&models.ModularReservation{ReservationID: resolved.PrincipalID}).
		Find(&modulars).
		Error; err != nil {
		return types.DiagnosisResult{
			Success:       false,
			Message:       fmt.Sprintf("Error obteniendo habitaciones: %s", err.Error()),
			ReservationID: resolved.PrincipalID,
		}
	}

	mainStatus := resolved.Status
	issues := []string{}
	roomsInfo := []string{fmt.Sprintf("Reserva principal: %s", mainStatus)}

	uniqueStatuses := []types.ReservationStatus{}
	seen := map[types.ReservationStatus]bool{}
	allEnCurso := true
	for _, modular := range modulars {
		if !seen[modular.Status] {
			seen[modular.Status] = true
			uniqueStatuses = append(uniqueStatuses, modular.Status)
		}
		if modular.Status != types.RESERVATION_EN_CURSO {
			allEnCurso = false
		}
	}

	if len(modulars) > 0 {
		roomsInfo = append(roomsInfo, fmt.Sprintf("Habitaciones (%d):", len(modulars)))
		for _, modular := range modulars {
			roomsInfo = append(roomsInfo, fmt.Sprintf("  - Hab. %s: %s", modular.RoomCode, modular.Status))
		}

		if len(uniqueStatuses) > 1 {
			names := make([]string, 0, len(uniqueStatuses))
			for _, status := range uniqueStatuses {
				names = append(names, string(status))
			}
			issues = append(issues, fmt.Sprintf("Estados inconsistentes entre habitaciones: %s", strings.Join(names, ", ")))
		}
		if !seen[mainStatus] {
			issues = append(issues, fmt.Sprintf("Estado principal (%s) no coincide con habitaciones", mainStatus))
		}
		if mainStatus == types.RESERVATION_CONFIRMADA && seen[types.RESERVATION_CONFIRMADA] {
			issues = append(issues, "Reserva en estado 'confirmada' - Requiere check-in primero")
		}
		if mainStatus == types.RESERVATION_EN_CURSO && !allEnCurso {
			issues = append(issues, "Algunas habitaciones no están en 'en_curso'")
		}
		if mainStatus == types.RESERVATION_FINALIZADA {
			issues = append(issues, "Reserva ya finalizada - Check-out ya realizado")
		}
	} else {
		issues = append(issues, "No se encontraron habitaciones modulares para esta reserva")
	}

	message := "No se detectaron problemas"
	if len(issues) > 0 {
		message = fmt.Sprintf("Se detectaron %d problema(s)", len(issues))
	}

	return types.DiagnosisResult{
		Success:       true,
		Message:       message,
		ReservationID: resolved.PrincipalID,
		GuestName:     resolved.GuestName,
		Issues:        issues,
		RoomsInfo:     roomsInfo,
		CanCheckout:   mainStatus == types.RESERVATION_EN_CURSO && allEnCurso,
		NeedsSync:     len(uniqueStatuses) > 1 || !seen[mainStatus],
		CurrentStatus: mainStatus,
		PaymentStatus: resolved.PaymentStatus,
	}
}

// SyncReservationStatus forces every modular row of the principal reservation
// to the principal's current status. This is the reactive safety net for
// divergence left behind by older, non-transactional writers.
func SyncReservationStatus(actor string, id uint) types.SyncResult {
	if actor == "" {
		return types.SyncResult{Success: false, Error: "Usuario no autenticado"}
	}

	resolved, err := ResolveReservation(id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.SyncResult{Success: false, Error: "Reserva no encontrada (ni principal ni modular)"}
		}
		return types.SyncResult{Success: false, Error: err.Error()}
	}

	db := db.GetDb()
	synced := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&models.ModularReservation{}).
			Where("reservation_id = ? AND status <> ?", resolved.PrincipalID, resolved.Status).
			Updates(map[string]any{"status": resolved.Status, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		synced = int(result.RowsAffected)
		if synced == 0 {
			return nil
		}
		comment := models.ReservationComment{
			ReservationID: resolved.PrincipalID,
			Text:          fmt.Sprintf("Estados sincronizados: %d habitación(es) ajustada(s) a %q", synced, resolved.Status),
			Author:        actor,
			CommentType:   "system",
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error syncing reservation %d: %s\n", resolved.PrincipalID, err.Error())
		return types.SyncResult{Success: false, Error: err.Error()}
	}

	go lib.InvalidateDashboardCache(resolved.PrincipalID)

	return types.SyncResult{
		Success:     true,
		Message:     fmt.Sprintf("Sincronización completada para la reserva #%d", resolved.PrincipalID),
		RoomsSynced: synced,
	}
}

// SyncAllReservationStatuses sweeps the whole table: every reservation with at
// least one diverging modular row gets the simple sync. The forcing from
// confirmada to en_curso that the targeted repair does is not applied here.
func SyncAllReservationStatuses(actor string) types.SyncAllResult {
	if actor == "" {
		return types.SyncAllResult{Success: false, Error: "Usuario no autenticado"}
	}

	db := db.GetDb()
	var ids []uint
	err := db.
		Model(&models.ModularReservation{}).
		Distinct("modular_reservations.reservation_id").
		Joins("JOIN reservations ON reservations.id = modular_reservations.reservation_id").
		Where("modular_reservations.status <> reservations.status").
		Pluck("modular_reservations.reservation_id", &ids).
		Error
	if err != nil {
		log.Printf("Error finding inconsistent reservations: %s\n", err.Error())
		return types.SyncAllResult{Success: false, Error: err.Error()}
	}

	repaired := 0
	for _, reservationId := range ids {
		result := SyncReservationStatus(actor, reservationId)
		if !result.Success {
			log.Printf("Warning: sync failed for reservation %d: %s\n", reservationId, result.Error)
			continue
		}
		repaired++
	}

	return types.SyncAllResult{
		Success:  true,
		Message:  fmt.Sprintf("Sincronización global completada: %d reserva(s) revisada(s), %d corregida(s)", len(ids), repaired),
		Checked:  len(ids),
		Repaired: repaired,
	}
}

// FixMultipleRoomForCheckout repairs a diverged multi-room reservation so a
// checkout can go through: sync modular rows to the principal and, when the
// principal is stuck in confirmada and the caller wants en_curso, force both
// forward with an audit comment naming the operator.
func FixMultipleRoomForCheckout(actor string, id uint, forceToStatus *string) types.RepairResult {
	if actor == "" {
		return types.RepairResult{Success: false, Message: "Usuario no autenticado", ReservationID: id}
	}

	diagnosis := DiagnoseMultipleRoomCheckout(id)
	if !diagnosis.Success {
		return types.RepairResult{
			Success:       false,
			Message:       fmt.Sprintf("Error en diagnóstico: %s", diagnosis.Message),
			ReservationID: id,
		}
	}

	targetStatus := types.RESERVATION_EN_CURSO
	if forceToStatus != nil {
		targetStatus = types.ReservationStatus(*forceToStatus)
	}

	if diagnosis.CanCheckout && targetStatus == types.RESERVATION_EN_CURSO {
		return types.RepairResult{
			Success:       true,
			Message:       "Reserva ya está lista para check-out",
			ReservationID: diagnosis.ReservationID,
			GuestName:     diagnosis.GuestName,
		}
	}

	if diagnosis.NeedsSync {
		syncResult := SyncReservationStatus(actor, diagnosis.ReservationID)
		if !syncResult.Success {
			return types.RepairResult{
				Success:       false,
				Message:       fmt.Sprintf("Error en sincronización: %s", syncResult.Error),
				ReservationID: diagnosis.ReservationID,
			}
		}
	}

	if diagnosis.CurrentStatus == types.RESERVATION_CONFIRMADA && targetStatus == types.RESERVATION_EN_CURSO {
		db := db.GetDb()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Model(&models.Reservation{}).
				Where("id = ?", diagnosis.ReservationID).
				Updates(map[string]any{"status": types.RESERVATION_EN_CURSO, "updated_at": time.Now()}).
				Error; err != nil {
				return fmt.Errorf("error actualizando reserva principal: %w", err)
			}
			if err := tx.
				Model(&models.ModularReservation{}).
				Where("reservation_id = ?", diagnosis.ReservationID).
				Updates(map[string]any{"status": types.RESERVATION_EN_CURSO, "updated_at": time.Now()}).
				Error; err != nil {
				return fmt.Errorf("error actualizando modulares: %w", err)
			}
			comment := models.ReservationComment{
				ReservationID: diagnosis.ReservationID,
				Text:          "Estados corregidos manualmente para permitir check-out. Confirmada → En Curso",
				Author:        actor,
				CommentType:   "system",
			}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
			return nil
		})
		if err != nil {
			log.Printf("Error repairing reservation %d: %s\n", diagnosis.ReservationID, err.Error())
			return types.RepairResult{
				Success:       false,
				Message:       fmt.Sprintf("Error en corrección: %s", err.Error()),
				ReservationID: diagnosis.ReservationID,
			}
		}
		go lib.InvalidateDashboardCache(diagnosis.ReservationID)
	}

	return types.RepairResult{
		Success:       true,
		Message:       fmt.Sprintf("Estados corregidos exitosamente. Reserva de %s lista para check-out", diagnosis.GuestName),
		ReservationID: diagnosis.ReservationID,
		GuestName:     diagnosis.GuestName,
		RoomsInfo:     diagnosis.RoomsInfo,
	}
}

// ForceMultipleRoomCheckout chains repair and the normal checkout for
// operator-initiated recovery of a known-bad reservation.
func ForceMultipleRoomCheckout(actor string, id uint) types.RepairResult {
	enCurso := string(types.RESERVATION_EN_CURSO)
	fixResult := FixMultipleRoomForCheckout(actor, id, &enCurso)
	if !fixResult.Success {
		return fixResult
	}

	checkoutResult := CheckOutReservation(actor, fixResult.ReservationID)
	if !checkoutResult.Success {
		return types.RepairResult{
			Success:       false,
			Message:       fmt.Sprintf("Error en check-out: %s", checkoutResult.Error),
			ReservationID: fixResult.ReservationID,
			GuestName:     fixResult.GuestName,
			RoomsInfo:     fixResult.RoomsInfo,
		}
	}

	return types.RepairResult{
		Success:       true,
		Message:       fmt.Sprintf("Check-out completado exitosamente para %s", fixResult.GuestName),
		ReservationID: fixResult.ReservationID,
		GuestName:     fixResult.GuestName,
		RoomsInfo:     fixResult.RoomsInfo,
	}
}
