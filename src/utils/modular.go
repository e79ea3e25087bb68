package utils

import (
	"errors"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"log"

	"gorm.io/gorm"
)

// GetPrincipalIDFromModular maps a modular (per-room) id to the id of its
// principal reservation. The lookup is strictly against the modular table, so
// passing a principal id here is an error, not a fallback.
func GetPrincipalIDFromModular(modularId uint) (uint, error) {
	db := db.GetDb()
	var modular models.ModularReservation
	if err := db.
		Select("id", "reservation_id").
		First(&modular, modularId).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrReservationNotFound
		}
		return 0, err
	}
	return modular.ReservationID, nil
}

// CheckOutFromModularID runs a checkout addressed by modular id. An unknown id
// yields a failed result rather than an error so batch callers can keep going.
func CheckOutFromModularID(actor string, modularId uint) types.CheckoutResult {
	principalId, err := GetPrincipalIDFromModular(modularId)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{
				Success: false,
				Error:   "Reserva modular no encontrada",
			}}
		}
		log.Printf("Error resolving modular reservation %d: %s\n", modularId, err.Error())
		return types.CheckoutResult{StatusUpdateResult: types.StatusUpdateResult{
			Success: false,
			Error:   err.Error(),
		}}
	}
	return CheckOutReservation(actor, principalId)
}

// BatchCheckoutModularIDs checks out a set of rooms by modular id. Modular ids
// belonging to the same principal collapse into one checkout; the second one
// reports the idempotent already-finalized error, which is expected.
func BatchCheckoutModularIDs(actor string, modularIds []uint) types.BatchCheckoutResult {
	batch := types.BatchCheckoutResult{Success: true, Results: []types.BatchCheckoutDetail{}}
	for _, modularId := range modularIds {
		detail := types.BatchCheckoutDetail{ModularID: modularId}
		principalId, err := GetPrincipalIDFromModular(modularId)
		if err != nil {
			if errors.Is(err, ErrReservationNotFound) {
				detail.Error = "Reserva modular no encontrada"
			} else {
				detail.Error = err.Error()
			}
			batch.Success = false
			batch.Results = append(batch.Results, detail)
			continue
		}
		detail.PrincipalID = principalId
		result := CheckOutReservation(actor, principalId)
		detail.Success = result.Success
		if !result.Success {
			detail.Error = result.Error
			batch.Success = false
		}
		batch.Results = append(batch.Results, detail)
	}
	return batch
}

// GetAllModularToPrincipalMapping returns the full modular-to-principal id map
// for dashboard reconciliation.
func GetAllModularToPrincipalMapping() ([]types.ModularMapping, error) {
	db := db.GetDb()
	var modulars []models.ModularReservation
	if err := db.
		Select("id", "reservation_id", "room_code", "status").
		Order("reservation_id, id").
		Find(&modulars).
		Error; err != nil {
		return nil, err
	}
	mappings := make([]types.ModularMapping, 0, len(modulars))
	for _, modular := range modulars {
		mappings = append(mappings, types.ModularMapping{
			ModularID:   modular.ID,
			PrincipalID: modular.ReservationID,
			RoomCode:    modular.RoomCode,
			Status:      modular.Status,
		})
	}
	return mappings, nil
}
