package utils

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetPrincipalIDFromModular(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}).
			AddRow(103, 42))

	principalId, err := GetPrincipalIDFromModular(103)
	assert.Nil(t, err)
	assert.Equal(t, uint(42), principalId)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGetPrincipalIDFromModularNotFound(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}))

	principalId, err := GetPrincipalIDFromModular(999)
	assert.Zero(t, principalId)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCheckOutFromModularIDNotFound(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}))

	result := CheckOutFromModularID("Recepción", 999)
	assert.False(t, result.Success)
	assert.Equal(t, "Reserva modular no encontrada", result.Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestBatchCheckoutReportsPerRoom(t *testing.T) {
	_, mock := getMockDB()

	// first id is unknown, second resolves but the principal is already
	// finalized
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}).
			AddRow(104, 42))
	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "finalizada", "paid", "Pedro Rojas", ""))

	batch := BatchCheckoutModularIDs("Recepción", []uint{999, 104})
	assert.False(t, batch.Success)
	assert.Len(t, batch.Results, 2)
	assert.Equal(t, "Reserva modular no encontrada", batch.Results[0].Error)
	assert.Equal(t, uint(42), batch.Results[1].PrincipalID)
	assert.Equal(t, "La reserva ya ha sido finalizada", batch.Results[1].Error)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGetAllModularToPrincipalMapping(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "room_code", "status"}).
			AddRow(103, 42, "21", "en_curso").
			AddRow(104, 42, "22", "confirmada"))

	mappings, err := GetAllModularToPrincipalMapping()
	assert.Nil(t, err)
	assert.Len(t, mappings, 2)
	assert.Equal(t, uint(42), mappings[0].PrincipalID)
	assert.Equal(t, "22", mappings[1].RoomCode)
	assert.Nil(t, mock.ExpectationsWereMet())
}
