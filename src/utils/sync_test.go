package utils

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDiagnoseTwoRoomDivergence(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}).
			AddRow(103, "21", "en_curso").
			AddRow(104, "22", "confirmada"))

	diagnosis := DiagnoseMultipleRoomCheckout(42)
	assert.True(t, diagnosis.Success)
	assert.False(t, diagnosis.CanCheckout)
	assert.True(t, diagnosis.NeedsSync)
	assert.Equal(t, "Se detectaron 2 problema(s)", diagnosis.Message)
	assert.Contains(t, diagnosis.Issues, "Estados inconsistentes entre habitaciones: en_curso, confirmada")
	assert.Contains(t, diagnosis.Issues, "Algunas habitaciones no están en 'en_curso'")
	assert.Contains(t, diagnosis.RoomsInfo, "Reserva principal: en_curso")
	assert.Contains(t, diagnosis.RoomsInfo, "  - Hab. 22: confirmada")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestDiagnoseHealthyReservation(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}).
			AddRow(103, "21", "en_curso").
			AddRow(104, "22", "en_curso"))

	diagnosis := DiagnoseMultipleRoomCheckout(42)
	assert.True(t, diagnosis.Success)
	assert.True(t, diagnosis.CanCheckout)
	assert.False(t, diagnosis.NeedsSync)
	assert.Equal(t, "No se detectaron problemas", diagnosis.Message)
	assert.Empty(t, diagnosis.Issues)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestDiagnoseNoModularRows(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(7, "en_curso", "partial", "María Soto", "12"))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}))

	diagnosis := DiagnoseMultipleRoomCheckout(7)
	assert.True(t, diagnosis.Success)
	// No modular rows leaves nothing to contradict the principal, so a
	// single-room reservation still checks out.
	assert.True(t, diagnosis.CanCheckout)
	assert.Contains(t, diagnosis.Issues, "No se encontraron habitaciones modulares para esta reserva")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestDiagnoseAlreadyFinalized(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "finalizada", "paid", "Pedro Rojas", ""))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}).
			AddRow(103, "21", "finalizada"))

	diagnosis := DiagnoseMultipleRoomCheckout(42)
	assert.True(t, diagnosis.Success)
	assert.False(t, diagnosis.CanCheckout)
	assert.Contains(t, diagnosis.Issues, "Reserva ya finalizada - Check-out ya realizado")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSyncReservationStatusPropagates(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "modular_reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "reservation_comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result := SyncReservationStatus("Recepción", 42)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RoomsSynced)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSyncReservationStatusNothingToDo(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "modular_reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result := SyncReservationStatus("Recepción", 42)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.RoomsSynced)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestFixMultipleRoomAlreadyReady(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}).
			AddRow(103, "21", "en_curso"))

	result := FixMultipleRoomForCheckout("Recepción", 42, nil)
	assert.True(t, result.Success)
	assert.Equal(t, "Reserva ya está lista para check-out", result.Message)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestFixMultipleRoomForcesConfirmadaForward(t *testing.T) {
	_, mock := getMockDB()

	// diagnosis
	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "confirmada", "partial", "Pedro Rojas", ""))
	mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "status"}).
			AddRow(103, "21", "confirmada").
			AddRow(104, "22", "confirmada"))
	// forcing transaction
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "modular_reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "reservation_comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result := FixMultipleRoomForCheckout("Recepción", 42, nil)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "Pedro Rojas")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSyncAllReservationStatuses(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id"}).AddRow(42))
	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns()).
			AddRow(42, "en_curso", "partial", "Pedro Rojas", ""))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "modular_reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "reservation_comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result := SyncAllReservationStatuses("Sistema")
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Repaired)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSyncAllRequiresActor(t *testing.T) {
	result := SyncAllReservationStatuses("")
	assert.False(t, result.Success)
	assert.Equal(t, "Usuario no autenticado", result.Error)
}
