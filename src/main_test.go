package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"hms/src/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func testAuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Usuario no autenticado"})
		return
	}
	ctx.Set("id", uint(1))
	ctx.Set("name", "Test User")
	ctx.Set("email", "someone@example.com")
	ctx.Set("role", "recepcion")
}

func (s *TestSuite) SetupSuite() {
	registerValidators()
}

func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) testRouter() *gin.Engine {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuthMiddleware)
	reservationHandlers(apiv1)
	modularReservationHandlers(apiv1)
	invoiceHandlers(apiv1)
	return router
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestRequiresAuthentication() {
	router := s.testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/reservations/7/checkin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "Usuario no autenticado", gjson.Get(string(rbytes), "error").String())
}

func (s *TestSuite) TestStatusUpdateValidation() {
	router := s.testRouter()

	jbody := map[string]any{"status": "whatever"}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/reservations/7/status", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestStatusUpdateRejectsFacturada() {
	router := s.testRouter()

	jbody := map[string]any{"status": "facturada"}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/reservations/7/status", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestStatusUpdateRoute() {
	router := s.testRouter()

	s.Mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_status", "guest_name", "room_code"}).
			AddRow(7, "confirmada", "partial", "María Soto", "12"))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectQuery(`INSERT INTO "reservation_comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	jbody := map[string]any{"status": "en_curso"}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/reservations/7/status", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	sjson := string(rbytes)
	assert.True(s.T(), gjson.Get(sjson, "success").Bool())
	assert.Contains(s.T(), gjson.Get(sjson, "message").String(), "Estado actualizado")
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestDiagnosisNotFound() {
	router := s.testRouter()

	s.Mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_status", "guest_name", "room_code"}))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "room_code", "guest_name", "status"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/reservations/999/diagnosis", nil)
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "Reserva no encontrada", gjson.Get(string(rbytes), "message").String())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestBatchCheckoutValidation() {
	router := s.testRouter()

	jbody := map[string]any{"modular_ids": []uint{}}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/modular-checkouts", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCreateInvoiceConflict() {
	router := s.testRouter()

	s.Mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "guest_name", "status", "total_amount", "client_id"}).
			AddRow(7, "María Soto", "finalizada", 150000, nil))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "reservation_products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "product_type"}))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "reservation_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "amount", "status"}))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number"}).AddRow(3, "F-0001"))

	jbody := map[string]any{"reservation_id": 7}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/invoices/from-reservation", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "Ya existe una factura (F-0001) para esta reserva.", gjson.Get(string(rbytes), "error").String())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestModularPrincipalRoute() {
	router := s.testRouter()

	s.Mock.ExpectQuery(`SELECT (.+) FROM "modular_reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id"}).AddRow(103, 42))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/modular-reservations/103/principal", nil)
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), int64(42), gjson.Get(string(rbytes), "principal_id").Int())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
