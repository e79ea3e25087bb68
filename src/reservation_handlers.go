package main

import (
	"errors"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// resultStatus maps a failed operation result onto an HTTP status. The
// dashboard renders error strings verbatim, so the body shape is the same
// either way.
func resultStatus(errMessage string) int {
	switch {
	case errMessage == "Usuario no autenticado":
		return http.StatusUnauthorized
	case strings.Contains(errMessage, "no encontrada"):
		return http.StatusNotFound
	case strings.HasPrefix(errMessage, "Ya existe una factura"):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var reservation models.Reservation
			db := db.GetDb()
			err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{ID: params.ID}).
				Preload("Client").
				Preload("ModularReservations").
				Preload("Products").
				Preload("Payments").
				Preload("Comments").
				First(&reservation).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Reserva no encontrada"})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": reservation})
		}).
		PUT("/reservations/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := ctx.GetString("name")
			var paymentStatus *types.PaymentStatus
			if body.PaymentStatus != nil {
				ps := types.PaymentStatus(*body.PaymentStatus)
				paymentStatus = &ps
			}
			result := utils.UpdateReservationStatus(actor, params.ID, types.ReservationStatus(body.Status), paymentStatus)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/checkin", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.CheckInReservation(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.CheckOutReservation(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.ConfirmReservation(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.CancelReservation(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/payments", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AddPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.AddReservationPayment(ctx.GetString("name"), params.ID, body)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/sync/reservations", func(ctx *gin.Context) {
			result := utils.SyncAllReservationStatuses(ctx.GetString("name"))
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/sync", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.SyncReservationStatus(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		GET("/reservations/:id/diagnosis", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.DiagnoseMultipleRoomCheckout(params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Message), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/repair", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.FixCheckoutRequestBody
			if ctx.Request.ContentLength > 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
			}
			result := utils.FixMultipleRoomForCheckout(ctx.GetString("name"), params.ID, body.ForceToStatus)
			if !result.Success {
				ctx.JSON(resultStatus(result.Message), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/reservations/:id/force-checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.ForceMultipleRoomCheckout(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Message), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		})
	return g
}
