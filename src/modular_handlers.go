package main

import (
	"errors"
	"hms/src/types"
	"hms/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func modularReservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/modular-mappings", func(ctx *gin.Context) {
			mappings, err := utils.GetAllModularToPrincipalMapping()
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": mappings, "count": len(mappings)})
		}).
		GET("/modular-reservations/:id/principal", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			principalId, err := utils.GetPrincipalIDFromModular(params.ID)
			if err != nil {
				if errors.Is(err, utils.ErrReservationNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Reserva modular no encontrada"})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"success":      true,
				"modular_id":   params.ID,
				"principal_id": principalId,
			})
		}).
		POST("/modular-reservations/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.CheckOutFromModularID(ctx.GetString("name"), params.ID)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), result)
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/modular-checkouts", func(ctx *gin.Context) {
			var body types.BatchCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			batch := utils.BatchCheckoutModularIDs(ctx.GetString("name"), body.ModularIDs)
			// Partial failure still returns the whole detail list; the
			// dashboard walks it per room.
			status := http.StatusOK
			if !batch.Success {
				status = http.StatusMultiStatus
			}
			ctx.JSON(status, batch)
		})
	return g
}
