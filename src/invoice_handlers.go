package main

import (
	"hms/src/types"
	"hms/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func invoiceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/invoices/from-reservation", func(ctx *gin.Context) {
			var body types.CreateInvoiceFromReservationInput
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := utils.CreateInvoiceFromReservation(body)
			if !result.Success {
				ctx.JSON(resultStatus(result.Error), gin.H{"success": false, "error": result.Error})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"success":              true,
				"data":                 result.Invoice,
				"transferred_payments": result.TransferredPayments,
			})
		}).
		GET("/reservations/:id/invoice-data", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			data, err := utils.GetReservationForInvoice(params.ID)
			if err != nil {
				ctx.JSON(resultStatus(err.Error()), gin.H{"success": false, "error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
		})
	return g
}
