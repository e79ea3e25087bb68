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
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

type InvoiceCreationResult struct {
	Success             bool            `json:"success"`
	Error               string          `json:"error,omitempty"`
	Invoice             *models.Invoice `json:"invoice,omitempty"`
	TransferredPayments int             `json:"transferred_payments"`
}

type ReservationInvoiceData struct {
	Reservation models.Reservation          `json:"reservation"`
	Client      models.Client               `json:"client"`
	Products    []EnrichedProduct           `json:"products"`
	Payments    []models.ReservationPayment `json:"payments"`
}

type EnrichedProduct struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// invoiceLineForProduct resolves the display name and unit for a reservation
// product line against the modular or spa catalog, falling back to a
// placeholder naming the dangling id so a deleted catalog row never sinks the
// whole invoice. Lodging lines get the Habitación prefix.
func invoiceLineForProduct(tx *gorm.DB, product models.ReservationProduct) models.InvoiceLine {
	name := ""
	description := ""
	unit := "UND"
	isRoom := false

	if product.ProductType == "modular_product" && product.ModularProductID != nil {
		var modularProduct models.ProductModular
		err := tx.
			Select("name", "description", "category").
			Where("id = ?", *product.ModularProductID).
			First(&modularProduct).
			Error
		if err == nil {
			name = modularProduct.Name
			if name == "" {
				name = fmt.Sprintf("Producto modular (ID: %d)", *product.ModularProductID)
			}
			description = modularProduct.Description
			if modularProduct.Category == "alojamiento" {
				isRoom = true
			}
		} else {
			name = fmt.Sprintf("Producto eliminado (ID: %d)", *product.ModularProductID)
		}
	} else if product.ProductID != nil {
		var spaProduct models.SpaProduct
		err := tx.
			Select("name", "description", "type", "unit").
			Where("id = ?", *product.ProductID).
			First(&spaProduct).
			Error
		if err == nil {
			name = spaProduct.Name
			if name == "" {
				name = fmt.Sprintf("Producto spa (ID: %d)", *product.ProductID)
			}
			description = spaProduct.Description
			if spaProduct.Unit != "" {
				unit = spaProduct.Unit
			}
			if spaProduct.Type == "HOSPEDAJE" {
				isRoom = true
			}
		} else {
			name = fmt.Sprintf("Producto eliminado (ID: %d)", *product.ProductID)
		}
	} else {
		name = "Producto sin nombre"
	}

	if description == "" {
		description = name
	}
	if isRoom {
		name = fmt.Sprintf("Habitación: %s", name)
	}

	return models.InvoiceLine{
		ProductID:        product.ProductID,
		ModularProductID: product.ModularProductID,
		Name:             name,
		Description:      description,
		Quantity:         product.Quantity,
		UnitPrice:        product.UnitPrice,
		Unit:             unit,
		DiscountPercent:  0,
		Taxes:            types.JSONBArray{19},
		Subtotal:         product.TotalPrice,
	}
}

// GenerateInvoiceNumber picks the next number in the current day's sequence
// (F-20060102-0001). It reads the highest existing suffix within the caller's
// transaction; the unique index on number is what actually rules out a
// concurrent duplicate.
func GenerateInvoiceNumber(tx *gorm.DB, now time.Time) string {
	prefix := fmt.Sprintf("F-%s-", now.Format(config.INVOICE_DAY_FORMAT))
	var last models.Invoice
	seq := 1
	err := tx.
		Model(&models.Invoice{}).
		Select("number").
		Where("number LIKE ?", prefix+"%").
		Order("number desc").
		First(&last).
		Error
	if err == nil {
		if n, convErr := strconv.Atoi(strings.TrimPrefix(last.Number, prefix)); convErr == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// AlreadyInvoiced reports whether an invoicing error message is the
// expected duplicate-invoice case rather than a real failure.
func AlreadyInvoiced(message string) bool {
	return strings.HasPrefix(message, "Ya existe una factura")
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}

// CreateInvoiceFromReservation synthesizes a draft invoice from a finalized
// reservation: one line per reservation product enriched from the catalogs,
// completed reservation payments copied into the invoice ledger, and the
// reservation marked facturada.
func CreateInvoiceFromReservation(input types.CreateInvoiceFromReservationInput) InvoiceCreationResult {
	db := db.GetDb()

	var reservation models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{ID: input.ReservationID}).
		Preload("Client").
		First(&reservation).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceCreationResult{Success: false, Error: "Reserva no encontrada."}
		}
		log.Printf("Error retrieving reservation %d: %s\n", input.ReservationID, err.Error())
		return InvoiceCreationResult{Success: false, Error: "Error interno del servidor."}
	}

	if reservation.Status != types.RESERVATION_FINALIZADA {
		return InvoiceCreationResult{Success: false, Error: "Solo se pueden crear facturas de reservas finalizadas."}
	}

	var products []models.ReservationProduct
	if err := db.
		Where(&models.ReservationProduct{ReservationID: input.ReservationID}).
		Find(&products).
		Error; err != nil {
		log.Printf("Error al obtener productos de la reserva %d: %s\n", input.ReservationID, err.Error())
		return InvoiceCreationResult{Success: false, Error: "Error al obtener productos de la reserva."}
	}

	var payments []models.ReservationPayment
	if err := db.
		Where(&models.ReservationPayment{ReservationID: input.ReservationID}).
		Order("created_at asc").
		Find(&payments).
		Error; err != nil {
		// Not critical, proceed without payment carry-over.
		log.Printf("Error al obtener pagos de la reserva %d: %s\n", input.ReservationID, err.Error())
		payments = nil
	}

	var existing models.Invoice
	err = db.
		Model(&models.Invoice{}).
		Select("id", "number").
		Where("reservation_id = ?", input.ReservationID).
		First(&existing).
		Error
	if err == nil {
		return InvoiceCreationResult{
			Success: false,
			Error:   fmt.Sprintf("Ya existe una factura (%s) para esta reserva.", existing.Number),
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking for existing invoice: %s\n", err.Error())
		return InvoiceCreationResult{Success: false, Error: "Error interno del servidor."}
	}

	now := time.Now()
	dueDate := now.Add(30 * 24 * time.Hour)
	notes := input.Notes
	if notes == "" {
		notes = fmt.Sprintf("Factura generada automáticamente desde reserva #%d", reservation.ID)
	}
	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = "30 días"
	}

	reservationId := reservation.ID
	invoice := models.Invoice{
		ClientID:      reservation.ClientID,
		ReservationID: &reservationId,
		Status:        types.INVOICE_DRAFT,
		Total:         reservation.TotalAmount,
		Currency:      "CLP",
		DueDate:       &dueDate,
		Notes:         notes,
		PaymentTerms:  paymentTerms,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		number := input.InvoiceNumber
		if number == "" {
			number = GenerateInvoiceNumber(tx, now)
		}
		var sameNumber int64
		if err := tx.
			Model(&models.Invoice{}).
			Where("number = ?", number).
			Count(&sameNumber).
			Error; err != nil {
			return err
		}
		if sameNumber > 0 {
			return errors.New("Ya existe una factura con ese número.")
		}
		invoice.Number = number

		for _, product := range products {
			invoice.Lines = append(invoice.Lines, invoiceLineForProduct(tx, product))
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			// The unique index on reservation_id is the authoritative guard;
			// losing the race means somebody else already invoiced this stay.
			var winner models.Invoice
			if lookupErr := db.
				Select("number").
				Where("reservation_id = ?", input.ReservationID).
				First(&winner).
				Error; lookupErr != nil {
				return InvoiceCreationResult{Success: false, Error: "Ya existe una factura con ese número."}
			}
			return InvoiceCreationResult{
				Success: false,
				Error:   fmt.Sprintf("Ya existe una factura (%s) para esta reserva.", winner.Number),
			}
		}
		log.Printf("Error al crear factura para reserva %d: %s\n", input.ReservationID, err.Error())
		return InvoiceCreationResult{Success: false, Error: err.Error()}
	}

	transferred := 0
	for _, payment := range payments {
		if payment.Status != "completed" {
			continue
		}
		paymentDate := payment.CreatedAt
		invoicePayment := models.InvoicePayment{
			InvoiceID:       invoice.ID,
			Amount:          payment.Amount,
			PaymentMethod:   payment.PaymentMethod,
			PaymentDate:     &paymentDate,
			ReferenceNumber: payment.ReferenceNumber,
			Notes:           fmt.Sprintf("Transferido desde reserva #%d - %s", reservation.ID, payment.Notes),
			ProcessedBy:     payment.ProcessedBy,
			Status:          "completed",
		}
		if err := db.Create(&invoicePayment).Error; err != nil {
			log.Printf("Error al transferir pago %d: %s\n", payment.ID, err.Error())
			EnqueueOutboxTask("transfer_payment", reservation.ID, types.JSONB{
				"invoice_id":       invoice.ID,
				"payment_id":       payment.ID,
				"amount":           payment.Amount,
				"payment_method":   payment.PaymentMethod,
				"reference_number": payment.ReferenceNumber,
				"processed_by":     payment.ProcessedBy,
				"notes":            invoicePayment.Notes,
			}, err.Error())
			continue
		}
		transferred++
	}

	if err := db.
		Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Updates(map[string]any{"status": types.RESERVATION_FACTURADA, "updated_at": time.Now()}).
		Error; err != nil {
		log.Printf("Warning: could not mark reservation %d as facturada: %s\n", reservation.ID, err.Error())
	}

	go lib.InvalidateDashboardCache(reservation.ID)

	return InvoiceCreationResult{Success: true, Invoice: &invoice, TransferredPayments: transferred}
}

// GetReservationForInvoice returns everything the invoice form needs in a
// single payload: reservation with billing fields, the client (or a stand-in
// built from guest contact data), catalog-enriched product lines and the
// payment history.
func GetReservationForInvoice(reservationId uint) (*ReservationInvoiceData, error) {
	db := db.GetDb()

	var reservation models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{ID: reservationId}).
		Preload("Client").
		First(&reservation).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("Reserva no encontrada.")
		}
		return nil, err
	}

	var products []models.ReservationProduct
	if err := db.
		Where(&models.ReservationProduct{ReservationID: reservationId}).
		Find(&products).
		Error; err != nil {
		log.Printf("Error al obtener productos de la reserva %d: %s\n", reservationId, err.Error())
		return nil, errors.New("Error al obtener productos.")
	}

	enriched := make([]EnrichedProduct, 0, len(products))
	for _, product := range products {
		name := "Producto"
		description := ""
		if product.ProductType == "modular_product" && product.ModularProductID != nil {
			var modularProduct models.ProductModular
			if err := db.
				Select("name", "description").
				Where("id = ?", *product.ModularProductID).
				First(&modularProduct).
				Error; err == nil {
				name = modularProduct.Name
				if name == "" {
					name = "Producto Modular"
				}
				description = modularProduct.Description
			}
		} else if product.ProductID != nil {
			var spaProduct models.SpaProduct
			if err := db.
				Select("name", "description").
				Where("id = ?", *product.ProductID).
				First(&spaProduct).
				Error; err == nil {
				name = spaProduct.Name
				if name == "" {
					name = "Producto Spa"
				}
				description = spaProduct.Description
			}
		}
		enriched = append(enriched, EnrichedProduct{
			ID:          product.ID,
			Name:        name,
			Description: description,
			Quantity:    product.Quantity,
			UnitPrice:   product.UnitPrice,
			TotalPrice:  product.TotalPrice,
		})
	}

	var payments []models.ReservationPayment
	if err := db.
		Where(&models.ReservationPayment{ReservationID: reservationId}).
		Order("created_at asc").
		Find(&payments).
		Error; err != nil {
		return nil, errors.New("Error al obtener pagos.")
	}

	client := models.Client{
		NombrePrincipal: reservation.GuestName,
		Email:           reservation.GuestEmail,
		Telefono:        reservation.GuestPhone,
	}
	if reservation.Client != nil {
		client = *reservation.Client
	}

	return &ReservationInvoiceData{
		Reservation: reservation,
		Client:      client,
		Products:    enriched,
		Payments:    payments,
	}, nil
}
