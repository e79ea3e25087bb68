package models

import "hms/src/types"

// ProductModular is a catalog entry for room-package products. Category
// "alojamiento" marks lodging lines on generated invoices.
type ProductModular struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`

	types.Timestamps
}

// SpaProduct is a catalog entry for spa services. Type "HOSPEDAJE" marks
// lodging lines on generated invoices.
type SpaProduct struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type,omitempty"`
	Unit        string  `gorm:"default:'UND'" json:"unit,omitempty"`
	Price       float64 `json:"price"`

	types.Timestamps
}
