package models

import "hms/src/types"

type Client struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	NombrePrincipal string `json:"nombrePrincipal,omitempty"`
	Apellido        string `json:"apellido,omitempty"`
	Email           string `json:"email,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	RUT             string `gorm:"column:rut" json:"rut,omitempty"`

	types.Timestamps
}
