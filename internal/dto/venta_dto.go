package dto

import "github.com/shopspring/decimal"

type VentaPagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta transferencia billetera"`
	Monto  decimal.Decimal `json:"monto"  validate:"required,gt=0"`
}

// RegistrarVentaRequest records a finalized sale total against the till:
// one cash-ledger movement is appended per payment line, all inside the
// same transaction, and their sum must equal Total.
type RegistrarVentaRequest struct {
	SesionCajaID string             `json:"sesion_caja_id" validate:"required,uuid"`
	TurnoID      *string            `json:"turno_id"       validate:"omitempty,uuid"`
	Total        decimal.Decimal    `json:"total"          validate:"required,gt=0"`
	Pagos        []VentaPagoRequest `json:"pagos"          validate:"required,min=1,dive"`
}

type VentaPagoResponse struct {
	ID     string          `json:"id"`
	Metodo string          `json:"metodo"`
	Monto  decimal.Decimal `json:"monto"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	SesionCajaID string              `json:"sesion_caja_id"`
	TurnoID      *string             `json:"turno_id"`
	Total        decimal.Decimal     `json:"total"`
	Estado       string              `json:"estado"`
	Pagos        []VentaPagoResponse `json:"pagos"`
	CreatedAt    string              `json:"created_at"`
}
