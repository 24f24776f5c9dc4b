package dto

import "github.com/shopspring/decimal"

type RegistrarGastoRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	TurnoID      *string         `json:"turno_id"       validate:"omitempty,uuid"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Categoria    string          `json:"categoria"      validate:"required,oneof=insumos servicios mantenimiento viaticos otros"`
	MetodoPago   string          `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia billetera"`
	Beneficiario string          `json:"beneficiario"   validate:"required,min=2"`
	Descripcion  string          `json:"descripcion"    validate:"required,min=3"`
	ReciboRef    *string         `json:"recibo_ref"`
	// AutorizadorID is mandatory at or above the configured threshold and
	// must differ from the requester.
	AutorizadorID *string `json:"autorizador_id" validate:"omitempty,uuid"`
}

type GastoResponse struct {
	ID            string          `json:"id"`
	SesionCajaID  string          `json:"sesion_caja_id"`
	TurnoID       *string         `json:"turno_id"`
	Monto         decimal.Decimal `json:"monto"`
	Categoria     string          `json:"categoria"`
	MetodoPago    string          `json:"metodo_pago"`
	Beneficiario  string          `json:"beneficiario"`
	Descripcion   string          `json:"descripcion"`
	ReciboRef     *string         `json:"recibo_ref"`
	SolicitanteID string          `json:"solicitante_id"`
	AutorizadorID *string         `json:"autorizador_id"`
	CreatedAt     string          `json:"created_at"`
}
