package dto

import "github.com/shopspring/decimal"

// DenominacionRequest is one line of the counted-cash breakdown.
type DenominacionRequest struct {
	Denominacion decimal.Decimal `json:"denominacion" validate:"required,gt=0"`
	Cantidad     int             `json:"cantidad"     validate:"required,min=1"`
}

type AprobarArqueoRequest struct {
	Notas string `json:"notas" validate:"required"`
}

type DenominacionResponse struct {
	Denominacion decimal.Decimal `json:"denominacion"`
	Cantidad     int             `json:"cantidad"`
}

type ArqueoResponse struct {
	ID              string                 `json:"id"`
	SesionCajaID    string                 `json:"sesion_caja_id"`
	MontoDeclarado  decimal.Decimal        `json:"monto_declarado"`
	MontoEsperado   decimal.Decimal        `json:"monto_esperado"`
	Desvio          decimal.Decimal        `json:"desvio"`
	Estado          string                 `json:"estado"`
	RealizadoPor    string                 `json:"realizado_por"`
	AprobadoPor     *string                `json:"aprobado_por"`
	NotasAprobacion *string                `json:"notas_aprobacion"`
	Desglose        []DenominacionResponse `json:"desglose"`
	CreatedAt       string                 `json:"created_at"`
}
