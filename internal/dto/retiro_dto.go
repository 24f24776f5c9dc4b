package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SolicitarRetiroRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	TurnoID      *string         `json:"turno_id"       validate:"omitempty,uuid"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Motivo       string          `json:"motivo"         validate:"required,min=3"`
}

type ResolverRetiroRequest struct {
	// Decision: "autorizar" | "rechazar"
	Decision string  `json:"decision" validate:"required,oneof=autorizar rechazar"`
	Notas    *string `json:"notas"`
}

type CompletarRetiroRequest struct {
	ReciboRef string `json:"recibo_ref" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RetiroResponse struct {
	ID                string          `json:"id"`
	SesionCajaID      string          `json:"sesion_caja_id"`
	TurnoID           *string         `json:"turno_id"`
	Monto             decimal.Decimal `json:"monto"`
	Motivo            string          `json:"motivo"`
	Estado            string          `json:"estado"`
	SolicitanteID     string          `json:"solicitante_id"`
	AutorizadorID     *string         `json:"autorizador_id"`
	NotasAutorizacion *string         `json:"notas_autorizacion"`
	ReciboRef         *string         `json:"recibo_ref"`
	CreatedAt         string          `json:"created_at"`
}
