package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type IniciarTurnoRequest struct {
	SesionCajaID string `json:"sesion_caja_id" validate:"required,uuid"`
	TipoRelevo   string `json:"tipo_relevo"    validate:"required,oneof=normal emergencia"`
	// CajeroID lets a supervisor start an emergency relief on behalf of
	// another cashier; ignored for a normal relevo.
	CajeroID *string `json:"cajero_id" validate:"omitempty,uuid"`
}

type SuspenderTurnoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ReanudarTurnoRequest struct {
	Notas *string `json:"notas"`
}

type CerrarTurnoRequest struct {
	MontoFinal decimal.Decimal `json:"monto_final" validate:"min=0"`
	Notas      *string         `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TurnoResponse struct {
	ID            string           `json:"id"`
	SesionCajaID  string           `json:"sesion_caja_id"`
	UsuarioID     string           `json:"usuario_id"`
	TipoRelevo    string           `json:"tipo_relevo"`
	SupervisorID  *string          `json:"supervisor_id"`
	MontoInicial  decimal.Decimal  `json:"monto_inicial"`
	MontoFinal    *decimal.Decimal `json:"monto_final"`
	MontoEsperado *decimal.Decimal `json:"monto_esperado"`
	Ventas        MontosPorMetodo  `json:"ventas"`
	TotalRetiros  decimal.Decimal  `json:"total_retiros"`
	TotalGastos   decimal.Decimal  `json:"total_gastos"`
	Estado        string           `json:"estado"`
	StartedAt     string           `json:"started_at"`
	EndedAt       *string          `json:"ended_at"`
}
