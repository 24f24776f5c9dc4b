package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	PuntoDeVenta int             `json:"punto_de_venta" validate:"required,min=1"`
	MontoInicial decimal.Decimal `json:"monto_inicial"  validate:"min=0"`
	Notas        *string         `json:"notas"`
}

type MovimientoManualRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	TurnoID      *string         `json:"turno_id"       validate:"omitempty,uuid"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=ingreso_manual egreso_manual"`
	MetodoPago   string          `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia billetera"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Motivo       string          `json:"motivo"         validate:"required,min=3"`
}

type CerrarCajaRequest struct {
	SesionCajaID   string                `json:"sesion_caja_id"  validate:"required,uuid"`
	MontoDeclarado decimal.Decimal       `json:"monto_declarado" validate:"min=0"`
	Desglose       []DenominacionRequest `json:"desglose"        validate:"omitempty,dive"`
	Notas          *string               `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MontosPorMetodo struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Tarjeta       decimal.Decimal `json:"tarjeta"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Billetera     decimal.Decimal `json:"billetera"`
	Total         decimal.Decimal `json:"total"`
}

type MovimientoResponse struct {
	ID                 string          `json:"id"`
	SesionCajaID       string          `json:"sesion_caja_id"`
	TurnoID            *string         `json:"turno_id"`
	Tipo               string          `json:"tipo"`
	MetodoPago         string          `json:"metodo_pago"`
	Monto              decimal.Decimal `json:"monto"`
	Motivo             string          `json:"motivo"`
	EstadoAutorizacion string          `json:"estado_autorizacion"`
	CreatedAt          string          `json:"created_at"`
}

type ReporteCajaResponse struct {
	SesionCajaID          string           `json:"sesion_caja_id"`
	PuntoDeVenta          int              `json:"punto_de_venta"`
	MontoInicial          decimal.Decimal  `json:"monto_inicial"`
	Ventas                MontosPorMetodo  `json:"ventas"`
	TotalIngresosManuales decimal.Decimal  `json:"total_ingresos_manuales"`
	TotalEgresosManuales  decimal.Decimal  `json:"total_egresos_manuales"`
	TotalRetiros          decimal.Decimal  `json:"total_retiros"`
	TotalGastos           decimal.Decimal  `json:"total_gastos"`
	MontoEsperado         decimal.Decimal  `json:"monto_esperado"`
	MontoDeclarado        *decimal.Decimal `json:"monto_declarado"`
	Desvio                *decimal.Decimal `json:"desvio"`
	Balanceada            bool             `json:"balanceada"`
	Estado                string           `json:"estado"`
	Observaciones         *string          `json:"observaciones"`
	OpenedAt              string           `json:"opened_at"`
	ClosedAt              *string          `json:"closed_at"`
}
