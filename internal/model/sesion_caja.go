package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoSesion: "abierta" | "cerrada"
type EstadoSesion string

const (
	SesionAbierta EstadoSesion = "abierta"
	SesionCerrada EstadoSesion = "cerrada"
)

// MetodoPago is the closed set of payment methods accepted at the till.
type MetodoPago string

const (
	MetodoEfectivo      MetodoPago = "efectivo"
	MetodoTarjeta       MetodoPago = "tarjeta"
	MetodoTransferencia MetodoPago = "transferencia"
	MetodoBilletera     MetodoPago = "billetera"
)

// MetodosPago lists every valid method, in display order.
var MetodosPago = []MetodoPago{MetodoEfectivo, MetodoTarjeta, MetodoTransferencia, MetodoBilletera}

func (m MetodoPago) Valido() bool {
	switch m {
	case MetodoEfectivo, MetodoTarjeta, MetodoTransferencia, MetodoBilletera:
		return true
	}
	return false
}

// SesionCaja represents one physical till being open for business.
// Exactly one session per punto_de_venta may be "abierta" at a time,
// enforced by a partial unique index (see infra.applySchemaPatches).
//
// The running totals are denormalized caches updated inside the same
// transaction that appends each movement. They are never trusted at
// reconciliation time: the ArqueoService re-derives everything from the
// movement ledger.
type SesionCaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta    int             `gorm:"not null;index"`
	UsuarioApertura uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial    decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	// Per-method running totals of sale movements.
	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalBilletera     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	TotalIngresosManuales decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalEgresosManuales  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalRetiros          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalGastos           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	// MontoEsperado is the cached expected-cash figure. Recomputed from the
	// ledger on every arqueo; the Auditor flags drift between the two.
	MontoEsperado  decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Desvio         *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Balanceada     bool             `gorm:"not null;default:false"`

	Estado        EstadoSesion `gorm:"type:varchar(20);not null;default:'abierta'"`
	Observaciones *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Turnos      []Turno          `gorm:"foreignKey:SesionCajaID;constraint:OnDelete:CASCADE"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// TotalPorMetodo returns the running sale total for a method.
func (s *SesionCaja) TotalPorMetodo(m MetodoPago) decimal.Decimal {
	switch m {
	case MetodoEfectivo:
		return s.TotalEfectivo
	case MetodoTarjeta:
		return s.TotalTarjeta
	case MetodoTransferencia:
		return s.TotalTransferencia
	case MetodoBilletera:
		return s.TotalBilletera
	}
	return decimal.Zero
}

// SumarPorMetodo adds monto to the running sale total of a method.
func (s *SesionCaja) SumarPorMetodo(m MetodoPago, monto decimal.Decimal) {
	switch m {
	case MetodoEfectivo:
		s.TotalEfectivo = s.TotalEfectivo.Add(monto)
	case MetodoTarjeta:
		s.TotalTarjeta = s.TotalTarjeta.Add(monto)
	case MetodoTransferencia:
		s.TotalTransferencia = s.TotalTransferencia.Add(monto)
	case MetodoBilletera:
		s.TotalBilletera = s.TotalBilletera.Add(monto)
	}
}
