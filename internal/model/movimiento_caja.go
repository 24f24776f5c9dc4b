package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoMovimiento: "venta" | "ingreso_manual" | "egreso_manual" | "retiro" | "gasto"
type TipoMovimiento string

const (
	MovVenta         TipoMovimiento = "venta"
	MovIngresoManual TipoMovimiento = "ingreso_manual"
	MovEgresoManual  TipoMovimiento = "egreso_manual"
	MovRetiro        TipoMovimiento = "retiro"
	MovGasto         TipoMovimiento = "gasto"
)

// Signo returns +1 for kinds that add cash to the till and -1 for kinds
// that remove it. The switch is exhaustive over TipoMovimiento: a new kind
// must be classified here before any aggregation site will accept it.
func (t TipoMovimiento) Signo() (int, error) {
	switch t {
	case MovVenta, MovIngresoManual:
		return 1, nil
	case MovEgresoManual, MovRetiro, MovGasto:
		return -1, nil
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido: %q", t)
}

// EstadoAutorizacion of a movement: most movements never need one.
type EstadoAutorizacion string

const (
	AutorizacionNoRequerida EstadoAutorizacion = "no_requerida"
	AutorizacionPendiente   EstadoAutorizacion = "pendiente"
	AutorizacionAprobada    EstadoAutorizacion = "autorizada"
	AutorizacionRechazada   EstadoAutorizacion = "rechazada"
)

// MovimientoCaja is one immutable entry in the cash ledger.
// Monto is ALWAYS positive; direction derives from Tipo, never from sign.
// Movements are never updated or deleted — corrections are new offsetting
// entries with an explicit reason. Only EstadoAutorizacion may transition,
// and only pendiente → autorizada|rechazada.
type MovimientoCaja struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TurnoID      *uuid.UUID `gorm:"type:uuid;index"`

	Tipo    TipoMovimiento  `gorm:"type:varchar(20);not null"`
	Metodo  MetodoPago      `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Motivo  string          `gorm:"not null"`
	ActorID uuid.UUID       `gorm:"type:uuid;not null"`

	// ReferenciaID links to the originating VentaPago, Retiro or Gasto.
	ReferenciaID *uuid.UUID `gorm:"type:uuid;index"`

	EstadoAutorizacion EstadoAutorizacion `gorm:"type:varchar(20);not null;default:'no_requerida'"`
	AutorizadoPor      *uuid.UUID         `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// AfectaEfectivo reports whether this movement changes the physical cash
// in the drawer (only cash-method movements do).
func (m *MovimientoCaja) AfectaEfectivo() bool {
	return m.Metodo == MetodoEfectivo
}
