package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoTurno: "activo" | "suspendido" | "cerrado"
type EstadoTurno string

const (
	TurnoActivo     EstadoTurno = "activo"
	TurnoSuspendido EstadoTurno = "suspendido"
	TurnoCerrado    EstadoTurno = "cerrado"
)

// TipoRelevo: "normal" | "emergencia"
// An emergency relief requires a supervisor or admin as authorizing actor.
type TipoRelevo string

const (
	RelevoNormal     TipoRelevo = "normal"
	RelevoEmergencia TipoRelevo = "emergencia"
)

// Turno is one cashier's stint inside a cash session.
// At most one "activo" turno per (sesion, usuario) — partial unique index.
//
// MontoInicial carries over from the previous same-day turno's MontoFinal,
// or the session float when it is the first of the day.
type Turno struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;index;not null"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;index;not null"`

	TipoRelevo   TipoRelevo `gorm:"type:varchar(20);not null;default:'normal'"`
	SupervisorID *uuid.UUID `gorm:"type:uuid"`

	MontoInicial decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	MontoFinal   *decimal.Decimal `gorm:"type:decimal(14,2)"`
	// MontoEsperado is snapshotted at close from the turno's own ledger slice.
	MontoEsperado *decimal.Decimal `gorm:"type:decimal(14,2)"`

	// Per-method running totals of sale movements attributed to this turno.
	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalBilletera     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalRetiros       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalGastos        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Estado           EstadoTurno `gorm:"type:varchar(20);not null;default:'activo'"`
	MotivoSuspension *string
	NotasReanudacion *string
	NotasCierre      *string

	StartedAt time.Time
	EndedAt   *time.Time
}

func (Turno) TableName() string { return "turnos" }

// SumarPorMetodo adds monto to the turno's running sale total of a method.
func (t *Turno) SumarPorMetodo(m MetodoPago, monto decimal.Decimal) {
	switch m {
	case MetodoEfectivo:
		t.TotalEfectivo = t.TotalEfectivo.Add(monto)
	case MetodoTarjeta:
		t.TotalTarjeta = t.TotalTarjeta.Add(monto)
	case MetodoTransferencia:
		t.TotalTransferencia = t.TotalTransferencia.Add(monto)
	case MetodoBilletera:
		t.TotalBilletera = t.TotalBilletera.Add(monto)
	}
}
