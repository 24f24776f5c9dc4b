package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoArqueo: "finalizado" | "pendiente_aprobacion" | "aprobado"
//
// An arqueo whose deviation falls within the configured tolerance
// auto-finalizes. Outside tolerance it is recorded as pendiente_aprobacion
// and the owning session stays open until a supervisor approves it.
// Approval is one-way.
type EstadoArqueo string

const (
	ArqueoFinalizado          EstadoArqueo = "finalizado"
	ArqueoPendienteAprobacion EstadoArqueo = "pendiente_aprobacion"
	ArqueoAprobado            EstadoArqueo = "aprobado"
)

// Arqueo records the end-of-session comparison of physically counted cash
// against the ledger-derived expectation. MontoEsperado is always recomputed
// from the raw movement ledger, never taken from the session cache.
type Arqueo struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	MontoDeclarado decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoEsperado  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// Desvio = declarado − esperado.
	Desvio decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Estado       EstadoArqueo `gorm:"type:varchar(30);not null"`
	RealizadoPor uuid.UUID    `gorm:"type:uuid;not null"`

	AprobadoPor     *uuid.UUID `gorm:"type:uuid"`
	NotasAprobacion *string
	AprobadoAt      *time.Time

	Detalle []ArqueoDetalle `gorm:"foreignKey:ArqueoID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

func (Arqueo) TableName() string { return "arqueos" }

// ArqueoDetalle is one line of the denomination breakdown; the sum of
// denominacion × cantidad across lines must equal MontoDeclarado exactly.
type ArqueoDetalle struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArqueoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Denominacion decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Cantidad     int             `gorm:"not null"`
	Orden        int             `gorm:"not null"`
}

func (ArqueoDetalle) TableName() string { return "arqueo_detalles" }
