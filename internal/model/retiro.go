package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoRetiro: "pendiente" | "autorizado" | "rechazado" | "completado" | "cancelado"
//
// Valid transitions, strictly ordered:
//
//	pendiente  → autorizado | rechazado | cancelado
//	autorizado → completado | cancelado
//
// rechazado, completado and cancelado are terminal. Expected cash is
// decremented at AUTHORIZATION time (a ledger movement is appended in the
// same transaction); completion only records the physical hand-off.
type EstadoRetiro string

const (
	RetiroPendiente  EstadoRetiro = "pendiente"
	RetiroAutorizado EstadoRetiro = "autorizado"
	RetiroRechazado  EstadoRetiro = "rechazado"
	RetiroCompletado EstadoRetiro = "completado"
	RetiroCancelado  EstadoRetiro = "cancelado"
)

// Retiro is a request to remove physical cash from the till.
type Retiro struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TurnoID      *uuid.UUID `gorm:"type:uuid"`

	Monto         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Motivo        string          `gorm:"not null"`
	SolicitanteID uuid.UUID       `gorm:"type:uuid;not null"`

	Estado            EstadoRetiro `gorm:"type:varchar(20);not null;default:'pendiente'"`
	AutorizadorID     *uuid.UUID   `gorm:"type:uuid"`
	NotasAutorizacion *string
	// ReciboRef is the proof-of-hand-off reference recorded at completion.
	ReciboRef *string

	CreatedAt    time.Time
	ResueltoAt   *time.Time
	CompletadoAt *time.Time
}

func (Retiro) TableName() string { return "retiros" }
