package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is the slim sale header the ledger core needs: each of its Pagos
// lines produces exactly one "venta" movement in the cash ledger, and the
// Auditor verifies that 1:1 correspondence permanently.
type Venta struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TurnoID      *uuid.UUID `gorm:"type:uuid"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`

	Total  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado string          `gorm:"type:varchar(20);not null;default:'completada'"`

	Pagos []VentaPago `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

func (Venta) TableName() string { return "ventas" }

// VentaPago is one payment-method line of a (possibly multi-method) sale.
// The sum of a sale's lines must equal Venta.Total.
type VentaPago struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Metodo  MetodoPago      `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

func (VentaPago) TableName() string { return "venta_pagos" }
