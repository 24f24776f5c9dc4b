package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoriaGasto is the closed enumeration of till-level expense categories.
type CategoriaGasto string

const (
	GastoInsumos       CategoriaGasto = "insumos"
	GastoServicios     CategoriaGasto = "servicios"
	GastoMantenimiento CategoriaGasto = "mantenimiento"
	GastoViaticos      CategoriaGasto = "viaticos"
	GastoOtros         CategoriaGasto = "otros"
)

func (c CategoriaGasto) Valida() bool {
	switch c {
	case GastoInsumos, GastoServicios, GastoMantenimiento, GastoViaticos, GastoOtros:
		return true
	}
	return false
}

// Gasto is an operating expense paid out of the till.
// At or above the configured threshold an authorizer distinct from the
// requester is required before the expense is final; the ledger movement
// is appended at creation time, in the same transaction.
type Gasto struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TurnoID      *uuid.UUID `gorm:"type:uuid"`

	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Categoria    CategoriaGasto  `gorm:"type:varchar(20);not null"`
	Metodo       MetodoPago      `gorm:"type:varchar(20);not null"`
	Beneficiario string          `gorm:"not null"`
	Descripcion  string          `gorm:"not null"`
	ReciboRef    *string

	SolicitanteID uuid.UUID  `gorm:"type:uuid;not null"`
	AutorizadorID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (Gasto) TableName() string { return "gastos" }
