package model

import (
	"time"

	"github.com/google/uuid"
)

// Rol is the closed set of roles recognized by the core.
type Rol string

const (
	RolAdministrador Rol = "administrador"
	RolSupervisor    Rol = "supervisor"
	RolCajero        Rol = "cajero"
	RolSoloLectura   Rol = "solo_lectura"
)

// Elevado reports whether the role may perform supervisor-gated actions
// (shift suspension, emergency relief, authorizations, arqueo approval).
func (r Rol) Elevado() bool {
	return r == RolAdministrador || r == RolSupervisor
}

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          Rol    `gorm:"type:varchar(20);not null"`
	// PuntoDeVenta restricts a cashier to a specific register; nil = all registers
	PuntoDeVenta *int
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
