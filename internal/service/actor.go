package service

import (
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a core operation, as supplied by the
// identity collaborator. Every state-transition method receives one and runs
// its capability check here rather than scattering role comparisons.
type Actor struct {
	ID  uuid.UUID
	Rol model.Rol
}

// RequiereElevado rejects actors without supervisor/admin capability.
func (a Actor) RequiereElevado() error {
	if !a.Rol.Elevado() {
		return domainerr.Forbidden("la operación requiere rol supervisor o administrador")
	}
	return nil
}

// RequiereEscritura rejects read-only actors from any mutating operation.
func (a Actor) RequiereEscritura() error {
	if a.Rol == model.RolSoloLectura {
		return domainerr.Forbidden("el rol solo_lectura no puede modificar la caja")
	}
	return nil
}
