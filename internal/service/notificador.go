package service

import (
	"context"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
)

// Notificador abstracts the post-commit side-effect collaborators
// (notification + cash drawer). Implementations must be fire-and-forget:
// a delivery failure is logged, never propagated back into the ledger.
type Notificador interface {
	// AutorizacionPendiente alerts supervisors of a withdrawal waiting for
	// a decision.
	AutorizacionPendiente(ctx context.Context, retiro *model.Retiro)
	// DesvioExcedido alerts supervisors of an arqueo outside tolerance.
	DesvioExcedido(ctx context.Context, arqueo *model.Arqueo)
	// AbrirCajon asks the register hardware to pop the drawer after a
	// cash sale.
	AbrirCajon(ctx context.Context, ventaID uuid.UUID)
}
