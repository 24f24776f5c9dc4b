package worker

import (
	"context"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notificador adapts the Dispatcher to the service-layer notification
// contract. Called after the owning transaction commits; failures are
// logged, never propagated back into the ledger.
type Notificador struct {
	dispatcher *Dispatcher
}

func NewNotificador(dispatcher *Dispatcher) *Notificador {
	return &Notificador{dispatcher: dispatcher}
}

func (n *Notificador) AutorizacionPendiente(ctx context.Context, retiro *model.Retiro) {
	payload := RetiroPendientePayload{
		RetiroID:     retiro.ID.String(),
		SesionCajaID: retiro.SesionCajaID.String(),
		Monto:        retiro.Monto.String(),
		Motivo:       retiro.Motivo,
	}
	if err := n.dispatcher.EnqueueNotificacion(ctx, JobRetiroPendiente, payload); err != nil {
		log.Error().Err(err).Str("retiro_id", payload.RetiroID).Msg("notificador: failed to enqueue alert")
	}
}

func (n *Notificador) DesvioExcedido(ctx context.Context, arqueo *model.Arqueo) {
	payload := DesvioExcedidoPayload{
		ArqueoID:       arqueo.ID.String(),
		SesionCajaID:   arqueo.SesionCajaID.String(),
		MontoDeclarado: arqueo.MontoDeclarado.String(),
		MontoEsperado:  arqueo.MontoEsperado.String(),
		Desvio:         arqueo.Desvio.String(),
	}
	if err := n.dispatcher.EnqueueNotificacion(ctx, JobDesvioExcedido, payload); err != nil {
		log.Error().Err(err).Str("arqueo_id", payload.ArqueoID).Msg("notificador: failed to enqueue alert")
	}
}

func (n *Notificador) AbrirCajon(ctx context.Context, ventaID uuid.UUID) {
	payload := AbrirCajonPayload{VentaID: ventaID.String()}
	if err := n.dispatcher.EnqueueCajon(ctx, payload); err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("notificador: failed to enqueue drawer event")
	}
}
