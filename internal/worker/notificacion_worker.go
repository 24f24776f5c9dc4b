package worker

// notificacion_worker.go
// Processes supervisor alert jobs from QueueNotificaciones: withdrawals
// waiting for authorization and arqueos whose deviation exceeded the
// tolerance. Delivery goes through the circuit breaker so a downed SMTP
// relay fails fast instead of stalling the pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/infra"

	"github.com/rs/zerolog/log"
)

const (
	JobRetiroPendiente = "retiro_pendiente"
	JobDesvioExcedido  = "desvio_excedido"
)

// RetiroPendientePayload is the alert for a withdrawal awaiting decision.
type RetiroPendientePayload struct {
	RetiroID     string `json:"retiro_id"`
	SesionCajaID string `json:"sesion_caja_id"`
	Monto        string `json:"monto"`
	Motivo       string `json:"motivo"`
}

// DesvioExcedidoPayload is the alert for an out-of-tolerance arqueo.
type DesvioExcedidoPayload struct {
	ArqueoID       string `json:"arqueo_id"`
	SesionCajaID   string `json:"sesion_caja_id"`
	MontoDeclarado string `json:"monto_declarado"`
	MontoEsperado  string `json:"monto_esperado"`
	Desvio         string `json:"desvio"`
}

// NotificacionWorker delivers supervisor alerts via SMTP.
type NotificacionWorker struct {
	mailer       *infra.Mailer
	cb           *infra.CircuitBreaker
	destinatario string
}

func NewNotificacionWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, destinatario string) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer, cb: cb, destinatario: destinatario}
}

// ProcessRetiroPendiente handles JobRetiroPendiente jobs.
func (w *NotificacionWorker) ProcessRetiroPendiente(_ context.Context, raw json.RawMessage) error {
	var p RetiroPendientePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid retiro payload")
		return nil // malformed payloads are not retryable
	}
	subject := fmt.Sprintf("Retiro pendiente de autorización — %s", p.Monto)
	body := fmt.Sprintf(
		"Retiro %s por %s requiere autorización.\nSesión: %s\nMotivo: %s\n",
		p.RetiroID, p.Monto, p.SesionCajaID, p.Motivo)
	return w.enviar(subject, body)
}

// ProcessDesvioExcedido handles JobDesvioExcedido jobs.
func (w *NotificacionWorker) ProcessDesvioExcedido(_ context.Context, raw json.RawMessage) error {
	var p DesvioExcedidoPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid arqueo payload")
		return nil
	}
	subject := fmt.Sprintf("Arqueo fuera de tolerancia — desvío %s", p.Desvio)
	body := fmt.Sprintf(
		"El arqueo %s de la sesión %s quedó pendiente de aprobación.\nDeclarado: %s\nEsperado: %s\nDesvío: %s\n",
		p.ArqueoID, p.SesionCajaID, p.MontoDeclarado, p.MontoEsperado, p.Desvio)
	return w.enviar(subject, body)
}

func (w *NotificacionWorker) enviar(subject, body string) error {
	if w.destinatario == "" {
		log.Warn().Msg("notificacion_worker: no supervisor mailbox configured, dropping alert")
		return nil
	}
	return w.cb.Execute(func() error {
		return w.mailer.SendAlerta(w.destinatario, subject, body)
	})
}
