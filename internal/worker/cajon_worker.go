package worker

// cajon_worker.go
// Relays drawer-opening requests to the register agent over Redis pub/sub.
// The agent at each punto de venta subscribes to the channel and fires the
// physical kick pulse; this side only publishes, nothing blocks the sale.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	JobAbrirCajon     = "abrir_cajon"
	CajonEventChannel = "eventos:cajon"
)

// AbrirCajonPayload identifies the sale that triggered the drawer kick.
type AbrirCajonPayload struct {
	VentaID string `json:"venta_id"`
}

// CajonWorker publishes drawer events for the register agents.
type CajonWorker struct {
	rdb *redis.Client
}

func NewCajonWorker(rdb *redis.Client) *CajonWorker {
	return &CajonWorker{rdb: rdb}
}

// Process handles JobAbrirCajon jobs.
func (w *CajonWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p AbrirCajonPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("cajon_worker: invalid payload")
		return nil
	}
	if err := w.rdb.Publish(ctx, CajonEventChannel, raw).Err(); err != nil {
		return err
	}
	log.Info().Str("venta_id", p.VentaID).Msg("cajon_worker: drawer event published")
	return nil
}
