package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RetiroService interface {
	Solicitar(ctx context.Context, actor Actor, req dto.SolicitarRetiroRequest) (*dto.RetiroResponse, error)
	Resolver(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.ResolverRetiroRequest) (*dto.RetiroResponse, error)
	Completar(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.CompletarRetiroRequest) (*dto.RetiroResponse, error)
	Cancelar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error)
	Obtener(ctx context.Context, retiroID uuid.UUID) (*dto.RetiroResponse, error)
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RetiroResponse, error)
}

type retiroService struct {
	repo      repository.RetiroRepository
	cajaRepo  repository.CajaRepository
	turnoRepo repository.TurnoRepository
	recorder  *MovimientoRecorder
	notifier  Notificador
	cfg       *config.Config
}

func NewRetiroService(
	repo repository.RetiroRepository,
	cajaRepo repository.CajaRepository,
	turnoRepo repository.TurnoRepository,
	notifier Notificador,
	cfg *config.Config,
) RetiroService {
	return &retiroService{
		repo:      repo,
		cajaRepo:  cajaRepo,
		turnoRepo: turnoRepo,
		recorder:  NewMovimientoRecorder(cajaRepo, turnoRepo),
		notifier:  notifier,
		cfg:       cfg,
	}
}

// ── Solicitar ─────────────────────────────────────────────────────────────────
// A request below the configured threshold auto-authorizes and hits expected
// cash immediately; at or above it, the retiro enters "pendiente" and does
// not touch the ledger until an elevated, distinct actor decides.

func (s *retiroService) Solicitar(ctx context.Context, actor Actor, req dto.SolicitarRetiroRequest) (*dto.RetiroResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto", "el monto debe ser mayor a cero")
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "sesion_caja_id", "id de sesión inválido")
	}
	var turnoID *uuid.UUID
	if req.TurnoID != nil {
		tid, err := uuid.Parse(*req.TurnoID)
		if err != nil {
			return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "turno_id", "id de turno inválido")
		}
		turnoID = &tid
	}

	autoAutorizado := req.Monto.LessThan(s.cfg.UmbralRetiro)

	retiro := &model.Retiro{
		SesionCajaID:  sesionID,
		TurnoID:       turnoID,
		Monto:         req.Monto,
		Motivo:        req.Motivo,
		SolicitanteID: actor.ID,
		Estado:        model.RetiroPendiente,
	}

	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := lockSesionAbierta(tx, s.cajaRepo, sesionID)
		if err != nil {
			return err
		}
		var turno *model.Turno
		if turnoID != nil {
			turno, err = lockTurnoDeSesion(tx, s.turnoRepo, *turnoID, sesion.ID)
			if err != nil {
				return err
			}
		}

		if !autoAutorizado {
			return s.repo.CrearTx(tx, retiro)
		}

		ahora := time.Now()
		retiro.Estado = model.RetiroAutorizado
		retiro.ResueltoAt = &ahora
		if err := s.repo.CrearTx(tx, retiro); err != nil {
			return err
		}
		_, err = s.recorder.Registrar(tx, RegistroMovimiento{
			Sesion:       sesion,
			Turno:        turno,
			Tipo:         model.MovRetiro,
			Metodo:       model.MetodoEfectivo,
			Monto:        retiro.Monto,
			Motivo:       fmt.Sprintf("retiro: %s", retiro.Motivo),
			ActorID:      actor.ID,
			ReferenciaID: &retiro.ID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if retiro.Estado == model.RetiroPendiente && s.notifier != nil {
		s.notifier.AutorizacionPendiente(ctx, retiro)
	}
	return buildRetiro(retiro), nil
}

// ── Resolver ──────────────────────────────────────────────────────────────────
// Only from "pendiente"; exactly one decision is ever recorded. Authorization
// appends the ledger movement in the same transaction — this is the moment
// the money is considered gone from the till.

func (s *retiroService) Resolver(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.ResolverRetiroRequest) (*dto.RetiroResponse, error) {
	if err := actor.RequiereElevado(); err != nil {
		return nil, err
	}

	var retiro *model.Retiro
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		retiro, err = s.lockRetiro(tx, retiroID)
		if err != nil {
			return err
		}
		if retiro.Estado != model.RetiroPendiente {
			return domainerr.Conflict(domainerr.CodeNotPending, "el retiro ya fue resuelto")
		}
		if retiro.SolicitanteID == actor.ID {
			return domainerr.Forbidden("el autorizador debe ser distinto del solicitante")
		}

		ahora := time.Now()
		retiro.AutorizadorID = &actor.ID
		retiro.NotasAutorizacion = req.Notas
		retiro.ResueltoAt = &ahora

		if req.Decision == "rechazar" {
			retiro.Estado = model.RetiroRechazado
			return s.repo.UpdateTx(tx, retiro)
		}

		retiro.Estado = model.RetiroAutorizado
		if err := s.repo.UpdateTx(tx, retiro); err != nil {
			return err
		}

		sesion, err := lockSesionAbierta(tx, s.cajaRepo, retiro.SesionCajaID)
		if err != nil {
			return err
		}
		var turno *model.Turno
		if retiro.TurnoID != nil {
			turno, err = lockTurnoDeSesion(tx, s.turnoRepo, *retiro.TurnoID, sesion.ID)
			if err != nil {
				return err
			}
		}
		_, err = s.recorder.Registrar(tx, RegistroMovimiento{
			Sesion:        sesion,
			Turno:         turno,
			Tipo:          model.MovRetiro,
			Metodo:        model.MetodoEfectivo,
			Monto:         retiro.Monto,
			Motivo:        fmt.Sprintf("retiro: %s", retiro.Motivo),
			ActorID:       retiro.SolicitanteID,
			ReferenciaID:  &retiro.ID,
			Autorizacion:  model.AutorizacionAprobada,
			AutorizadoPor: &actor.ID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildRetiro(retiro), nil
}

// ── Completar ─────────────────────────────────────────────────────────────────
// Records the physical hand-off; expected cash already moved at
// authorization, so this transition never touches the ledger.

func (s *retiroService) Completar(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.CompletarRetiroRequest) (*dto.RetiroResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}

	var retiro *model.Retiro
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		retiro, err = s.lockRetiro(tx, retiroID)
		if err != nil {
			return err
		}
		if retiro.Estado != model.RetiroAutorizado {
			return domainerr.Conflict(domainerr.CodeNotAuthorized, "solo un retiro autorizado puede completarse")
		}
		ahora := time.Now()
		retiro.Estado = model.RetiroCompletado
		retiro.ReciboRef = &req.ReciboRef
		retiro.CompletadoAt = &ahora
		return s.repo.UpdateTx(tx, retiro)
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildRetiro(retiro), nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// The requester may cancel while pendiente (no ledger effect) or while
// autorizado-but-not-completed, in which case an offsetting manual income
// restores the expected cash. Committed movements are never deleted.

func (s *retiroService) Cancelar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error) {
	var retiro *model.Retiro
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		retiro, err = s.lockRetiro(tx, retiroID)
		if err != nil {
			return err
		}
		if actor.ID != retiro.SolicitanteID && actor.Rol != model.RolAdministrador {
			return domainerr.Forbidden("solo el solicitante o un administrador puede cancelar el retiro")
		}

		switch retiro.Estado {
		case model.RetiroPendiente:
			retiro.Estado = model.RetiroCancelado
			return s.repo.UpdateTx(tx, retiro)
		case model.RetiroAutorizado:
			retiro.Estado = model.RetiroCancelado
			if err := s.repo.UpdateTx(tx, retiro); err != nil {
				return err
			}
			sesion, err := lockSesionAbierta(tx, s.cajaRepo, retiro.SesionCajaID)
			if err != nil {
				return err
			}
			_, err = s.recorder.Registrar(tx, RegistroMovimiento{
				Sesion:       sesion,
				Tipo:         model.MovIngresoManual,
				Metodo:       model.MetodoEfectivo,
				Monto:        retiro.Monto,
				Motivo:       fmt.Sprintf("reversión retiro cancelado: %s", retiro.Motivo),
				ActorID:      actor.ID,
				ReferenciaID: &retiro.ID,
			})
			return err
		default:
			return domainerr.Conflict(domainerr.CodeNotPending, "el retiro ya alcanzó un estado terminal")
		}
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildRetiro(retiro), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *retiroService) Obtener(ctx context.Context, retiroID uuid.UUID) (*dto.RetiroResponse, error) {
	retiro, err := s.repo.FindByID(ctx, retiroID)
	if err != nil {
		return nil, domainerr.NotFound("retiro no encontrado")
	}
	return buildRetiro(retiro), nil
}

func (s *retiroService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RetiroResponse, error) {
	retiros, err := s.repo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RetiroResponse, len(retiros))
	for i := range retiros {
		resp[i] = *buildRetiro(&retiros[i])
	}
	return resp, nil
}

func (s *retiroService) lockRetiro(tx *gorm.DB, id uuid.UUID) (*model.Retiro, error) {
	retiro, err := s.repo.LockRetiro(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("retiro no encontrado")
		}
		return nil, err
	}
	return retiro, nil
}

func buildRetiro(r *model.Retiro) *dto.RetiroResponse {
	return &dto.RetiroResponse{
		ID:                r.ID.String(),
		SesionCajaID:      r.SesionCajaID.String(),
		TurnoID:           uuidPtrStr(r.TurnoID),
		Monto:             r.Monto,
		Motivo:            r.Motivo,
		Estado:            string(r.Estado),
		SolicitanteID:     r.SolicitanteID.String(),
		AutorizadorID:     uuidPtrStr(r.AutorizadorID),
		NotasAutorizacion: r.NotasAutorizacion,
		ReciboRef:         r.ReciboRef,
		CreatedAt:         r.CreatedAt.UTC().Format(timeLayout),
	}
}
