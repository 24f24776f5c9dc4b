package service

import (
	"context"
	"errors"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TurnoService interface {
	Iniciar(ctx context.Context, actor Actor, req dto.IniciarTurnoRequest) (*dto.TurnoResponse, error)
	Suspender(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.SuspenderTurnoRequest) (*dto.TurnoResponse, error)
	Reanudar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.ReanudarTurnoRequest) (*dto.TurnoResponse, error)
	Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error)
	Obtener(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.TurnoResponse, error)
}

type turnoService struct {
	repo     repository.TurnoRepository
	cajaRepo repository.CajaRepository
}

func NewTurnoService(repo repository.TurnoRepository, cajaRepo repository.CajaRepository) TurnoService {
	return &turnoService{repo: repo, cajaRepo: cajaRepo}
}

// ── Iniciar ───────────────────────────────────────────────────────────────────
// Relief rules: a normal relevo is started by the cashier themselves; an
// emergency relevo requires an elevated actor, who is recorded as the
// authorizing supervisor. Starting cash carries over from the last turno
// closed today in this session, or the session float when none exists.

func (s *turnoService) Iniciar(ctx context.Context, actor Actor, req dto.IniciarTurnoRequest) (*dto.TurnoResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "sesion_caja_id", "id de sesión inválido")
	}

	relevo := model.TipoRelevo(req.TipoRelevo)
	cajeroID := actor.ID
	var supervisorID *uuid.UUID
	if relevo == model.RelevoEmergencia {
		if err := actor.RequiereElevado(); err != nil {
			return nil, err
		}
		supervisorID = &actor.ID
		if req.CajeroID != nil {
			cid, err := uuid.Parse(*req.CajeroID)
			if err != nil {
				return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "cajero_id", "id de cajero inválido")
			}
			cajeroID = cid
		}
	}

	var turno *model.Turno
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := lockSesionAbierta(tx, s.cajaRepo, sesionID)
		if err != nil {
			return err
		}

		// Conditional check inside the same transaction as the insert; the
		// partial unique index uni_turno_activo is the backstop under
		// concurrent starts.
		activo, err := s.repo.FindActivoPorUsuario(ctx, sesion.ID, cajeroID)
		if err != nil {
			return err
		}
		if activo != nil {
			return domainerr.Conflict(domainerr.CodeAlreadyActive, "el cajero ya tiene un turno activo en esta sesión")
		}

		inicial := sesion.MontoInicial
		hoy := inicioDelDia(time.Now())
		if previo, err := s.repo.FindUltimoCerradoDesde(ctx, sesion.ID, hoy); err != nil {
			return err
		} else if previo != nil && previo.MontoFinal != nil {
			inicial = *previo.MontoFinal
		}

		turno = &model.Turno{
			SesionCajaID: sesion.ID,
			UsuarioID:    cajeroID,
			TipoRelevo:   relevo,
			SupervisorID: supervisorID,
			MontoInicial: inicial,
			Estado:       model.TurnoActivo,
			StartedAt:    time.Now(),
		}
		if err := s.repo.CrearTurnoTx(tx, turno); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainerr.Conflict(domainerr.CodeAlreadyActive, "el cajero ya tiene un turno activo en esta sesión")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildTurno(turno), nil
}

// ── Suspender / Reanudar ──────────────────────────────────────────────────────
// Both directions of active↔suspendido are supervisor-gated. A suspended
// turno accepts no movements until resumed.

func (s *turnoService) Suspender(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.SuspenderTurnoRequest) (*dto.TurnoResponse, error) {
	if err := actor.RequiereElevado(); err != nil {
		return nil, err
	}

	var turno *model.Turno
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		turno, err = s.lockTurno(tx, turnoID)
		if err != nil {
			return err
		}
		if turno.Estado != model.TurnoActivo {
			return domainerr.Conflict(domainerr.CodeNotActive, "solo un turno activo puede suspenderse")
		}
		turno.Estado = model.TurnoSuspendido
		turno.MotivoSuspension = &req.Motivo
		turno.SupervisorID = &actor.ID
		return s.repo.UpdateTurnoTx(tx, turno)
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildTurno(turno), nil
}

func (s *turnoService) Reanudar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.ReanudarTurnoRequest) (*dto.TurnoResponse, error) {
	if err := actor.RequiereElevado(); err != nil {
		return nil, err
	}

	var turno *model.Turno
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		turno, err = s.lockTurno(tx, turnoID)
		if err != nil {
			return err
		}
		if turno.Estado != model.TurnoSuspendido {
			return domainerr.Conflict(domainerr.CodeNotSuspended, "solo un turno suspendido puede reanudarse")
		}
		turno.Estado = model.TurnoActivo
		if req.Notas != nil {
			turno.NotasReanudacion = req.Notas
		}
		return s.repo.UpdateTurnoTx(tx, turno)
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildTurno(turno), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Snapshots the turno's expected cash from its own ledger slice. The turno
// does not gate on the difference — only the session-level arqueo does.

func (s *turnoService) Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	if req.MontoFinal.IsNegative() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto_final", "el efectivo final no puede ser negativo")
	}

	var turno *model.Turno
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		turno, err = s.lockTurno(tx, turnoID)
		if err != nil {
			return err
		}
		if turno.Estado != model.TurnoActivo {
			return domainerr.Conflict(domainerr.CodeNotActive, "solo un turno activo puede cerrarse")
		}
		if actor.ID != turno.UsuarioID && actor.Rol != model.RolAdministrador {
			return domainerr.Forbidden("solo el cajero del turno o un administrador puede cerrarlo")
		}

		rows, err := s.cajaRepo.SumLedgerTurno(ctx, turno.ID)
		if err != nil {
			return err
		}
		esperado, err := esperadoEfectivo(turno.MontoInicial, rows)
		if err != nil {
			return err
		}

		ahora := time.Now()
		final := req.MontoFinal
		turno.Estado = model.TurnoCerrado
		turno.MontoFinal = &final
		turno.MontoEsperado = &esperado
		turno.NotasCierre = req.Notas
		turno.EndedAt = &ahora
		return s.repo.UpdateTurnoTx(tx, turno)
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildTurno(turno), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *turnoService) Obtener(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, domainerr.NotFound("turno no encontrado")
	}
	return buildTurno(turno), nil
}

func (s *turnoService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.TurnoResponse, error) {
	turnos, err := s.repo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TurnoResponse, len(turnos))
	for i := range turnos {
		resp[i] = *buildTurno(&turnos[i])
	}
	return resp, nil
}

// inicioDelDia returns midnight of t's day in t's own location. The
// starting-float carryover window opens at the store's day boundary,
// not at the UTC one.
func inicioDelDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *turnoService) lockTurno(tx *gorm.DB, id uuid.UUID) (*model.Turno, error) {
	turno, err := s.repo.LockTurno(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("turno no encontrado")
		}
		return nil, err
	}
	return turno, nil
}

func buildTurno(t *model.Turno) *dto.TurnoResponse {
	ventas := dto.MontosPorMetodo{
		Efectivo:      t.TotalEfectivo,
		Tarjeta:       t.TotalTarjeta,
		Transferencia: t.TotalTransferencia,
		Billetera:     t.TotalBilletera,
	}
	ventas.Total = ventas.Efectivo.Add(ventas.Tarjeta).Add(ventas.Transferencia).Add(ventas.Billetera)

	return &dto.TurnoResponse{
		ID:            t.ID.String(),
		SesionCajaID:  t.SesionCajaID.String(),
		UsuarioID:     t.UsuarioID.String(),
		TipoRelevo:    string(t.TipoRelevo),
		SupervisorID:  uuidPtrStr(t.SupervisorID),
		MontoInicial:  t.MontoInicial,
		MontoFinal:    t.MontoFinal,
		MontoEsperado: t.MontoEsperado,
		Ventas:        ventas,
		TotalRetiros:  t.TotalRetiros,
		TotalGastos:   t.TotalGastos,
		Estado:        string(t.Estado),
		StartedAt:     t.StartedAt.UTC().Format(timeLayout),
		EndedAt:       fmtTimePtr(t.EndedAt),
	}
}
