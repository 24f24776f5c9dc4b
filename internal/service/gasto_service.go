package service

import (
	"context"
	"fmt"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GastoService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error)
	Obtener(ctx context.Context, gastoID uuid.UUID) (*dto.GastoResponse, error)
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.GastoResponse, error)
}

type gastoService struct {
	repo        repository.GastoRepository
	cajaRepo    repository.CajaRepository
	turnoRepo   repository.TurnoRepository
	usuarioRepo repository.UsuarioRepository
	recorder    *MovimientoRecorder
	cfg         *config.Config
}

func NewGastoService(
	repo repository.GastoRepository,
	cajaRepo repository.CajaRepository,
	turnoRepo repository.TurnoRepository,
	usuarioRepo repository.UsuarioRepository,
	cfg *config.Config,
) GastoService {
	return &gastoService{
		repo:        repo,
		cajaRepo:    cajaRepo,
		turnoRepo:   turnoRepo,
		usuarioRepo: usuarioRepo,
		recorder:    NewMovimientoRecorder(cajaRepo, turnoRepo),
		cfg:         cfg,
	}
}

// Registrar records the expense and its ledger movement in one transaction.
// At or above the configured threshold a distinct supervisor/administrador
// must be named as autorizador; below it the requester alone suffices.
func (s *gastoService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto", "el monto debe ser mayor a cero")
	}
	categoria := model.CategoriaGasto(req.Categoria)
	if !categoria.Valida() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "categoria", "categoría de gasto desconocida")
	}
	metodo := model.MetodoPago(req.MetodoPago)
	if !metodo.Valido() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "metodo_pago", "método de pago desconocido")
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

	autorizadorID, autorizacion, err := s.resolverAutorizador(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	gasto := &model.Gasto{
		SesionCajaID:  sesionID,
		TurnoID:       turnoID,
		Monto:         req.Monto,
		Categoria:     categoria,
		Metodo:        metodo,
		Beneficiario:  req.Beneficiario,
		Descripcion:   req.Descripcion,
		ReciboRef:     req.ReciboRef,
		SolicitanteID: actor.ID,
		AutorizadorID: autorizadorID,
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
		if err := s.repo.CrearTx(tx, gasto); err != nil {
			return err
		}
		_, err = s.recorder.Registrar(tx, RegistroMovimiento{
			Sesion:        sesion,
			Turno:         turno,
			Tipo:          model.MovGasto,
			Metodo:        metodo,
			Monto:         gasto.Monto,
			Motivo:        fmt.Sprintf("gasto %s: %s", gasto.Categoria, gasto.Descripcion),
			ActorID:       actor.ID,
			ReferenciaID:  &gasto.ID,
			Autorizacion:  autorizacion,
			AutorizadoPor: autorizadorID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildGasto(gasto), nil
}

// resolverAutorizador applies the threshold rule. Below UmbralGasto no
// authorizer is needed; at or above it the named authorizer must exist, be
// active, hold an elevated role and differ from the requester.
func (s *gastoService) resolverAutorizador(ctx context.Context, actor Actor, req dto.RegistrarGastoRequest) (*uuid.UUID, model.EstadoAutorizacion, error) {
	if req.Monto.LessThan(s.cfg.UmbralGasto) {
		return nil, model.AutorizacionNoRequerida, nil
	}
	if req.AutorizadorID == nil {
		return nil, "", domainerr.Validation(domainerr.CodeRequiereAutorizador, "autorizador_id",
			"el monto requiere un autorizador con rol supervisor o administrador")
	}
	autorizadorID, err := uuid.Parse(*req.AutorizadorID)
	if err != nil {
		return nil, "", domainerr.Validation(domainerr.CodeMontoInvalido, "autorizador_id", "id de autorizador inválido")
	}
	if autorizadorID == actor.ID {
		return nil, "", domainerr.Forbidden("el autorizador debe ser distinto del solicitante")
	}
	autorizador, err := s.usuarioRepo.FindByID(ctx, autorizadorID)
	if err != nil {
		return nil, "", domainerr.NotFound("autorizador no encontrado")
	}
	if !autorizador.Activo || !autorizador.Rol.Elevado() {
		return nil, "", domainerr.Validation(domainerr.CodeRequiereAutorizador, "autorizador_id",
			"el autorizador debe estar activo y tener rol supervisor o administrador")
	}
	return &autorizadorID, model.AutorizacionAprobada, nil
}

func (s *gastoService) Obtener(ctx context.Context, gastoID uuid.UUID) (*dto.GastoResponse, error) {
	gasto, err := s.repo.FindByID(ctx, gastoID)
	if err != nil {
		return nil, domainerr.NotFound("gasto no encontrado")
	}
	return buildGasto(gasto), nil
}

func (s *gastoService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.GastoResponse, error) {
	gastos, err := s.repo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.GastoResponse, len(gastos))
	for i := range gastos {
		resp[i] = *buildGasto(&gastos[i])
	}
	return resp, nil
}

func buildGasto(g *model.Gasto) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:            g.ID.String(),
		SesionCajaID:  g.SesionCajaID.String(),
		TurnoID:       uuidPtrStr(g.TurnoID),
		Monto:         g.Monto,
		Categoria:     string(g.Categoria),
		MetodoPago:    string(g.Metodo),
		Beneficiario:  g.Beneficiario,
		Descripcion:   g.Descripcion,
		ReciboRef:     g.ReciboRef,
		SolicitanteID: g.SolicitanteID.String(),
		AutorizadorID: uuidPtrStr(g.AutorizadorID),
		CreatedAt:     g.CreatedAt.UTC().Format(timeLayout),
	}
}
