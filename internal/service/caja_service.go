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

type CajaService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error)
	ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error)
	GetActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.ReporteCajaResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.ReporteCajaResponse, int64, error)
	// FindSesionAbierta is the active-session precondition used by every
	// movement, withdrawal, expense and shift operation.
	FindSesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error)
}

type cajaService struct {
	repo      repository.CajaRepository
	turnoRepo repository.TurnoRepository
	recorder  *MovimientoRecorder
}

func NewCajaService(repo repository.CajaRepository, turnoRepo repository.TurnoRepository) CajaService {
	return &cajaService{
		repo:      repo,
		turnoRepo: turnoRepo,
		recorder:  NewMovimientoRecorder(repo, turnoRepo),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	if req.MontoInicial.IsNegative() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto_inicial", "el fondo inicial no puede ser negativo")
	}
	if existing, err := s.repo.FindSesionAbiertaPorPDV(ctx, req.PuntoDeVenta); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domainerr.Conflict(domainerr.CodeAlreadyOpen, "ya existe una caja abierta en este punto de venta")
	}

	sesion := &model.SesionCaja{
		PuntoDeVenta:    req.PuntoDeVenta,
		UsuarioApertura: actor.ID,
		MontoInicial:    req.MontoInicial,
		MontoEsperado:   req.MontoInicial,
		Estado:          model.SesionAbierta,
		Observaciones:   req.Notas,
		OpenedAt:        time.Now(),
	}
	// The partial unique index uni_sesion_abierta closes the race between
	// the pre-check above and this insert.
	if err := s.repo.CrearSesion(ctx, sesion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domainerr.Conflict(domainerr.CodeAlreadyOpen, "ya existe una caja abierta en este punto de venta")
		}
		return nil, err
	}
	return buildReporteCaja(sesion), nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual income / egress. Ledger entries are immutable: corrections are new
// offsetting entries, never edits.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
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

	var mov *model.MovimientoCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.lockSesionAbierta(tx, sesionID)
		if err != nil {
			return err
		}
		var turno *model.Turno
		if turnoID != nil {
			turno, err = s.lockTurnoDeSesion(tx, *turnoID, sesion.ID)
			if err != nil {
				return err
			}
		}
		mov, err = s.recorder.Registrar(tx, RegistroMovimiento{
			Sesion:  sesion,
			Turno:   turno,
			Tipo:    model.TipoMovimiento(req.Tipo),
			Metodo:  model.MetodoPago(req.MetodoPago),
			Monto:   req.Monto,
			Motivo:  req.Motivo,
			ActorID: actor.ID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildMovimiento(mov), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domainerr.NotFound("sesión de caja no encontrada")
	}
	return buildReporteCaja(sesion), nil
}

func (s *cajaService) GetActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, nil
	}
	return buildReporteCaja(sesion), nil
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.ReporteCajaResponse, int64, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.ReporteCajaResponse, len(sesiones))
	for i := range sesiones {
		resp[i] = *buildReporteCaja(&sesiones[i])
	}
	return resp, total, nil
}

func (s *cajaService) FindSesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domainerr.NotFound("sesión de caja no encontrada")
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, domainerr.Conflict(domainerr.CodeNotOpen, "no hay sesión de caja abierta")
	}
	return sesion, nil
}

// ── Helpers compartidos entre servicios ──────────────────────────────────────

func (s *cajaService) lockSesionAbierta(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	return lockSesionAbierta(tx, s.repo, id)
}

func (s *cajaService) lockTurnoDeSesion(tx *gorm.DB, turnoID, sesionID uuid.UUID) (*model.Turno, error) {
	return lockTurnoDeSesion(tx, s.turnoRepo, turnoID, sesionID)
}

func lockSesionAbierta(tx *gorm.DB, repo repository.CajaRepository, id uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := repo.LockSesion(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("sesión de caja no encontrada")
		}
		return nil, err
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, domainerr.Conflict(domainerr.CodeNotOpen, "la sesión de caja no está abierta")
	}
	return sesion, nil
}

func lockTurnoDeSesion(tx *gorm.DB, repo repository.TurnoRepository, turnoID, sesionID uuid.UUID) (*model.Turno, error) {
	turno, err := repo.LockTurno(tx, turnoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("turno no encontrado")
		}
		return nil, err
	}
	if turno.SesionCajaID != sesionID {
		return nil, domainerr.Conflict(domainerr.CodeNotActive, "el turno pertenece a otra sesión")
	}
	return turno, nil
}

// ── Builders ─────────────────────────────────────────────────────────────────

const timeLayout = "2006-01-02T15:04:05Z07:00"

func buildReporteCaja(sesion *model.SesionCaja) *dto.ReporteCajaResponse {
	ventas := dto.MontosPorMetodo{
		Efectivo:      sesion.TotalEfectivo,
		Tarjeta:       sesion.TotalTarjeta,
		Transferencia: sesion.TotalTransferencia,
		Billetera:     sesion.TotalBilletera,
	}
	ventas.Total = ventas.Efectivo.Add(ventas.Tarjeta).Add(ventas.Transferencia).Add(ventas.Billetera)

	reporte := &dto.ReporteCajaResponse{
		SesionCajaID:          sesion.ID.String(),
		PuntoDeVenta:          sesion.PuntoDeVenta,
		MontoInicial:          sesion.MontoInicial,
		Ventas:                ventas,
		TotalIngresosManuales: sesion.TotalIngresosManuales,
		TotalEgresosManuales:  sesion.TotalEgresosManuales,
		TotalRetiros:          sesion.TotalRetiros,
		TotalGastos:           sesion.TotalGastos,
		MontoEsperado:         sesion.MontoEsperado,
		MontoDeclarado:        sesion.MontoDeclarado,
		Desvio:                sesion.Desvio,
		Balanceada:            sesion.Balanceada,
		Estado:                string(sesion.Estado),
		Observaciones:         sesion.Observaciones,
		OpenedAt:              sesion.OpenedAt.UTC().Format(timeLayout),
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.UTC().Format(timeLayout)
		reporte.ClosedAt = &t
	}
	return reporte
}

func buildMovimiento(mov *model.MovimientoCaja) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:                 mov.ID.String(),
		SesionCajaID:       mov.SesionCajaID.String(),
		Tipo:               string(mov.Tipo),
		MetodoPago:         string(mov.Metodo),
		Monto:              mov.Monto,
		Motivo:             mov.Motivo,
		EstadoAutorizacion: string(mov.EstadoAutorizacion),
		CreatedAt:          mov.CreatedAt.UTC().Format(timeLayout),
	}
	if mov.TurnoID != nil {
		id := mov.TurnoID.String()
		resp.TurnoID = &id
	}
	return resp
}

func uuidPtrStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}
