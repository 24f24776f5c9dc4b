package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ArqueoService interface {
	// Ejecutar counts the till against the ledger and, within tolerance,
	// closes the session in the same transaction.
	Ejecutar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.ArqueoResponse, error)
	Aprobar(ctx context.Context, actor Actor, arqueoID uuid.UUID, req dto.AprobarArqueoRequest) (*dto.ArqueoResponse, error)
	Obtener(ctx context.Context, arqueoID uuid.UUID) (*dto.ArqueoResponse, error)
	ObtenerPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.ArqueoResponse, error)
}

type arqueoService struct {
	repo      repository.ArqueoRepository
	cajaRepo  repository.CajaRepository
	turnoRepo repository.TurnoRepository
	notifier  Notificador
	cfg       *config.Config
}

func NewArqueoService(
	repo repository.ArqueoRepository,
	cajaRepo repository.CajaRepository,
	turnoRepo repository.TurnoRepository,
	notifier Notificador,
	cfg *config.Config,
) ArqueoService {
	return &arqueoService{
		repo:      repo,
		cajaRepo:  cajaRepo,
		turnoRepo: turnoRepo,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *arqueoService) Ejecutar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.ArqueoResponse, error) {
	if err := actor.RequiereEscritura(); err != nil {
		return nil, err
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "sesion_caja_id", "id de sesión inválido")
	}
	if req.MontoDeclarado.IsNegative() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto_declarado", "el monto declarado no puede ser negativo")
	}
	detalle, err := validarDesglose(req.MontoDeclarado, req.Desglose)
	if err != nil {
		return nil, err
	}

	var arqueo *model.Arqueo
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.cajaRepo.LockSesion(tx, sesionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerr.NotFound("sesión de caja no encontrada")
			}
			return err
		}

		existente, err := s.repo.FindPorSesion(ctx, sesion.ID)
		if err != nil {
			return err
		}
		if existente != nil {
			// Same declared amount means a replayed close; hand back the
			// stored result instead of failing.
			if existente.MontoDeclarado.Equal(req.MontoDeclarado) {
				arqueo = existente
				return nil
			}
			return domainerr.Conflict(domainerr.CodeYaArqueada, "la sesión ya tiene un arqueo registrado")
		}
		if sesion.Estado != model.SesionAbierta {
			return domainerr.Conflict(domainerr.CodeYaCerrada, "la sesión de caja ya está cerrada")
		}

		abiertos, err := s.turnoRepo.CountNoCerrados(ctx, sesion.ID)
		if err != nil {
			return err
		}
		if abiertos > 0 {
			return domainerr.Conflict(domainerr.CodeTurnosAbiertos, "todos los turnos deben cerrarse antes del arqueo")
		}

		// Always re-derive the expectation from the raw ledger; the session
		// cache is a convenience, not a source of truth.
		rows, err := s.cajaRepo.SumLedger(ctx, sesion.ID)
		if err != nil {
			return err
		}
		esperado, err := esperadoEfectivo(sesion.MontoInicial, rows)
		if err != nil {
			return err
		}
		desvio := req.MontoDeclarado.Sub(esperado)

		arqueo = &model.Arqueo{
			SesionCajaID:   sesion.ID,
			MontoDeclarado: req.MontoDeclarado,
			MontoEsperado:  esperado,
			Desvio:         desvio,
			RealizadoPor:   actor.ID,
			Detalle:        detalle,
		}
		if desvio.Abs().GreaterThan(s.cfg.ArqueoTolerancia) {
			arqueo.Estado = model.ArqueoPendienteAprobacion
			if err := s.repo.CrearTx(tx, arqueo); err != nil {
				return traducirArqueoDuplicado(err)
			}
			// The session stays open until a supervisor signs off.
			return nil
		}

		arqueo.Estado = model.ArqueoFinalizado
		if err := s.repo.CrearTx(tx, arqueo); err != nil {
			return traducirArqueoDuplicado(err)
		}
		return cerrarSesion(tx, s.cajaRepo, sesion, arqueo, req.Notas)
	})
	if txErr != nil {
		return nil, txErr
	}

	if arqueo.Estado == model.ArqueoPendienteAprobacion && s.notifier != nil {
		s.notifier.DesvioExcedido(ctx, arqueo)
	}
	return buildArqueo(arqueo), nil
}

// Aprobar signs off an out-of-tolerance count and closes the session.
// One-way: an approved arqueo never goes back to pending.
func (s *arqueoService) Aprobar(ctx context.Context, actor Actor, arqueoID uuid.UUID, req dto.AprobarArqueoRequest) (*dto.ArqueoResponse, error) {
	if err := actor.RequiereElevado(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(req.Notas)) < s.cfg.MinNotasAprobacion {
		return nil, domainerr.Validation(domainerr.CodeNotasInsuficientes, "notas",
			"las notas de aprobación no alcanzan el mínimo requerido")
	}

	var arqueo *model.Arqueo
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		arqueo, err = s.repo.LockArqueo(tx, arqueoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerr.NotFound("arqueo no encontrado")
			}
			return err
		}
		if arqueo.Estado != model.ArqueoPendienteAprobacion {
			return domainerr.Conflict(domainerr.CodeNotPending, "el arqueo no está pendiente de aprobación")
		}
		if arqueo.RealizadoPor == actor.ID {
			return domainerr.Forbidden("el aprobador debe ser distinto de quien realizó el arqueo")
		}

		ahora := time.Now()
		notas := req.Notas
		arqueo.Estado = model.ArqueoAprobado
		arqueo.AprobadoPor = &actor.ID
		arqueo.NotasAprobacion = &notas
		arqueo.AprobadoAt = &ahora
		if err := s.repo.UpdateTx(tx, arqueo); err != nil {
			return err
		}

		sesion, err := s.cajaRepo.LockSesion(tx, arqueo.SesionCajaID)
		if err != nil {
			return err
		}
		if sesion.Estado != model.SesionAbierta {
			return domainerr.Conflict(domainerr.CodeYaCerrada, "la sesión de caja ya está cerrada")
		}
		return cerrarSesion(tx, s.cajaRepo, sesion, arqueo, nil)
	})
	if txErr != nil {
		return nil, txErr
	}
	return buildArqueo(arqueo), nil
}

func (s *arqueoService) Obtener(ctx context.Context, arqueoID uuid.UUID) (*dto.ArqueoResponse, error) {
	arqueo, err := s.repo.FindByID(ctx, arqueoID)
	if err != nil {
		return nil, domainerr.NotFound("arqueo no encontrado")
	}
	return buildArqueo(arqueo), nil
}

func (s *arqueoService) ObtenerPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.ArqueoResponse, error) {
	arqueo, err := s.repo.FindPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	if arqueo == nil {
		return nil, domainerr.NotFound("la sesión no tiene arqueo")
	}
	return buildArqueo(arqueo), nil
}

// validarDesglose checks that the denomination lines, when present, add up
// exactly to the declared amount.
func validarDesglose(declarado decimal.Decimal, desglose []dto.DenominacionRequest) ([]model.ArqueoDetalle, error) {
	if len(desglose) == 0 {
		return nil, nil
	}
	suma := decimal.Zero
	detalle := make([]model.ArqueoDetalle, len(desglose))
	for i, linea := range desglose {
		if !linea.Denominacion.IsPositive() || linea.Cantidad < 1 {
			return nil, domainerr.Validation(domainerr.CodeDesgloseInvalido, "desglose",
				"cada línea del desglose requiere denominación y cantidad positivas")
		}
		suma = suma.Add(linea.Denominacion.Mul(decimal.NewFromInt(int64(linea.Cantidad))))
		detalle[i] = model.ArqueoDetalle{
			Denominacion: linea.Denominacion,
			Cantidad:     linea.Cantidad,
			Orden:        i,
		}
	}
	if !suma.Equal(declarado) {
		return nil, domainerr.Validation(domainerr.CodeDesgloseInvalido, "desglose",
			"el desglose no suma el monto declarado")
	}
	return detalle, nil
}

// cerrarSesion stamps the final figures on the session row. Must run inside
// the same transaction that finalized or approved the arqueo.
func cerrarSesion(tx *gorm.DB, cajaRepo repository.CajaRepository, sesion *model.SesionCaja, arqueo *model.Arqueo, notas *string) error {
	ahora := time.Now()
	declarado := arqueo.MontoDeclarado
	desvio := arqueo.Desvio

	sesion.Estado = model.SesionCerrada
	sesion.MontoEsperado = arqueo.MontoEsperado
	sesion.MontoDeclarado = &declarado
	sesion.Desvio = &desvio
	sesion.Balanceada = desvio.IsZero()
	sesion.ClosedAt = &ahora
	if notas != nil {
		sesion.Observaciones = notas
	}
	return cajaRepo.UpdateSesionTx(tx, sesion)
}

func traducirArqueoDuplicado(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerr.Conflict(domainerr.CodeYaArqueada, "la sesión ya tiene un arqueo registrado")
	}
	return err
}

func buildArqueo(a *model.Arqueo) *dto.ArqueoResponse {
	desglose := make([]dto.DenominacionResponse, len(a.Detalle))
	for i, d := range a.Detalle {
		desglose[i] = dto.DenominacionResponse{Denominacion: d.Denominacion, Cantidad: d.Cantidad}
	}
	return &dto.ArqueoResponse{
		ID:              a.ID.String(),
		SesionCajaID:    a.SesionCajaID.String(),
		MontoDeclarado:  a.MontoDeclarado,
		MontoEsperado:   a.MontoEsperado,
		Desvio:          a.Desvio,
		Estado:          string(a.Estado),
		RealizadoPor:    a.RealizadoPor.String(),
		AprobadoPor:     uuidPtrStr(a.AprobadoPor),
		NotasAprobacion: a.NotasAprobacion,
		Desglose:        desglose,
		CreatedAt:       a.CreatedAt.UTC().Format(timeLayout),
	}
}
