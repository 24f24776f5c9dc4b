package repository

import (
	"context"
	"errors"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TotalLedger is one aggregation row of the raw movement ledger,
// grouped by kind and payment method. Pending/rejected movements are
// excluded at query time — they never affect expected cash.
type TotalLedger struct {
	Tipo   model.TipoMovimiento
	Metodo model.MetodoPago
	Total  decimal.Decimal
}

type CajaRepository interface {
	// DB exposes the underlying handle so services can open transactions;
	// returns nil under in-memory test fakes.
	DB() *gorm.DB

	CrearSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error)
	FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)

	// LockSesion loads the session row FOR UPDATE inside tx, serializing
	// every concurrent mutation of the same till.
	LockSesion(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error

	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	// SumLedger re-derives the per-(tipo, metodo) totals straight from the
	// movement rows, bypassing the cached session aggregates.
	SumLedger(ctx context.Context, sesionCajaID uuid.UUID) ([]TotalLedger, error)
	// SumLedgerTurno is the same aggregation restricted to one turno.
	SumLedgerTurno(ctx context.Context, turnoID uuid.UUID) ([]TotalLedger, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CrearSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Turnos").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("punto_de_venta = ? AND estado = ?", puntoDeVenta, model.SesionAbierta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("usuario_apertura = ? AND estado = ?", usuarioID, model.SesionAbierta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) LockSesion(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Save(s).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionCajaID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumLedger(ctx context.Context, sesionCajaID uuid.UUID) ([]TotalLedger, error) {
	var rows []TotalLedger
	err := r.db.WithContext(ctx).
		Model(&model.MovimientoCaja{}).
		Select("tipo, metodo, SUM(monto) AS total").
		Where("sesion_caja_id = ? AND estado_autorizacion NOT IN ?",
			sesionCajaID, []model.EstadoAutorizacion{model.AutorizacionPendiente, model.AutorizacionRechazada}).
		Group("tipo, metodo").
		Scan(&rows).Error
	return rows, err
}

func (r *cajaRepo) SumLedgerTurno(ctx context.Context, turnoID uuid.UUID) ([]TotalLedger, error) {
	var rows []TotalLedger
	err := r.db.WithContext(ctx).
		Model(&model.MovimientoCaja{}).
		Select("tipo, metodo, SUM(monto) AS total").
		Where("turno_id = ? AND estado_autorizacion NOT IN ?",
			turnoID, []model.EstadoAutorizacion{model.AutorizacionPendiente, model.AutorizacionRechazada}).
		Group("tipo, metodo").
		Scan(&rows).Error
	return rows, err
}
