package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TurnoRepository interface {
	// CrearTurnoTx inserts inside tx; the partial unique index
	// uni_turno_activo makes concurrent duplicate starts fail at commit,
	// closing the check-then-act race.
	CrearTurnoTx(tx *gorm.DB, t *model.Turno) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	// FindActivoPorUsuario returns nil, nil when the cashier has no active
	// turno in the session.
	FindActivoPorUsuario(ctx context.Context, sesionID, usuarioID uuid.UUID) (*model.Turno, error)
	// FindUltimoCerradoDesde returns the most recently closed turno of the
	// session ended at or after desde, for the starting-cash carryover.
	FindUltimoCerradoDesde(ctx context.Context, sesionID uuid.UUID, desde time.Time) (*model.Turno, error)
	CountNoCerrados(ctx context.Context, sesionID uuid.UUID) (int64, error)
	LockTurno(tx *gorm.DB, id uuid.UUID) (*model.Turno, error)
	UpdateTurnoTx(tx *gorm.DB, t *model.Turno) error
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Turno, error)
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) CrearTurnoTx(tx *gorm.DB, t *model.Turno) error {
	return tx.Create(t).Error
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) FindActivoPorUsuario(ctx context.Context, sesionID, usuarioID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND usuario_id = ? AND estado = ?", sesionID, usuarioID, model.TurnoActivo).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) FindUltimoCerradoDesde(ctx context.Context, sesionID uuid.UUID, desde time.Time) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND estado = ? AND ended_at >= ?", sesionID, model.TurnoCerrado, desde).
		Order("ended_at DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) CountNoCerrados(ctx context.Context, sesionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Turno{}).
		Where("sesion_caja_id = ? AND estado <> ?", sesionID, model.TurnoCerrado).
		Count(&n).Error
	return n, err
}

func (r *turnoRepo) LockTurno(tx *gorm.DB, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) UpdateTurnoTx(tx *gorm.DB, t *model.Turno) error {
	return tx.Save(t).Error
}

func (r *turnoRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("started_at ASC").
		Find(&turnos).Error
	return turnos, err
}
