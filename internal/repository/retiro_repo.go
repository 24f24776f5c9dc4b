package repository

import (
	"context"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RetiroRepository interface {
	Crear(ctx context.Context, ret *model.Retiro) error
	CrearTx(tx *gorm.DB, ret *model.Retiro) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Retiro, error)
	LockRetiro(tx *gorm.DB, id uuid.UUID) (*model.Retiro, error)
	UpdateTx(tx *gorm.DB, ret *model.Retiro) error
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Retiro, error)
	ListPendientes(ctx context.Context) ([]model.Retiro, error)
}

type retiroRepo struct{ db *gorm.DB }

func NewRetiroRepository(db *gorm.DB) RetiroRepository { return &retiroRepo{db: db} }

func (r *retiroRepo) Crear(ctx context.Context, ret *model.Retiro) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *retiroRepo) CrearTx(tx *gorm.DB, ret *model.Retiro) error {
	return tx.Create(ret).Error
}

func (r *retiroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Retiro, error) {
	var ret model.Retiro
	err := r.db.WithContext(ctx).First(&ret, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *retiroRepo) LockRetiro(tx *gorm.DB, id uuid.UUID) (*model.Retiro, error) {
	var ret model.Retiro
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ret, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *retiroRepo) UpdateTx(tx *gorm.DB, ret *model.Retiro) error {
	return tx.Save(ret).Error
}

func (r *retiroRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Retiro, error) {
	var retiros []model.Retiro
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&retiros).Error
	return retiros, err
}

func (r *retiroRepo) ListPendientes(ctx context.Context) ([]model.Retiro, error) {
	var retiros []model.Retiro
	err := r.db.WithContext(ctx).
		Where("estado = ?", model.RetiroPendiente).
		Order("created_at ASC").
		Find(&retiros).Error
	return retiros, err
}
