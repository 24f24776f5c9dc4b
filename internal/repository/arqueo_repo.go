package repository

import (
	"context"
	"errors"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArqueoRepository interface {
	// CrearTx inserts the arqueo with its denomination detail; the unique
	// index on sesion_caja_id guarantees at most one arqueo per session.
	CrearTx(tx *gorm.DB, a *model.Arqueo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Arqueo, error)
	// FindPorSesion returns nil, nil when the session has no arqueo yet.
	FindPorSesion(ctx context.Context, sesionID uuid.UUID) (*model.Arqueo, error)
	LockArqueo(tx *gorm.DB, id uuid.UUID) (*model.Arqueo, error)
	UpdateTx(tx *gorm.DB, a *model.Arqueo) error
}

type arqueoRepo struct{ db *gorm.DB }

func NewArqueoRepository(db *gorm.DB) ArqueoRepository { return &arqueoRepo{db: db} }

func (r *arqueoRepo) CrearTx(tx *gorm.DB, a *model.Arqueo) error {
	return tx.Create(a).Error
}

func (r *arqueoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Arqueo, error) {
	var a model.Arqueo
	err := r.db.WithContext(ctx).Preload("Detalle").First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *arqueoRepo) FindPorSesion(ctx context.Context, sesionID uuid.UUID) (*model.Arqueo, error) {
	var a model.Arqueo
	err := r.db.WithContext(ctx).Preload("Detalle").
		First(&a, "sesion_caja_id = ?", sesionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *arqueoRepo) LockArqueo(tx *gorm.DB, id uuid.UUID) (*model.Arqueo, error) {
	var a model.Arqueo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *arqueoRepo) UpdateTx(tx *gorm.DB, a *model.Arqueo) error {
	return tx.Save(a).Error
}
