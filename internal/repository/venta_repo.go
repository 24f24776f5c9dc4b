package repository

import (
	"context"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CrearTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// ListPagosPorSesion returns every payment line of the session's sales;
	// the Auditor matches them 1:1 against "venta" ledger movements.
	ListPagosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.VentaPago, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CrearTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Pagos").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) ListPagosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.VentaPago, error) {
	var pagos []model.VentaPago
	err := r.db.WithContext(ctx).
		Joins("JOIN ventas ON ventas.id = venta_pagos.venta_id").
		Where("ventas.sesion_caja_id = ?", sesionID).
		Find(&pagos).Error
	return pagos, err
}
