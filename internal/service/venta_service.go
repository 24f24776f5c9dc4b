package service

import (
	"context"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, ventaID uuid.UUID) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo      repository.VentaRepository
	cajaRepo  repository.CajaRepository
	turnoRepo repository.TurnoRepository
	recorder  *MovimientoRecorder
	notifier  Notificador
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	turnoRepo repository.TurnoRepository,
	notifier Notificador,
) VentaService {
	return &ventaService{
		repo:      repo,
		cajaRepo:  cajaRepo,
		turnoRepo: turnoRepo,
		recorder:  NewMovimientoRecorder(cajaRepo, turnoRepo),
		notifier:  notifier,
	}
}

// Registrar persists the sale header and appends one ledger movement per
// payment line, all in one transaction. The payment lines must sum exactly
// to the sale total; a multi-method sale therefore produces several
// movements that the Auditor can later match 1:1 against venta_pagos.
func (s *ventaService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
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

	suma := decimal.Zero
	cobraEfectivo := false
	pagos := make([]model.VentaPago, len(req.Pagos))
	for i, p := range req.Pagos {
		metodo := model.MetodoPago(p.Metodo)
		if !metodo.Valido() {
			return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "pagos", "método de pago desconocido")
		}
		if !p.Monto.IsPositive() {
			return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "pagos", "cada pago debe ser mayor a cero")
		}
		if metodo == model.MetodoEfectivo {
			cobraEfectivo = true
		}
		suma = suma.Add(p.Monto)
		pagos[i] = model.VentaPago{Metodo: metodo, Monto: p.Monto}
	}
	if !suma.Equal(req.Total) {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "pagos", "los pagos no suman el total de la venta")
	}

	venta := &model.Venta{
		SesionCajaID: sesionID,
		TurnoID:      turnoID,
		UsuarioID:    actor.ID,
		Total:        req.Total,
		Pagos:        pagos,
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
		if err := s.repo.CrearTx(tx, venta); err != nil {
			return err
		}
		for _, pago := range venta.Pagos {
			_, err := s.recorder.Registrar(tx, RegistroMovimiento{
				Sesion:       sesion,
				Turno:        turno,
				Tipo:         model.MovVenta,
				Metodo:       pago.Metodo,
				Monto:        pago.Monto,
				Motivo:       "venta",
				ActorID:      actor.ID,
				ReferenciaID: &venta.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if cobraEfectivo && s.notifier != nil {
		s.notifier.AbrirCajon(ctx, venta.ID)
	}
	return buildVenta(venta), nil
}

func (s *ventaService) Obtener(ctx context.Context, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, domainerr.NotFound("venta no encontrada")
	}
	return buildVenta(venta), nil
}

func buildVenta(v *model.Venta) *dto.VentaResponse {
	pagos := make([]dto.VentaPagoResponse, len(v.Pagos))
	for i, p := range v.Pagos {
		pagos[i] = dto.VentaPagoResponse{
			ID:     p.ID.String(),
			Metodo: string(p.Metodo),
			Monto:  p.Monto,
		}
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		SesionCajaID: v.SesionCajaID.String(),
		TurnoID:      uuidPtrStr(v.TurnoID),
		Total:        v.Total,
		Estado:       v.Estado,
		Pagos:        pagos,
		CreatedAt:    v.CreatedAt.UTC().Format(timeLayout),
	}
}
