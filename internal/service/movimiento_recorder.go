package service

import (
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegistroMovimiento carries everything needed to append one ledger entry.
// Sesion (and Turno when present) must already be loaded FOR UPDATE by the
// caller, inside the same transaction passed as tx.
type RegistroMovimiento struct {
	Sesion       *model.SesionCaja
	Turno        *model.Turno
	Tipo         model.TipoMovimiento
	Metodo       model.MetodoPago
	Monto        decimal.Decimal
	Motivo       string
	ActorID      uuid.UUID
	ReferenciaID *uuid.UUID
	// Autorizacion defaults to no_requerida when empty.
	Autorizacion  model.EstadoAutorizacion
	AutorizadoPor *uuid.UUID
}

// MovimientoRecorder appends immutable ledger entries and keeps the owning
// session/turno running totals in step, all inside the caller's transaction.
// Either the append and the aggregate update both land, or neither does.
type MovimientoRecorder struct {
	cajaRepo  repository.CajaRepository
	turnoRepo repository.TurnoRepository
}

func NewMovimientoRecorder(cajaRepo repository.CajaRepository, turnoRepo repository.TurnoRepository) *MovimientoRecorder {
	return &MovimientoRecorder{cajaRepo: cajaRepo, turnoRepo: turnoRepo}
}

// Registrar validates, appends the movement and updates the aggregates.
func (r *MovimientoRecorder) Registrar(tx *gorm.DB, reg RegistroMovimiento) (*model.MovimientoCaja, error) {
	if !reg.Monto.IsPositive() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "monto", "el monto debe ser mayor a cero")
	}
	if !reg.Metodo.Valido() {
		return nil, domainerr.Validation(domainerr.CodeMontoInvalido, "metodo_pago", "método de pago desconocido")
	}
	if reg.Sesion.Estado != model.SesionAbierta {
		return nil, domainerr.Conflict(domainerr.CodeNotOpen, "la sesión de caja no está abierta")
	}
	if reg.Turno != nil && reg.Turno.Estado != model.TurnoActivo {
		return nil, domainerr.Conflict(domainerr.CodeNotActive, "el turno no está activo")
	}
	signo, err := reg.Tipo.Signo()
	if err != nil {
		return nil, err
	}

	autorizacion := reg.Autorizacion
	if autorizacion == "" {
		autorizacion = model.AutorizacionNoRequerida
	}

	mov := &model.MovimientoCaja{
		SesionCajaID:       reg.Sesion.ID,
		Tipo:               reg.Tipo,
		Metodo:             reg.Metodo,
		Monto:              reg.Monto,
		Motivo:             reg.Motivo,
		ActorID:            reg.ActorID,
		ReferenciaID:       reg.ReferenciaID,
		EstadoAutorizacion: autorizacion,
		AutorizadoPor:      reg.AutorizadoPor,
	}
	if reg.Turno != nil {
		mov.TurnoID = &reg.Turno.ID
	}
	if err := r.cajaRepo.CreateMovimientoTx(tx, mov); err != nil {
		return nil, err
	}

	r.aplicarASesion(reg.Sesion, mov, signo)
	if err := r.cajaRepo.UpdateSesionTx(tx, reg.Sesion); err != nil {
		return nil, err
	}

	if reg.Turno != nil {
		r.aplicarATurno(reg.Turno, mov)
		if err := r.turnoRepo.UpdateTurnoTx(tx, reg.Turno); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

// aplicarASesion folds one movement into the session's cached aggregates.
// Exhaustive over TipoMovimiento — a new kind will not compile past Signo
// and must also be classified here.
func (r *MovimientoRecorder) aplicarASesion(s *model.SesionCaja, mov *model.MovimientoCaja, signo int) {
	switch mov.Tipo {
	case model.MovVenta:
		s.SumarPorMetodo(mov.Metodo, mov.Monto)
	case model.MovIngresoManual:
		s.TotalIngresosManuales = s.TotalIngresosManuales.Add(mov.Monto)
	case model.MovEgresoManual:
		s.TotalEgresosManuales = s.TotalEgresosManuales.Add(mov.Monto)
	case model.MovRetiro:
		s.TotalRetiros = s.TotalRetiros.Add(mov.Monto)
	case model.MovGasto:
		s.TotalGastos = s.TotalGastos.Add(mov.Monto)
	}

	if mov.AfectaEfectivo() {
		if signo > 0 {
			s.MontoEsperado = s.MontoEsperado.Add(mov.Monto)
		} else {
			s.MontoEsperado = s.MontoEsperado.Sub(mov.Monto)
		}
	}
}

func (r *MovimientoRecorder) aplicarATurno(t *model.Turno, mov *model.MovimientoCaja) {
	switch mov.Tipo {
	case model.MovVenta:
		t.SumarPorMetodo(mov.Metodo, mov.Monto)
	case model.MovRetiro:
		t.TotalRetiros = t.TotalRetiros.Add(mov.Monto)
	case model.MovGasto:
		t.TotalGastos = t.TotalGastos.Add(mov.Monto)
	case model.MovIngresoManual, model.MovEgresoManual:
		// manual corrections carry no turno-level cache; the turno close
		// recomputes from its ledger slice
	}
}
