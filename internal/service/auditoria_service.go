package service

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stable rule identifiers reported in audit findings.
const (
	ReglaCacheDesviado       = "CACHE_DESVIADO"
	ReglaVentasDescuadradas  = "VENTAS_DESCUADRADAS"
	ReglaPagoSinMovimiento   = "PAGO_SIN_MOVIMIENTO"
	ReglaMovimientoSinPago   = "MOVIMIENTO_SIN_PAGO"
	ReglaMontoNoPositivo     = "MONTO_NO_POSITIVO"
	ReglaTurnoAjeno          = "TURNO_AJENO"
	ReglaTotalNegativo       = "TOTAL_NEGATIVO"
	ReglaRetiroSinRespaldo   = "RETIRO_SIN_RESPALDO"
	ReglaGastoSinRespaldo    = "GASTO_SIN_RESPALDO"
	ReglaArqueoInconsistente = "ARQUEO_INCONSISTENTE"
)

// AuditoriaService cross-checks a session's ledger against every record
// that should back it: cached aggregates, sale payment lines, withdrawal
// and expense authorizations, and the final arqueo arithmetic. Read-only.
type AuditoriaService interface {
	Auditar(ctx context.Context, sesionID uuid.UUID) (*dto.AuditoriaResponse, error)
}

type auditoriaService struct {
	cajaRepo   repository.CajaRepository
	turnoRepo  repository.TurnoRepository
	ventaRepo  repository.VentaRepository
	retiroRepo repository.RetiroRepository
	gastoRepo  repository.GastoRepository
	arqueoRepo repository.ArqueoRepository
}

func NewAuditoriaService(
	cajaRepo repository.CajaRepository,
	turnoRepo repository.TurnoRepository,
	ventaRepo repository.VentaRepository,
	retiroRepo repository.RetiroRepository,
	gastoRepo repository.GastoRepository,
	arqueoRepo repository.ArqueoRepository,
) AuditoriaService {
	return &auditoriaService{
		cajaRepo:   cajaRepo,
		turnoRepo:  turnoRepo,
		ventaRepo:  ventaRepo,
		retiroRepo: retiroRepo,
		gastoRepo:  gastoRepo,
		arqueoRepo: arqueoRepo,
	}
}

func (s *auditoriaService) Auditar(ctx context.Context, sesionID uuid.UUID) (*dto.AuditoriaResponse, error) {
	sesion, err := s.cajaRepo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domainerr.NotFound("sesión de caja no encontrada")
	}
	movimientos, err := s.cajaRepo.ListMovimientos(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.cajaRepo.SumLedger(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	turnos, err := s.turnoRepo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	var hallazgos []dto.HallazgoResponse
	hallazgos = append(hallazgos, s.revisarMontos(movimientos)...)
	hallazgos = append(hallazgos, s.revisarTurnos(turnos, movimientos)...)
	hallazgos = append(hallazgos, s.revisarCache(sesion, rows)...)
	hallazgos = append(hallazgos, s.revisarTotalesNegativos(sesion, turnos)...)

	pagoFindings, err := s.revisarVentas(ctx, sesion, movimientos)
	if err != nil {
		return nil, err
	}
	hallazgos = append(hallazgos, pagoFindings...)

	respaldoFindings, err := s.revisarRespaldos(ctx, sesionID, movimientos)
	if err != nil {
		return nil, err
	}
	hallazgos = append(hallazgos, respaldoFindings...)

	arqueoFindings, err := s.revisarArqueo(ctx, sesion)
	if err != nil {
		return nil, err
	}
	hallazgos = append(hallazgos, arqueoFindings...)

	return &dto.AuditoriaResponse{
		SesionCajaID: sesionID.String(),
		Consistente:  len(hallazgos) == 0,
		Hallazgos:    hallazgos,
		GeneradoAt:   time.Now().UTC().Format(timeLayout),
	}, nil
}

// revisarMontos flags any ledger row violating the amounts-are-positive rule.
func (s *auditoriaService) revisarMontos(movimientos []model.MovimientoCaja) []dto.HallazgoResponse {
	var hallazgos []dto.HallazgoResponse
	for i := range movimientos {
		mov := &movimientos[i]
		if !mov.Monto.IsPositive() {
			hallazgos = append(hallazgos, hallazgo(ReglaMontoNoPositivo,
				fmt.Sprintf("movimiento %s con monto %s", mov.Tipo, mov.Monto), mov.ID))
		}
		if _, err := mov.Tipo.Signo(); err != nil {
			hallazgos = append(hallazgos, hallazgo(ReglaMontoNoPositivo,
				fmt.Sprintf("movimiento con tipo desconocido %q", mov.Tipo), mov.ID))
		}
	}
	return hallazgos
}

// revisarTurnos verifies that every movement attributed to a turno points
// at a turno of this same session. A reference to another session's turno
// would silently shift cash between tills.
func (s *auditoriaService) revisarTurnos(turnos []model.Turno, movimientos []model.MovimientoCaja) []dto.HallazgoResponse {
	propios := make(map[uuid.UUID]struct{}, len(turnos))
	for i := range turnos {
		propios[turnos[i].ID] = struct{}{}
	}

	var hallazgos []dto.HallazgoResponse
	for i := range movimientos {
		mov := &movimientos[i]
		if mov.TurnoID == nil {
			continue
		}
		if _, ok := propios[*mov.TurnoID]; !ok {
			hallazgos = append(hallazgos, hallazgo(ReglaTurnoAjeno,
				fmt.Sprintf("movimiento %s referencia al turno %s, que no pertenece a esta sesión", mov.Tipo, mov.TurnoID), mov.ID))
		}
	}
	return hallazgos
}

// revisarTotalesNegativos flags any denormalized running total below zero,
// on the session or on any of its turnos. The recorder only ever adds
// positive amounts per bucket, so a negative cache means tampering or drift.
func (s *auditoriaService) revisarTotalesNegativos(sesion *model.SesionCaja, turnos []model.Turno) []dto.HallazgoResponse {
	var hallazgos []dto.HallazgoResponse
	reportar := func(ambito string, nombre string, valor decimal.Decimal, refID uuid.UUID) {
		if valor.IsNegative() {
			hallazgos = append(hallazgos, hallazgo(ReglaTotalNegativo,
				fmt.Sprintf("%s con total %s negativo: %s", ambito, nombre, valor), refID))
		}
	}

	reportar("sesión", "ventas efectivo", sesion.TotalEfectivo, sesion.ID)
	reportar("sesión", "ventas tarjeta", sesion.TotalTarjeta, sesion.ID)
	reportar("sesión", "ventas transferencia", sesion.TotalTransferencia, sesion.ID)
	reportar("sesión", "ventas billetera", sesion.TotalBilletera, sesion.ID)
	reportar("sesión", "ingresos manuales", sesion.TotalIngresosManuales, sesion.ID)
	reportar("sesión", "egresos manuales", sesion.TotalEgresosManuales, sesion.ID)
	reportar("sesión", "retiros", sesion.TotalRetiros, sesion.ID)
	reportar("sesión", "gastos", sesion.TotalGastos, sesion.ID)

	for i := range turnos {
		turno := &turnos[i]
		reportar("turno", "ventas efectivo", turno.TotalEfectivo, turno.ID)
		reportar("turno", "ventas tarjeta", turno.TotalTarjeta, turno.ID)
		reportar("turno", "ventas transferencia", turno.TotalTransferencia, turno.ID)
		reportar("turno", "ventas billetera", turno.TotalBilletera, turno.ID)
		reportar("turno", "retiros", turno.TotalRetiros, turno.ID)
		reportar("turno", "gastos", turno.TotalGastos, turno.ID)
	}
	return hallazgos
}

// revisarCache compares the session's denormalized aggregates against the
// figures re-derived from the raw ledger.
func (s *auditoriaService) revisarCache(sesion *model.SesionCaja, rows []repository.TotalLedger) []dto.HallazgoResponse {
	var hallazgos []dto.HallazgoResponse

	ventas := sumarVentasPorMetodo(rows)
	for _, metodo := range model.MetodosPago {
		if !sesion.TotalPorMetodo(metodo).Equal(ventas[metodo]) {
			hallazgos = append(hallazgos, dto.HallazgoResponse{
				Regla: ReglaVentasDescuadradas,
				Detalle: fmt.Sprintf("ventas %s: cache %s, ledger %s",
					metodo, sesion.TotalPorMetodo(metodo), ventas[metodo]),
			})
		}
	}

	esperado, err := esperadoEfectivo(sesion.MontoInicial, rows)
	if err == nil && sesion.Estado == model.SesionAbierta && !sesion.MontoEsperado.Equal(esperado) {
		hallazgos = append(hallazgos, dto.HallazgoResponse{
			Regla: ReglaCacheDesviado,
			Detalle: fmt.Sprintf("monto esperado: cache %s, ledger %s",
				sesion.MontoEsperado, esperado),
		})
	}
	return hallazgos
}

// revisarVentas enforces the 1:1 correspondence between sale payment lines
// and "venta" ledger movements, matched by (venta_id, metodo, monto).
func (s *auditoriaService) revisarVentas(ctx context.Context, sesion *model.SesionCaja, movimientos []model.MovimientoCaja) ([]dto.HallazgoResponse, error) {
	pagos, err := s.ventaRepo.ListPagosPorSesion(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}

	type clave struct {
		venta  uuid.UUID
		metodo model.MetodoPago
		monto  string
	}
	porPago := make(map[clave]int, len(pagos))
	for _, p := range pagos {
		porPago[clave{p.VentaID, p.Metodo, p.Monto.String()}]++
	}

	var hallazgos []dto.HallazgoResponse
	for i := range movimientos {
		mov := &movimientos[i]
		if mov.Tipo != model.MovVenta {
			continue
		}
		if mov.ReferenciaID == nil {
			hallazgos = append(hallazgos, hallazgo(ReglaMovimientoSinPago,
				"movimiento de venta sin referencia a una venta", mov.ID))
			continue
		}
		k := clave{*mov.ReferenciaID, mov.Metodo, mov.Monto.String()}
		if porPago[k] > 0 {
			porPago[k]--
			continue
		}
		hallazgos = append(hallazgos, hallazgo(ReglaMovimientoSinPago,
			fmt.Sprintf("movimiento de venta %s %s sin línea de pago que lo respalde", mov.Metodo, mov.Monto), mov.ID))
	}
	for k, restantes := range porPago {
		for ; restantes > 0; restantes-- {
			hallazgos = append(hallazgos, hallazgo(ReglaPagoSinMovimiento,
				fmt.Sprintf("pago %s %s sin movimiento en el ledger", k.metodo, k.monto), k.venta))
		}
	}
	return hallazgos, nil
}

// revisarRespaldos checks that every retiro/gasto movement points at a
// backing record in the right state, and that authorized withdrawals hit
// the ledger exactly once.
func (s *auditoriaService) revisarRespaldos(ctx context.Context, sesionID uuid.UUID, movimientos []model.MovimientoCaja) ([]dto.HallazgoResponse, error) {
	retiros, err := s.retiroRepo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	gastos, err := s.gastoRepo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	retiroPorID := make(map[uuid.UUID]*model.Retiro, len(retiros))
	for i := range retiros {
		retiroPorID[retiros[i].ID] = &retiros[i]
	}
	gastoPorID := make(map[uuid.UUID]*model.Gasto, len(gastos))
	for i := range gastos {
		gastoPorID[gastos[i].ID] = &gastos[i]
	}

	var hallazgos []dto.HallazgoResponse
	movRetiro := make(map[uuid.UUID]int)
	movGasto := make(map[uuid.UUID]int)
	for i := range movimientos {
		mov := &movimientos[i]
		switch mov.Tipo {
		case model.MovRetiro:
			if mov.ReferenciaID == nil {
				hallazgos = append(hallazgos, hallazgo(ReglaRetiroSinRespaldo,
					"movimiento de retiro sin referencia", mov.ID))
				continue
			}
			movRetiro[*mov.ReferenciaID]++
			retiro, ok := retiroPorID[*mov.ReferenciaID]
			if !ok {
				hallazgos = append(hallazgos, hallazgo(ReglaRetiroSinRespaldo,
					"movimiento de retiro sin registro de retiro", mov.ID))
				continue
			}
			if retiro.Estado == model.RetiroPendiente || retiro.Estado == model.RetiroRechazado {
				hallazgos = append(hallazgos, hallazgo(ReglaRetiroSinRespaldo,
					fmt.Sprintf("movimiento de retiro respaldado por un retiro %s", retiro.Estado), mov.ID))
			}
			if !retiro.Monto.Equal(mov.Monto) {
				hallazgos = append(hallazgos, hallazgo(ReglaRetiroSinRespaldo,
					fmt.Sprintf("montos descuadrados: retiro %s, movimiento %s", retiro.Monto, mov.Monto), mov.ID))
			}
		case model.MovGasto:
			if mov.ReferenciaID == nil {
				hallazgos = append(hallazgos, hallazgo(ReglaGastoSinRespaldo,
					"movimiento de gasto sin referencia", mov.ID))
				continue
			}
			movGasto[*mov.ReferenciaID]++
			gasto, ok := gastoPorID[*mov.ReferenciaID]
			if !ok {
				hallazgos = append(hallazgos, hallazgo(ReglaGastoSinRespaldo,
					"movimiento de gasto sin registro de gasto", mov.ID))
				continue
			}
			if !gasto.Monto.Equal(mov.Monto) {
				hallazgos = append(hallazgos, hallazgo(ReglaGastoSinRespaldo,
					fmt.Sprintf("montos descuadrados: gasto %s, movimiento %s", gasto.Monto, mov.Monto), mov.ID))
			}
		}
	}

	// Every authorized or completed retiro should have put exactly one
	// movement in the ledger.
	for i := range retiros {
		retiro := &retiros[i]
		if retiro.Estado != model.RetiroAutorizado && retiro.Estado != model.RetiroCompletado {
			continue
		}
		if movRetiro[retiro.ID] == 0 {
			hallazgos = append(hallazgos, hallazgo(ReglaRetiroSinRespaldo,
				"retiro autorizado sin movimiento en el ledger", retiro.ID))
		}
	}

	// And every gasto: its movement is appended at creation, in the same
	// transaction, so a gasto without one means the ledger lost a row.
	for i := range gastos {
		gasto := &gastos[i]
		if movGasto[gasto.ID] == 0 {
			hallazgos = append(hallazgos, hallazgo(ReglaGastoSinRespaldo,
				"gasto registrado sin movimiento en el ledger", gasto.ID))
		}
	}
	return hallazgos, nil
}

// revisarArqueo re-runs the reconciliation arithmetic over the stored arqueo.
func (s *auditoriaService) revisarArqueo(ctx context.Context, sesion *model.SesionCaja) ([]dto.HallazgoResponse, error) {
	arqueo, err := s.arqueoRepo.FindPorSesion(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	if arqueo == nil {
		if sesion.Estado == model.SesionCerrada {
			return []dto.HallazgoResponse{{
				Regla:   ReglaArqueoInconsistente,
				Detalle: "sesión cerrada sin arqueo registrado",
			}}, nil
		}
		return nil, nil
	}

	var hallazgos []dto.HallazgoResponse
	if !arqueo.Desvio.Equal(arqueo.MontoDeclarado.Sub(arqueo.MontoEsperado)) {
		hallazgos = append(hallazgos, hallazgo(ReglaArqueoInconsistente,
			"el desvío registrado no es declarado menos esperado", arqueo.ID))
	}
	if len(arqueo.Detalle) > 0 {
		suma := decimal.Zero
		for _, d := range arqueo.Detalle {
			suma = suma.Add(d.Denominacion.Mul(decimal.NewFromInt(int64(d.Cantidad))))
		}
		if !suma.Equal(arqueo.MontoDeclarado) {
			hallazgos = append(hallazgos, hallazgo(ReglaArqueoInconsistente,
				"el desglose del arqueo no suma el monto declarado", arqueo.ID))
		}
	}
	if arqueo.Estado == model.ArqueoPendienteAprobacion && sesion.Estado == model.SesionCerrada {
		hallazgos = append(hallazgos, hallazgo(ReglaArqueoInconsistente,
			"sesión cerrada con arqueo aún pendiente de aprobación", arqueo.ID))
	}
	return hallazgos, nil
}

func hallazgo(regla, detalle string, refID uuid.UUID) dto.HallazgoResponse {
	ref := refID.String()
	return dto.HallazgoResponse{Regla: regla, Detalle: detalle, RefID: &ref}
}
