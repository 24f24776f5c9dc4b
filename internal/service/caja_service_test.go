package service

import (
	"context"
	"testing"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDomainErr(t *testing.T, err error, code string) *domainerr.Error {
	t.Helper()
	var derr *domainerr.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, code, derr.Code)
	return derr
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func TestAbrirCaja(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	turnoRepo := newFakeTurnoRepo()
	svc := NewCajaService(cajaRepo, turnoRepo)
	ctx := context.Background()

	resp, err := svc.Abrir(ctx, cajero(), dto.AbrirCajaRequest{PuntoDeVenta: 1, MontoInicial: d(10000)})
	require.NoError(t, err)
	assert.Equal(t, "abierta", resp.Estado)
	assert.True(t, resp.MontoEsperado.Equal(d(10000)))
	assert.True(t, resp.Ventas.Total.IsZero())
}

func TestAbrirCajaDuplicada(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	svc := NewCajaService(cajaRepo, newFakeTurnoRepo())
	ctx := context.Background()

	_, err := svc.Abrir(ctx, cajero(), dto.AbrirCajaRequest{PuntoDeVenta: 3, MontoInicial: d(5000)})
	require.NoError(t, err)

	_, err = svc.Abrir(ctx, cajero(), dto.AbrirCajaRequest{PuntoDeVenta: 3, MontoInicial: d(5000)})
	requireDomainErr(t, err, domainerr.CodeAlreadyOpen)

	// Otro punto de venta no choca.
	_, err = svc.Abrir(ctx, cajero(), dto.AbrirCajaRequest{PuntoDeVenta: 4, MontoInicial: d(5000)})
	require.NoError(t, err)
}

func TestAbrirCajaMontoNegativo(t *testing.T) {
	svc := NewCajaService(newFakeCajaRepo(), newFakeTurnoRepo())

	_, err := svc.Abrir(context.Background(), cajero(), dto.AbrirCajaRequest{PuntoDeVenta: 1, MontoInicial: d(-1)})
	requireDomainErr(t, err, domainerr.CodeMontoInvalido)
}

func TestAbrirCajaSoloLectura(t *testing.T) {
	svc := NewCajaService(newFakeCajaRepo(), newFakeTurnoRepo())

	_, err := svc.Abrir(context.Background(), soloLectura(), dto.AbrirCajaRequest{PuntoDeVenta: 1, MontoInicial: d(100)})
	requireDomainErr(t, err, domainerr.CodeForbidden)
}

func TestMovimientoManualEfectivo(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	svc := NewCajaService(cajaRepo, newFakeTurnoRepo())
	sesion := sesionAbierta(cajaRepo, 1, d(10000))
	ctx := context.Background()

	_, err := svc.RegistrarMovimiento(ctx, cajero(), dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID.String(),
		Tipo:         "ingreso_manual",
		MetodoPago:   "efectivo",
		Monto:        d(2500),
		Motivo:       "fondo adicional",
	})
	require.NoError(t, err)
	assert.True(t, sesion.MontoEsperado.Equal(d(12500)))
	assert.True(t, sesion.TotalIngresosManuales.Equal(d(2500)))

	_, err = svc.RegistrarMovimiento(ctx, cajero(), dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID.String(),
		Tipo:         "egreso_manual",
		MetodoPago:   "efectivo",
		Monto:        d(500),
		Motivo:       "vuelto entregado de más",
	})
	require.NoError(t, err)
	assert.True(t, sesion.MontoEsperado.Equal(d(12000)))
	assert.True(t, sesion.TotalEgresosManuales.Equal(d(500)))
	assert.Len(t, cajaRepo.movimientos, 2)
}

func TestMovimientoNoEfectivoNoTocaEsperado(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	svc := NewCajaService(cajaRepo, newFakeTurnoRepo())
	sesion := sesionAbierta(cajaRepo, 1, d(10000))

	_, err := svc.RegistrarMovimiento(context.Background(), cajero(), dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID.String(),
		Tipo:         "ingreso_manual",
		MetodoPago:   "transferencia",
		Monto:        d(3000),
		Motivo:       "ajuste bancario",
	})
	require.NoError(t, err)
	// Solo el efectivo físico vive en el cajón.
	assert.True(t, sesion.MontoEsperado.Equal(d(10000)))
	assert.True(t, sesion.TotalIngresosManuales.Equal(d(3000)))
}

func TestMovimientoSesionCerrada(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	svc := NewCajaService(cajaRepo, newFakeTurnoRepo())
	sesion := sesionAbierta(cajaRepo, 1, d(10000))
	sesion.Estado = model.SesionCerrada

	_, err := svc.RegistrarMovimiento(context.Background(), cajero(), dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID.String(),
		Tipo:         "ingreso_manual",
		MetodoPago:   "efectivo",
		Monto:        d(100),
		Motivo:       "tarde",
	})
	requireDomainErr(t, err, domainerr.CodeNotOpen)
}

func TestMovimientoTurnoSuspendido(t *testing.T) {
	cajaRepo := newFakeCajaRepo()
	turnoRepo := newFakeTurnoRepo()
	svc := NewCajaService(cajaRepo, turnoRepo)
	sesion := sesionAbierta(cajaRepo, 1, d(10000))
	actor := cajero()
	turno := turnoActivo(turnoRepo, sesion, actor.ID)
	turno.Estado = model.TurnoSuspendido
	turnoID := turno.ID.String()

	_, err := svc.RegistrarMovimiento(context.Background(), actor, dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID.String(),
		TurnoID:      &turnoID,
		Tipo:         "ingreso_manual",
		MetodoPago:   "efectivo",
		Monto:        d(100),
		Motivo:       "no debería entrar",
	})
	requireDomainErr(t, err, domainerr.CodeNotActive)
}

func TestGetActivaSinSesion(t *testing.T) {
	svc := NewCajaService(newFakeCajaRepo(), newFakeTurnoRepo())

	resp, err := svc.GetActiva(context.Background(), cajero().ID)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestObtenerReporteInexistente(t *testing.T) {
	svc := NewCajaService(newFakeCajaRepo(), newFakeTurnoRepo())

	_, err := svc.ObtenerReporte(context.Background(), cajero().ID)
	requireDomainErr(t, err, domainerr.CodeNoEncontrado)
}
