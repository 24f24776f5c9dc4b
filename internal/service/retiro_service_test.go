package service

import (
	"context"
	"testing"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retiroEntorno struct {
	svc      RetiroService
	cajaRepo *fakeCajaRepo
	retiros  *fakeRetiroRepo
	notif    *fakeNotificador
	sesion   *model.SesionCaja
}

func nuevoRetiroEntorno() *retiroEntorno {
	cajaRepo := newFakeCajaRepo()
	retiros := newFakeRetiroRepo()
	notif := &fakeNotificador{}
	return &retiroEntorno{
		svc:      NewRetiroService(retiros, cajaRepo, newFakeTurnoRepo(), notif, testConfig()),
		cajaRepo: cajaRepo,
		retiros:  retiros,
		notif:    notif,
		sesion:   sesionAbierta(cajaRepo, 1, d(10000)),
	}
}

// Con UmbralRetiro = 1000: debajo del umbral se autoriza solo.
func TestSolicitarRetiroAutoAutorizado(t *testing.T) {
	e := nuevoRetiroEntorno()

	resp, err := e.svc.Solicitar(context.Background(), cajero(), dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(500),
		Motivo:       "pago a proveedor menor",
	})
	require.NoError(t, err)
	assert.Equal(t, "autorizado", resp.Estado)
	// El ledger ya refleja la salida de efectivo.
	require.Len(t, e.cajaRepo.movimientos, 1)
	assert.Equal(t, model.MovRetiro, e.cajaRepo.movimientos[0].Tipo)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(9500)))
	assert.Empty(t, e.notif.pendientes)
}

func TestSolicitarRetiroSobreUmbral(t *testing.T) {
	e := nuevoRetiroEntorno()

	resp, err := e.svc.Solicitar(context.Background(), cajero(), dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(1000),
		Motivo:       "depósito bancario",
	})
	require.NoError(t, err)
	assert.Equal(t, "pendiente", resp.Estado)
	// Nada toca el ledger hasta que alguien decida.
	assert.Empty(t, e.cajaRepo.movimientos)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(10000)))
	assert.Len(t, e.notif.pendientes, 1)
}

func TestResolverRetiroAutorizar(t *testing.T) {
	e := nuevoRetiroEntorno()
	solicitante := cajero()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, solicitante, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(2000),
		Motivo:       "depósito bancario",
	})
	require.NoError(t, err)
	retiroID := mustUUID(t, resp.ID)

	// El cajero no puede resolver, ni el propio solicitante elevado.
	_, err = e.svc.Resolver(ctx, solicitante, retiroID, dto.ResolverRetiroRequest{Decision: "autorizar"})
	requireDomainErr(t, err, domainerr.CodeForbidden)

	sup := supervisor()
	resuelto, err := e.svc.Resolver(ctx, sup, retiroID, dto.ResolverRetiroRequest{Decision: "autorizar"})
	require.NoError(t, err)
	assert.Equal(t, "autorizado", resuelto.Estado)
	require.NotNil(t, resuelto.AutorizadorID)
	assert.Equal(t, sup.ID.String(), *resuelto.AutorizadorID)

	// El movimiento queda a nombre del solicitante, autorizado por el supervisor.
	require.Len(t, e.cajaRepo.movimientos, 1)
	mov := e.cajaRepo.movimientos[0]
	assert.Equal(t, solicitante.ID, mov.ActorID)
	require.NotNil(t, mov.AutorizadoPor)
	assert.Equal(t, sup.ID, *mov.AutorizadoPor)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(8000)))

	// Una segunda decisión no procede.
	_, err = e.svc.Resolver(ctx, supervisor(), retiroID, dto.ResolverRetiroRequest{Decision: "rechazar"})
	requireDomainErr(t, err, domainerr.CodeNotPending)
}

func TestResolverRetiroPropioProhibido(t *testing.T) {
	e := nuevoRetiroEntorno()
	sup := supervisor()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, sup, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(5000),
		Motivo:       "depósito de cierre",
	})
	require.NoError(t, err)

	_, err = e.svc.Resolver(ctx, sup, mustUUID(t, resp.ID), dto.ResolverRetiroRequest{Decision: "autorizar"})
	requireDomainErr(t, err, domainerr.CodeForbidden)
}

func TestResolverRetiroRechazar(t *testing.T) {
	e := nuevoRetiroEntorno()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, cajero(), dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(3000),
		Motivo:       "retiro dudoso",
	})
	require.NoError(t, err)

	resuelto, err := e.svc.Resolver(ctx, supervisor(), mustUUID(t, resp.ID), dto.ResolverRetiroRequest{
		Decision: "rechazar",
		Notas:    strPtr("sin justificación suficiente"),
	})
	require.NoError(t, err)
	assert.Equal(t, "rechazado", resuelto.Estado)
	assert.Empty(t, e.cajaRepo.movimientos)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(10000)))
}

func TestCompletarRetiro(t *testing.T) {
	e := nuevoRetiroEntorno()
	actor := cajero()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, actor, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(500),
		Motivo:       "caja chica",
	})
	require.NoError(t, err)
	retiroID := mustUUID(t, resp.ID)

	completado, err := e.svc.Completar(ctx, actor, retiroID, dto.CompletarRetiroRequest{ReciboRef: "REC-0042"})
	require.NoError(t, err)
	assert.Equal(t, "completado", completado.Estado)
	require.NotNil(t, completado.ReciboRef)
	assert.Equal(t, "REC-0042", *completado.ReciboRef)

	// Completar no duplica el movimiento.
	assert.Len(t, e.cajaRepo.movimientos, 1)

	_, err = e.svc.Completar(ctx, actor, retiroID, dto.CompletarRetiroRequest{ReciboRef: "REC-0043"})
	requireDomainErr(t, err, domainerr.CodeNotAuthorized)
}

func TestCancelarRetiroPendiente(t *testing.T) {
	e := nuevoRetiroEntorno()
	actor := cajero()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, actor, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(2000),
		Motivo:       "ya no hace falta",
	})
	require.NoError(t, err)

	cancelado, err := e.svc.Cancelar(ctx, actor, mustUUID(t, resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "cancelado", cancelado.Estado)
	assert.Empty(t, e.cajaRepo.movimientos)
}

func TestCancelarRetiroAutorizadoRevierte(t *testing.T) {
	e := nuevoRetiroEntorno()
	actor := cajero()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, actor, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(800),
		Motivo:       "cambio de planes",
	})
	require.NoError(t, err)
	require.True(t, e.sesion.MontoEsperado.Equal(d(9200)))

	cancelado, err := e.svc.Cancelar(ctx, actor, mustUUID(t, resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "cancelado", cancelado.Estado)

	// El asiento original queda; la reversión es un ingreso manual nuevo.
	require.Len(t, e.cajaRepo.movimientos, 2)
	assert.Equal(t, model.MovRetiro, e.cajaRepo.movimientos[0].Tipo)
	assert.Equal(t, model.MovIngresoManual, e.cajaRepo.movimientos[1].Tipo)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(10000)))
}

func TestCancelarRetiroAjeno(t *testing.T) {
	e := nuevoRetiroEntorno()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, cajero(), dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(2000),
		Motivo:       "depósito",
	})
	require.NoError(t, err)
	retiroID := mustUUID(t, resp.ID)

	_, err = e.svc.Cancelar(ctx, cajero(), retiroID)
	requireDomainErr(t, err, domainerr.CodeForbidden)

	// Un administrador sí puede.
	cancelado, err := e.svc.Cancelar(ctx, administrador(), retiroID)
	require.NoError(t, err)
	assert.Equal(t, "cancelado", cancelado.Estado)
}

func TestCancelarRetiroCompletado(t *testing.T) {
	e := nuevoRetiroEntorno()
	actor := cajero()
	ctx := context.Background()

	resp, err := e.svc.Solicitar(ctx, actor, dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(500),
		Motivo:       "caja chica",
	})
	require.NoError(t, err)
	retiroID := mustUUID(t, resp.ID)
	_, err = e.svc.Completar(ctx, actor, retiroID, dto.CompletarRetiroRequest{ReciboRef: "REC-1"})
	require.NoError(t, err)

	_, err = e.svc.Cancelar(ctx, actor, retiroID)
	requireDomainErr(t, err, domainerr.CodeNotPending)
}

func TestSolicitarRetiroMontoInvalido(t *testing.T) {
	e := nuevoRetiroEntorno()

	_, err := e.svc.Solicitar(context.Background(), cajero(), dto.SolicitarRetiroRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(0),
		Motivo:       "nada",
	})
	requireDomainErr(t, err, domainerr.CodeMontoInvalido)
}
