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

type gastoEntorno struct {
	svc      GastoService
	cajaRepo *fakeCajaRepo
	usuarios *fakeUsuarioRepo
	sesion   *model.SesionCaja
}

func nuevoGastoEntorno() *gastoEntorno {
	cajaRepo := newFakeCajaRepo()
	usuarios := newFakeUsuarioRepo()
	return &gastoEntorno{
		svc:      NewGastoService(newFakeGastoRepo(), cajaRepo, newFakeTurnoRepo(), usuarios, testConfig()),
		cajaRepo: cajaRepo,
		usuarios: usuarios,
		sesion:   sesionAbierta(cajaRepo, 1, d(10000)),
	}
}

func (e *gastoEntorno) usuarioElevado() *model.Usuario {
	u := &model.Usuario{ID: uuid.New(), Username: "super", Nombre: "Supervisora", Rol: model.RolSupervisor, Activo: true}
	e.usuarios.usuarios[u.ID] = u
	return u
}

// Con UmbralGasto = 2000: debajo no se exige autorizador.
func TestRegistrarGastoBajoUmbral(t *testing.T) {
	e := nuevoGastoEntorno()

	resp, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(300),
		Categoria:    "insumos",
		MetodoPago:   "efectivo",
		Beneficiario: "Librería El Trébol",
		Descripcion:  "rollos de papel térmico",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.AutorizadorID)

	require.Len(t, e.cajaRepo.movimientos, 1)
	mov := e.cajaRepo.movimientos[0]
	assert.Equal(t, model.MovGasto, mov.Tipo)
	assert.Equal(t, model.AutorizacionNoRequerida, mov.EstadoAutorizacion)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(9700)))
	assert.True(t, e.sesion.TotalGastos.Equal(d(300)))
}

func TestRegistrarGastoSobreUmbralSinAutorizador(t *testing.T) {
	e := nuevoGastoEntorno()

	_, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(2000),
		Categoria:    "mantenimiento",
		MetodoPago:   "efectivo",
		Beneficiario: "Refrigeración Díaz",
		Descripcion:  "reparación de heladera exhibidora",
	})
	requireDomainErr(t, err, domainerr.CodeRequiereAutorizador)
	assert.Empty(t, e.cajaRepo.movimientos)
}

func TestRegistrarGastoSobreUmbralConAutorizador(t *testing.T) {
	e := nuevoGastoEntorno()
	autorizador := e.usuarioElevado()
	autorizadorID := autorizador.ID.String()

	resp, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID:  e.sesion.ID.String(),
		Monto:         d(5000),
		Categoria:     "servicios",
		MetodoPago:    "efectivo",
		Beneficiario:  "Edesur",
		Descripcion:   "factura de luz del local",
		AutorizadorID: &autorizadorID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.AutorizadorID)
	assert.Equal(t, autorizadorID, *resp.AutorizadorID)

	require.Len(t, e.cajaRepo.movimientos, 1)
	mov := e.cajaRepo.movimientos[0]
	assert.Equal(t, model.AutorizacionAprobada, mov.EstadoAutorizacion)
	require.NotNil(t, mov.AutorizadoPor)
	assert.Equal(t, autorizador.ID, *mov.AutorizadoPor)
	assert.True(t, e.sesion.MontoEsperado.Equal(d(5000)))
}

func TestRegistrarGastoAutorizadorEsElMismo(t *testing.T) {
	e := nuevoGastoEntorno()
	autorizador := e.usuarioElevado()
	actor := Actor{ID: autorizador.ID, Rol: model.RolSupervisor}
	autorizadorID := autorizador.ID.String()

	_, err := e.svc.Registrar(context.Background(), actor, dto.RegistrarGastoRequest{
		SesionCajaID:  e.sesion.ID.String(),
		Monto:         d(3000),
		Categoria:     "otros",
		MetodoPago:    "efectivo",
		Beneficiario:  "Proveedor X",
		Descripcion:   "gasto autoaprobado",
		AutorizadorID: &autorizadorID,
	})
	requireDomainErr(t, err, domainerr.CodeForbidden)
}

func TestRegistrarGastoAutorizadorSinRango(t *testing.T) {
	e := nuevoGastoEntorno()
	comun := &model.Usuario{ID: uuid.New(), Username: "caja2", Nombre: "Cajero Dos", Rol: model.RolCajero, Activo: true}
	e.usuarios.usuarios[comun.ID] = comun
	comunID := comun.ID.String()

	_, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID:  e.sesion.ID.String(),
		Monto:         d(3000),
		Categoria:     "viaticos",
		MetodoPago:    "efectivo",
		Beneficiario:  "Remisería",
		Descripcion:   "traslado de mercadería",
		AutorizadorID: &comunID,
	})
	requireDomainErr(t, err, domainerr.CodeRequiereAutorizador)

	// Tampoco sirve un supervisor desactivado.
	inactivo := e.usuarioElevado()
	inactivo.Activo = false
	inactivoID := inactivo.ID.String()
	_, err = e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID:  e.sesion.ID.String(),
		Monto:         d(3000),
		Categoria:     "viaticos",
		MetodoPago:    "efectivo",
		Beneficiario:  "Remisería",
		Descripcion:   "traslado de mercadería",
		AutorizadorID: &inactivoID,
	})
	requireDomainErr(t, err, domainerr.CodeRequiereAutorizador)
}

func TestRegistrarGastoNoEfectivo(t *testing.T) {
	e := nuevoGastoEntorno()

	_, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(900),
		Categoria:    "servicios",
		MetodoPago:   "transferencia",
		Beneficiario: "Aguas Argentinas",
		Descripcion:  "factura de agua",
	})
	require.NoError(t, err)
	// Pagado por transferencia: el cajón físico no cambia.
	assert.True(t, e.sesion.MontoEsperado.Equal(d(10000)))
	assert.True(t, e.sesion.TotalGastos.Equal(d(900)))
}

func TestRegistrarGastoCategoriaInvalida(t *testing.T) {
	e := nuevoGastoEntorno()

	_, err := e.svc.Registrar(context.Background(), cajero(), dto.RegistrarGastoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Monto:        d(100),
		Categoria:    "sobornos",
		MetodoPago:   "efectivo",
		Beneficiario: "N/A",
		Descripcion:  "no debería pasar",
	})
	requireDomainErr(t, err, domainerr.CodeMontoInvalido)
}
