//go:build integration

package router_test

// End-to-end tests over real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
//
// Covered flows:
//   - login → abrir caja → turno → venta → retiro → arqueo dentro de tolerancia
//   - apertura duplicada rechazada por el índice parcial
//   - arqueo fuera de tolerancia → aprobación de supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/infra"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/router"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func igual(t *testing.T, esperado int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(esperado)), "esperaba %d, obtuve %s", esperado, got)
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("caja_test"),
		tcPostgres.WithUsername("caja"),
		tcPostgres.WithPassword("caja"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		WorkerPoolSize:     1,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		ArqueoTolerancia:   decimal.NewFromInt(100),
		UmbralRetiro:       decimal.NewFromInt(10000),
		UmbralGasto:        decimal.NewFromInt(20000),
		MinNotasAprobacion: 10,
	}

	// NewDatabase runs AutoMigrate plus the schema patches.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin through the service layer so the hash matches.
	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	_, err = authSvc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "admin.e2e",
		Nombre:   "Admin E2E",
		Password: "caja-e2e-2026",
		Rol:      "administrador",
	})
	require.NoError(t, err)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, engine: r}
	env.token = env.login(t, "admin.e2e", "caja-e2e-2026")
	return env
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeCaja(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Abrir caja con fondo inicial
	abrirResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"punto_de_venta": 1, "monto_inicial": 10000}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)
	var caja struct {
		SesionCajaID  string          `json:"sesion_caja_id"`
		Estado        string          `json:"estado"`
		MontoEsperado decimal.Decimal `json:"monto_esperado"`
	}
	decodeJSON(t, abrirResp, &caja)
	assert.Equal(t, "abierta", caja.Estado)
	igual(t, 10000, caja.MontoEsperado)

	// 2. Segunda apertura sobre el mismo punto de venta → conflicto
	dupResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"punto_de_venta": 1, "monto_inicial": 500}),
		env.token,
	)
	require.Equal(t, http.StatusConflict, dupResp.StatusCode)
	dupResp.Body.Close()

	// 3. Iniciar turno; el segundo intento choca con el índice parcial
	turnoResp := do(t, env.server, "POST", "/v1/turnos",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "tipo_relevo": "normal"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, turnoResp.StatusCode)
	var turno struct {
		ID string `json:"id"`
	}
	decodeJSON(t, turnoResp, &turno)

	turnoDup := do(t, env.server, "POST", "/v1/turnos",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "tipo_relevo": "normal"}),
		env.token,
	)
	require.Equal(t, http.StatusConflict, turnoDup.StatusCode)
	turnoDup.Body.Close()

	// 4. Venta con pago mixto: sólo el efectivo mueve el esperado
	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"sesion_caja_id": caja.SesionCajaID,
			"turno_id":       turno.ID,
			"total":          4000,
			"pagos": []map[string]any{
				{"metodo": "efectivo", "monto": 2500},
				{"metodo": "tarjeta", "monto": 1500},
			},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta dto.VentaResponse
	decodeJSON(t, ventaResp, &venta)
	require.Len(t, venta.Pagos, 2)

	// 5. Retiro por debajo del umbral → auto-autorizado, descuenta al instante
	retiroResp := do(t, env.server, "POST", "/v1/retiros",
		jsonBody(t, map[string]any{
			"sesion_caja_id": caja.SesionCajaID,
			"turno_id":       turno.ID,
			"monto":          500,
			"motivo":         "Envío a tesorería",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, retiroResp.StatusCode)
	var retiro struct {
		Estado string `json:"estado"`
	}
	decodeJSON(t, retiroResp, &retiro)
	assert.Equal(t, "autorizado", retiro.Estado)

	// 6. Reporte: 10000 + 2500 − 500
	repResp := do(t, env.server, "GET", "/v1/caja/"+caja.SesionCajaID+"/reporte", nil, env.token)
	require.Equal(t, http.StatusOK, repResp.StatusCode)
	var reporte dto.ReporteCajaResponse
	decodeJSON(t, repResp, &reporte)
	igual(t, 12000, reporte.MontoEsperado)
	igual(t, 2500, reporte.Ventas.Efectivo)
	igual(t, 1500, reporte.Ventas.Tarjeta)

	// 7. El arqueo exige cerrar los turnos primero
	arqueoPrematuro := do(t, env.server, "POST", "/v1/caja/arqueo",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "monto_declarado": 12000}),
		env.token,
	)
	require.Equal(t, http.StatusConflict, arqueoPrematuro.StatusCode)
	arqueoPrematuro.Body.Close()

	cerrarTurno := do(t, env.server, "POST", "/v1/turnos/"+turno.ID+"/cerrar",
		jsonBody(t, map[string]any{"monto_final": 12000}),
		env.token,
	)
	require.Equal(t, http.StatusOK, cerrarTurno.StatusCode)
	cerrarTurno.Body.Close()

	// 8. Arqueo exacto → sesión cerrada
	arqueoResp := do(t, env.server, "POST", "/v1/caja/arqueo",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "monto_declarado": 12000}),
		env.token,
	)
	require.Equal(t, http.StatusOK, arqueoResp.StatusCode)
	var arqueo dto.ArqueoResponse
	decodeJSON(t, arqueoResp, &arqueo)
	assert.Equal(t, "finalizado", arqueo.Estado)
	igual(t, 0, arqueo.Desvio)

	activaResp := do(t, env.server, "GET", "/v1/caja/activa", nil, env.token)
	require.Equal(t, http.StatusNotFound, activaResp.StatusCode)
	activaResp.Body.Close()

	// 9. Reintento idéntico → misma acta, sin duplicar
	replayResp := do(t, env.server, "POST", "/v1/caja/arqueo",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "monto_declarado": 12000}),
		env.token,
	)
	require.Equal(t, http.StatusOK, replayResp.StatusCode)
	var replay dto.ArqueoResponse
	decodeJSON(t, replayResp, &replay)
	assert.Equal(t, arqueo.ID, replay.ID)
}

func TestE2E_ArqueoFueraDeToleranciaYAprobacion(t *testing.T) {
	env := setupTestEnv(t)

	// Supervisor que firmará la aprobación
	supResp := do(t, env.server, "POST", "/v1/usuarios",
		jsonBody(t, map[string]any{
			"username": "super.e2e",
			"nombre":   "Supervisor E2E",
			"password": "super-e2e-2026",
			"rol":      "supervisor",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, supResp.StatusCode)
	supResp.Body.Close()
	supToken := env.login(t, "super.e2e", "super-e2e-2026")

	abrirResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"punto_de_venta": 2, "monto_inicial": 5000}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)
	var caja struct {
		SesionCajaID string `json:"sesion_caja_id"`
	}
	decodeJSON(t, abrirResp, &caja)

	// Declaración con faltante de 2000 → queda pendiente y la sesión sigue abierta
	arqueoResp := do(t, env.server, "POST", "/v1/caja/arqueo",
		jsonBody(t, map[string]any{"sesion_caja_id": caja.SesionCajaID, "monto_declarado": 3000}),
		env.token,
	)
	require.Equal(t, http.StatusOK, arqueoResp.StatusCode)
	var arqueo dto.ArqueoResponse
	decodeJSON(t, arqueoResp, &arqueo)
	assert.Equal(t, "pendiente_aprobacion", arqueo.Estado)
	igual(t, -2000, arqueo.Desvio)

	activaResp := do(t, env.server, "GET", "/v1/caja/activa", nil, env.token)
	require.Equal(t, http.StatusOK, activaResp.StatusCode)
	activaResp.Body.Close()

	// Quien hizo el arqueo no puede aprobarlo
	propioResp := do(t, env.server, "POST", "/v1/arqueos/"+arqueo.ID+"/aprobar",
		jsonBody(t, map[string]any{"notas": "faltante justificado por cambio de turno"}),
		env.token,
	)
	require.Equal(t, http.StatusForbidden, propioResp.StatusCode)
	propioResp.Body.Close()

	// Notas demasiado cortas
	cortasResp := do(t, env.server, "POST", "/v1/arqueos/"+arqueo.ID+"/aprobar",
		jsonBody(t, map[string]any{"notas": "ok"}),
		supToken,
	)
	require.Equal(t, http.StatusUnprocessableEntity, cortasResp.StatusCode)
	cortasResp.Body.Close()

	aprobarResp := do(t, env.server, "POST", "/v1/arqueos/"+arqueo.ID+"/aprobar",
		jsonBody(t, map[string]any{"notas": "faltante justificado por cambio de turno"}),
		supToken,
	)
	require.Equal(t, http.StatusOK, aprobarResp.StatusCode)
	var aprobado dto.ArqueoResponse
	decodeJSON(t, aprobarResp, &aprobado)
	assert.Equal(t, "aprobado", aprobado.Estado)
	require.NotNil(t, aprobado.AprobadoPor)

	cerradaResp := do(t, env.server, "GET", "/v1/caja/activa", nil, env.token)
	require.Equal(t, http.StatusNotFound, cerradaResp.StatusCode)
	cerradaResp.Body.Close()
}
