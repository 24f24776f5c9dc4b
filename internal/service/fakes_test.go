package service

import (
	"context"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Full in-memory CajaRepository ────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

func (r *fakeCajaRepo) CrearSesion(_ context.Context, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeCajaRepo) FindSesionAbiertaPorPDV(_ context.Context, pdv int) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.PuntoDeVenta == pdv && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCajaRepo) FindSesionAbiertaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioApertura == usuarioID && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCajaRepo) LockSesion(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) SumLedger(_ context.Context, sesionID uuid.UUID) ([]repository.TotalLedger, error) {
	return r.agrupar(func(m *model.MovimientoCaja) bool { return m.SesionCajaID == sesionID }), nil
}

func (r *fakeCajaRepo) SumLedgerTurno(_ context.Context, turnoID uuid.UUID) ([]repository.TotalLedger, error) {
	return r.agrupar(func(m *model.MovimientoCaja) bool {
		return m.TurnoID != nil && *m.TurnoID == turnoID
	}), nil
}

func (r *fakeCajaRepo) agrupar(pred func(*model.MovimientoCaja) bool) []repository.TotalLedger {
	type clave struct {
		tipo   model.TipoMovimiento
		metodo model.MetodoPago
	}
	sumas := make(map[clave]decimal.Decimal)
	for i := range r.movimientos {
		m := &r.movimientos[i]
		if !pred(m) {
			continue
		}
		if m.EstadoAutorizacion == model.AutorizacionPendiente || m.EstadoAutorizacion == model.AutorizacionRechazada {
			continue
		}
		k := clave{m.Tipo, m.Metodo}
		sumas[k] = sumas[k].Add(m.Monto)
	}
	rows := make([]repository.TotalLedger, 0, len(sumas))
	for k, total := range sumas {
		rows = append(rows, repository.TotalLedger{Tipo: k.tipo, Metodo: k.metodo, Total: total})
	}
	return rows
}

// ── In-memory TurnoRepository ────────────────────────────────────────────────

type fakeTurnoRepo struct {
	turnos map[uuid.UUID]*model.Turno
}

func newFakeTurnoRepo() *fakeTurnoRepo {
	return &fakeTurnoRepo{turnos: make(map[uuid.UUID]*model.Turno)}
}

func (r *fakeTurnoRepo) CrearTurnoTx(_ *gorm.DB, t *model.Turno) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTurnoRepo) FindActivoPorUsuario(_ context.Context, sesionID, usuarioID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.turnos {
		if t.SesionCajaID == sesionID && t.UsuarioID == usuarioID && t.Estado == model.TurnoActivo {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTurnoRepo) FindUltimoCerradoDesde(_ context.Context, sesionID uuid.UUID, desde time.Time) (*model.Turno, error) {
	var ultimo *model.Turno
	for _, t := range r.turnos {
		if t.SesionCajaID != sesionID || t.Estado != model.TurnoCerrado || t.EndedAt == nil || t.EndedAt.Before(desde) {
			continue
		}
		if ultimo == nil || t.EndedAt.After(*ultimo.EndedAt) {
			ultimo = t
		}
	}
	return ultimo, nil
}

func (r *fakeTurnoRepo) CountNoCerrados(_ context.Context, sesionID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.turnos {
		if t.SesionCajaID == sesionID && t.Estado != model.TurnoCerrado {
			n++
		}
	}
	return n, nil
}

func (r *fakeTurnoRepo) LockTurno(_ *gorm.DB, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTurnoRepo) UpdateTurnoTx(_ *gorm.DB, t *model.Turno) error {
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.Turno, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		if t.SesionCajaID == sesionID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ── In-memory RetiroRepository ───────────────────────────────────────────────

type fakeRetiroRepo struct {
	retiros map[uuid.UUID]*model.Retiro
}

func newFakeRetiroRepo() *fakeRetiroRepo {
	return &fakeRetiroRepo{retiros: make(map[uuid.UUID]*model.Retiro)}
}

func (r *fakeRetiroRepo) Crear(_ context.Context, ret *model.Retiro) error {
	return r.CrearTx(nil, ret)
}

func (r *fakeRetiroRepo) CrearTx(_ *gorm.DB, ret *model.Retiro) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	ret.CreatedAt = time.Now()
	r.retiros[ret.ID] = ret
	return nil
}

func (r *fakeRetiroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Retiro, error) {
	ret, ok := r.retiros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ret, nil
}

func (r *fakeRetiroRepo) LockRetiro(_ *gorm.DB, id uuid.UUID) (*model.Retiro, error) {
	ret, ok := r.retiros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ret, nil
}

func (r *fakeRetiroRepo) UpdateTx(_ *gorm.DB, ret *model.Retiro) error {
	r.retiros[ret.ID] = ret
	return nil
}

func (r *fakeRetiroRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.Retiro, error) {
	var out []model.Retiro
	for _, ret := range r.retiros {
		if ret.SesionCajaID == sesionID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeRetiroRepo) ListPendientes(_ context.Context) ([]model.Retiro, error) {
	var out []model.Retiro
	for _, ret := range r.retiros {
		if ret.Estado == model.RetiroPendiente {
			out = append(out, *ret)
		}
	}
	return out, nil
}

// ── In-memory GastoRepository ────────────────────────────────────────────────

type fakeGastoRepo struct {
	gastos map[uuid.UUID]*model.Gasto
}

func newFakeGastoRepo() *fakeGastoRepo {
	return &fakeGastoRepo{gastos: make(map[uuid.UUID]*model.Gasto)}
}

func (r *fakeGastoRepo) CrearTx(_ *gorm.DB, g *model.Gasto) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = time.Now()
	r.gastos[g.ID] = g
	return nil
}

func (r *fakeGastoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Gasto, error) {
	g, ok := r.gastos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *fakeGastoRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.Gasto, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		if g.SesionCajaID == sesionID {
			out = append(out, *g)
		}
	}
	return out, nil
}

// ── In-memory ArqueoRepository ───────────────────────────────────────────────

type fakeArqueoRepo struct {
	arqueos map[uuid.UUID]*model.Arqueo
}

func newFakeArqueoRepo() *fakeArqueoRepo {
	return &fakeArqueoRepo{arqueos: make(map[uuid.UUID]*model.Arqueo)}
}

func (r *fakeArqueoRepo) CrearTx(_ *gorm.DB, a *model.Arqueo) error {
	for _, otro := range r.arqueos {
		if otro.SesionCajaID == a.SesionCajaID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.arqueos[a.ID] = a
	return nil
}

func (r *fakeArqueoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Arqueo, error) {
	a, ok := r.arqueos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeArqueoRepo) FindPorSesion(_ context.Context, sesionID uuid.UUID) (*model.Arqueo, error) {
	for _, a := range r.arqueos {
		if a.SesionCajaID == sesionID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeArqueoRepo) LockArqueo(_ *gorm.DB, id uuid.UUID) (*model.Arqueo, error) {
	a, ok := r.arqueos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeArqueoRepo) UpdateTx(_ *gorm.DB, a *model.Arqueo) error {
	r.arqueos[a.ID] = a
	return nil
}

// ── In-memory VentaRepository ────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) CrearTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	for i := range v.Pagos {
		if v.Pagos[i].ID == uuid.Nil {
			v.Pagos[i].ID = uuid.New()
		}
		v.Pagos[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVentaRepo) ListPagosPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.VentaPago, error) {
	var out []model.VentaPago
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			out = append(out, v.Pagos...)
		}
	}
	return out, nil
}

// ── In-memory UsuarioRepository ──────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (r *fakeUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}

// ── Notificador spy ──────────────────────────────────────────────────────────

type fakeNotificador struct {
	pendientes []uuid.UUID
	desvios    []uuid.UUID
	cajones    []uuid.UUID
}

func (n *fakeNotificador) AutorizacionPendiente(_ context.Context, retiro *model.Retiro) {
	n.pendientes = append(n.pendientes, retiro.ID)
}

func (n *fakeNotificador) DesvioExcedido(_ context.Context, arqueo *model.Arqueo) {
	n.desvios = append(n.desvios, arqueo.ID)
}

func (n *fakeNotificador) AbrirCajon(_ context.Context, ventaID uuid.UUID) {
	n.cajones = append(n.cajones, ventaID)
}

// ── Shared test scaffolding ──────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		ArqueoTolerancia:   decimal.NewFromInt(100),
		UmbralRetiro:       decimal.NewFromInt(1000),
		UmbralGasto:        decimal.NewFromInt(2000),
		MinNotasAprobacion: 10,
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
	}
}

func cajero() Actor        { return Actor{ID: uuid.New(), Rol: model.RolCajero} }
func supervisor() Actor    { return Actor{ID: uuid.New(), Rol: model.RolSupervisor} }
func administrador() Actor { return Actor{ID: uuid.New(), Rol: model.RolAdministrador} }
func soloLectura() Actor   { return Actor{ID: uuid.New(), Rol: model.RolSoloLectura} }

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// sesionAbierta seeds one open session with the given float.
func sesionAbierta(repo *fakeCajaRepo, pdv int, inicial decimal.Decimal) *model.SesionCaja {
	s := &model.SesionCaja{
		ID:              uuid.New(),
		PuntoDeVenta:    pdv,
		UsuarioApertura: uuid.New(),
		MontoInicial:    inicial,
		MontoEsperado:   inicial,
		Estado:          model.SesionAbierta,
		OpenedAt:        time.Now(),
	}
	repo.sesiones[s.ID] = s
	return s
}

// turnoActivo seeds one active turno on the session.
func turnoActivo(repo *fakeTurnoRepo, sesion *model.SesionCaja, usuarioID uuid.UUID) *model.Turno {
	t := &model.Turno{
		ID:           uuid.New(),
		SesionCajaID: sesion.ID,
		UsuarioID:    usuarioID,
		TipoRelevo:   model.RelevoNormal,
		MontoInicial: sesion.MontoInicial,
		Estado:       model.TurnoActivo,
		StartedAt:    time.Now(),
	}
	repo.turnos[t.ID] = t
	return t
}

func strPtr(s string) *string { return &s }
