package router

import (
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/config"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/handler"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/middleware"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	turnoRepo := repository.NewTurnoRepository(db)
	retiroRepo := repository.NewRetiroRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	arqueoRepo := repository.NewArqueoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// Worker dispatcher — post-commit side effects go through Redis queues
	dispatcher := worker.NewDispatcher(rdb)
	notificador := worker.NewNotificador(dispatcher)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	cajaSvc := service.NewCajaService(cajaRepo, turnoRepo)
	turnoSvc := service.NewTurnoService(turnoRepo, cajaRepo)
	retiroSvc := service.NewRetiroService(retiroRepo, cajaRepo, turnoRepo, notificador, cfg)
	gastoSvc := service.NewGastoService(gastoRepo, cajaRepo, turnoRepo, usuarioRepo, cfg)
	arqueoSvc := service.NewArqueoService(arqueoRepo, cajaRepo, turnoRepo, notificador, cfg)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, turnoRepo, notificador)
	auditoriaSvc := service.NewAuditoriaService(cajaRepo, turnoRepo, ventaRepo, retiroRepo, gastoRepo, arqueoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	turnosH := handler.NewTurnosHandler(turnoSvc)
	retirosH := handler.NewRetirosHandler(retiroSvc)
	gastosH := handler.NewGastosHandler(gastoSvc)
	arqueoH := handler.NewArqueoHandler(arqueoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	operadores := middleware.RequireRole("cajero", "supervisor", "administrador")
	lectores := middleware.RequireRole("cajero", "supervisor", "administrador", "solo_lectura")
	supervisores := middleware.RequireRole("supervisor", "administrador")

	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operadores, cajaH.Abrir)
			caja.POST("/movimiento", operadores, cajaH.RegistrarMovimiento)
			caja.POST("/arqueo", operadores, arqueoH.Ejecutar)
			caja.GET("/activa", operadores, cajaH.GetActiva)
			caja.GET("/historial", lectores, cajaH.Historial)
			caja.GET("/:id/reporte", lectores, cajaH.ObtenerReporte)
			caja.GET("/:id/turnos", lectores, turnosH.ListarPorSesion)
			caja.GET("/:id/retiros", lectores, retirosH.ListarPorSesion)
			caja.GET("/:id/gastos", lectores, gastosH.ListarPorSesion)
			caja.GET("/:id/arqueo", lectores, arqueoH.ObtenerPorSesion)
			caja.GET("/:id/auditoria", lectores, auditoriaH.Auditar)
		}

		turnos := v1.Group("/turnos")
		{
			turnos.POST("", operadores, turnosH.Iniciar)
			turnos.GET("/:id", lectores, turnosH.Obtener)
			turnos.POST("/:id/suspender", supervisores, turnosH.Suspender)
			turnos.POST("/:id/reanudar", supervisores, turnosH.Reanudar)
			turnos.POST("/:id/cerrar", operadores, turnosH.Cerrar)
		}

		retiros := v1.Group("/retiros")
		{
			retiros.POST("", operadores, retirosH.Solicitar)
			retiros.GET("/:id", lectores, retirosH.Obtener)
			retiros.POST("/:id/resolver", supervisores, retirosH.Resolver)
			retiros.POST("/:id/completar", operadores, retirosH.Completar)
			retiros.POST("/:id/cancelar", operadores, retirosH.Cancelar)
		}

		gastos := v1.Group("/gastos")
		{
			gastos.POST("", operadores, gastosH.Registrar)
			gastos.GET("/:id", lectores, gastosH.Obtener)
		}

		arqueos := v1.Group("/arqueos")
		{
			arqueos.GET("/:id", lectores, arqueoH.Obtener)
			arqueos.POST("/:id/aprobar", supervisores, arqueoH.Aprobar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", operadores, ventasH.Registrar)
			ventas.GET("/:id", lectores, ventasH.Obtener)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
