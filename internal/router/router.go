package router

import (
	"time"

	"admincs/internal/config"
	"admincs/internal/handler"
	"admincs/internal/infra"
	"admincs/internal/middleware"
	"admincs/internal/repository"
	"admincs/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, relay *infra.BreakerSMTP) *gin.Engine {
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
	cobroRepo := repository.NewCobroRepository(db)
	espacioRepo := repository.NewEspacioRepository(db)
	obligacionRepo := repository.NewObligacionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cobroSvc := service.NewCobroService(cobroRepo, espacioRepo)
	pagoParcialSvc := service.NewPagoParcialService(cobroRepo, espacioRepo, cobroSvc)
	obligacionSvc := service.NewObligacionService(obligacionRepo, cobroSvc)
	reporteSvc := service.NewReporteService(cobroRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cobrosH := handler.NewCobrosHandler(cobroSvc, cfg.EmpresaNombre)
	parcialesH := handler.NewPagosParcialesHandler(pagoParcialSvc)
	obligacionesH := handler.NewObligacionesHandler(obligacionSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	recordatoriosH := handler.NewRecordatoriosHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, relay))

	// Protected routes. Tokens come from the portfolio's auth service.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW, middleware.RequireRole(middleware.RolOperador, middleware.RolAdministrador))
	{
		cobros := v1.Group("/cobros")
		{
			cobros.POST("", cobrosH.Crear)
			cobros.GET("", cobrosH.Listar)
			cobros.GET("/exportar", cobrosH.Exportar)
			cobros.GET("/:id", cobrosH.ObtenerPorID)
			cobros.PUT("/:id", cobrosH.Actualizar)
			cobros.GET("/:id/recibo", cobrosH.Recibo)
			// Deleting ledger entries: administrador only
			cobros.DELETE("/:id", middleware.RequireRole(middleware.RolAdministrador), cobrosH.Eliminar)
		}

		parciales := v1.Group("/pagos-parciales")
		{
			parciales.POST("", parcialesH.RegistrarAbono)
			parciales.GET("/pendientes", parcialesH.Pendientes)
			parciales.GET("/:id", parcialesH.ResumenCuenta)
		}

		obl := v1.Group("/obligaciones")
		{
			obl.GET("", obligacionesH.Listar)
			obl.POST("/generar-vencidas", obligacionesH.GenerarVencidas)
			obl.POST("/:id/liquidar", obligacionesH.Liquidar)

			obl.GET("/plantillas", obligacionesH.ListarPlantillas)
			obl.POST("/plantillas/:id/generar", obligacionesH.Generar)
			// Template definitions: administrador only
			plantillas := obl.Group("/plantillas", middleware.RequireRole(middleware.RolAdministrador))
			{
				plantillas.POST("", obligacionesH.CrearPlantilla)
				plantillas.PATCH("/:id/desactivar", obligacionesH.Desactivar)
				plantillas.PATCH("/:id/reactivar", obligacionesH.Reactivar)
			}
		}

		v1.GET("/reportes/resumen-mensual", reportesH.ResumenMensual)

		// Undelivered reminders: administrador only
		fallidos := v1.Group("/recordatorios/fallidos", middleware.RequireRole(middleware.RolAdministrador))
		{
			fallidos.GET("", recordatoriosH.Fallidos)
			fallidos.POST("/reencolar", recordatoriosH.Reencolar)
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
