package router

import (
	"time"

	"ferrepos/internal/config"
	"ferrepos/internal/handler"
	"ferrepos/internal/middleware"
	"ferrepos/internal/repository"
	"ferrepos/internal/service"
	"ferrepos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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
	productoRepo := repository.NewProductoRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	empresaRepo := repository.NewEmpresaRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo)
	facturaSvc := service.NewFacturaService(facturaRepo, productoRepo, movimientoStockRepo, empresaRepo, dispatcher)
	clienteSvc := service.NewClienteService(clienteRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	empresaSvc := service.NewEmpresaService(empresaRepo)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	empresaH := handler.NewEmpresaHandler(empresaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

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
	v1 := r.Group("/v1", jwtMW)
	{
		// Facturas — cajero and administrador sell; only administrador annuls
		v1.POST("/facturas", middleware.RequireRole("cajero", "administrador"), facturasH.Crear)
		v1.GET("/facturas", middleware.RequireRole("cajero", "administrador"), facturasH.Listar)
		v1.GET("/facturas/:id", middleware.RequireRole("cajero", "administrador"), facturasH.ObtenerPorID)
		v1.GET("/facturas/:id/pdf", middleware.RequireRole("cajero", "administrador"), facturasH.DescargarPDF)
		v1.DELETE("/facturas/:id", middleware.RequireRole("administrador"), facturasH.Anular)

		// Productos — reads for everyone who can sell, writes administrador only
		v1.GET("/productos", middleware.RequireRole("cajero", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("cajero", "administrador"), productosH.ObtenerPorID)
		v1.GET("/productos/codigo/:codigo", middleware.RequireRole("cajero", "administrador"), productosH.ObtenerPorCodigo)
		v1.GET("/productos/movimientos", middleware.RequireRole("cajero", "administrador"), productosH.ListarMovimientos)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.PATCH("/:id/stock", productosH.AjustarStock)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		// Clientes — the cashier registers clients at the counter
		v1.POST("/clientes", middleware.RequireRole("cajero", "administrador"), clientesH.Crear)
		v1.GET("/clientes", middleware.RequireRole("cajero", "administrador"), clientesH.Listar)
		v1.GET("/clientes/:id", middleware.RequireRole("cajero", "administrador"), clientesH.ObtenerPorID)
		v1.GET("/clientes/documento/:documento", middleware.RequireRole("cajero", "administrador"), clientesH.ObtenerPorDocumento)
		v1.PUT("/clientes/:id", middleware.RequireRole("cajero", "administrador"), clientesH.Actualizar)
		v1.DELETE("/clientes/:id", middleware.RequireRole("administrador"), clientesH.Desactivar)

		// Categorías — administrador can write, all authenticated can read
		v1.GET("/categorias", middleware.RequireRole("cajero", "administrador"), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		// Empresa — read for sellers (invoices show it), write administrador
		v1.GET("/empresa", middleware.RequireRole("cajero", "administrador"), empresaH.Obtener)
		v1.PUT("/empresa", middleware.RequireRole("administrador"), empresaH.Guardar)

		// Reportes — administrador only
		reportes := v1.Group("/reportes", middleware.RequireRole("administrador"))
		{
			reportes.GET("/ventas", reportesH.Ventas)
			reportes.GET("/inventario", reportesH.Inventario)
		}

		// Usuarios — administrador only
		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	return r
}
