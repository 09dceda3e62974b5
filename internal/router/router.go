package router

import (
	"time"

	"restopos/internal/audit"
	"restopos/internal/config"
	"restopos/internal/handler"
	"restopos/internal/middleware"
	"restopos/internal/model"
	"restopos/internal/repository"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies carries everything the HTTP layer is built from. Auditor and
// Notifier are already wired to the async worker queue (or are log-only/nil
// in the seed commands and tests).
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Cfg      *config.Config
	Auditor  audit.Recorder
	Notifier service.Notifier
}

// New assembles repositories, services, handlers and the route table.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Cfg
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	establishmentRepo := repository.NewEstablishmentRepository(deps.DB)
	tableRepo := repository.NewTableRepository(deps.DB)
	registerRepo := repository.NewRegisterRepository(deps.DB)
	cashRepo := repository.NewCashRepository(deps.DB)
	transferRepo := repository.NewTransferRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	productRepo := repository.NewProductRepository(deps.DB)
	ingredientRepo := repository.NewIngredientRepository(deps.DB)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg)
	cashSvc := service.NewCashService(cashRepo, registerRepo, deps.Auditor, service.ThresholdsFromConfig(cfg))
	treasurySvc := service.NewTreasuryService(transferRepo, cashRepo, deps.Auditor, deps.Notifier)
	categorySvc := service.NewCategoryService(categoryRepo, deps.Redis, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	stockSvc := service.NewStockService(ingredientRepo)
	establishmentSvc := service.NewEstablishmentService(establishmentRepo)
	tableSvc := service.NewTableService(tableRepo, establishmentRepo)
	registerSvc := service.NewRegisterService(registerRepo, establishmentRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(authSvc)
	cashHandler := handler.NewCashHandler(cashSvc)
	treasuryHandler := handler.NewTreasuryHandler(treasurySvc, cfg)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	productHandler := handler.NewProductHandler(productSvc)
	ingredientHandler := handler.NewIngredientHandler(stockSvc)
	establishmentHandler := handler.NewEstablishmentHandler(establishmentSvc)
	tableHandler := handler.NewTableHandler(tableSvc)
	registerHandler := handler.NewRegisterHandler(registerSvc)
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
		middleware.ErrorHandler(),
		middleware.Metrics(),
		middleware.RateLimiter(300, time.Minute),
	)

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleTreasurer, model.RoleAdmin)
	supervisorUp := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)
	treasurerUp := middleware.RequireRole(model.RoleTreasurer, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	cash := protected.Group("/cash")
	{
		cash.POST("/sessions", anyRole, cashHandler.Open)
		cash.GET("/sessions", supervisorUp, cashHandler.History)
		cash.GET("/sessions/active", anyRole, cashHandler.Active)
		cash.POST("/sessions/:id/transactions", anyRole, cashHandler.Record)
		cash.POST("/sessions/:id/close", anyRole, cashHandler.Close)
		cash.GET("/sessions/:id/report", anyRole, cashHandler.Report)

		cash.POST("/transfers", supervisorUp, treasuryHandler.Transfer)
		cash.GET("/transfers/pending", treasurerUp, treasuryHandler.Pending)
		cash.POST("/transfers/:id/confirm", treasurerUp, treasuryHandler.Confirm)
		cash.GET("/consolidation", treasurerUp, treasuryHandler.Consolidation)
		cash.GET("/consolidation/pdf", treasurerUp, treasuryHandler.ConsolidationPDF)
	}

	users := protected.Group("/users", adminOnly)
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Deactivate)
		users.POST("/:id/reactivate", userHandler.Reactivate)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", anyRole, categoryHandler.List)
		categories.POST("", adminOnly, categoryHandler.Create)
		categories.PUT("/:id", adminOnly, categoryHandler.Update)
		categories.DELETE("/:id", adminOnly, categoryHandler.Deactivate)
	}

	products := protected.Group("/products")
	{
		products.GET("", anyRole, productHandler.List)
		products.GET("/:id", anyRole, productHandler.Get)
		products.POST("", adminOnly, productHandler.Create)
		products.PUT("/:id", adminOnly, productHandler.Update)
		products.DELETE("/:id", adminOnly, productHandler.Deactivate)
		products.POST("/:id/reactivate", adminOnly, productHandler.Reactivate)
	}

	ingredients := protected.Group("/ingredients")
	{
		ingredients.GET("", anyRole, ingredientHandler.List)
		ingredients.POST("", adminOnly, ingredientHandler.Create)
		ingredients.POST("/:id/adjust", supervisorUp, ingredientHandler.Adjust)
		ingredients.DELETE("/:id", adminOnly, ingredientHandler.Deactivate)
	}

	establishments := protected.Group("/establishments")
	{
		establishments.GET("", anyRole, establishmentHandler.List)
		establishments.POST("", adminOnly, establishmentHandler.Create)
		establishments.PUT("/:id", adminOnly, establishmentHandler.Update)
		establishments.DELETE("/:id", adminOnly, establishmentHandler.Deactivate)
	}

	tables := protected.Group("/tables")
	{
		tables.GET("", anyRole, tableHandler.List)
		tables.POST("", adminOnly, tableHandler.Create)
		tables.DELETE("/:id", adminOnly, tableHandler.Deactivate)
	}

	registers := protected.Group("/registers")
	{
		registers.GET("", anyRole, registerHandler.List)
		registers.POST("", adminOnly, registerHandler.Create)
		registers.DELETE("/:id", adminOnly, registerHandler.Deactivate)
	}

	return r
}
