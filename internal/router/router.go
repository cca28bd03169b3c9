package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/config"
	"github.com/IngCuriel/MariamPos-sub000/internal/handler"
	"github.com/IngCuriel/MariamPos-sub000/internal/middleware"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
	"github.com/IngCuriel/MariamPos-sub000/internal/service"
	"github.com/IngCuriel/MariamPos-sub000/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, direction service.TransferDirection) *gin.Engine {
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
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	shiftRepo := repository.NewShiftRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, creditRepo)
	creditSvc := service.NewCreditService(creditRepo, shiftSvc)
	inventorySvc := service.NewInventoryService(inventoryRepo, productRepo, rdb, dispatcher, direction)
	saleSvc := service.NewSaleService(saleRepo, productRepo, shiftSvc, creditSvc, inventorySvc)
	reportSvc := service.NewReportService(shiftSvc, shiftRepo, saleRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	shiftH := handler.NewShiftHandler(shiftSvc, reportSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc, dispatcher)
	creditH := handler.NewCreditHandler(creditSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		shifts := v1.Group("/shifts")
		{
			shifts.POST("/open", shiftH.Open)
			shifts.POST("/close", shiftH.Close)
			shifts.POST("/cancel", shiftH.Cancel)
			shifts.GET("/active", shiftH.GetActive)
			shifts.GET("", shiftH.List)
			shifts.POST("/movements", shiftH.RecordMovement)
			shifts.DELETE("/movements/:id", shiftH.DeleteMovement)
			shifts.GET("/:id", shiftH.Get)
			shifts.GET("/:id/summary", shiftH.Summary)
			shifts.GET("/:id/movements", shiftH.ListMovements)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", saleH.Register)
			sales.GET("/:id", saleH.Get)
		}

		inv := v1.Group("/inventory")
		{
			inv.POST("/movements", inventoryH.ApplyMovement)
			inv.GET("/products/:id/stock", inventoryH.Stock)
			inv.GET("/products/:id/kardex", inventoryH.Kardex)
			inv.GET("/products/:id/stock-as-of/:movement_id", inventoryH.StockAsOf)
			inv.GET("/products/:id/snapshot", inventoryH.VerifySnapshot)
			inv.POST("/products/:id/snapshot/rebuild", inventoryH.RebuildSnapshot)
		}

		credits := v1.Group("/credits")
		{
			credits.POST("/payments", creditH.Pay)
			credits.GET("/clients/:id", creditH.Summary)
		}
	}

	return r
}
