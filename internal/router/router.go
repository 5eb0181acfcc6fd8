package router

import (
	"time"

	"vetpos/internal/config"
	"vetpos/internal/handler"
	"vetpos/internal/middleware"
	"vetpos/internal/repository"
	"vetpos/internal/service"
	"vetpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	employeeRepo := repository.NewEmployeeRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	rankRepo := repository.NewRankRepository(db)
	spendingRepo := repository.NewSpendingRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	petRepo := repository.NewPetRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(employeeRepo, cfg)
	pricing := service.NewPricingResolver(catalogRepo, customerRepo, rankRepo)
	loyaltySvc := service.NewLoyaltyService(spendingRepo, customerRepo)
	receiptSvc := service.NewReceiptService(receiptRepo, pricing, loyaltySvc, petRepo, customerRepo, catalogRepo, dispatcher)
	reviewSvc := service.NewReviewService(customerRepo, rankRepo, spendingRepo, cfg.ReviewWorkerCount)
	reportSvc := service.NewReportService(reportRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	receiptsH := handler.NewReceiptsHandler(receiptSvc)
	purchasesH := handler.NewPurchasesHandler(receiptSvc)
	customersH := handler.NewCustomersHandler(customerRepo, loyaltySvc)
	reviewsH := handler.NewReviewsHandler(reviewSvc, dispatcher)
	reportsH := handler.NewReportsHandler(reportSvc)

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
		// Roles: receptionist, vet, sales, manager, director — declared per-endpoint
		frontDesk := middleware.RequireRole("receptionist", "vet", "sales", "manager", "director")

		receipts := v1.Group("/receipts", frontDesk)
		{
			receipts.POST("", receiptsH.CreateDraft)
			receipts.GET("", receiptsH.List)
			receipts.GET("/:id", receiptsH.Get)
			receipts.POST("/:id/items", receiptsH.AddItem)
			receipts.POST("/:id/vaccine-doses", receiptsH.AddVaccineDose)
			receipts.DELETE("/:id/items/:itemNo", receiptsH.RemoveItem)
			receipts.PATCH("/:id/items/:itemNo", receiptsH.UpdateItemQuantity)
			receipts.POST("/:id/complete", receiptsH.Complete)
		}

		purchases := v1.Group("/purchases", frontDesk)
		{
			purchases.POST("/retail", purchasesH.RetailPurchase)
			purchases.POST("/vaccination-plans", purchasesH.VaccinationPlanPurchase)
		}

		v1.GET("/customers/:id", frontDesk, customersH.Get)
		v1.GET("/customers/:id/spending", frontDesk, customersH.Spending)

		reports := v1.Group("/reports", middleware.RequireRole("manager", "director"))
		{
			reports.GET("/daily", reportsH.DailyBranch)
			reports.GET("/dashboard", reportsH.Dashboard)
		}

		admin := v1.Group("/admin", middleware.RequireRole("director"))
		{
			admin.POST("/reviews/:year/run", reviewsH.Run)
			admin.POST("/reviews/:year", reviewsH.Enqueue)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
