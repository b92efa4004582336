// Package server assembles the HTTP router from the ledger services.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bendahara/internal/handlers"
	"bendahara/internal/middleware"
	"bendahara/internal/services"

	_ "bendahara/internal/docs" // Import swagger docs
)

// Services are the dependencies the router dispatches to.
type Services struct {
	Users        services.UserServicer
	Audit        services.AuditServicer
	Categories   services.CategoryServicer
	Ledger       services.LedgerServicer
	Handover     services.HandoverServicer
	Transactions services.TransactionServicer
	Installments services.InstallmentServicer
}

// NewRouter builds the gin engine. loc is the calendar used for bare dates in requests.
func NewRouter(svc Services, tokens *middleware.TokenIssuer, loc *time.Location) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit, tokens)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit, loc)
	ledgerHandler := handlers.NewLedgerHandler(svc.Ledger)
	handoverHandler := handlers.NewHandoverHandler(svc.Handover, svc.Audit)
	installmentHandler := handlers.NewInstallmentHandler(svc.Installments, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.GET("/profile", authHandler.GetProfile)

	users := protected.Group("/users")
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListVisibleCategories)
	categories.GET("/all", categoryHandler.ListAllCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/batch", transactionHandler.CreateBatch)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	ledger := protected.Group("/ledger")
	ledger.GET("/balances", ledgerHandler.GetCategoryBalances)
	ledger.GET("/students/:id/history", ledgerHandler.GetStudentHistory)

	handover := protected.Group("/handover")
	handover.GET("/stats", ledgerHandler.GetHandoverStats)
	handover.POST("", handoverHandler.PerformHandover)

	students := protected.Group("/students")
	students.PUT("/:id/installment", installmentHandler.SetInstallment)
	students.GET("/:id/installment", installmentHandler.GetInstallment)

	return router
}
