package server

import (
	"context"
	"net/http"

	"debmarket/internal/auth"
	"debmarket/internal/config"
	"debmarket/internal/investment"
	"debmarket/internal/notification"
	"debmarket/internal/offering"
	"debmarket/internal/payment"
	"debmarket/internal/user"
	"debmarket/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router        *gin.Engine
	http          *http.Server
	db            *sqlx.DB
	config        *config.Config
	notifications *notification.Service
}

func New(db *sqlx.DB, cfg *config.Config, deposits *payment.DepositService, notifications *notification.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	walletRepo := wallet.NewRepository(db)

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db), cfg.JWTSecret))
	offeringHandler := offering.NewHandler(offering.NewService(offering.NewRepository(db)))
	investmentHandler := investment.NewHandler(investment.NewService(investment.NewRepository(db), notifications))
	walletHandler := wallet.NewHandler(walletRepo, notifications)
	depositHandler := payment.NewHandler(deposits)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/offerings", offeringHandler.ListOfferings)
		protected.GET("/offerings/:offeringID", offeringHandler.GetOffering)
		protected.POST("/offerings/:offeringID/invest", investmentHandler.Invest)
		protected.GET("/portfolio", investmentHandler.GetPortfolio)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)

		protected.POST("/deposits", depositHandler.CreateDeposit)
		protected.GET("/deposits/:depositID", depositHandler.GetDeposit)
		protected.POST("/deposits/:depositID/cancel", depositHandler.CancelDeposit)
		protected.POST("/deposits/:depositID/regenerate", depositHandler.RegenerateDeposit)
		protected.POST("/deposits/:depositID/confirm-card", depositHandler.ConfirmCardDeposit)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/companies", offeringHandler.CreateCompany)
		admin.POST("/offerings", offeringHandler.CreateOffering)
		admin.POST("/offerings/:offeringID/close", offeringHandler.CloseOffering)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:        router,
		db:            db,
		config:        cfg,
		notifications: notifications,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
