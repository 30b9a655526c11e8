package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/config"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/http/middleware"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/handler"
	"github.com/ulule/limiter/v3"
)

// Handlers набор обработчиков API.
type Handlers struct {
	Auth    *handler.AuthHandler
	Gig     *handler.GigHandler
	Bid     *handler.BidHandler
	Payment *handler.PaymentHandler
	Admin   *handler.AdminHandler
	WS      *handler.WSHandler
	Health  *handler.HealthHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessTokenParser,
	limiterStore limiter.Store,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	// вебхук провайдера аутентифицируется подписью, а не токеном
	api.POST("/webhooks/stripe", h.Payment.Webhook)
	api.GET("/ws", h.WS.Handle)
	api.GET("/gigs", h.Gig.List)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/me", h.Auth.Me)

		protected.POST("/gigs", h.Gig.Create)
		protected.GET("/gigs/mine", h.Gig.ListMine)
		protected.GET("/gigs/:id", middleware.UUIDValidator("id"), h.Gig.Get)
		protected.GET("/gigs/:id/history", middleware.UUIDValidator("id"), h.Gig.History)
		protected.PUT("/gigs/:id/status", middleware.UUIDValidator("id"), h.Gig.ChangeStatus)
		protected.PUT("/gigs/:id/reverse-status", middleware.UUIDValidator("id"), h.Gig.ReverseChangeStatus)
		protected.POST("/gigs/:id/attachments", middleware.UUIDValidator("id"), h.Gig.UploadAttachment)

		protected.POST("/gigs/:id/bids", middleware.UUIDValidator("id"), h.Bid.Place)
		protected.GET("/gigs/:id/bids", middleware.UUIDValidator("id"), h.Bid.ListForGig)
		protected.GET("/bids/mine", h.Bid.ListMine)
		protected.PUT("/bids/:id/decision", middleware.UUIDValidator("id"), h.Bid.Decision)
		protected.PUT("/bids/:id/review", middleware.UUIDValidator("id"), h.Bid.Review)

		protected.POST("/gigs/:id/payment-intents", middleware.UUIDValidator("id"), h.Payment.CreateIntent)
		protected.GET("/payments/history", h.Payment.History)
		protected.POST("/payouts/account", h.Payment.ConnectAccount)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.POST("/gigs/:id/approve-payment", middleware.UUIDValidator("id"), h.Payment.Approve)
		admin.PUT("/users/:id/plan", middleware.UUIDValidator("id"), h.Admin.SetPlan)
	}

	return r
}
