package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"campus-laundry-backend/config"
	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/mw"
)

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handler, cfg config.ServerConfig, gatherer prometheus.Gatherer, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(log))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", mw.SessionHeader},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.NoRoute(h.NotFound)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.NewResponseCache(cacheTTL, mw.URIKey).Handler()

	app := r.Group("/", mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		app.GET("/", h.LoginPage)
		app.POST("/", h.Login)
		app.POST("/logout", h.Logout)
	}

	authed := mw.RequireSession(h.sessions)

	student := app.Group("/student", authed, mw.RequireRole(laundry.RoleStudent))
	{
		student.GET("/dashboard", h.StudentDashboard)
		student.GET("/orders", h.StudentOrders)
		student.POST("/orders", h.CreateOrder)
		student.GET("/complaints", h.StudentComplaints)
		student.POST("/complaints", h.CreateComplaint)
	}

	admin := app.Group("/admin", authed, mw.RequireRole(laundry.RoleAdmin))
	{
		admin.GET("/dashboard", h.AdminDashboard)
		admin.GET("/orders", h.AdminOrders)
		admin.GET("/orders/export", h.ExportOrders)
		admin.POST("/orders/:id/advance", h.AdvanceOrder)
		admin.POST("/orders/:id/status", h.SetOrderStatus)
		admin.GET("/complaints", h.AdminComplaints)
		admin.POST("/complaints/:id/resolve", h.ResolveComplaint)
		admin.GET("/stock", h.AdminStock)
		admin.GET("/stock/report", h.StockReport)
		admin.POST("/stock/:id/adjust", h.AdjustStock)
	}

	api := app.Group("/api")
	{
		api.GET("/catalog", caching, h.Catalog)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/subscriptions", authed, h.GetSubscription)
		api.PUT("/subscriptions", authed, h.PutSubscription)
		api.DELETE("/subscriptions", authed, h.DeleteSubscription)
	}

	return r
}
