package routes

import (
	"time"

	"github.com/elawdiya/backend/internal/config"
	"github.com/elawdiya/backend/internal/handlers"
	"github.com/elawdiya/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Report *handlers.ReportHandler
	Admin  *handlers.AdminHandler
	Shame  *handlers.ShameHandler
	Health *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, gatherer prometheus.Gatherer, h Handlers) {
	app.Get("/", h.Health.Root)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	auth.Get("/me", middleware.JWTProtected(cfg), h.Auth.Me)

	reports := api.Group("/reports", middleware.JWTProtected(cfg))
	reports.Post("/", h.Report.Create)
	reports.Get("/", h.Report.List)
	reports.Get("/:id", h.Report.Get)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.ModeratorRequired(db))
	admin.Get("/verify", h.Admin.ListPending)
	admin.Post("/verify", h.Admin.Verify)

	// Hall of shame is public; a bearer token only adds the caller's rank.
	shame := api.Group("/shame")
	shame.Get("/top-offenders", h.Shame.TopOffenders)
	shame.Get("/leaderboard", middleware.OptionalJWT(cfg), h.Shame.Leaderboard)
}
