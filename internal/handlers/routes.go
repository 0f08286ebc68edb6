package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/config"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/middleware"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/admin"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/auth"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/chat"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/jobs"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/maintenance"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/reviews"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/servicereq"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/users"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

// Deps is everything the HTTP layer needs from the process.
type Deps struct {
	Config      *config.Config
	Store       store.Store
	Hub         *realtime.Hub
	Notifier    realtime.Notifier
	Mailer      auth.Mailer
	Google      auth.GoogleProvider
	Maintenance *maintenance.Cache
	AuthLimiter *middleware.RateLimiter
}

// NewApp builds the fiber app with the global middleware chain and every route.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	if d.Maintenance == nil {
		d.Maintenance = maintenance.NewCache(d.Store, cfg.MaintenanceCacheTTL)
	}
	app := fiber.New(fiber.Config{
		AppName:      "platform-servicos",
		ErrorHandler: ErrorHandler(cfg.AppEnv),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Maintenance(d.Maintenance, cfg.JWTSecret, d.Store))

	Register(app, d)
	return app
}

// Register mounts the route table on app.
func Register(app *fiber.App, d Deps) {
	cfg := d.Config
	st := d.Store

	authSvc := auth.NewService(st, d.Mailer, auth.Options{
		JWTSecret:      cfg.JWTSecret,
		ExpiresMin:     cfg.JWTExpiresMin,
		ResetTTL:       cfg.ResetTokenTTL,
		EchoResetToken: !cfg.IsProduction(),
	})
	if d.Google != nil {
		authSvc.WithGoogle(d.Google)
	}

	authH := &AuthHandler{
		Auth:            authSvc,
		Expires:         cfg.JWTExpiresMin,
		SecureCookie:    cfg.IsProduction(),
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	userH := &UserHandler{Users: users.NewService(st, st, authSvc), Auth: authH}
	serviceH := &ServiceHandler{Services: servicereq.NewService(st, st, d.Notifier)}
	jobH := &JobHandler{Jobs: jobs.NewService(st, st, d.Notifier)}
	reviewH := &ReviewHandler{Reviews: reviews.NewService(st, st, st)}
	chatH := &ChatHandler{
		Chat:      chat.NewService(st, st, st, d.Notifier),
		Hub:       d.Hub,
		JWTSecret: cfg.JWTSecret,
		Users:     st,
	}
	var cache admin.Invalidator
	if d.Maintenance != nil {
		cache = d.Maintenance
	}
	adminH := &AdminHandler{Admin: admin.NewService(st, cache)}

	protect := middleware.Protect(cfg.JWTSecret, st)
	adminOnly := middleware.RequireRoles(string(models.RoleAdmin))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := st.Ping(c.UserContext()); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "status": "unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	authLimit := []fiber.Handler{}
	if d.AuthLimiter != nil {
		authLimit = append(authLimit, d.AuthLimiter.Handler())
	}
	a := api.Group("/auth", authLimit...)
	a.Post("/register", authH.Register)
	a.Post("/login", authH.Login)
	a.Post("/logout", authH.Logout)
	a.Get("/me", protect, authH.Me)
	a.Put("/updatepassword", protect, authH.UpdatePassword)
	a.Post("/forgot-password", authH.ForgotPassword)
	a.Post("/reset-password/:token", authH.ResetPassword)
	a.Get("/google/start", authH.GoogleStart)
	a.Get("/google/callback", authH.GoogleCallback)

	u := api.Group("/users")
	u.Put("/profile", protect, userH.UpdateProfile)
	u.Post("/upgrade-to-provider", protect, userH.UpgradeToProvider)
	u.Put("/provider-info", protect, middleware.RequireRoles(string(models.RoleProvider)), userH.UpdateProviderInfo)
	u.Get("/providers", userH.ListProviders)
	u.Put("/deactivate", protect, userH.Deactivate)
	u.Post("/reactivate", userH.Reactivate)
	u.Delete("/delete-account", protect, userH.DeleteAccount)
	u.Get("/:id", userH.PublicProfile)

	s := api.Group("/services")
	s.Post("/", protect, serviceH.Create)
	s.Get("/my-requests", protect, serviceH.MyRequests)
	s.Get("/received", protect, middleware.RequireRoles(string(models.RoleProvider)), serviceH.Received)
	s.Put("/:id/status", protect, serviceH.UpdateStatus)
	s.Post("/:id/review", protect, serviceH.Review)

	company := middleware.RequireRoles(string(models.RoleCompany))
	j := api.Group("/jobs")
	j.Post("/", protect, company, jobH.Create)
	j.Get("/", jobH.List)
	j.Get("/my-applications", protect, jobH.MyApplications)
	j.Get("/my-proposals", protect, jobH.MyProposals)
	j.Put("/applications/:id", protect, jobH.RespondApplication)
	j.Put("/proposals/:id", protect, middleware.RequireRoles(string(models.RoleProvider)), jobH.RespondProposal)
	j.Get("/:id", jobH.Get)
	j.Put("/:id", protect, jobH.Update)
	j.Delete("/:id", protect, jobH.Delete)
	j.Post("/:id/apply", protect, jobH.Apply)
	j.Get("/:id/applications", protect, jobH.JobApplications)
	j.Post("/:id/propose", protect, company, jobH.Propose)

	r := api.Group("/reviews")
	r.Post("/", protect, reviewH.Create)
	r.Get("/user/:userId", reviewH.ListForUser)
	r.Get("/flagged", protect, adminOnly, reviewH.Flagged)
	r.Post("/:id/report", protect, reviewH.Report)
	r.Post("/:id/helpful", protect, reviewH.Helpful)
	r.Put("/:id/moderate", protect, adminOnly, reviewH.Moderate)
	r.Delete("/:id", protect, reviewH.Delete)

	ch := api.Group("/chat", protect)
	ch.Post("/conversation", chatH.CreateOrGetConversation)
	ch.Get("/conversations", chatH.GetConversations)
	ch.Get("/conversations/:id/messages", chatH.GetMessages)
	ch.Post("/conversations/:id/messages", chatH.SendMessage)

	ad := api.Group("/admin", protect, adminOnly)
	ad.Post("/create-admin", adminH.CreateAdmin)
	ad.Get("/users", adminH.ListUsers)
	ad.Get("/stats", adminH.Stats)
	ad.Delete("/users/:id", adminH.DeleteUser)
	ad.Put("/users/:id", adminH.UpdateUser)
	ad.Get("/settings", adminH.GetSettings)
	ad.Put("/settings", adminH.UpdateSettings)

	api.Get("/settings/public", adminH.PublicSettings)

	app.Get("/ws/chat", chatH.UpgradeWebSocket, websocket.New(chatH.WebSocketHandler))
}
