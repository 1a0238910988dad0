package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"

	"kintree/internal/access"
	"kintree/internal/api"
	"kintree/internal/cache"
	"kintree/internal/config"
	"kintree/internal/database"
	"kintree/internal/email"
	"kintree/internal/logger"
	"kintree/internal/middleware"
	"kintree/internal/model"
	"kintree/internal/repository"
	"kintree/internal/service"
	"kintree/internal/telemetry"
	"kintree/internal/validator"
)

func main() {
	ctx := context.Background()

	cfg := config.NewConfig()
	log := logger.New(cfg)

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		log.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("telemetry shutdown", "error", err)
		}
	}()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    "tbl_session",
		Reset:    false,
	})
	store := session.New(session.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Session.Expiration,
	})

	mail, err := email.New(ctx, cfg.Email, log)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		os.Exit(1)
	}

	repo := repository.NewPostgresRepository(db)
	renderCache := cache.NewTreeCache(redisClient, log)
	limiter := service.NewRateLimiter(redisClient)
	validate := validator.New()

	auditService := service.NewAuditService(repo)
	authService := service.NewAuthService(repo, mail, limiter, log)
	treeService := service.NewTreeService(repo, renderCache, auditService, log)
	memberService := service.NewMemberService(repo, renderCache, auditService, log)
	grantService := service.NewGrantService(repo, renderCache, auditService, log)
	invitationService := service.NewInvitationService(repo, mail, limiter, auditService, log)
	eventService := service.NewEventService(repo, auditService, log)
	fundService := service.NewFundService(repo, auditService, log)

	gate := access.NewGate(repo, repo, log)

	healthHandler := api.NewHealthHandler(repo, redisClient)
	authHandler := api.NewAuthHandler(authService, store, validate, log)
	treeHandler := api.NewTreeHandler(treeService, validate, log)
	memberHandler := api.NewMemberHandler(memberService, validate, log)
	grantHandler := api.NewGrantHandler(grantService, validate, log)
	invitationHandler := api.NewInvitationHandler(invitationService, validate, log)
	eventHandler := api.NewEventHandler(eventService, validate, log)
	fundHandler := api.NewFundHandler(fundService, validate, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.Telemetry.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.ClientIP())
	app.Use(middleware.RequestLogger(log))
	if cfg.Telemetry.Enabled {
		app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName))
	}

	app.Get("/health", healthHandler.Healthy)

	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify", authHandler.VerifyEmail)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)

	requireAuth := middleware.RequireAuth(store)

	app.Post("/invitations/accept", requireAuth, invitationHandler.Accept)

	trees := app.Group("/trees", requireAuth)
	trees.Get("/", treeHandler.List)
	trees.Post("/", treeHandler.Create)

	// Every tree-scoped route declares its own access requirement; the
	// gate resolves the caller's role and grants per request.
	tree := trees.Group("/:treeId", middleware.TreeContext())

	view := func(f model.Feature) fiber.Handler {
		return middleware.Authorize(gate, access.Capability(f, model.MethodView))
	}
	mutate := func(f model.Feature, m model.Method) fiber.Handler {
		return middleware.Authorize(gate, access.Capability(f, m))
	}
	ownerOnly := middleware.Authorize(gate, access.OwnerOnly())

	tree.Get("/", view(model.FeatureMember), treeHandler.Get)
	tree.Put("/", ownerOnly, treeHandler.Rename)
	tree.Delete("/", ownerOnly, treeHandler.Delete)
	tree.Get("/render", view(model.FeatureMember), treeHandler.Render)

	tree.Get("/members", view(model.FeatureMember), memberHandler.List)
	tree.Post("/members", mutate(model.FeatureMember, model.MethodAdd), memberHandler.Add)
	tree.Get("/members/:memberId", view(model.FeatureMember), memberHandler.Get)
	tree.Put("/members/:memberId", mutate(model.FeatureMember, model.MethodUpdate), memberHandler.Update)
	tree.Delete("/members/:memberId", mutate(model.FeatureMember, model.MethodDelete), memberHandler.Remove)

	tree.Post("/edges", mutate(model.FeatureMember, model.MethodAdd), memberHandler.AddEdge)
	tree.Delete("/edges/:edgeId", mutate(model.FeatureMember, model.MethodDelete), memberHandler.RemoveEdge)

	tree.Get("/grants", ownerOnly, grantHandler.List)
	tree.Post("/grants", ownerOnly, grantHandler.Set)
	tree.Delete("/grants/:grantId", ownerOnly, grantHandler.Revoke)

	tree.Get("/invitations", ownerOnly, invitationHandler.List)
	tree.Post("/invitations", ownerOnly, invitationHandler.Invite)

	tree.Get("/events", view(model.FeatureEvent), eventHandler.List)
	tree.Post("/events", mutate(model.FeatureEvent, model.MethodAdd), eventHandler.Create)
	tree.Put("/events/:eventId", mutate(model.FeatureEvent, model.MethodUpdate), eventHandler.Update)
	tree.Delete("/events/:eventId", mutate(model.FeatureEvent, model.MethodDelete), eventHandler.Delete)

	tree.Get("/funds", view(model.FeatureFund), fundHandler.List)
	tree.Post("/funds", mutate(model.FeatureFund, model.MethodAdd), fundHandler.Create)
	tree.Put("/funds/:fundId", mutate(model.FeatureFund, model.MethodUpdate), fundHandler.Update)
	tree.Delete("/funds/:fundId", mutate(model.FeatureFund, model.MethodDelete), fundHandler.Delete)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("server shutdown", "error", err)
	}
}
