package bootstrap

import (
	"strings"
	"time"

	"account_server/adapter/in/http"
	"account_server/adapter/in/worker"
	"account_server/config"
	"account_server/infra/middleware"
	"account_server/pkg/logger"
	"account_server/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the fiber application with all routes wired.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "account-api",
		Pretty:  cfg.IsDevelopment(),
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is a drop-in, faster replacement for encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 1 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// AllowCredentials:true requires explicit origins, never "*"
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	healthHandler := http.NewHealthHandler(deps.DB, deps.Redis)
	healthHandler.Register(app)

	// Registration, login and refresh are public; logout and the rest of
	// the user surface require a valid access token.
	v1 := app.Group("/v1")
	requireAuth := middleware.RequireAuth([]byte(cfg.JWTSecret))
	loginLimiter := ratelimit.NewSlidingWindowLimiter(deps.Redis, 10, time.Minute)

	authHandler := http.NewAuthHandler(deps.AuthService)
	authHandler.Register(v1, requireAuth, middleware.RateLimitByIP(loginLimiter, "login"))

	userHandler := http.NewUserHandler(deps.UserService)
	userHandler.Register(v1, requireAuth, middleware.ValidateUUID("id"))

	janitor := worker.NewTokenJanitor(deps.TokenRepo)
	janitor.Start()

	shutdown := func() {
		janitor.Stop()
		cleanup()
	}

	logger.Info("API server initialized successfully")

	return app, shutdown, nil
}
