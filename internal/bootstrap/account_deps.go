package bootstrap

import (
	"context"
	"fmt"

	"account_server/adapter/out/lookup"
	"account_server/adapter/out/persistence"
	"account_server/config"
	"account_server/core/port/in"
	"account_server/core/port/out"
	"account_server/core/service/auth"
	"account_server/core/service/user"
	"account_server/infra/database"
	"account_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds every wired component of the application.
type Dependencies struct {
	DB    *pgxpool.Pool
	SQLX  *sqlx.DB
	Redis *redis.Client

	UserRepo    out.UserRepository
	AddressRepo out.AddressRepository
	TokenRepo   out.RefreshTokenRepository

	ZipcodeProvider out.ZipcodeProvider

	UserService in.UserService
	AuthService in.AuthService
}

// NewDependencies wires the full dependency graph and returns a cleanup
// function closing all connections.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	pool, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	db, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect sqlx: %w", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis is optional; without it the zipcode cache is disabled.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, zipcode cache disabled")
			redisClient = nil
		}
	}

	userRepo := persistence.NewUserAdapter(db)
	addressRepo := persistence.NewAddressAdapter(db)
	tokenRepo := persistence.NewRefreshTokenAdapter(db)

	zipcodeProvider := lookup.NewViaCEPAdapter(&lookup.Config{
		BaseURL:  cfg.ZipcodeBaseURL,
		CacheTTL: cfg.ZipcodeCacheTTL,
	}, redisClient)

	hasher := auth.NewBcryptHasher(0)

	userService := user.NewService(userRepo, addressRepo, zipcodeProvider, hasher)
	authService := auth.NewService(userRepo, tokenRepo, hasher,
		cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	deps := &Dependencies{
		DB:              pool,
		SQLX:            db,
		Redis:           redisClient,
		UserRepo:        userRepo,
		AddressRepo:     addressRepo,
		TokenRepo:       tokenRepo,
		ZipcodeProvider: zipcodeProvider,
		UserService:     userService,
		AuthService:     authService,
	}

	cleanup := func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
		}
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("failed to close database")
		}
		pool.Close()
	}

	return deps, cleanup, nil
}
