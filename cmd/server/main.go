package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	_ "tienda/docs" // swagger docs

	"tienda/internal/auth"
	"tienda/internal/cache"
	"tienda/internal/config"
	"tienda/internal/db"
	"tienda/internal/handler"
	"tienda/internal/model"
	"tienda/internal/repository"
	"tienda/internal/router"
	"tienda/internal/service"
	"tienda/internal/storage"
)

// @title Tienda Storefront API
// @version 1.0
// @description Storefront API with product, category and user management, JWT login and image uploads.
// @host localhost:4002
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logrus.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
	); err != nil {
		logrus.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		// The cache fails safe, so a missing redis only costs performance.
		logrus.Warnf("redis unreachable, serving without cache: %v", err)
	}

	store, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		logrus.Fatalf("upload store init: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	if cfg.JWTSecret == "change-me" {
		logrus.Warn("JWT_SECRET is the demo default; set a real secret outside local development")
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheClient)
	productService := service.NewProductService(productRepo, cacheClient)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, cacheClient)
	statsService := service.NewStatsService(userRepo, productRepo, categoryRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, jwtService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	statsHandler := handler.NewStatsHandler(statsService)
	uploadHandler := handler.NewUploadHandler(store)

	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		productHandler,
		categoryHandler,
		statsHandler,
		uploadHandler,
	)

	logrus.Infof("serving uploads from %s", store.Dir())

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("server start: %v", err)
	}
}
