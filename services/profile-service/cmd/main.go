package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"seungpyo.lee/StudentPortal/pkg/jwt"
	"seungpyo.lee/StudentPortal/pkg/logger"
	"seungpyo.lee/StudentPortal/pkg/metrics"
	"seungpyo.lee/StudentPortal/pkg/middleware"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/config"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/handler"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/repository"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/service"
)

func main() {
	conf, err := config.LoadProfileConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	appLog := logger.New(conf.LogLevel, conf.LogFormat)
	reg := metrics.NewRegistry("profile-service")

	store := newImageStore(conf, appLog)

	var meta domain.MetadataRepository
	if conf.PostgresDSN != "" {
		db, err := gorm.Open(postgres.Open(conf.PostgresDSN), &gorm.Config{})
		if err != nil {
			appLog.Fatal("failed to connect to database", "error", err.Error())
		}
		if err := db.AutoMigrate(&domain.ProfileImage{}); err != nil {
			appLog.Fatal("failed to migrate database", "error", err.Error())
		}
		meta = repository.NewMetadataRepository(db)
	}

	var authMw gin.HandlerFunc
	if conf.UploadsEnabled() {
		tokenManager := jwt.NewTokenManagerWithoutRedis(conf.JWTSecretKey)
		if conf.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     conf.RedisAddr,
				Password: conf.RedisPassword,
				DB:       0, // use default DB
			})
			tokenManager = jwt.NewTokenManager(conf.JWTSecretKey, redisClient)
		}
		authMw = middleware.AuthMiddleware(tokenManager)
	} else {
		appLog.Warn("JWT_SECRET_KEY not set, profile uploads are disabled")
	}

	profileService := service.NewProfileService(store, meta, appLog, reg, service.Options{
		DefaultImage:      conf.DefaultImage,
		MaxUploadBytes:    conf.MaxUploadBytes,
		DetectContentType: conf.DetectContentType,
	})
	profileHandler := handler.NewProfileHandler(profileService, appLog, conf.MaxUploadBytes)

	if conf.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(appLog, reg))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", reg.GinHandlerText)
	profileHandler.RegisterRoutes(r, authMw)

	appLog.Info("profile service running", "port", conf.ServerPort, "backend", store.Backend())
	if err := r.Run(":" + conf.ServerPort); err != nil {
		appLog.Fatal("failed to run server", "error", err.Error())
	}
}

func newImageStore(conf *config.ProfileConfig, appLog *logger.Logger) domain.ImageStore {
	switch conf.StorageBackend {
	case config.BackendAzBlob:
		store, err := repository.NewBlobStoreFromConnectionString(conf.AzureStorageConnectionString, conf.BlobContainerName)
		if err != nil {
			appLog.Fatal("failed to create blob store", "error", err.Error())
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		created, err := store.EnsureContainer(ctx)
		if err != nil {
			appLog.Fatal("failed to create blob container", "error", err.Error())
		}
		if !created {
			appLog.Info("Container already exists, skipping creation.", "container", conf.BlobContainerName)
		}
		return store
	default:
		store, err := repository.NewFileStore(conf.ImageBaseDir)
		if err != nil {
			appLog.Fatal("failed to prepare image directory", "error", err.Error())
		}
		return store
	}
}
