package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/config"
	"github.com/groundworkcms/internal/db"
	"github.com/groundworkcms/internal/handler"
	"github.com/groundworkcms/internal/mirror"
	"github.com/groundworkcms/internal/router"
	"github.com/groundworkcms/internal/storage"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure root user: %v", err)
	}

	var pendingMirror mirror.Store
	if cfg.RedisAddr != "" {
		redisStore := mirror.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisStore.Ping(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		pendingMirror = redisStore
	} else {
		log.Println("REDIS_ADDR not set, pending gallery state will not survive restarts")
		pendingMirror = mirror.NewMemoryStore()
	}

	objects := storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket, db.DB)
	storage.NewSweeper(objects, db.DB, 24*time.Hour).Start(time.Hour)

	api := handler.NewAPI(db.DB, objects, pendingMirror)
	r := router.Setup(api, cfg.SessionSecret)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
