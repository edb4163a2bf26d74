// Package main Web 服务入口
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-board/internal/config"
	"job-board/internal/session"
	"job-board/internal/storage/mongostore"
	"job-board/internal/webserver/auth"
	"job-board/internal/webserver/flash"
	"job-board/internal/webserver/server"
	"job-board/pkg/logging"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML 配置）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Default("api-server")
	logger.Info("Starting server", "env", string(cfg.Env), "config", cfg.String())

	// 初始化 MongoDB（用户与职位数据）
	store, err := mongostore.NewStore(cfg.MongoURL, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 Redis（会话存储）
	redisClient, err := session.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	sessions := session.NewManager(redisClient, cfg.SessionTTL)
	flashCodec := flash.NewCodec(cfg.FlashCookie, cfg.FlashSecret)
	authCfg := auth.Config{
		SessionCookie: cfg.SessionCookie,
		SessionTTL:    cfg.SessionTTL,
		BcryptCost:    cfg.BcryptCost,
	}

	h := server.NewHandler(store, store, sessions, flashCodec, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
