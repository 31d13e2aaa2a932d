package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"campora/api/internal/app"
	"campora/api/internal/authpw"
	"campora/api/internal/config"
	"campora/api/internal/email"
	"campora/api/internal/history"
	"campora/api/internal/media"
	"campora/api/internal/search"
	"campora/api/internal/session"
	"campora/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		log.Fatalf("failed to create history dir: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	historyService := history.New(cfg.HistoryDir)
	passwordService := authpw.NewService(dataStore)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)

	collaborators := app.Collaborators{
		Auth:    passwordService,
		Search:  searchService,
		History: historyService,
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		collaborators.Sessions = redisStore
		log.Printf("Using Redis for refresh token caching")
	} else {
		log.Printf("Redis not configured, refresh sessions use PostgreSQL only")
	}

	mailService := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	collaborators.Email = mailService
	if !mailService.IsConfigured() {
		log.Printf("SMTP not configured, verification tokens returned in dev responses")
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if strings.TrimSpace(cfg.StorageEndpoint) != "" {
		mediaService, err := media.NewService(media.Config{
			Endpoint:      cfg.StorageEndpoint,
			AccessKey:     cfg.StorageAccessKey,
			SecretKey:     cfg.StorageSecretKey,
			Bucket:        cfg.StorageBucket,
			UseSSL:        cfg.StorageUseSSL,
			PublicBaseURL: cfg.StoragePublicURL,
		})
		if err != nil {
			log.Fatalf("media storage init failed: %v", err)
		}
		if err := mediaService.EnsureBucket(ctx); err != nil {
			log.Printf("WARNING: media bucket check failed: %v", err)
		}
		pendingStore, err := media.NewPendingStore(cfg.StagingDir, mediaService, time.Hour)
		if err != nil {
			log.Fatalf("staging dir init failed: %v", err)
		}
		go pendingStore.RunSweeper(sweepCtx, 10*time.Minute)
		collaborators.Uploads = pendingStore
	} else {
		log.Printf("Object storage not configured, media uploads disabled")
	}

	service := app.New(cfg, dataStore, collaborators)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Campora API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
