package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/rag"
	"docuchat/internal/repository"
	transporthttp "docuchat/internal/transport/http"
	"docuchat/internal/transport/http/handler"
)

func main() {
	ctx := context.Background()

	application, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	cfg := application.Config

	userRepo := repository.NewUserRepository(application.MySQL)
	docRepo := repository.NewDocumentRepository(application.MySQL)
	entryRepo := repository.NewChatEntryRepository(application.MySQL)

	historyCache := cache.NewHistoryCache(
		application.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	authService := app.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	fileService := app.NewFileService(
		docRepo,
		application.Sessions,
		cfg.Storage.UploadDir,
		cfg.Storage.MaxFiles,
		cfg.MaxFileBytes(),
	)
	chatService := app.NewChatService(
		entryRepo,
		docRepo,
		application.Sessions,
		rag.NewSynthesizer(application.Chat),
		historyCache,
	)

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		GinMode:       cfg.App.GinMode,
		JWTSecret:     cfg.Auth.JWTSecret,
		AuthHandler:   handler.NewAuthHandler(authService),
		FileHandler:   handler.NewFileHandler(fileService),
		ChatHandler:   handler.NewChatHandler(chatService, authService),
		HealthHandler: handler.NewHealthHandler(application.MySQL, application.Redis, cfg.App.Name, application.StartedAt),
	})

	server := transporthttp.NewServer(cfg.HTTPAddr(), router)

	go func() {
		log.Printf("%s listening on %s", cfg.App.Name, cfg.HTTPAddr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
