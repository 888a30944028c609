package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatassist/internal/api"
	"chatassist/internal/auth"
	"chatassist/internal/config"
	"chatassist/internal/core"
	"chatassist/internal/llm"
	"chatassist/internal/logger"
	"chatassist/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogFile, cfg.LogLevel)
	defer zlog.Sync()

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer dbStore.Close()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize completion client", zap.Error(err))
	}
	defer llmClient.Close()

	chatService := core.NewChatService(dbStore, llmClient, zlog, core.Options{
		HistoryLimit:     cfg.ChatHistoryLimit,
		SwallowLLMErrors: cfg.SwallowLLMErrors,
	})

	authenticator := auth.NewAuthenticator(cfg.JWTSecret)
	apiHandler := api.NewAPIHandler(chatService, authenticator, zlog)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("starting server",
			zap.String("addr", serverAddr),
			zap.String("llm_provider", cfg.LLMProvider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited gracefully")
}
