package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"inkwell/internal/api"
	"inkwell/internal/app/service"
	"inkwell/internal/common/security"
	"inkwell/internal/domain/repository"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/database"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	tokens := security.NewTokenManager(cfg.JWTKey)

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()
	logger.Info().Msg("database connected")

	userRepo := repository.NewPgUserRepository(db)
	postRepo := repository.NewPgPostRepository(db)
	commentRepo := repository.NewPgCommentRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	postService := service.NewPostService(postRepo, commentRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)

	router := api.NewRouter(logger, tokens, userRepo, authService, postService, commentService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info().Str("port", cfg.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-stop

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped gracefully")
}
