package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diarynotes/diary-go/internal/config"
	"github.com/diarynotes/diary-go/internal/crypto"
	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/repository"
	"github.com/diarynotes/diary-go/internal/server"
	"github.com/diarynotes/diary-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.LoadServer()

	users, notes, closeDB := openStores(cfg)
	defer closeDB()

	backend := server.New(users, notes, server.Config{
		JWTSecret:  cfg.JWTSecret,
		JWTExpiry:  cfg.JWTExpiry,
		LoginRPS:   5,
		LoginBurst: 10,
	})

	if err := seed(context.Background(), backend.Auth, cfg); err != nil {
		slog.Error("seeding account failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           backend.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStores uses MySQL when DATABASE_DSN is set and process memory otherwise.
func openStores(cfg config.Server) (service.UserStore, service.NoteStore, func()) {
	if cfg.DatabaseDSN == "" {
		slog.Info("DATABASE_DSN not set, using in-memory stores")
		return repository.NewMemoryUserStore(), repository.NewMemoryNoteStore(), func() {}
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		slog.Error("database schema setup failed", "error", err)
		os.Exit(1)
	}

	return repository.NewUserRepository(db), repository.NewNoteRepository(db), func() { db.Close() }
}

// seed creates the development account, generating a signup code and PIN when none are configured.
func seed(ctx context.Context, auth *service.AuthService, cfg config.Server) error {
	code, pin := cfg.SeedCode, cfg.SeedPIN

	var err error
	if code == "" {
		if code, err = crypto.GenerateSignupCode(); err != nil {
			return err
		}
	}
	if pin == "" {
		if pin, err = crypto.GeneratePIN(); err != nil {
			return err
		}
	}

	user, err := auth.Register(ctx, model.User{
		Email:     cfg.SeedEmail,
		FirstName: "Demo",
		LastName:  "Patient",
		RoleName:  "patient",
	}, code, pin)
	if errors.Is(err, service.ErrEmailTaken) {
		slog.Info("seed account already exists", "email", cfg.SeedEmail)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("seed account created", "profile_id", user.ID, "email", user.Email)
	if cfg.SeedCode == "" || cfg.SeedPIN == "" {
		// Credentials go to stdout only, never into the structured log.
		fmt.Printf("seed login: email=%s code=%s pin=%s\n", user.Email, code, pin)
	}
	return nil
}
