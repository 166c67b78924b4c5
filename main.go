// Command tasklist runs the todo REST API: signup/login/logout backed by
// signed session tokens, and per-user todo CRUD where every todo is only
// visible to its creator.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/tasklist-go/auth"
	"github.com/user/tasklist-go/config"
	"github.com/user/tasklist-go/db"
	"github.com/user/tasklist-go/todos"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	issuer := auth.NewTokenIssuer(cfg.Auth)
	authService := auth.NewService(pool, issuer)
	authHandlers := auth.NewHandlers(authService)

	todoService := todos.NewService(pool)
	todoHandlers := todos.NewHandlers(todoService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", auth.TokenHeader},
		ExposedHeaders: []string{auth.TokenHeader},
		MaxAge:         300,
	}))

	// Signup and login are open; everything else on /users rides the
	// authentication middleware.
	r.Route("/users", func(r chi.Router) {
		r.Post("/", authHandlers.HandleSignup())
		r.Post("/login", authHandlers.HandleLogin())

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(authService))
			r.Get("/me", authHandlers.HandleMe())
			r.Delete("/me/token", authHandlers.HandleLogout())
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(auth.Authenticate(authService))
		todoHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Println("server stopped gracefully")
}
