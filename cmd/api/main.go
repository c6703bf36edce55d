package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-push-relay/internal/config"
	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-push-relay/internal/infrastructure/jwt"
	webpushinfra "github.com/go-push-relay/internal/infrastructure/webpush"
	transporthttp "github.com/go-push-relay/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// Web Push sender. Without the VAPID key pair no delivery can ever
	// succeed, so this is a fatal configuration error.
	sender, err := webpushinfra.NewSender(cfg)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			log.Fatalf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set: %v", err)
		}
		log.Fatalf("web push sender: %v", err)
	}

	deps := &transporthttp.Deps{
		SubscriptionRepo: dynamo.NewSubscriptionRepo(dynamoClient, cfg.DynamoTables.Subscriptions),
		BroadcastRepo:    dynamo.NewBroadcastRepo(dynamoClient, cfg.DynamoTables.Broadcasts),
		Sender:           sender,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
