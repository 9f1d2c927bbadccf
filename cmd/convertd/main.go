package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pixelbatch/convert-pipeline/internal/converter"
	"github.com/pixelbatch/convert-pipeline/internal/delegate"
	"github.com/pixelbatch/convert-pipeline/internal/handlers"
	"github.com/pixelbatch/convert-pipeline/internal/history"
)

// convertd serves the image conversion pipeline over HTTP: local
// single-image conversion plus a proxy to the remote batch converter.
func main() {
	_ = godotenv.Load()

	httpAddr := getEnv("CONVERTD_HTTP_ADDR", ":8080")
	backendURL := os.Getenv("CONVERT_BACKEND_URL")
	backendToken := os.Getenv("CONVERT_BACKEND_TOKEN")
	databaseURL := os.Getenv("DATABASE_URL")

	log.Printf("convertd")
	log.Printf("  HTTP address: %s", httpAddr)
	log.Printf("  Local formats: %v", converter.EncodableFormats())

	var batch *delegate.Client
	if backendURL != "" {
		batch = delegate.New(backendURL, backendToken)
		log.Printf("  Batch backend: %s", backendURL)
	} else {
		log.Printf("  Batch backend: disabled (CONVERT_BACKEND_URL not set)")
	}

	var tracker *history.Tracker
	if databaseURL != "" {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		tracker, err = history.NewTracker(db)
		if err != nil {
			log.Fatalf("Failed to initialize history tracker: %v", err)
		}
		log.Printf("  History ledger: enabled")
	} else {
		log.Printf("  History ledger: disabled (DATABASE_URL not set)")
	}

	handler := handlers.New(batch, tracker)

	server := &http.Server{
		Addr:    httpAddr,
		Handler: handler.Routes(),
	}

	go func() {
		log.Printf("convertd ready on %s", httpAddr)
		log.Printf("")
		log.Printf("Available endpoints:")
		log.Printf("  GET  /health            - Health check")
		log.Printf("  GET  /metrics           - Prometheus metrics")
		log.Printf("  POST /v1/convert        - Convert one image locally")
		log.Printf("  POST /v1/convert-batch  - Convert a batch via the remote backend")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
