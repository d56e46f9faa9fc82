// Package main is the entry point for the pdf2json HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf2json/internal/config"
	"github.com/Shimizu-Technology/pdf2json/internal/handlers"
	"github.com/Shimizu-Technology/pdf2json/internal/logging"
	"github.com/Shimizu-Technology/pdf2json/internal/router"
	"github.com/Shimizu-Technology/pdf2json/internal/services/converter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
	"github.com/Shimizu-Technology/pdf2json/internal/version"
)

func main() {
	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Info().
		Str("version", version.Version).
		Str("port", cfg.Port).
		Str("gin_mode", cfg.GinMode).
		Int64("max_pdf_size", cfg.MaxPDFSize).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("🚀 pdf2json starting")

	gin.SetMode(cfg.GinMode)

	// Step 2: Freeze parser settings before anything can read them
	if err := pdf.Init(pdf.Settings{MaxPDFSize: cfg.MaxPDFSize}); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize PDF parser")
	}

	// Step 3: Create Services
	normalizer := source.NewPublicNormalizer(cfg.FetchTimeout)
	if cfg.FetchAllowPrivate {
		log.Warn().Msg("⚠️  FETCH_ALLOW_PRIVATE set, URL sources may reach internal addresses")
		normalizer = source.NewNormalizer(cfg.FetchTimeout)
	}
	conv := converter.New(normalizer, pdf.NewExtractor(), log)

	if cfg.JWTSecret != "" {
		log.Info().Msg("✅ JWT auth enabled on /api/v1/convert")
	} else {
		log.Warn().Msg("⚠️  JWT_SECRET not set, /api/v1/convert is open")
	}

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(conv, log, cfg.MaxPDFSize, cfg.JWTSecret != "", cfg.WidgetSecret)
	r, stopLimiter := router.Setup(cfg, h)
	defer stopLimiter()

	// Step 5: Start the HTTP Server
	// WriteTimeout is generous: a slow remote PDF is fetched inside the request.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Info().Msgf("📖 Widget: http://localhost:%s/widget?url=<pdf-url>", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server failed")
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("🛑 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Server forced to shutdown")
	}

	log.Info().Msg("👋 Server stopped. Goodbye!")
}
