// main package for the landing-judge overlay service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/book-expert/logger"

	"github.com/craigybabyj/landing-judge/internal/audiocache"
	"github.com/craigybabyj/landing-judge/internal/config"
	"github.com/craigybabyj/landing-judge/internal/hub"
	"github.com/craigybabyj/landing-judge/internal/quotes"
	"github.com/craigybabyj/landing-judge/internal/server"
	"github.com/craigybabyj/landing-judge/internal/store"
	"github.com/craigybabyj/landing-judge/internal/tts"
	"github.com/craigybabyj/landing-judge/internal/vote"
)

const (
	broadcastSubject = "overlay.events"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "landing-judge.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// buildSynthesizer initializes Polly when TTS is enabled. Provider
// initialization failure is not fatal; the service runs without audio.
func buildSynthesizer(ctx context.Context, cfg *config.Config, log *logger.Logger) *tts.PollySynthesizer {
	if !cfg.Polly.Enabled {
		log.Info("TTS disabled by configuration; votes will carry no audio.")

		return nil
	}

	synthesizer, err := tts.NewPollySynthesizer(ctx, cfg.Polly.Region, log)
	if err != nil {
		log.Warn("Failed to initialize speech provider, running without audio: %v", err)

		return nil
	}

	return synthesizer
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return runService(cfg, finalLog)
}

func runService(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Embedded broker for the in-process broadcast fabric.
	natsServer, conn, err := hub.StartEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start embedded broker: %w", err)
	}

	defer natsServer.Shutdown()
	defer conn.Close()

	eventHub := hub.New(conn, broadcastSubject, log)

	landingStore, err := store.New(cfg.Storage.DataFile, log)
	if err != nil {
		return fmt.Errorf("failed to open landing store: %w", err)
	}

	quoteCatalog := quotes.NewCatalog(cfg.Storage.QuotesFile, log)

	synthesizer := buildSynthesizer(ctx, cfg, log)

	var audioResolver vote.AudioResolver

	if synthesizer != nil {
		artifacts, storeErr := audiocache.NewDiskStore(cfg.Storage.AudioDir)
		if storeErr != nil {
			return fmt.Errorf("failed to prepare audio directory: %w", storeErr)
		}

		indexPath := filepath.Join(cfg.Storage.AudioDir, "audio_index.json")
		audioResolver = audiocache.New(
			indexPath,
			artifacts,
			synthesizer,
			synthesizer.SanitizeVoiceID(ctx, cfg.Polly.VoiceID),
			cfg.Polly.OutputFormat,
			cfg.Polly.Region,
			log,
		)
	}

	voteHandler := vote.NewHandler(
		landingStore,
		audioResolver,
		eventHub,
		quoteCatalog,
		synthesizer != nil,
		cfg.Server.BannerDurationMS,
		log,
	)

	handlers := server.NewHandlers(voteHandler, landingStore, eventHub, cfg.Storage.AudioDir, log)

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           server.NewRouter(handlers),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.System("Landing judge listening on port %d", cfg.Server.Port)

		listenErr := httpServer.ListenAndServe()
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}

		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.System("Shutdown signal received, draining connections.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
