// Package bootstrap wires the process together: configuration, logging,
// storage, the frozen classifier, and the HTTP server. Model and transform
// constants are loaded once here into shared read-only state; a mismatch
// against the training contract aborts startup rather than serving wrong
// answers.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hypernasality-server-go/internal/domain/audio"
	"hypernasality-server-go/internal/domain/classify"
	"hypernasality-server-go/internal/domain/features"
	"hypernasality-server-go/internal/domain/predict"
	platformconfig "hypernasality-server-go/internal/platform/config"
	platformerrors "hypernasality-server-go/internal/platform/errors"
	"hypernasality-server-go/internal/platform/logging"
	"hypernasality-server-go/internal/platform/storage"
	httptransport "hypernasality-server-go/internal/transport/http"
	"hypernasality-server-go/internal/transport/http/predictapi"
)

const shutdownTimeout = 5 * time.Second

// Run starts the whole service lifecycle and blocks until shutdown.
func Run(ctx context.Context, configPath string) error {
	result, err := platformconfig.NewLoader(configPath).Load()
	if err != nil {
		return err
	}
	cfg := result.Config

	if err := platformconfig.SelfCheck(cfg); err != nil {
		// refusing to serve beats silently degraded accuracy
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap,
			"bootstrap", "initialise logging", err)
	}
	defer logger.Close()

	logger.Info("starting hypernasality server", "config", result.Path)

	db, err := storage.OpenDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	recordings := storage.NewRecordingRepository(db)

	artifacts, err := storage.NewArtifactStore(cfg.Storage.AudioDir)
	if err != nil {
		return err
	}

	extractor, err := features.NewExtractor(features.Params{
		SampleRate:      cfg.Spectrogram.SampleRate,
		NFFT:            cfg.Spectrogram.NFFT,
		HopLength:       cfg.Spectrogram.HopLength,
		NMels:           cfg.Spectrogram.NMels,
		FMin:            cfg.Spectrogram.FMin,
		FMax:            cfg.Spectrogram.FMax,
		DurationSeconds: cfg.Spectrogram.DurationSeconds,
		MinDB:           cfg.Spectrogram.MinDB,
		MaxDB:           cfg.Spectrogram.MaxDB,
	})
	if err != nil {
		return err
	}

	spec := classify.InputSpec{
		Size: cfg.Model.InputSize,
		Mean: cfg.Model.Mean,
		Std:  cfg.Model.Std,
	}
	backend, err := classify.NewONNXBackend(cfg.Model.Path, spec)
	if err != nil {
		// fatal: the process must not serve with unloaded weights
		return err
	}
	classifier := classify.NewClassifier(backend, spec)
	defer classifier.Close()

	logger.Info("model loaded",
		"path", cfg.Model.Path,
		"input_size", cfg.Model.InputSize,
		"mel_bands", cfg.Spectrogram.NMels,
		"frames", extractor.Params().FrameCount())

	pipeline := predict.NewService(
		audio.NewDecoder(), extractor, classifier, spec,
		artifacts, recordings, logger)

	router, err := httptransport.Build(httptransport.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap,
			"bootstrap", "build http router", err)
	}

	api := predictapi.NewService(pipeline, recordings, logger)
	if err := api.Start(ctx, router.Engine, router.API); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap,
			"bootstrap", "register routes", err)
	}

	return serve(ctx, cfg, router.Engine, logger)
}

func serve(ctx context.Context, cfg *platformconfig.Config, handler http.Handler, logger *logging.Logger) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.IP, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	group, groupCtx := errgroup.WithContext(signalCtx)

	group.Go(func() error {
		logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport,
			"serve", "http server terminated", err)
	}
	logger.Info("server stopped")
	return nil
}
