package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/shortlink/internal/app/server"
	grpcserver "github.com/atinyakov/shortlink/internal/app/server/grpc"
	"github.com/atinyakov/shortlink/internal/app/service"
	"github.com/atinyakov/shortlink/internal/config"
	"github.com/atinyakov/shortlink/internal/logger"
	"github.com/atinyakov/shortlink/internal/repository"
	"github.com/atinyakov/shortlink/internal/storage"
)

var buildVersion string
var buildDate string
var buildCommit string

const (
	pprofAddr       = "localhost:6060"
	shutdownTimeout = 10 * time.Second
	healthInterval  = 15 * time.Second
)

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func main() {
	fmt.Printf("Build version: %s\n", valueOrNA(buildVersion))
	fmt.Printf("Build date: %s\n", valueOrNA(buildDate))
	fmt.Printf("Build commit: %s\n", valueOrNA(buildCommit))

	options, err := config.Parse()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		panic(err)
	}
	defer log.Sync()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	linkService, store, closeStore, err := newLinkService(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Error("failed to start", zap.Error(err))
		return
	}
	defer func() {
		if err := closeStore(); err != nil {
			zapLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	r := server.Init(zapLogger, options.TrustProxy, linkService)

	if err := run(ctx, options, zapLogger, r, store); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
		return
	}
	zapLogger.Info("server stopped")
}

// newLinkService builds the code generator first so a bad setting never
// leaves an opened store behind, then opens the store and wires the service.
func newLinkService(ctx context.Context, options *config.Options, zapLogger *zap.Logger) (*service.LinkService, service.Store, func() error, error) {
	codes, err := service.NewCodeGenerator(options.CodeLength)
	if err != nil {
		return nil, nil, nil, err
	}

	store, closeStore, err := openStore(ctx, options, zapLogger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	return service.NewLinkService(store, codes, options.MaxAttempts, zapLogger), store, closeStore, nil
}

// openStore picks the link store: Postgres, then SQLite, then memory.
// The returned func releases it.
func openStore(ctx context.Context, options *config.Options, zapLogger *zap.Logger) (service.Store, func() error, error) {
	switch {
	case options.DatabaseDSN != "":
		zapLogger.Info("using postgres")
		db, err := repository.InitDB(ctx, options.DatabaseDSN, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return repository.CreateLinkRepository(db, zapLogger), db.Close, nil

	case options.SQLitePath != "":
		zapLogger.Info("using sqlite", zap.String("path", options.SQLitePath))
		repo, err := repository.OpenSQLite(options.SQLitePath, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case options.FilePath != "":
		zapLogger.Info("using file", zap.String("filePath", options.FilePath))
		s, err := storage.NewFileStorage(options.FilePath, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		zapLogger.Warn("using in memory storage, links are lost on restart")
		s, err := storage.CreateMemoryStorage()
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

// run serves HTTP, and optionally gRPC health and pprof, until ctx is cancelled.
func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger, handler http.Handler, store service.Store) error {
	g, gCtx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              options.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var shutdowns []func(context.Context) error
	shutdowns = append(shutdowns, srv.Shutdown)

	if options.EnableHTTPS {
		manager := &autocert.Manager{
			// директория для хранения сертификатов
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(options.Hosts()...),
		}
		srv.Addr = ":443"
		srv.TLSConfig = manager.TLSConfig()

		g.Go(func() error {
			zapLogger.Info("Server is running with TLS", zap.Strings("hosts", options.Hosts()))
			if err := srv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	} else {
		g.Go(func() error {
			zapLogger.Info("Server is running", zap.String("address", options.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if options.GRPCPort > 0 {
		grpcSrv := grpcserver.New(zapLogger, store, options.GRPCPort)
		g.Go(grpcSrv.Start)
		g.Go(func() error {
			grpcSrv.Watch(gCtx, healthInterval)
			return nil
		})
		shutdowns = append(shutdowns, func(context.Context) error {
			grpcSrv.GracefulStop()
			return nil
		})
	}

	if options.EnablePprof {
		pprofSrv := &http.Server{
			Addr:              pprofAddr,
			Handler:           server.PprofRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			zapLogger.Info("Starting pprof server", zap.String("addr", pprofAddr))
			if err := pprofSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		shutdowns = append(shutdowns, pprofSrv.Shutdown)
	}

	g.Go(func() error {
		<-gCtx.Done()
		zapLogger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, shutdown := range shutdowns {
			errs = append(errs, shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
