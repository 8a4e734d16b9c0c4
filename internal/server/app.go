// Package server wires configuration, storage, the catalog and the thumbnail
// pipeline into runnable processes: the gRPC server and the thumbnail worker.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/blobstore"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/pipeline"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/dmitrijs2005/filesmanager/internal/server/thumbnails"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/filesmanager/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
}

// seams for tests
var (
	openDB         = repomanager.OpenDB
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

// NewApp opens the database, applies migrations and builds the blob backend.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, repomanager: rm, blobs: blobs}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendLocal:
		return blobstore.NewLocalStore(c.FolderPath)
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		})
	}
	return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
}

// authStores returns the token resolver used by the gRPC server and the
// issuer behind it.
func (app *App) authStores() (auth.Store, auth.Issuer) {
	var (
		store  auth.Store
		issuer auth.Issuer
	)

	switch app.config.AuthMode {
	case config.AuthModeJWT:
		s := auth.NewJWTStore([]byte(app.config.SecretKey), app.config.SessionValidityDuration)
		store, issuer = s, s
	default:
		s := auth.NewSessionStore(app.repomanager.Sessions(app.db), app.config.SessionValidityDuration)
		store, issuer = s, s
	}

	if app.config.AuthCacheSize > 0 {
		store = auth.NewCachedStore(store, app.config.AuthCacheSize, app.config.AuthCacheTTL, app.logger)
	}
	return store, issuer
}

// RunServer serves FilesService until ctx is cancelled.
func (app *App) RunServer(ctx context.Context) error {
	app.logger.Info(ctx, "Starting server...", "blob_backend", app.config.BlobBackend, "auth_mode", app.config.AuthMode)

	queue := app.repomanager.Jobs(app.db)
	catalog := services.NewCatalog(app.db, app.repomanager, app.config.PageSize)
	uploader := services.NewUploader(catalog, app.blobs, queue, app.logger)
	store, issuer := app.authStores()
	users := services.NewUserService(app.db, app.repomanager, issuer)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, catalog, uploader, queue, users, store)
	return s.Run(ctx)
}

// RunWorker processes thumbnail jobs and exposes worker metrics until ctx is
// cancelled.
func (app *App) RunWorker(ctx context.Context) error {
	app.logger.Info(ctx, "Starting thumbnail worker...", "workers", app.config.WorkerCount)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.MustNewMetrics(reg)

	catalog := services.NewCatalog(app.db, app.repomanager, app.config.PageSize)
	processor := pipeline.NewProcessor(catalog, app.blobs, thumbnails.NewImagingResizer(), app.logger)
	worker := pipeline.NewWorker(app.repomanager.Jobs(app.db), processor, pipeline.WorkerConfig{
		Concurrency:  app.config.WorkerCount,
		MaxAttempts:  app.config.QueueMaxAttempts,
		Visibility:   app.config.VisibilityTimeout,
		PollInterval: app.config.PollInterval,
		JobTimeout:   app.config.JobTimeout,
	}, metrics, app.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, app.config.MetricsAddr, reg, app.logger)
		})
	}
	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Starting metrics endpoint", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}
