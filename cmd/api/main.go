// @title        Custody Registry API
// @version      1.0
// @description  Access-controlled registry of custody movements with unit scoping, access requests and an audit trail.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/api"
	"github.com/deppen/custody-registry/internal/core/service"
	"github.com/deppen/custody-registry/internal/infrastructure/config"
	dbmongo "github.com/deppen/custody-registry/internal/infrastructure/db/mongo"
	dbredis "github.com/deppen/custody-registry/internal/infrastructure/db/redis"
	dbsqlite "github.com/deppen/custody-registry/internal/infrastructure/db/sqlite"
	"github.com/deppen/custody-registry/internal/infrastructure/http/handlers"
	"github.com/deppen/custody-registry/internal/infrastructure/store"
	"github.com/deppen/custody-registry/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "custody-registry: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "custody-registry",
	})

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set; using an ephemeral secret, sessions end on restart")
	}

	blobs, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	repo := store.NewRepository(blobs, cfg.StoreDriver)
	log.Info().Str("driver", cfg.StoreDriver).Msg("storage ready")

	// --- Core services ---
	policy := service.Policy{
		InstitutionalDomain: cfg.Policy.InstitutionalDomain,
		DefaultCredential:   cfg.Policy.DefaultCredential,
		MinPasswordLength:   cfg.Policy.MinPasswordLength,
		BcryptCost:          cfg.Policy.BcryptCost,
	}
	audit := service.NewAuditService(repo, cfg.Audit.Capacity, logger.Component("audit"))
	accounts := service.NewAccountService(repo, audit, policy, logger.Component("accounts"))
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	auth := service.NewAuthService(accounts, audit, tokens, cfg.Audit.FailedLogins, logger.Component("auth"))
	approvals := service.NewApprovalService(accounts, audit, logger.Component("approvals"))
	records := service.NewRecordService(repo, repo, audit, logger.Component("records"))
	presence := service.NewPresenceService(accounts, cfg.Presence.HeartbeatInterval, cfg.Presence.OnlineWindow, logger.Component("presence"))
	backup := service.NewBackupService(repo, repo, repo, audit, logger.Component("backup"))
	sessions := service.NewSessionRegistry(presence, cfg.SessionTTL, logger.Component("sessions"))
	defer sessions.CloseAll()
	accounts.OnAccessRevoked(sessions.CloseAccount)

	if err := bootstrapMaster(ctx, accounts, cfg.Bootstrap, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Accounts:   accounts,
		Auth:       auth,
		Approvals:  approvals,
		Records:    records,
		Audit:      audit,
		Presence:   presence,
		Backup:     backup,
		Sessions:   sessions,
		Probes:     map[string]handlers.Pinger{cfg.StoreDriver: repo},
		LoginRate:  cfg.Login.RatePerSecond,
		LoginBurst: cfg.Login.Burst,
		Log:        logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config) (store.BlobStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := dbmongo.Connect(ctx, dbmongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
			Timeout:     cfg.Mongo.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return dbmongo.NewBlobStore(db), closer, nil

	case config.DriverRedis:
		client, err := dbredis.Connect(ctx, dbredis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			Timeout:      cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return dbredis.NewBlobStore(client), func() { _ = client.Close() }, nil

	case config.DriverSQLite:
		s, err := dbsqlite.Open(ctx, dbsqlite.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return store.NewMemoryStore(), func() {}, nil
}

// bootstrapMaster creates the configured master when the directory is empty.
func bootstrapMaster(ctx context.Context, accounts *service.AccountService, cfg config.BootstrapConfig, log zerolog.Logger) error {
	if cfg.Email == "" {
		return nil
	}
	required, err := accounts.SetupRequired(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if !required {
		log.Debug().Msg("accounts present, skipping master bootstrap")
		return nil
	}
	if _, err := accounts.Bootstrap(ctx, cfg.Email, cfg.FullName); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	log.Warn().Str("email", cfg.Email).Msg("master account created on the temporary credential; change it at first sign-in")
	return nil
}
