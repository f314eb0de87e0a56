// Package app assembles the gate from configuration. An App is built once at
// process start by New and torn down by Close; it owns every model, store and
// service, and nothing in the gate is held in package-level state.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/redis/go-redis/v9"

	"github.com/FilipeAphrody/vocalgate/internal/config"
	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
	"github.com/FilipeAphrody/vocalgate/internal/repository"
	"github.com/FilipeAphrody/vocalgate/internal/usecase"
	"github.com/FilipeAphrody/vocalgate/pkg/features"
	"github.com/FilipeAphrody/vocalgate/pkg/textmatch"
	"github.com/FilipeAphrody/vocalgate/pkg/transcribe"
	"github.com/FilipeAphrody/vocalgate/pkg/voiceprint"
)

// App is the explicit context object passed to every delivery layer.
type App struct {
	Config *config.Config

	Profiles    domain.ProfileRepository
	AuditLog    domain.AuditRepository
	Transcriber transcribe.Transcriber
	Extractor   features.Extractor

	Recorder *usecase.Recorder
	Enroll   *usecase.EnrollUsecase
	Engine   *usecase.AuthEngine
	Gate     *usecase.LockoutController
	Audit    *usecase.AuditUsecase
	Sessions *usecase.SessionUsecase
	Operator *usecase.OperatorUsecase

	closers []func() error
}

// Option customizes New.
type Option func(*options)

type options struct {
	metrics     *observe.Metrics
	transcriber transcribe.Transcriber
}

// WithMetrics attaches metric instruments to every usecase.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTranscriber replaces the configured transcription backend.
func WithTranscriber(t transcribe.Transcriber) Option {
	return func(o *options) { o.transcriber = t }
}

// New builds the gate. On error every resource opened so far is released.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// 1. Infrastructure
	var db *sql.DB
	if cfg.ProfileStore == "postgres" || cfg.AuditLog == "postgres" {
		if db, err = openPostgres(ctx, cfg.DBURL); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	var tokens domain.TokenRepository
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(redisOptions(cfg.RedisURL))
		a.closers = append(a.closers, rdb.Close)
		if err = rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		tokens = repository.NewRedisTokenRepo(rdb)
	}

	// 2. Repositories
	if a.Profiles, err = openProfiles(ctx, cfg, db); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Profiles.Close)

	if a.AuditLog, err = openAudit(ctx, cfg, db); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.AuditLog.Close)

	// 3. Voice pipeline
	a.Transcriber = o.transcriber
	if a.Transcriber == nil {
		a.Transcriber, err = transcribe.New(transcribe.Config{
			Backend:   transcribe.Backend(cfg.Transcriber),
			ServerURL: cfg.WhisperURL,
			ModelPath: cfg.WhisperModelPath,
			Language:  cfg.WhisperLanguage,
			Retries:   cfg.WhisperRetries,
		})
		if err != nil {
			return nil, err
		}
	}
	a.closers = append(a.closers, a.Transcriber.Close)

	if a.Extractor, err = features.New(features.Strategy(cfg.FeatureStrategy)); err != nil {
		return nil, err
	}
	matcher, err := textmatch.New(textmatch.Strategy(cfg.TextMatchStrategy))
	if err != nil {
		return nil, err
	}
	policy := voiceprint.ThresholdPolicy{Base: cfg.BaseThreshold, Adaptive: cfg.AdaptiveThreshold}

	// 4. Usecases
	a.Recorder = usecase.NewRecorder(cfg.RecordDuration(), cfg.SampleRate, o.metrics)
	a.Enroll = usecase.NewEnrollUsecase(a.Profiles, a.Transcriber, a.Extractor, matcher, o.metrics)
	a.Engine = usecase.NewAuthEngine(a.Profiles, a.Transcriber, a.Extractor, matcher, policy, o.metrics)
	a.Gate = usecase.NewLockoutController(a.Engine, a.AuditLog, cfg.MaxAttempts, cfg.Cooldown,
		usecase.WithLockoutMetrics(o.metrics))
	a.Audit = usecase.NewAuditUsecase(a.AuditLog)
	a.Sessions = usecase.NewSessionUsecase(tokens, cfg.JWTSecret, cfg.SessionTTL, cfg.RefreshTTL)
	a.Operator = usecase.NewOperatorUsecase(usecase.OperatorAccount{
		Username:     cfg.OperatorUsername,
		PasswordHash: cfg.OperatorPasswordHash,
		TOTPSecret:   cfg.OperatorTOTPSecret,
	}, a.Sessions)

	slog.Info("gate ready",
		"profile_store", cfg.ProfileStore,
		"audit_log", cfg.AuditLog,
		"transcriber", cfg.Transcriber,
		"features", cfg.FeatureStrategy,
		"text_match", cfg.TextMatchStrategy,
		"refresh_tokens", tokens != nil,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(addr string) *redis.Options {
	if opt, err := redis.ParseURL(addr); err == nil {
		return opt
	}
	return &redis.Options{Addr: addr}
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

func openProfiles(ctx context.Context, cfg *config.Config, db *sql.DB) (domain.ProfileRepository, error) {
	switch cfg.ProfileStore {
	case "badger":
		return repository.NewBadgerProfileRepo(repository.BadgerOptions{Dir: cfg.ProfileStorePath})
	case "postgres":
		repo := repository.NewPostgresProfileRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return repository.NewJSONProfileRepo(cfg.ProfileStorePath, repository.Recovery(cfg.ProfileStoreRecovery))
	}
}

func openAudit(ctx context.Context, cfg *config.Config, db *sql.DB) (domain.AuditRepository, error) {
	if cfg.AuditLog == "postgres" {
		repo := repository.NewPostgresAuditRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return repository.NewFileAuditRepo(cfg.AuditLogPath)
}
