package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"bookfinder/internal/auth"
	"bookfinder/internal/book"
	"bookfinder/internal/config"
	"bookfinder/internal/httpx"
	"bookfinder/internal/logger"
	"bookfinder/internal/mailer"
	"bookfinder/internal/platform/googlebooks"
	"bookfinder/internal/platform/postgres"
	"bookfinder/internal/profile"
	"bookfinder/internal/savedbook"
	"bookfinder/internal/server"
	"bookfinder/internal/source"
	"bookfinder/internal/tokenstore"
)

const (
	sweepInterval   = time.Minute
	cleanupInterval = time.Hour
)

// app owns everything that must be started or closed with the process.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	deps     server.Deps
	pool     *pgxpool.Pool
	redis    *redis.Client
	memory   *tokenstore.MemoryStore
	sessions *auth.PostgresSessionRepo
}

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", logger.Error(err))
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(ctx); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("bookfinder api stopped cleanly")
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	catalog, err := source.LoadFile(cfg.SourceCatalogFile)
	if err != nil {
		return nil, err
	}

	var tokens tokenstore.Store
	if cfg.RedisAddr != "" {
		a.redis, err = tokenstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, err
		}
		tokens = tokenstore.NewRedisStore(a.redis)
	} else {
		log.Info("REDIS_ADDR not set, keeping tokens in memory")
		a.memory = tokenstore.NewMemoryStore()
		tokens = a.memory
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		a.close()
		return nil, err
	}

	meta := googlebooks.NewClient(cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.GoogleBooksRPS)

	var (
		bookRepo    book.Repository      = book.UnavailableRepo{}
		savedRepo   savedbook.Repository = savedbook.UnavailableRepo{}
		profileRepo profile.Repository   = profile.UnavailableRepo{}
		provider    auth.Provider        = auth.Unavailable{}
		probes      []server.Probe
	)

	if cfg.StubMode() {
		log.Warn("DB_DSN or JWT_SECRET missing, running in stub mode")
	} else {
		a.pool, err = postgres.Open(ctx, cfg.DatabaseDSN, 2*time.Second, log)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open database (%s): %w", cfg.RedactedDSN(), err)
		}
		bookRepo = book.NewPostgresRepo(a.pool, cfg.DBTimeout)
		savedRepo = savedbook.NewPostgresRepo(a.pool, cfg.DBTimeout)
		profileRepo = profile.NewPostgresRepo(a.pool, cfg.DBTimeout)
		a.sessions = auth.NewPostgresSessionRepo(a.pool, cfg.DBTimeout)
		provider = auth.NewService(
			auth.Options{Secret: cfg.JWTSecret, PublicURL: cfg.PublicURL},
			auth.NewPostgresUserRepo(a.pool, cfg.DBTimeout),
			a.sessions,
			tokens,
			sender,
			log,
		)
		probes = append(probes,
			server.Probe{Name: "postgres", Ping: a.pool.Ping},
			server.Probe{Name: "token store", Ping: tokens.Ping},
		)
	}

	books := book.NewService(meta, bookRepo, log)
	a.deps = server.Deps{
		Logger:      log,
		Books:       books,
		Catalog:     catalog,
		Saved:       savedbook.NewService(savedRepo, books, log),
		Profiles:    profile.NewService(profileRepo, log),
		Auth:        provider,
		Contact:     mailer.NewContactService(sender, cfg.ContactTo, log),
		RateLimiter: httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Probes:      probes,
	}
	return a, nil
}

func newSender(cfg *config.Config, log logger.Logger) (mailer.Sender, error) {
	if cfg.SMTPHost == "" {
		log.Info("SMTP_HOST not set, outgoing mail is logged only")
		return mailer.NewLogSender(log), nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// run serves until ctx is cancelled or a component fails, then shuts down.
func (a *app) run(ctx context.Context) error {
	srv := server.New(a.cfg, a.deps)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	g.Go(func() error {
		a.deps.RateLimiter.Run(gctx)
		return nil
	})
	if a.memory != nil {
		g.Go(func() error {
			a.memory.Run(gctx, sweepInterval)
			return nil
		})
	}
	if a.sessions != nil {
		g.Go(func() error {
			a.cleanupSessions(gctx)
			return nil
		})
	}
	return g.Wait()
}

func (a *app) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.CleanupExpired(ctx)
			if err != nil {
				a.log.Warn("session cleanup failed", logger.Error(err))
				continue
			}
			if n > 0 {
				a.log.Info("expired sessions removed", logger.Int("count", int(n)))
			}
		}
	}
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", logger.Error(err))
		}
	}
}
