// Command seed warms the books table with search results so saved-book
// lookups for popular titles do not need a metadata round trip.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookfinder/internal/book"
	"bookfinder/internal/config"
	"bookfinder/internal/logger"
	"bookfinder/internal/platform/googlebooks"
	"bookfinder/internal/platform/postgres"
)

var defaultQueries = []string{
	"fiction", "science fiction", "history", "science", "technology",
	"romance", "mystery", "biography", "philosophy", "art",
}

func main() {
	queries := flag.String("queries", strings.Join(defaultQueries, ","), "comma separated search terms")
	workers := flag.Int("workers", 4, "concurrent searches")
	flag.Parse()

	config.LoadEnvFiles()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	if cfg.DatabaseDSN == "" {
		log.Error("DB_DSN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN, 2*time.Second, log)
	if err != nil {
		log.Error("open database failed", logger.String("dsn", cfg.RedactedDSN()), logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := book.NewPostgresRepo(pool, cfg.DBTimeout)
	meta := googlebooks.NewClient(cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.GoogleBooksRPS)
	s := seeder{books: book.NewService(meta, repo, log), repo: repo, log: log, workers: *workers}

	n, err := s.run(ctx, splitQueries(*queries))
	if err != nil {
		log.Error("seed failed", logger.Int("stored", n), logger.Error(err))
		os.Exit(1)
	}
	log.Info("seed finished", logger.Int("stored", n))
}

type seeder struct {
	books   *book.Service
	repo    book.Repository
	log     logger.Logger
	workers int
}

// run searches every query and upserts the results. A failed search is
// logged and skipped; a failed write stops the run.
func (s seeder) run(ctx context.Context, queries []string) (int, error) {
	var stored atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))
	for _, q := range queries {
		g.Go(func() error {
			books, err := s.books.Search(ctx, q)
			if err != nil {
				s.log.Warn("skipping query", logger.String("query", q), logger.Error(err))
				return nil
			}
			for i := range books {
				if err := s.repo.Upsert(ctx, &books[i]); err != nil {
					return err
				}
				stored.Add(1)
			}
			s.log.Info("query seeded", logger.String("query", q), logger.Int("books", len(books)))
			return nil
		})
	}
	err := g.Wait()
	return int(stored.Load()), err
}

func splitQueries(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, q := range strings.Split(raw, ",") {
		q = strings.TrimSpace(q)
		if q == "" || seen[strings.ToLower(q)] {
			continue
		}
		seen[strings.ToLower(q)] = true
		out = append(out, q)
	}
	return out
}
