package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/auth"
	"bookfinder/internal/config"
	"bookfinder/internal/logger"
	"bookfinder/internal/mailer"
)

func stubConfig() *config.Config {
	return &config.Config{
		Addr:           ":0",
		GoogleBooksURL: "http://127.0.0.1:0",
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		MaxBodyBytes:   1 << 20,
	}
}

func TestNewApp_StubMode(t *testing.T) {
	cfg := stubConfig()
	cfg.JWTSecret = "set-but-no-database"

	a, err := newApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.pool)
	assert.Nil(t, a.sessions)
	assert.NotNil(t, a.memory, "tokens stay in memory without REDIS_ADDR")
	assert.IsType(t, auth.Unavailable{}, a.deps.Auth)
	assert.Empty(t, a.deps.Probes)
}

func TestNewApp_BadCatalogFile(t *testing.T) {
	cfg := stubConfig()
	cfg.SourceCatalogFile = t.TempDir() + "/missing.yaml"

	_, err := newApp(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestNewSender(t *testing.T) {
	cfg := stubConfig()

	s, err := newSender(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogSender{}, s)

	cfg.SMTPHost = "smtp.example.test"
	cfg.SMTPPort = 587
	cfg.MailFrom = "BookFinder <no-reply@example.test>"
	s, err = newSender(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mailer.SMTPSender{}, s)

	cfg.MailFrom = "not an address"
	_, err = newSender(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := newApp(context.Background(), stubConfig(), logger.Nop())
	require.NoError(t, err)
	defer a.close()
	a.cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.run(ctx))
}
