package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Без config.yaml сервис должен подниматься на дефолтах
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)

	// Каденс и пул движка обработки
	assert.Equal(t, 30*time.Second, cfg.Engine.PassInterval)
	assert.Equal(t, 5, cfg.Engine.Workers)
	assert.Equal(t, time.Duration(0), cfg.Engine.DelayMin)

	// Очередь уведомлений
	assert.Equal(t, 50, cfg.Notify.BufferSize)
	assert.Equal(t, 2, cfg.Notify.Workers)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}
