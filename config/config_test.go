package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DEPOSITS_DB_PATH", "PORT", "MIN_BENEFIT", "STALE_AFTER", "CHECK_SCHEDULE", "CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "deposits.db", cfg.DatabasePath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "10", cfg.MinBenefit.String())
	assert.Equal(t, 14*24*time.Hour, cfg.StaleAfter)
	assert.Equal(t, "@every 1h", cfg.CheckSchedule)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_BENEFIT", "25.5")
	t.Setenv("STALE_AFTER", "72h")
	t.Setenv("CHECK_SCHEDULE", "0 9 * * *")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "25.5", cfg.MinBenefit.String())
	assert.Equal(t, 72*time.Hour, cfg.StaleAfter)
}

func TestLoad_InvalidSchedule(t *testing.T) {
	t.Setenv("CHECK_SCHEDULE", "every now and then")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_UnknownCurrency(t *testing.T) {
	t.Setenv("CURRENCY", "QQQ")

	_, err := config.Load()
	assert.ErrorContains(t, err, "CURRENCY")
}
