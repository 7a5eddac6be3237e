package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "REFERRAL_SIGNUP_BONUS", "APP_TIMEZONE", "EMAIL_PROVIDER", "CRON_ENABLED"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, "postgres", env.DB_DRIVER)
	assert.True(t, env.REFERRAL_SIGNUP_BONUS.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Asia/Kolkata", env.APP_TIMEZONE)
	assert.Equal(t, "smtp", env.EMAIL_PROVIDER)
	assert.True(t, env.CRON_ENABLED)
	assert.False(t, env.IsProduction())
}

func TestGet_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("REFERRAL_SIGNUP_BONUS", "75.50")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("GO_ENV", "production")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 9000, env.PORT)
	assert.Equal(t, "sqlite", env.DB_DRIVER)
	assert.Equal(t, "75.5", env.REFERRAL_SIGNUP_BONUS.String())
	assert.False(t, env.CRON_ENABLED)
	assert.True(t, env.IsProduction())
}

func TestGet_InvalidBonus(t *testing.T) {
	t.Setenv("REFERRAL_SIGNUP_BONUS", "fifty")

	_, err := Get()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	tests := []struct {
		zone string
		want string
	}{
		{"UTC", "UTC"},
		{"Not/AZone", time.UTC.String()},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			env := &EnviornmentVariable{APP_TIMEZONE: tt.zone}
			assert.Equal(t, tt.want, env.Location().String())
		})
	}
}
