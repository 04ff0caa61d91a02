package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("PLUGGER_ALLOW_ANON", "true")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/platedb")
	t.Setenv("PLUGGER_ALLOW_ANON", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8072", cfg.Addr)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, cfg.MangaCarts)
	assert.Equal(t, []int{7, 8, 9}, cfg.ApogeeCarts)
	assert.Empty(t, cfg.OfflineCarts)
	assert.Equal(t, 2, cfg.NoPlugPriority)
	assert.Equal(t, 10, cfg.ForcePlugPriority)
	assert.Equal(t, 1.0, cfg.VisibilityHalfWindowHours)
	assert.True(t, cfg.OnlyVisiblePlates)
}

func TestLoadParsesCartLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/platedb")
	t.Setenv("PLUGGER_ALLOW_ANON", "true")
	t.Setenv("PLUGGER_MANGA_CARTS", " 1, 2 ,5")
	t.Setenv("PLUGGER_OFFLINE_CARTS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, cfg.MangaCarts)
	assert.Equal(t, []int{2}, cfg.OfflineCarts)
}

func TestLoadRequiresJWTSecretOrAnon(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/platedb")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PLUGGER_JWT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.JWTSecret)
}
