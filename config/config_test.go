package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t) // 没有.env文件
	for _, k := range []string{"API_PORT", "MAX_TAGS_LIMIT", "CACHE_EXPIRE_SEC", "ADMIN", "REDIS_CACHE_DB"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 20, cfg.Announcement.MaxTags)
	assert.Equal(t, 120*time.Second, cfg.Announcement.CacheTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Announcement.ApprovedApplicationTTL)
	assert.True(t, cfg.Announcement.AllowOwnerModify)
	assert.Equal(t, 9, cfg.Redis.CacheDB)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Auth.Admins)
}

func TestLoad_Env(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_PORT", "9000")
	t.Setenv("MAX_TAGS_LIMIT", "5")
	t.Setenv("ADMIN", "root@example.com; ;boss;")
	t.Setenv("ALLOW_APPLICATION_OWNER_MODIFY", "false")
	t.Setenv("CACHE_EXPIRE_SEC", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.APIPort)
	assert.Equal(t, 5, cfg.Announcement.MaxTags)
	assert.Equal(t, []string{"root@example.com", "boss"}, cfg.Auth.Admins)
	assert.False(t, cfg.Announcement.AllowOwnerModify)
	assert.Equal(t, 120*time.Second, cfg.Announcement.CacheTTL)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
