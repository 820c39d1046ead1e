package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"CATALOG_PUBLIC_DIR", "CATALOG_SOURCE_BASE_URL", "CATALOG_WAREHOUSE_PATH",
		"CATALOG_LISTEN_ADDR", "CATALOG_DB_DSN", "CATALOG_PROBE_IMAGES", "CATALOG_TRANSLATE",
		"GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "public", cfg.PublicDir)
	assert.Equal(t, "assets/images/warehouse_products.json", cfg.WarehousePath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.ProbeImages)
	assert.False(t, cfg.Translate)
	assert.Equal(t, "public", cfg.SourceRoot())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_PUBLIC_DIR", " /srv/public ")
	t.Setenv("CATALOG_SOURCE_BASE_URL", "https://cdn.example.com")
	t.Setenv("CATALOG_PROBE_IMAGES", "false")
	t.Setenv("CATALOG_TRANSLATE", "1")
	t.Setenv("CATALOG_DB_DSN", "catalog.db")

	cfg := Load()
	assert.Equal(t, "/srv/public", cfg.PublicDir)
	assert.Equal(t, "https://cdn.example.com", cfg.SourceRoot())
	assert.False(t, cfg.ProbeImages)
	assert.True(t, cfg.Translate)
	assert.Equal(t, "catalog.db", cfg.DBDSN)
}

func TestEnvBool_InvalidFallsBack(t *testing.T) {
	t.Setenv("CATALOG_TRANSLATE", "maybe")
	assert.False(t, envBool("CATALOG_TRANSLATE", false))
	assert.True(t, envBool("CATALOG_TRANSLATE", true))
}
