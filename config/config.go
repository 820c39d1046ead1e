package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AppName     = "kawthar-catalog"
	EnvFileName = "config.env"
)

// Config holds runtime settings for the catalog binaries.
type Config struct {
	// PublicDir is the static asset root. Sources are read from it unless
	// SourceBaseURL is set, and local image probes resolve against it.
	PublicDir string
	// SourceBaseURL, when set, fetches sources over HTTP instead of from PublicDir.
	SourceBaseURL string
	// WarehousePath is the location of the JSONL warehouse feed relative to the source root.
	WarehousePath string
	ListenAddr    string
	// DBDSN is a SQLite file path or a postgres:// URL. Empty disables the store.
	DBDSN        string
	ProbeImages  bool
	Translate    bool
	GeminiAPIKey string
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory and from .env in the working directory. Errors are ignored
// since the files may not exist.
func LoadEnvFile() {
	_ = godotenv.Load()
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		PublicDir:     firstNonEmpty(os.Getenv("CATALOG_PUBLIC_DIR"), "public"),
		SourceBaseURL: strings.TrimSpace(os.Getenv("CATALOG_SOURCE_BASE_URL")),
		WarehousePath: firstNonEmpty(os.Getenv("CATALOG_WAREHOUSE_PATH"), "assets/images/warehouse_products.json"),
		ListenAddr:    firstNonEmpty(os.Getenv("CATALOG_LISTEN_ADDR"), ":8080"),
		DBDSN:         strings.TrimSpace(os.Getenv("CATALOG_DB_DSN")),
		ProbeImages:   envBool("CATALOG_PROBE_IMAGES", true),
		Translate:     envBool("CATALOG_TRANSLATE", false),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}
}

// SourceRoot is the base the raw sources are fetched from.
func (c Config) SourceRoot() string {
	if c.SourceBaseURL != "" {
		return c.SourceBaseURL
	}
	return c.PublicDir
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
