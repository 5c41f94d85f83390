package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Settings are the CLI settings. Values come from, in increasing priority:
// defaults, the settings file and SCOPEGRAPH_* environment variables.
type Settings struct {
	CacheDir     string        `mapstructure:"cache_dir"`
	CacheBackend string        `mapstructure:"cache_backend"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	RedisAddr    string        `mapstructure:"redis_addr"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	CatalogPath  string        `mapstructure:"catalog_path"`
	LogLevel     string        `mapstructure:"log_level"`
}

// defaultSettings returns the settings used when nothing is configured.
func defaultSettings() Settings {
	base := userCacheBase()
	return Settings{
		CacheDir:     filepath.Join(base, appName),
		CacheBackend: cacheBackendFile,
		CacheTTL:     24 * time.Hour,
		RedisAddr:    "localhost:6379",
		ListenAddr:   ":8090",
		CatalogPath:  filepath.Join(userDataBase(), appName, "catalog.db"),
		LogLevel:     "info",
	}
}

// loadSettings reads settings. An empty path looks for
// $XDG_CONFIG_HOME/scopegraph/settings.toml and ignores its absence; an
// explicit path must exist.
func loadSettings(path string) (*Settings, error) {
	v := viper.New()

	d := defaultSettings()
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("cache_backend", d.CacheBackend)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("settings")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(dir, appName))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	s.CacheBackend = strings.ToLower(s.CacheBackend)
	return &s, nil
}

// userCacheBase returns the XDG cache home (~/.cache by default).
func userCacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache")
	}
	return os.TempDir()
}

// userDataBase returns the XDG data home (~/.local/share by default).
func userDataBase() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return os.TempDir()
}
