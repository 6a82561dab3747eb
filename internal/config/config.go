package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"rocketshoes-cart/internal/logger"

	"github.com/joho/godotenv"
)

const (
	DefaultCartStorageKey  = "@RocketShoes:cart"
	DefaultStorageFilePath = "data/storage.json"
	DefaultCatalogTimeout  = 3000
	DefaultNotifyBuffer    = 50
	DefaultClientDelay     = 1000
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageMongo  = "mongo"
	StorageRedis  = "redis"
)

type Config struct {
	AppPort                string
	AppName                string
	CatalogHTTP            string
	CatalogTimeoutMs       int64
	CartStorageKey         string
	StorageDriver          string
	StorageFilePath        string
	MongoURI               string
	MongoDBName            string
	RedisAddr              string
	NotificationBuffer     int64
	CatalogSeedFile        string
	CartHTTP               string
	ClientDelayMs          int64
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
}

// SafeConfig is the loggable view of Config; connection strings that may
// carry credentials are left out.
type SafeConfig struct {
	AppPort                string `json:"app_port"`
	AppName                string `json:"app_name"`
	CatalogHTTP            string `json:"catalog_http"`
	CatalogTimeoutMs       int64  `json:"catalog_timeout_ms"`
	CartStorageKey         string `json:"cart_storage_key"`
	StorageDriver          string `json:"storage_driver"`
	StorageFilePath        string `json:"storage_file_path"`
	MongoDBName            string `json:"mongo_db_name"`
	NotificationBuffer     int64  `json:"notification_buffer"`
	CatalogSeedFile        string `json:"catalog_seed_file"`
	CartHTTP               string `json:"cart_http"`
	ClientDelayMs          int64  `json:"client_delay_ms"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3001"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := prefix + "." + jsonKey(t.Field(i))

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppPort:                c.AppPort,
		AppName:                c.AppName,
		CatalogHTTP:            c.CatalogHTTP,
		CatalogTimeoutMs:       c.CatalogTimeoutMs,
		CartStorageKey:         c.CartStorageKey,
		StorageDriver:          c.StorageDriver,
		StorageFilePath:        c.StorageFilePath,
		MongoDBName:            c.MongoDBName,
		NotificationBuffer:     c.NotificationBuffer,
		CatalogSeedFile:        c.CatalogSeedFile,
		CartHTTP:               c.CartHTTP,
		ClientDelayMs:          c.ClientDelayMs,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

var log = logger.Instance()
var (
	configInstance *Config
	configOnce     sync.Once
)

func getString(varName, fallback string) string {
	if val := os.Getenv(varName); val != "" {
		return val
	}
	return fallback
}

func getInt64(varName string, fallback int64) int64 {
	val := os.Getenv(varName)
	if val == "" {
		return fallback
	}

	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil || num <= 0 {
		log.Warn("Invalid integer env var, using default",
			slog.String("name", varName),
			slog.String("value", val),
			slog.Int64("default", fallback),
		)
		return fallback
	}
	return num
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort:                os.Getenv("APP_PORT"),
		AppName:                getString("APP_NAME", "rocketshoes-cart"),
		CatalogHTTP:            os.Getenv("CATALOG_HTTP"),
		CatalogTimeoutMs:       getInt64("CATALOG_TIMEOUT_MS", DefaultCatalogTimeout),
		CartStorageKey:         getString("CART_STORAGE_KEY", DefaultCartStorageKey),
		StorageDriver:          strings.ToLower(getString("STORAGE_DRIVER", StorageFile)),
		StorageFilePath:        getString("STORAGE_FILE_PATH", DefaultStorageFilePath),
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDBName:            os.Getenv("MONGO_DB_NAME"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		NotificationBuffer:     getInt64("NOTIFICATION_BUFFER", DefaultNotifyBuffer),
		CatalogSeedFile:        os.Getenv("CATALOG_SEED_FILE"),
		CartHTTP:               os.Getenv("CART_HTTP"),
		ClientDelayMs:          getInt64("CLIENT_DELAY_MS", DefaultClientDelay),
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
	}

	var missing []string
	if cfg.AppPort == "" {
		missing = append(missing, "APP_PORT")
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageFile:
	case StorageMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
		if cfg.MongoDBName == "" {
			missing = append(missing, "MONGO_DB_NAME")
		}
	case StorageRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// Instance loads the process configuration once. It exits the process when
// the configuration is invalid.
func Instance() *Config {
	configOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}

		cfg, err := Load()
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		configInstance = cfg

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will export traces to stdout")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)
	})

	return configInstance
}
