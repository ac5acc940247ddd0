package app

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/yungbote/leontief-backend/internal/data/db"
	"github.com/yungbote/leontief-backend/internal/http/middleware"
	"github.com/yungbote/leontief-backend/internal/platform/blob"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

const EnvPrefix = "LEONTIEF_"

type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Log     LogConfig     `koanf:"log"`
	DB      DBConfig      `koanf:"db"`
	JWT     JWTConfig     `koanf:"jwt"`
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
	Otel    OtelConfig    `koanf:"otel"`
	Blob    BlobConfig    `koanf:"blob"`
	Sim     SimConfig     `koanf:"sim"`
	Admin   AdminConfig   `koanf:"admin"`
	CORS    CORSConfig    `koanf:"cors"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Mode     string `koanf:"mode"`
	Level    string `koanf:"level"`
	Redact   bool   `koanf:"redact"`
	HashSalt string `koanf:"hash_salt"`
}

type DBConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	Path   string `koanf:"path"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// RedisConfig enables the simulation cache when Addr is set.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

type OtelConfig struct {
	Enabled bool   `koanf:"enabled"`
	Service string `koanf:"service"`
}

type BlobConfig struct {
	Driver    string `koanf:"driver"`
	Dir       string `koanf:"dir"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	PathStyle bool   `koanf:"path_style"`
}

type SimConfig struct {
	Workers int `koanf:"workers"`
}

// AdminConfig, when both fields are set, makes serve ensure that admin
// account exists at startup.
type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"http.addr":       ":8080",
		"log.mode":        "development",
		"log.level":       "",
		"log.redact":      true,
		"log.hash_salt":   "",
		"db.driver":       db.DriverPostgres,
		"db.dsn":          "",
		"db.path":         "leontief.db",
		"jwt.secret":      "",
		"jwt.ttl":         "120m",
		"redis.addr":      "",
		"redis.password":  "",
		"redis.db":        0,
		"redis.ttl":       "10m",
		"metrics.enabled": false,
		"otel.enabled":    false,
		"otel.service":    "leontief",
		"blob.driver":     string(blob.DriverFilesystem),
		"blob.dir":        "./exports",
		"blob.bucket":     "",
		"blob.region":     "us-east-1",
		"blob.endpoint":   "",
		"blob.path_style": false,
		"sim.workers":     runtime.NumCPU(),
		"admin.username":  "",
		"admin.password":  "",
		"cors.origins":    middleware.DefaultCORSOrigins,
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"log-mode":  "log.mode",
	"addr":      "http.addr",
	"db-driver": "db.driver",
	"db-dsn":    "db.dsn",
	"db-path":   "db.path",
}

// LoadConfig layers defaults, the optional YAML file, LEONTIEF_* environment
// variables and explicitly set flags, later sources winning.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}
	// LEONTIEF_BLOB_PATH_STYLE -> blob.path_style
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.JWT.Secret) == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.JWT.TTL <= 0 {
		problems = append(problems, "jwt.ttl must be positive")
	}
	switch c.DB.Driver {
	case db.DriverPostgres:
		if c.DB.DSN == "" {
			problems = append(problems, "db.dsn is required for postgres")
		}
	case db.DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unknown db.driver %q", c.DB.Driver))
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem:
	case blob.DriverS3:
		if c.Blob.Bucket == "" {
			problems = append(problems, "blob.bucket is required for s3")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown blob.driver %q", c.Blob.Driver))
	}
	if c.Sim.Workers < 1 {
		problems = append(problems, "sim.workers must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:     c.Log.Mode,
		Level:    c.Log.Level,
		Redact:   c.Log.Redact,
		HashSalt: c.Log.HashSalt,
	}
}

func (c Config) DBConfig() db.Config {
	return db.Config{Driver: c.DB.Driver, DSN: c.DB.DSN, Path: c.DB.Path}
}

func (c Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver:    c.Blob.Driver,
		Dir:       c.Blob.Dir,
		Bucket:    c.Blob.Bucket,
		Region:    c.Blob.Region,
		Endpoint:  c.Blob.Endpoint,
		PathStyle: c.Blob.PathStyle,
	}
}
