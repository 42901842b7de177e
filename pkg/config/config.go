package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Ollama   OllamaConfig
	Catalog  CatalogConfig
	LoginRL  LoginRateLimitConfig
}

// Load reads configuration from the environment. Required values that are
// absent make the call fail, which callers treat as fatal at startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCALCHAT_APP_ENV" required:"true"`
	Host         string `envconfig:"LOCALCHAT_APP_HOST" default:"127.0.0.1"`
	Port         string `envconfig:"LOCALCHAT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALCHAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALCHAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

// StorageConfig locates the SQLite databases. Identity, security and admin
// stores are single files under DataDir; tenant chat stores live in
// DataDir/userchats, one file per account UUID.
type StorageConfig struct {
	DataDir         string        `envconfig:"LOCALCHAT_DATA_DIR" default:"database"`
	MaxOpenConns    int           `envconfig:"LOCALCHAT_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"LOCALCHAT_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALCHAT_DB_CONN_MAX_IDLE_TIME" default:"5m"`
	BusyTimeout     time.Duration `envconfig:"LOCALCHAT_DB_BUSY_TIMEOUT" default:"5s"`
}

// IdentityPath locates the shared account store.
func (s StorageConfig) IdentityPath() string {
	return filepath.Join(s.DataDir, "identity.db")
}

// SecurityPath locates the login audit store.
func (s StorageConfig) SecurityPath() string {
	return filepath.Join(s.DataDir, "security.db")
}

// AdminPath locates the diagnostics store.
func (s StorageConfig) AdminPath() string {
	return filepath.Join(s.DataDir, "admin.db")
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALCHAT_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"LOCALCHAT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALCHAT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALCHAT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALCHAT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALCHAT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOCALCHAT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOCALCHAT_JWT_ISSUER" default:"localchat"`
	ExpirationMinutes int    `envconfig:"LOCALCHAT_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SessionTTL is how long the server-side session record lives alongside its token.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOCALCHAT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOCALCHAT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOCALCHAT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOCALCHAT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOCALCHAT_ARGON_KEY_LEN" default:"32"`
}

type OllamaConfig struct {
	URL            string        `envconfig:"LOCALCHAT_OLLAMA_URL" default:"http://127.0.0.1:11434"`
	DefaultModel   string        `envconfig:"LOCALCHAT_OLLAMA_DEFAULT_MODEL" required:"true"`
	RequestTimeout time.Duration `envconfig:"LOCALCHAT_OLLAMA_REQUEST_TIMEOUT" default:"10m"`
	WarmupTimeout  time.Duration `envconfig:"LOCALCHAT_OLLAMA_WARMUP_TIMEOUT" default:"2m"`
}

// CatalogConfig controls the load-once model catalog. RestrictedKeywords is a
// deny-list applied to non-admin roles via case-sensitive substring match.
type CatalogConfig struct {
	Path               string   `envconfig:"LOCALCHAT_MODELS_PATH" default:"models.json"`
	RestrictedKeywords []string `envconfig:"LOCALCHAT_RESTRICTED_KEYWORDS" default:"dolphin,uncensored"`
}

type LoginRateLimitConfig struct {
	Window        time.Duration `envconfig:"LOCALCHAT_LOGIN_RATE_LIMIT_WINDOW" default:"1m"`
	UsernameLimit int           `envconfig:"LOCALCHAT_LOGIN_RATE_LIMIT_USERNAME_LIMIT" default:"5"`
	IPLimit       int           `envconfig:"LOCALCHAT_LOGIN_RATE_LIMIT_IP_LIMIT" default:"20"`
}
