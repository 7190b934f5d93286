package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SetDefaults registra os valores padrão. As chaves são os nomes das
// variáveis de ambiente em minúsculas.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", 3000)
	v.SetDefault("localhost", "http://localhost")
	v.SetDefault("vite_port", 5173)
	v.SetDefault("cors_origins", "")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("redis_url", "")
	v.SetDefault("redis_token", "")
	v.SetDefault("redis_timeout", "2s")
	v.SetDefault("redis_rate_limit_max", 10)
	v.SetDefault("redis_rate_limit_window", "60s")
	v.SetDefault("redis_rate_limit_prefix", "thinkboard:ratelimit")

	v.SetDefault("rate_limit_window", "6000000")
	v.SetDefault("rate_limit_max", 25)
	v.SetDefault("rate_limit_algorithm", AlgorithmFixedWindow)
	v.SetDefault("rate_limit_fail_open", false)
	v.SetDefault("trust_xff", false)
	v.SetDefault("max_concurrent", 0)
	v.SetDefault("concurrency_timeout", "0s")

	v.SetDefault("rate_stats_enabled", false)
	v.SetDefault("rate_stats_backend", StatsBackendRedis)
	v.SetDefault("rate_stats_prefix", "thinkboard:ratelimit:stats")
	v.SetDefault("rate_stats_ttl", "24h")
	v.SetDefault("rate_stats_track_keys", false)

	v.SetDefault("db_driver", DriverLibsql)
	v.SetDefault("db_url", "")
	v.SetDefault("db_auth_token", "")
	v.SetDefault("db_path", "./thinkboard.db")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("metrics_enabled", true)
}

// NewViper cria um viper com defaults, AutomaticEnv e, se existir, o arquivo
// `file` (YAML). Um .env no diretório atual é carregado antes,
// sem sobrescrever variáveis já definidas.
func NewViper(file string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}
	return v, nil
}

// Load lê e valida a configuração. Credenciais ausentes do Redis são erro
// aqui, na subida, e não em tempo de requisição.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	var err error

	cfg.Server.Host = strings.TrimSpace(v.GetString("host"))
	cfg.Server.Port = v.GetInt("port")
	cfg.Server.AllowedOrigins = allowedOrigins(v)
	if cfg.Server.ShutdownTimeout, err = duration(v, "shutdown_timeout"); err != nil {
		return Config{}, err
	}

	cfg.Redis.URL = strings.TrimSpace(v.GetString("redis_url"))
	cfg.Redis.Token = strings.TrimSpace(v.GetString("redis_token"))
	if cfg.Redis.Timeout, err = duration(v, "redis_timeout"); err != nil {
		return Config{}, err
	}

	rl := &cfg.RateLimit
	rl.DistributedMax = v.GetInt("redis_rate_limit_max")
	if rl.DistributedWindow, err = duration(v, "redis_rate_limit_window"); err != nil {
		return Config{}, err
	}
	rl.Prefix = v.GetString("redis_rate_limit_prefix")
	rl.LocalMax = v.GetInt("rate_limit_max")
	if rl.LocalWindow, err = ParseWindow(v.GetString("rate_limit_window")); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	rl.LocalAlgorithm = strings.ToLower(strings.TrimSpace(v.GetString("rate_limit_algorithm")))
	rl.FailOpen = v.GetBool("rate_limit_fail_open")
	rl.TrustXFF = v.GetBool("trust_xff")
	rl.MaxConcurrent = v.GetInt("max_concurrent")
	if rl.ConcurrencyTimeout, err = duration(v, "concurrency_timeout"); err != nil {
		return Config{}, err
	}
	rl.StatsEnabled = v.GetBool("rate_stats_enabled")
	rl.StatsBackend = strings.ToLower(strings.TrimSpace(v.GetString("rate_stats_backend")))
	rl.StatsPrefix = v.GetString("rate_stats_prefix")
	if rl.StatsTTL, err = duration(v, "rate_stats_ttl"); err != nil {
		return Config{}, err
	}
	rl.StatsTrackKeys = v.GetBool("rate_stats_track_keys")

	cfg.Store = loadStore(v)
	cfg.Log = LoadLog(v)
	cfg.Metrics.Enabled = v.GetBool("metrics_enabled")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStore lê só a parte do banco; o comando migrate não precisa do Redis.
func LoadStore(v *viper.Viper) (StoreConfig, error) {
	sc := loadStore(v)
	if err := sc.Validate(); err != nil {
		return StoreConfig{}, err
	}
	return sc, nil
}

func loadStore(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Driver:    strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		URL:       strings.TrimSpace(v.GetString("db_url")),
		AuthToken: strings.TrimSpace(v.GetString("db_auth_token")),
		Path:      strings.TrimSpace(v.GetString("db_path")),
	}
}

func LoadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log_level"),
		Format: v.GetString("log_format"),
	}
}

// Validate confere os campos obrigatórios e os limites.
func (c Config) Validate() error {
	if c.Redis.URL == "" {
		return errors.New("REDIS_URL is required")
	}
	u, err := url.Parse(c.Redis.URL)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		return fmt.Errorf("REDIS_URL must be a redis:// or rediss:// url")
	}
	if _, hasPassword := u.User.Password(); c.Redis.Token == "" && !hasPassword {
		return errors.New("REDIS_TOKEN is required when REDIS_URL carries no password")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.RateLimit.DistributedMax <= 0 {
		return errors.New("REDIS_RATE_LIMIT_MAX must be > 0")
	}
	if c.RateLimit.DistributedWindow <= 0 {
		return errors.New("REDIS_RATE_LIMIT_WINDOW must be > 0")
	}
	if c.RateLimit.LocalMax <= 0 {
		return errors.New("RATE_LIMIT_MAX must be > 0")
	}
	if c.RateLimit.LocalWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be > 0")
	}
	switch c.RateLimit.LocalAlgorithm {
	case AlgorithmFixedWindow, AlgorithmTokenBucket:
	default:
		return fmt.Errorf("RATE_LIMIT_ALGORITHM must be %q or %q", AlgorithmFixedWindow, AlgorithmTokenBucket)
	}
	switch c.RateLimit.StatsBackend {
	case StatsBackendRedis, StatsBackendMemory:
	default:
		return fmt.Errorf("RATE_STATS_BACKEND must be %q or %q", StatsBackendRedis, StatsBackendMemory)
	}
	if c.RateLimit.MaxConcurrent < 0 {
		return errors.New("MAX_CONCURRENT must be >= 0")
	}
	return c.Store.Validate()
}

func (s StoreConfig) Validate() error {
	switch s.Driver {
	case DriverLibsql, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", s.Driver)
	}
	return nil
}

// Addr devolve host:port para o http.Server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// ParseWindow aceita milissegundos ("6000000") ou duração Go ("100m").
func ParseWindow(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty window")
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", raw, err)
	}
	return d, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", strings.ToUpper(key), raw, err)
	}
	return d, nil
}

// allowedOrigins usa CORS_ORIGINS quando definido; senão monta
// LOCALHOST:PORT e LOCALHOST:VITE_PORT.
func allowedOrigins(v *viper.Viper) []string {
	if raw := strings.TrimSpace(v.GetString("cors_origins")); raw != "" {
		var out []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		return out
	}
	base := strings.TrimRight(strings.TrimSpace(v.GetString("localhost")), "/")
	return []string{
		fmt.Sprintf("%s:%d", base, v.GetInt("port")),
		fmt.Sprintf("%s:%d", base, v.GetInt("vite_port")),
	}
}
