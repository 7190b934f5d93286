// Package config carrega a configuração da API a partir de variáveis de
// ambiente, .env e (opcionalmente) um arquivo YAML.
package config

import "time"

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// RedisConfig aponta para o store remoto dos contadores distribuídos.
type RedisConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type RateLimitConfig struct {
	// limiter distribuído (por IP, no Redis)
	DistributedMax    int
	DistributedWindow time.Duration
	Prefix            string

	// limiter local (processo inteiro)
	LocalMax       int
	LocalWindow    time.Duration
	LocalAlgorithm string

	FailOpen bool
	TrustXFF bool

	MaxConcurrent      int
	ConcurrencyTimeout time.Duration

	StatsEnabled   bool
	StatsBackend   string
	StatsPrefix    string
	StatsTTL       time.Duration
	StatsTrackKeys bool
}

type StoreConfig struct {
	Driver    string
	URL       string
	AuthToken string
	Path      string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

const (
	AlgorithmFixedWindow = "fixed-window"
	AlgorithmTokenBucket = "token-bucket"

	StatsBackendRedis  = "redis"
	StatsBackendMemory = "memory"

	DriverLibsql = "libsql"
	DriverMemory = "memory"
)
