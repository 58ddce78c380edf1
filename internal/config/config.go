package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	HTTPAddr                     string
	DBURL                        string
	DBDisablePreparedBinary      bool
	CacheEnabled                 bool
	CacheTTL                     time.Duration
	CORSAllowedOrigins           []string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	PprofEnabled                 bool
	PprofAddr                    string
	SwaggerEnabled               bool
	RedisURL                     string
	RebuildLockTTL               time.Duration
	SleeperBaseURL               string
	SleeperTimeout               time.Duration
	SleeperMaxRetries            int
	SleeperMinRequestInterval    time.Duration
	SleeperCircuitEnabled        bool
	SleeperCircuitFailureCount   int
	SleeperCircuitOpenTimeout    time.Duration
	SleeperCircuitHalfOpenMaxReq int
	SleeperMaxWeek               int
	SleeperFetchConcurrency      int
	RebuildWorkers               int
	RebuildTieBreakDisabled      bool
	TradeTreeMaxDepth            int
	RebuildScheduleLeagues       []string
	RebuildScheduleInterval      time.Duration
	UptraceEnabled               bool
	UptraceDSN                   string
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
	LogLevel                     logging.Level
}

// UsesDatabase reports whether repositories should be backed by Postgres.
// An empty DB_URL keeps everything in memory.
func (c Config) UsesDatabase() bool {
	return strings.TrimSpace(c.DBURL) != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	rebuildLockTTL, err := time.ParseDuration(getEnv("REBUILD_LOCK_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REBUILD_LOCK_TTL: %w", err)
	}
	if rebuildLockTTL <= 0 {
		return Config{}, fmt.Errorf("REBUILD_LOCK_TTL must be > 0")
	}

	sleeperTimeout, err := time.ParseDuration(getEnv("SLEEPER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_TIMEOUT: %w", err)
	}
	if sleeperTimeout <= 0 {
		return Config{}, fmt.Errorf("SLEEPER_TIMEOUT must be > 0")
	}
	sleeperMaxRetries, err := getEnvAsInt("SLEEPER_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MAX_RETRIES: %w", err)
	}
	if sleeperMaxRetries < 0 {
		return Config{}, fmt.Errorf("SLEEPER_MAX_RETRIES must be >= 0")
	}
	sleeperMinRequestInterval, err := time.ParseDuration(getEnv("SLEEPER_MIN_REQUEST_INTERVAL", "100ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MIN_REQUEST_INTERVAL: %w", err)
	}
	if sleeperMinRequestInterval < 0 {
		return Config{}, fmt.Errorf("SLEEPER_MIN_REQUEST_INTERVAL must be >= 0")
	}
	sleeperCircuitEnabled, err := strconv.ParseBool(getEnv("SLEEPER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_ENABLED: %w", err)
	}
	sleeperCircuitFailureCount, err := getEnvAsInt("SLEEPER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sleeperCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sleeperCircuitOpenTimeout, err := time.ParseDuration(getEnv("SLEEPER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sleeperCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sleeperCircuitHalfOpenMaxReq, err := getEnvAsInt("SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sleeperCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	sleeperMaxWeek, err := getEnvAsInt("SLEEPER_MAX_WEEK", 18)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MAX_WEEK: %w", err)
	}
	if sleeperMaxWeek < 1 {
		return Config{}, fmt.Errorf("SLEEPER_MAX_WEEK must be >= 1")
	}
	sleeperFetchConcurrency, err := getEnvAsInt("SLEEPER_FETCH_CONCURRENCY", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_FETCH_CONCURRENCY: %w", err)
	}
	if sleeperFetchConcurrency < 1 {
		return Config{}, fmt.Errorf("SLEEPER_FETCH_CONCURRENCY must be >= 1")
	}

	rebuildWorkers, err := getEnvAsInt("REBUILD_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REBUILD_WORKERS: %w", err)
	}
	if rebuildWorkers < 1 {
		return Config{}, fmt.Errorf("REBUILD_WORKERS must be >= 1")
	}
	rebuildTieBreakDisabled, err := strconv.ParseBool(getEnv("REBUILD_TIE_BREAK_DISABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REBUILD_TIE_BREAK_DISABLED: %w", err)
	}
	tradeTreeMaxDepth, err := getEnvAsInt("TRADE_TREE_MAX_DEPTH", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRADE_TREE_MAX_DEPTH: %w", err)
	}
	if tradeTreeMaxDepth < 0 {
		return Config{}, fmt.Errorf("TRADE_TREE_MAX_DEPTH must be >= 0")
	}
	rebuildScheduleInterval, err := time.ParseDuration(getEnv("REBUILD_SCHEDULE_INTERVAL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REBUILD_SCHEDULE_INTERVAL: %w", err)
	}
	if rebuildScheduleInterval <= 0 {
		return Config{}, fmt.Errorf("REBUILD_SCHEDULE_INTERVAL must be > 0")
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "dynasty-lineage-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                        strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:      true,
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		SwaggerEnabled:               swaggerEnabled,
		RedisURL:                     strings.TrimSpace(getEnv("REDIS_URL", "")),
		RebuildLockTTL:               rebuildLockTTL,
		SleeperBaseURL:               strings.TrimSpace(getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1")),
		SleeperTimeout:               sleeperTimeout,
		SleeperMaxRetries:            sleeperMaxRetries,
		SleeperMinRequestInterval:    sleeperMinRequestInterval,
		SleeperCircuitEnabled:        sleeperCircuitEnabled,
		SleeperCircuitFailureCount:   sleeperCircuitFailureCount,
		SleeperCircuitOpenTimeout:    sleeperCircuitOpenTimeout,
		SleeperCircuitHalfOpenMaxReq: sleeperCircuitHalfOpenMaxReq,
		SleeperMaxWeek:               sleeperMaxWeek,
		SleeperFetchConcurrency:      sleeperFetchConcurrency,
		RebuildWorkers:               rebuildWorkers,
		RebuildTieBreakDisabled:      rebuildTieBreakDisabled,
		TradeTreeMaxDepth:            tradeTreeMaxDepth,
		RebuildScheduleLeagues:       splitCSV(getEnv("REBUILD_SCHEDULE_LEAGUES", "")),
		RebuildScheduleInterval:      rebuildScheduleInterval,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	// A rebuild answers synchronously and may walk several seasons.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
