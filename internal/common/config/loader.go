// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// over it and lets environment variables override any key.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers keys that may only come from the environment so
// AutomaticEnv picks them up during Unmarshal.
func bindEnvKeys(v *viper.Viper) {
	for key, env := range map[string]string{
		"apis.genai.api_key":         "GENAI_API_KEY",
		"apis.anthropic.api_key":     "ANTHROPIC_API_KEY",
		"database.postgres.user":     "DB_USER",
		"database.postgres.password": "DB_PASSWORD",
		"database.redis.password":    "REDIS_PASSWORD",
		"camunda.broker_address":     "ZEEBE_ADDRESS",
		"explanation.provider":       "EXPLANATION_PROVIDER",
		"catalog.source":             "CATALOG_SOURCE",
		"catalog.path":               "CATALOG_PATH",
		"database.elasticsearch.url": "ELASTICSEARCH_URL",
		"database.redis.address":     "REDIS_ADDRESS",
		"database.postgres.host":     "DB_HOST",
		"database.postgres.database": "DB_NAME",
		"observability.sample_ratio": "OTEL_SAMPLE_RATIO",
		"observability.service_name": "OTEL_SERVICE_NAME",
		"server.api_address":         "API_ADDRESS",
		"server.health_address":      "HEALTH_ADDRESS",
		"logging.level":              "LOG_LEVEL",
		"logging.format":             "LOG_FORMAT",
		"matching.top_n":             "MATCHING_TOP_N",
		"matching.explain_top":       "MATCHING_EXPLAIN_TOP",
		"explanation.timeout":        "EXPLANATION_TIMEOUT",
		"explanation.model":          "EXPLANATION_MODEL",
		"catalog.cache_enabled":      "CATALOG_CACHE_ENABLED",
		"apis.genai.base_url":        "GENAI_BASE_URL",
	} {
		_ = v.BindEnv(key, env)
	}
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "yojanamitra"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceFile
	}
	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "schemes"
	}
	if cfg.Catalog.Index == "" {
		cfg.Catalog.Index = "schemes"
	}
	if cfg.Catalog.CacheTTL == 0 {
		cfg.Catalog.CacheTTL = 300
	}

	if cfg.Explanation.Provider == "" {
		cfg.Explanation.Provider = ExplanationProviderNone
	}
	if cfg.Explanation.Timeout == 0 {
		cfg.Explanation.Timeout = 30000
	}
	if cfg.Explanation.MaxTokens == 0 {
		cfg.Explanation.MaxTokens = 500
	}
	if cfg.Explanation.Temperature == 0 {
		cfg.Explanation.Temperature = 0.7
	}

	if cfg.Matching.TopN == 0 {
		cfg.Matching.TopN = 6
	}
	if cfg.Matching.ExplainTop == 0 {
		cfg.Matching.ExplainTop = 3
	}

	if cfg.Server.HealthAddress == "" {
		cfg.Server.HealthAddress = ":8080"
	}
	if cfg.Server.APIAddress == "" {
		cfg.Server.APIAddress = ":3000"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.MetricsPath == "" {
		cfg.Observability.MetricsPath = "/metrics"
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1.0
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Catalog.Source {
	case CatalogSourceFile:
	case CatalogSourcePostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for catalog.source=postgres")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for catalog.source=postgres")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required for catalog.source=postgres")
		}
	case CatalogSourceElasticsearch:
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for catalog.source=elasticsearch")
		}
	default:
		return fmt.Errorf("catalog.source must be one of file, postgres, elasticsearch, got %q", cfg.Catalog.Source)
	}

	if cfg.Catalog.CacheEnabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when catalog.cache_enabled is set")
	}

	switch cfg.Explanation.Provider {
	case ExplanationProviderNone:
	case ExplanationProviderGenAI:
		if cfg.APIs.GenAI.BaseURL == "" {
			return fmt.Errorf("apis.genai.base_url is required for explanation.provider=genai")
		}
	case ExplanationProviderAnthropic:
		if cfg.APIs.Anthropic.APIKey == "" {
			return fmt.Errorf("apis.anthropic.api_key is required for explanation.provider=anthropic")
		}
	default:
		return fmt.Errorf("explanation.provider must be one of none, genai, anthropic, got %q", cfg.Explanation.Provider)
	}

	if cfg.Matching.TopN < 1 {
		return fmt.Errorf("matching.top_n must be positive")
	}
	if cfg.Matching.ExplainTop < 0 || cfg.Matching.ExplainTop > cfg.Matching.TopN {
		return fmt.Errorf("matching.explain_top must be between 0 and matching.top_n")
	}
	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be within [0,1]")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
