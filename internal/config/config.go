package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	Environment string `mapstructure:"environment"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// StorageConfig selects where the run state and the wide table live
type StorageConfig struct {
	// Backend is one of file, object or postgres
	Backend      string `mapstructure:"backend"`
	Dir          string `mapstructure:"dir"`
	ObjectPrefix string `mapstructure:"object_prefix"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// ObjectStorageConfig holds S3 compatible storage configuration
type ObjectStorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// EarthEngineConfig holds the remote raster source configuration
type EarthEngineConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Project           string        `mapstructure:"project"`
	AccessToken       string        `mapstructure:"access_token"`
	PageSize          int           `mapstructure:"page_size"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        uint64        `mapstructure:"max_retries"`
	MaxRetryElapsed   time.Duration `mapstructure:"max_retry_elapsed"`
	ImageCollection   string        `mapstructure:"image_collection"`
	Band              string        `mapstructure:"band"`
	RegionTable       string        `mapstructure:"region_table"`
	CountryCode       string        `mapstructure:"country_code"`
	ScaleFactor       float64       `mapstructure:"scale_factor"`
	ScaleMeters       float64       `mapstructure:"scale_meters"`
	TileScale         float64       `mapstructure:"tile_scale"`
}

// UpdateConfig holds the incremental update settings
type UpdateConfig struct {
	Lookback     time.Duration `mapstructure:"lookback"`
	MinInterval  time.Duration `mapstructure:"min_interval"`
	Concurrency  int           `mapstructure:"concurrency"`
	MergePolicy  string        `mapstructure:"merge_policy"`
	RegionSuffix string        `mapstructure:"region_suffix"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LockConfig holds the single-writer lock configuration
type LockConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Key     string        `mapstructure:"key"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables notifications.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
	// ListenAddr exposes /metrics from long running processes when set
	ListenAddr string `mapstructure:"listen_addr"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string        `mapstructure:"host_port"`
	Namespace                          string        `mapstructure:"namespace"`
	TaskQueue                          string        `mapstructure:"task_queue"`
	CronSchedule                       string        `mapstructure:"cron_schedule"`
	RunTimeout                         time.Duration `mapstructure:"run_timeout"`
	RunMaxAttempts                     int32         `mapstructure:"run_max_attempts"`
	MaxConcurrentActivityExecutionSize int           `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64       `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int           `mapstructure:"max_concurrent_activity_task_pollers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`  // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds the credentials accepted by the update trigger
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// UpdaterConfig holds configuration for the one-shot updater
type UpdaterConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	ObjectStorage ObjectStorageConfig `mapstructure:"object_storage"`
	EarthEngine   EarthEngineConfig   `mapstructure:"earthengine"`
	Update        UpdateConfig        `mapstructure:"update"`
	Lock          LockConfig          `mapstructure:"lock"`
	Redis         RedisConfig         `mapstructure:"redis"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// WorkerConfig holds configuration for the Temporal worker
type WorkerConfig struct {
	UpdaterConfig `mapstructure:",squash"`
	Temporal      TemporalConfig `mapstructure:"temporal"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Server        ServerConfig        `mapstructure:"server"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	ObjectStorage ObjectStorageConfig `mapstructure:"object_storage"`
	Temporal      TemporalConfig      `mapstructure:"temporal"`
}

// LoadUpdaterConfig loads configuration for the updater
func LoadUpdaterConfig(configFile string, envPath string) (*UpdaterConfig, error) {
	v := configureViper("updater", configFile, envPath)
	setUpdaterDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config UpdaterConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWorkerConfig loads configuration for the Temporal worker
func LoadWorkerConfig(configFile string, envPath string) (*WorkerConfig, error) {
	v := configureViper("worker", configFile, envPath)
	setUpdaterDefaults(v)
	setTemporalDefaults(v)
	v.SetDefault("temporal.cron_schedule", "0 3 * * *")
	v.SetDefault("temporal.run_timeout", "2h")
	v.SetDefault("temporal.run_max_attempts", 3)
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 2)
	v.SetDefault("temporal.worker_activities_per_second", 1)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 2)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config WorkerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	setStorageDefaults(v)
	setTemporalDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStorage(config.Storage, config.Database, config.ObjectStorage); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the selected backends are fully configured
func (c *UpdaterConfig) Validate() error {
	if err := validateStorage(c.Storage, c.Database, c.ObjectStorage); err != nil {
		return err
	}

	switch domain.MergePolicy(c.Update.MergePolicy) {
	case domain.MergePolicyAverage, domain.MergePolicyWeighted:
	default:
		return fmt.Errorf("update.merge_policy must be %q or %q, got %q",
			domain.MergePolicyAverage, domain.MergePolicyWeighted, c.Update.MergePolicy)
	}

	if c.Update.Lookback <= 0 {
		return errors.New("update.lookback must be positive")
	}
	if c.Lock.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when lock.enabled is set")
	}

	return nil
}

func validateStorage(storage StorageConfig, db DatabaseConfig, objects ObjectStorageConfig) error {
	switch storage.Backend {
	case "file":
		if storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case "object":
		if objects.Endpoint == "" {
			return errors.New("object_storage.endpoint is required for the object backend")
		}
		if objects.Bucket == "" {
			return errors.New("object_storage.bucket is required for the object backend")
		}
	case "postgres":
		if db.Host == "" {
			return errors.New("database.host is required for the postgres backend")
		}
		if db.DBName == "" {
			return errors.New("database.dbname is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", storage.Backend)
	}
	return nil
}

func setStorageDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.object_prefix", "gpp/kenya")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("object_storage.use_ssl", true)
}

func setTemporalDefaults(v *viper.Viper) {
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "gpp-indexer")
}

func setUpdaterDefaults(v *viper.Viper) {
	setStorageDefaults(v)
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("earthengine.base_url", "https://earthengine.googleapis.com")
	v.SetDefault("earthengine.page_size", 1000)
	v.SetDefault("earthengine.requests_per_second", 2)
	v.SetDefault("earthengine.burst", 2)
	v.SetDefault("earthengine.timeout", "5m")
	v.SetDefault("earthengine.max_retries", 6)
	v.SetDefault("earthengine.max_retry_elapsed", "2m")
	v.SetDefault("earthengine.image_collection", domain.DEFAULT_IMAGE_COLLECTION)
	v.SetDefault("earthengine.band", domain.DEFAULT_BAND)
	v.SetDefault("earthengine.region_table", domain.DEFAULT_REGION_TABLE)
	v.SetDefault("earthengine.country_code", domain.DEFAULT_COUNTRY_CODE)
	v.SetDefault("earthengine.scale_factor", domain.DEFAULT_SCALE_FACTOR)
	v.SetDefault("earthengine.scale_meters", domain.DEFAULT_SCALE_METERS)
	v.SetDefault("earthengine.tile_scale", domain.DEFAULT_TILE_SCALE)
	v.SetDefault("update.lookback", domain.DEFAULT_LOOKBACK.String())
	v.SetDefault("update.min_interval", domain.DEFAULT_MIN_INTERVAL.String())
	v.SetDefault("update.concurrency", 4)
	v.SetDefault("update.merge_policy", string(domain.MergePolicyAverage))
	v.SetDefault("update.region_suffix", domain.DEFAULT_REGION_NAME_SUFFIX)
	v.SetDefault("lock.enabled", false)
	v.SetDefault("lock.key", "gpp-indexer:update-lock")
	v.SetDefault("lock.ttl", "2h")
	v.SetDefault("nats.stream_name", "GPP_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "gpp-indexer")
	v.SetDefault("nats.max_age", "720h")
	v.SetDefault("metrics.job", "gpp_indexer")
}

// readConfig reads the config file; a missing file leaves environment variables and defaults
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/updater/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("GPP_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	v.SetDefault("environment", "development")
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"environment",
		"sentry_dsn",
		// Storage
		"storage.backend",
		"storage.dir",
		"storage.object_prefix",
		"storage.auto_migrate",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Object storage
		"object_storage.endpoint",
		"object_storage.access_key",
		"object_storage.secret_key",
		"object_storage.region",
		"object_storage.bucket",
		"object_storage.use_ssl",
		// Earth Engine
		"earthengine.base_url",
		"earthengine.project",
		"earthengine.access_token",
		"earthengine.page_size",
		"earthengine.requests_per_second",
		"earthengine.burst",
		"earthengine.timeout",
		"earthengine.max_retries",
		"earthengine.max_retry_elapsed",
		"earthengine.image_collection",
		"earthengine.band",
		"earthengine.region_table",
		"earthengine.country_code",
		"earthengine.scale_factor",
		"earthengine.scale_meters",
		"earthengine.tile_scale",
		// Update
		"update.lookback",
		"update.min_interval",
		"update.concurrency",
		"update.merge_policy",
		"update.region_suffix",
		// Lock
		"lock.enabled",
		"lock.key",
		"lock.ttl",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.max_age",
		// Metrics
		"metrics.pushgateway_url",
		"metrics.job",
		"metrics.listen_addr",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.task_queue",
		"temporal.cron_schedule",
		"temporal.run_timeout",
		"temporal.run_max_attempts",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// It falls back to the primary when no replica is configured.
func (c *DatabaseConfig) ReadDSN() string {
	if c.ReadHost == "" {
		return c.DSN()
	}

	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
