package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file read from the config directory.
const FileName = "gem_radar.cfg.json"

// FileStorageConfig holds JSON document storage settings
type FileStorageConfig struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// SQLiteConfig holds SQLite storage settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type   string            `json:"type" mapstructure:"type"`
	File   FileStorageConfig `json:"file" mapstructure:"file"`
	SQLite SQLiteConfig      `json:"sqlite" mapstructure:"sqlite"`
	DB     DBConfig          `json:"db" mapstructure:"db"`
}

// WorkerConfig holds background saver settings
type WorkerConfig struct {
	QueueSize  int           `json:"queueSize" mapstructure:"queueSize"`
	RetryDelay time.Duration `json:"retryDelay" mapstructure:"retryDelay"`
	MaxRetries int           `json:"maxRetries" mapstructure:"maxRetries"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// LoggingConfig holds log sink settings
type LoggingConfig struct {
	Level          string `json:"logLevel"`
	Dir            string `json:"logsDir"`
	GraylogEnabled bool   `json:"graylogEnabled"`
	GraylogAddress string `json:"graylogAddress"`
}

// SurfaceConfig holds overlay stream settings
type SurfaceConfig struct {
	WebsocketEnabled bool   `json:"websocketEnabled"`
	WebsocketURL     string `json:"websocketUrl"`
	Secret           string `json:"secret"`
	FrameBuffer      int    `json:"frameBuffer"`
}

// InfluxConfig holds frame statistics sink settings
type InfluxConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Token   string `json:"token" mapstructure:"token"`
	Org     string `json:"org" mapstructure:"org"`
	Bucket  string `json:"bucket" mapstructure:"bucket"`
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./gemlogs")

	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.dir", "./gem_radar")
	viper.SetDefault("storage.sqlite.path", "./gem_radar.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "gem_radar")

	viper.SetDefault("worker.queueSize", 64)
	viper.SetDefault("worker.retryDelay", "2s")
	viper.SetDefault("worker.maxRetries", 3)

	viper.SetDefault("surface.websocket.enabled", false)
	viper.SetDefault("surface.websocket.url", "ws://localhost:8765/radar")
	viper.SetDefault("surface.websocket.secret", "")
	viper.SetDefault("surface.websocket.frameBuffer", 8)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "gem-radar")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "gem")
	viper.SetDefault("influx.bucket", "radar")

	viper.SetDefault("monitor.interval", "30s")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStorageConfig returns the persistence backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:   viper.GetString("storage.type"),
		File:   FileStorageConfig{Dir: viper.GetString("storage.file.dir")},
		SQLite: SQLiteConfig{Path: viper.GetString("storage.sqlite.path")},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetWorkerConfig returns the background saver settings.
func GetWorkerConfig() WorkerConfig {
	return WorkerConfig{
		QueueSize:  viper.GetInt("worker.queueSize"),
		RetryDelay: viper.GetDuration("worker.retryDelay"),
		MaxRetries: viper.GetInt("worker.maxRetries"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetLoggingConfig returns the log sink settings.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetSurfaceConfig returns the overlay stream settings.
func GetSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		WebsocketEnabled: viper.GetBool("surface.websocket.enabled"),
		WebsocketURL:     viper.GetString("surface.websocket.url"),
		Secret:           viper.GetString("surface.websocket.secret"),
		FrameBuffer:      viper.GetInt("surface.websocket.frameBuffer"),
	}
}

// GetInfluxConfig returns the frame statistics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL:     viper.GetString("influx.url"),
		Token:   viper.GetString("influx.token"),
		Org:     viper.GetString("influx.org"),
		Bucket:  viper.GetString("influx.bucket"),
	}
}

// GetMonitorInterval returns how often the status monitor samples.
func GetMonitorInterval() time.Duration {
	return viper.GetDuration("monitor.interval")
}
