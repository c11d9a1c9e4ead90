package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SPRINTDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"127.0.0.1"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8050"`
	Debug           bool          `yaml:"debug" envconfig:"DEBUG" default:"false"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://127.0.0.1:8050,http://localhost:8050"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	// Format is "json" or "text".
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/sprintdash.log"`
}

// DataConfig describes where the story-point spreadsheet may be found.
type DataConfig struct {
	// LocalPath is the explicit path tried first.
	LocalPath string `yaml:"local_path" envconfig:"LOCAL_PATH"`
	// FileName is looked up next to the executable and in the working directory.
	FileName string `yaml:"file_name" envconfig:"FILE_NAME" default:"sprint_points.xlsx"`
	// EnvVar names the single variable that may hold a data path.
	EnvVar          string `yaml:"env_var" envconfig:"ENV_VAR" default:"DATA_FILE_PATH"`
	Sheet           string `yaml:"sheet" envconfig:"SHEET"`
	DeveloperColumn string `yaml:"developer_column" envconfig:"DEVELOPER_COLUMN" default:"Developer"`

	// Google Sheets fallback, tried after the file candidates when SheetsID is set.
	SheetsID        string `yaml:"sheets_id" envconfig:"SHEETS_ID"`
	SheetsRange     string `yaml:"sheets_range" envconfig:"SHEETS_RANGE" default:"Sheet1"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// DashboardConfig holds the y-axis control bounds and table paging.
type DashboardConfig struct {
	YAxisMin     float64 `yaml:"y_axis_min" envconfig:"Y_AXIS_MIN" default:"0"`
	YAxisMax     float64 `yaml:"y_axis_max" envconfig:"Y_AXIS_MAX" default:"50"`
	YAxisStep    float64 `yaml:"y_axis_step" envconfig:"Y_AXIS_STEP" default:"5"`
	DefaultYMin  float64 `yaml:"default_y_min" envconfig:"DEFAULT_Y_MIN" default:"0"`
	DefaultYMax  float64 `yaml:"default_y_max" envconfig:"DEFAULT_Y_MAX" default:"45"`
	PageSize     int     `yaml:"page_size" envconfig:"PAGE_SIZE" default:"15"`
	MarkInterval int     `yaml:"mark_interval" envconfig:"MARK_INTERVAL" default:"10"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"54s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays file values onto env values that were not explicitly
// set in the environment. envconfig fills defaults, so an env value equal to
// the default is treated as unset.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()
	lookup := func(key string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + key)
		return ok
	}

	if fileConfig.Server.Host != "" && !lookup("SERVER_HOST") {
		envConfig.Server.Host = fileConfig.Server.Host
	}
	if fileConfig.Server.Port != 0 && !lookup("SERVER_PORT") {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if fileConfig.Server.Debug && !lookup("SERVER_DEBUG") {
		envConfig.Server.Debug = true
	}
	if fileConfig.Server.ReadTimeout != 0 && envConfig.Server.ReadTimeout == def.Server.ReadTimeout {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if fileConfig.Server.WriteTimeout != 0 && envConfig.Server.WriteTimeout == def.Server.WriteTimeout {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}

	if len(fileConfig.Security.AllowedOrigins) > 0 && !lookup("SECURITY_ALLOWED_ORIGINS") {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}

	if fileConfig.Logging.Level != "" && !lookup("LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" && !lookup("LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.Format != "" && !lookup("LOGGING_FORMAT") {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.FilePath != "" && !lookup("LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	if fileConfig.Data.LocalPath != "" && !lookup("DATA_LOCAL_PATH") {
		envConfig.Data.LocalPath = fileConfig.Data.LocalPath
	}
	if fileConfig.Data.FileName != "" && !lookup("DATA_FILE_NAME") {
		envConfig.Data.FileName = fileConfig.Data.FileName
	}
	if fileConfig.Data.EnvVar != "" && !lookup("DATA_ENV_VAR") {
		envConfig.Data.EnvVar = fileConfig.Data.EnvVar
	}
	if fileConfig.Data.Sheet != "" && !lookup("DATA_SHEET") {
		envConfig.Data.Sheet = fileConfig.Data.Sheet
	}
	if fileConfig.Data.SheetsID != "" && !lookup("DATA_SHEETS_ID") {
		envConfig.Data.SheetsID = fileConfig.Data.SheetsID
	}
	if fileConfig.Data.CredentialsFile != "" && !lookup("DATA_CREDENTIALS_FILE") {
		envConfig.Data.CredentialsFile = fileConfig.Data.CredentialsFile
	}

	if fileConfig.Dashboard.YAxisMax != 0 && !lookup("DASHBOARD_Y_AXIS_MAX") {
		envConfig.Dashboard.YAxisMax = fileConfig.Dashboard.YAxisMax
	}
	if fileConfig.Dashboard.YAxisStep != 0 && !lookup("DASHBOARD_Y_AXIS_STEP") {
		envConfig.Dashboard.YAxisStep = fileConfig.Dashboard.YAxisStep
	}
	if fileConfig.Dashboard.DefaultYMax != 0 && !lookup("DASHBOARD_DEFAULT_Y_MAX") {
		envConfig.Dashboard.DefaultYMax = fileConfig.Dashboard.DefaultYMax
	}
	if fileConfig.Dashboard.PageSize != 0 && !lookup("DASHBOARD_PAGE_SIZE") {
		envConfig.Dashboard.PageSize = fileConfig.Dashboard.PageSize
	}

	if fileConfig.Telemetry.TraceExporter != "" && !lookup("TELEMETRY_TRACE_EXPORTER") {
		envConfig.Telemetry.TraceExporter = fileConfig.Telemetry.TraceExporter
	}
	if fileConfig.Telemetry.MetricExporter != "" && !lookup("TELEMETRY_METRIC_EXPORTER") {
		envConfig.Telemetry.MetricExporter = fileConfig.Telemetry.MetricExporter
	}

	return envConfig
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.FileName == "" {
		return fmt.Errorf("data file name must not be empty")
	}

	if c.Data.DeveloperColumn == "" {
		c.Data.DeveloperColumn = "Developer"
	}

	d := c.Dashboard
	if d.YAxisMin >= d.YAxisMax {
		return fmt.Errorf("y axis min %.1f must be below max %.1f", d.YAxisMin, d.YAxisMax)
	}
	if d.YAxisStep <= 0 {
		return fmt.Errorf("y axis step must be positive")
	}
	if d.DefaultYMin < d.YAxisMin || d.DefaultYMax > d.YAxisMax || d.DefaultYMin > d.DefaultYMax {
		return fmt.Errorf("default y range [%.1f, %.1f] outside axis bounds [%.1f, %.1f]",
			d.DefaultYMin, d.DefaultYMax, d.YAxisMin, d.YAxisMax)
	}
	if d.PageSize <= 0 {
		c.Dashboard.PageSize = 15
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/sprintdash.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"sprintdash.yaml",
		"configs/sprintdash.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://127.0.0.1:8050", "http://localhost:8050"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			Format:   "json",
			FilePath: "logs/sprintdash.log",
		},
		Data: DataConfig{
			FileName:        "sprint_points.xlsx",
			EnvVar:          "DATA_FILE_PATH",
			DeveloperColumn: "Developer",
			SheetsRange:     "Sheet1",
		},
		Dashboard: DashboardConfig{
			YAxisMin:     0,
			YAxisMax:     50,
			YAxisStep:    5,
			DefaultYMin:  0,
			DefaultYMax:  45,
			PageSize:     15,
			MarkInterval: 10,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      54 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
