// Package config provides configuration management for resolve-mcp.
package config

import (
	"time"
)

// ConfigFileNames are the base names searched for a config file.
var ConfigFileNames = []string{".resolve-mcp", "resolve-mcp"}

// ConfigFileExtensions are the supported config file extensions.
var ConfigFileExtensions = []string{"yaml", "yml", "json"}

// Config is the root configuration for resolve-mcp.
type Config struct {
	// Server configures the HTTP/WebSocket server.
	Server ServerConfig `mapstructure:"server" json:"server"`
	// Resolve configures the connection to the DaVinci Resolve
	// scripting bridge.
	Resolve ResolveConfig `mapstructure:"resolve" json:"resolve"`
	// Markers configures timeline marker handling.
	Markers MarkersConfig `mapstructure:"markers" json:"markers"`
	// Layout configures UI layout preset storage.
	Layout LayoutConfig `mapstructure:"layout" json:"layout"`
	// Render configures render queue defaults.
	Render RenderConfig `mapstructure:"render" json:"render"`
	// Output configures output settings.
	Output OutputConfig `mapstructure:"output" json:"output"`
}

// ServerConfig configures the HTTP/WebSocket server.
type ServerConfig struct {
	// Host is the listen address (default: 127.0.0.1; the adapter
	// controls a local application and should not be exposed).
	Host string `mapstructure:"host" json:"host"`
	// Port is the listen port.
	Port int `mapstructure:"port" json:"port"`
	// APIKey, when set, is required in the X-API-Key header of every
	// HTTP request and WebSocket upgrade (can use env var expansion).
	APIKey string `mapstructure:"api_key" json:"api_key,omitempty"`
	// AllowedOrigins lists origins allowed by CORS.
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins,omitempty"`
	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// ResolveConfig configures the scripting bridge connection.
type ResolveConfig struct {
	// FuscriptPath overrides the path to the fuscript binary. When
	// empty, OS-specific install locations are probed.
	FuscriptPath string `mapstructure:"fuscript_path" json:"fuscript_path,omitempty"`
	// ConnectTimeout bounds the initial bridge handshake.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout"`
	// CallTimeout bounds each individual vendor call.
	CallTimeout time.Duration `mapstructure:"call_timeout" json:"call_timeout"`
	// MinVersion is the minimum supported Resolve version. Older
	// versions connect in degraded mode.
	MinVersion string `mapstructure:"min_version" json:"min_version"`
	// RetryAttempts is the attempt budget for the timeline delete and
	// duplicate fallback chains.
	RetryAttempts int `mapstructure:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the wait between fallback attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
}

// MarkersConfig configures timeline marker handling.
type MarkersConfig struct {
	// InvalidColorPolicy decides what happens to a marker color outside
	// the palette: "reject" (error) or "default" (fall back to Blue).
	InvalidColorPolicy string `mapstructure:"invalid_color_policy" json:"invalid_color_policy"`
}

// LayoutConfig configures UI layout preset storage.
type LayoutConfig struct {
	// PresetDir is the directory holding exported layout presets.
	PresetDir string `mapstructure:"preset_dir" json:"preset_dir"`
	// Watch enables watching PresetDir for out-of-band changes.
	Watch bool `mapstructure:"watch" json:"watch"`
}

// RenderConfig configures render queue defaults.
type RenderConfig struct {
	// TargetDir is the default render output directory when a job does
	// not specify one.
	TargetDir string `mapstructure:"target_dir" json:"target_dir,omitempty"`
}

// OutputConfig configures output settings.
type OutputConfig struct {
	// Format is the output format (text, json).
	Format string `mapstructure:"format" json:"format"`
	// Color enables colored output.
	Color bool `mapstructure:"color" json:"color"`
	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose" json:"verbose"`
	// Quiet suppresses non-error output.
	Quiet bool `mapstructure:"quiet" json:"quiet"`
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	// LogFile is an optional log file path.
	LogFile string `mapstructure:"log_file" json:"log_file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			AllowedOrigins:  []string{"http://localhost", "http://127.0.0.1"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Resolve: ResolveConfig{
			ConnectTimeout: 10 * time.Second,
			CallTimeout:    30 * time.Second,
			MinVersion:     "18.0.0",
			RetryAttempts:  3,
			RetryDelay:     500 * time.Millisecond,
		},
		Markers: MarkersConfig{
			InvalidColorPolicy: "reject",
		},
		Layout: LayoutConfig{
			PresetDir: defaultPresetDir(),
			Watch:     true,
		},
		Render: RenderConfig{},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			LogLevel: "info",
		},
	}
}
