package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"connwatch/pkg/validation"

	"gopkg.in/yaml.v2"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "CONNWATCH_CONFIG"

// DefaultPaths are probed in order when no explicit path is given.
var DefaultPaths = []string{
	"configs/config.yaml",
	"/etc/connwatch/config.yaml",
	"config.yaml",
}

// ResolvePath picks the config file path: the explicit value if non-empty,
// then the CONNWATCH_CONFIG env var, then the first existing default path.
// When nothing exists it returns the first default, which Load treats as
// missing and answers with defaults.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return DefaultPaths[0]
}

// Duration accepts YAML values like "60s" or "5m". Bare integers are taken
// as nanoseconds, matching Go's native duration encoding.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := unmarshal(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Std returns the value as a plain time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Monitor struct {
		PingHost             string   `yaml:"ping_host"`
		DNSHost              string   `yaml:"dns_host"`
		Pings                int      `yaml:"pings"`
		Interval             Duration `yaml:"interval"`
		Trigger              int      `yaml:"trigger"`
		DNSTrigger           int      `yaml:"dns_trigger"`
		LatencyThresholdMs   float64  `yaml:"latency_threshold_ms"`
		LossThresholdPercent float64  `yaml:"loss_threshold_percent"`
		PingTimeout          Duration `yaml:"ping_timeout"`
		DNSTimeout           Duration `yaml:"dns_timeout"`
		DisplayTimezone      string   `yaml:"display_timezone"`
		LogPath              string   `yaml:"log_path"`
		StatusPath           string   `yaml:"status_path"`
	} `yaml:"monitor"`

	Notify struct {
		Enabled         bool     `yaml:"enabled"`
		CredentialsPath string   `yaml:"credentials_path"`
		Timeout         Duration `yaml:"timeout"`
	} `yaml:"notify"`

	Archive struct {
		Enabled       bool     `yaml:"enabled"`
		Dir           string   `yaml:"dir"` // empty derives an archive/ folder next to log_path
		Interval      Duration `yaml:"interval"`
		RetentionDays int      `yaml:"retention_days"`
	} `yaml:"archive"`

	Web struct {
		Title           string   `yaml:"title"`
		Address         string   `yaml:"address"`
		LogLines        int      `yaml:"log_lines"`
		StatusMaxAge    Duration `yaml:"status_max_age"` // <= 0 disables the staleness check
		AllowedHosts    []string `yaml:"allowed_hosts"`
		ReadTimeout     Duration `yaml:"read_timeout"`
		WriteTimeout    Duration `yaml:"write_timeout"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	} `yaml:"web"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusAddress string `yaml:"prometheus_address"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`
}

// Load reads configuration from YAML file, applies defaults and env
// overrides. A missing file is not an error: defaults are used. A malformed
// or unreadable file returns the error alongside a usable default config so
// callers can log it and keep going. Callers are expected to run Sanitize
// afterwards.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Monitor.PingHost = "8.8.8.8"
	cfg.Monitor.DNSHost = "www.google.com"
	cfg.Monitor.Pings = 5
	cfg.Monitor.Interval = Duration(60 * time.Second)
	cfg.Monitor.Trigger = 3
	cfg.Monitor.DNSTrigger = 3
	cfg.Monitor.LatencyThresholdMs = 1000
	cfg.Monitor.LossThresholdPercent = 0
	cfg.Monitor.PingTimeout = Duration(20 * time.Second)
	cfg.Monitor.DNSTimeout = Duration(5 * time.Second)
	cfg.Monitor.DisplayTimezone = "US/Eastern"
	cfg.Monitor.LogPath = "/var/log/connection.log"
	cfg.Monitor.StatusPath = "" // derived from log_path by Sanitize

	cfg.Notify.Enabled = true
	cfg.Notify.CredentialsPath = "/etc/pushover.creds"
	cfg.Notify.Timeout = Duration(10 * time.Second)

	cfg.Archive.Enabled = false
	cfg.Archive.Dir = ""
	cfg.Archive.Interval = Duration(24 * time.Hour)
	cfg.Archive.RetentionDays = 14

	cfg.Web.Title = "Internet Connection Monitor"
	cfg.Web.Address = ":5005"
	cfg.Web.LogLines = 100
	cfg.Web.StatusMaxAge = Duration(5 * time.Minute)
	cfg.Web.AllowedHosts = nil
	cfg.Web.ReadTimeout = Duration(15 * time.Second)
	cfg.Web.WriteTimeout = Duration(15 * time.Second)
	cfg.Web.ShutdownTimeout = Duration(10 * time.Second)

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusAddress = ":9090"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 10
	cfg.RateLimiting.Burst = 20

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("CONNWATCH_PING_HOST"); host != "" {
		c.Monitor.PingHost = host
	}
	if host := os.Getenv("CONNWATCH_DNS_HOST"); host != "" {
		c.Monitor.DNSHost = host
	}
	if path := os.Getenv("CONNWATCH_LOG_PATH"); path != "" {
		c.Monitor.LogPath = path
	}
	if path := os.Getenv("CONNWATCH_STATUS_PATH"); path != "" {
		c.Monitor.StatusPath = path
	}
	if path := os.Getenv("CONNWATCH_CREDENTIALS_PATH"); path != "" {
		c.Notify.CredentialsPath = path
	}
	if addr := os.Getenv("CONNWATCH_WEB_ADDRESS"); addr != "" {
		c.Web.Address = addr
	}
	if level := os.Getenv("CONNWATCH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Sanitize repairs malformed or out-of-range values back to defaults instead
// of aborting startup, and derives dependent paths. It returns a note per
// repair so callers can log what was changed.
func (c *Config) Sanitize() []string {
	var notes []string
	def := DefaultConfig()

	repair := func(field, reason string, fix func()) {
		fix()
		notes = append(notes, fmt.Sprintf("%s %s, using default", field, reason))
	}

	if err := validation.ValidateHost(c.Monitor.PingHost); err != nil {
		repair("monitor.ping_host", "is not a valid host", func() { c.Monitor.PingHost = def.Monitor.PingHost })
	}
	if err := validation.ValidateHost(c.Monitor.DNSHost); err != nil {
		repair("monitor.dns_host", "is not a valid host", func() { c.Monitor.DNSHost = def.Monitor.DNSHost })
	}
	if c.Monitor.Pings <= 0 {
		repair("monitor.pings", "must be > 0", func() { c.Monitor.Pings = def.Monitor.Pings })
	}
	if c.Monitor.Interval <= 0 {
		repair("monitor.interval", "must be > 0", func() { c.Monitor.Interval = def.Monitor.Interval })
	}
	if c.Monitor.Trigger <= 0 {
		repair("monitor.trigger", "must be > 0", func() { c.Monitor.Trigger = def.Monitor.Trigger })
	}
	if c.Monitor.DNSTrigger <= 0 {
		repair("monitor.dns_trigger", "must be > 0", func() { c.Monitor.DNSTrigger = def.Monitor.DNSTrigger })
	}
	if c.Monitor.LatencyThresholdMs <= 0 {
		repair("monitor.latency_threshold_ms", "must be > 0", func() { c.Monitor.LatencyThresholdMs = def.Monitor.LatencyThresholdMs })
	}
	if c.Monitor.LossThresholdPercent < 0 || c.Monitor.LossThresholdPercent > 100 {
		repair("monitor.loss_threshold_percent", "must be in [0,100]", func() { c.Monitor.LossThresholdPercent = def.Monitor.LossThresholdPercent })
	}
	if c.Monitor.PingTimeout <= 0 {
		repair("monitor.ping_timeout", "must be > 0", func() { c.Monitor.PingTimeout = def.Monitor.PingTimeout })
	}
	if c.Monitor.DNSTimeout <= 0 {
		repair("monitor.dns_timeout", "must be > 0", func() { c.Monitor.DNSTimeout = def.Monitor.DNSTimeout })
	}
	// Probe timeouts must stay shorter than the sampling interval so a hung
	// probe cannot stall the loop.
	if c.Monitor.PingTimeout >= c.Monitor.Interval {
		repair("monitor.ping_timeout", "must be shorter than monitor.interval", func() { c.Monitor.PingTimeout = c.Monitor.Interval / 2 })
	}
	if c.Monitor.DNSTimeout >= c.Monitor.Interval {
		repair("monitor.dns_timeout", "must be shorter than monitor.interval", func() { c.Monitor.DNSTimeout = c.Monitor.Interval / 2 })
	}
	if _, err := time.LoadLocation(c.Monitor.DisplayTimezone); err != nil {
		repair("monitor.display_timezone", "is not a loadable location", func() { c.Monitor.DisplayTimezone = "UTC" })
	}
	if c.Monitor.LogPath == "" {
		repair("monitor.log_path", "is empty", func() { c.Monitor.LogPath = def.Monitor.LogPath })
	}
	if c.Monitor.StatusPath == "" {
		c.Monitor.StatusPath = filepath.Join(filepath.Dir(c.Monitor.LogPath), "connection_status.json")
	}

	if c.Notify.CredentialsPath == "" {
		repair("notify.credentials_path", "is empty", func() { c.Notify.CredentialsPath = def.Notify.CredentialsPath })
	}
	if c.Notify.Timeout <= 0 {
		repair("notify.timeout", "must be > 0", func() { c.Notify.Timeout = def.Notify.Timeout })
	}

	if c.Archive.Enabled {
		if c.Archive.Interval <= 0 {
			repair("archive.interval", "must be > 0", func() { c.Archive.Interval = def.Archive.Interval })
		}
		if c.Archive.RetentionDays <= 0 {
			repair("archive.retention_days", "must be > 0", func() { c.Archive.RetentionDays = def.Archive.RetentionDays })
		}
	}

	if c.Web.Title == "" {
		repair("web.title", "is empty", func() { c.Web.Title = def.Web.Title })
	}
	if err := validation.ValidateListenAddress(c.Web.Address); err != nil {
		repair("web.address", "is not a valid listen address", func() { c.Web.Address = def.Web.Address })
	}
	if c.Web.LogLines <= 0 {
		repair("web.log_lines", "must be > 0", func() { c.Web.LogLines = def.Web.LogLines })
	}
	if c.Web.ReadTimeout <= 0 {
		repair("web.read_timeout", "must be > 0", func() { c.Web.ReadTimeout = def.Web.ReadTimeout })
	}
	if c.Web.WriteTimeout <= 0 {
		repair("web.write_timeout", "must be > 0", func() { c.Web.WriteTimeout = def.Web.WriteTimeout })
	}
	if c.Web.ShutdownTimeout <= 0 {
		repair("web.shutdown_timeout", "must be > 0", func() { c.Web.ShutdownTimeout = def.Web.ShutdownTimeout })
	}

	if c.Monitoring.PrometheusEnabled {
		if err := validation.ValidateListenAddress(c.Monitoring.PrometheusAddress); err != nil {
			repair("monitoring.prometheus_address", "is not a valid listen address", func() { c.Monitoring.PrometheusAddress = def.Monitoring.PrometheusAddress })
		}
	}

	if c.Logging.Level == "" {
		repair("logging.level", "is empty", func() { c.Logging.Level = def.Logging.Level })
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		repair("logging.format", "must be json or console", func() { c.Logging.Format = def.Logging.Format })
	}

	if c.Tracing.Enabled {
		if err := validation.ValidateURL(c.Tracing.JaegerURL); err != nil {
			repair("tracing.jaeger_url", "is not a valid URL", func() { c.Tracing.JaegerURL = def.Tracing.JaegerURL })
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		repair("tracing.sample_rate", "must be in [0,1]", func() { c.Tracing.SampleRate = def.Tracing.SampleRate })
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			repair("rate_limiting.requests_per_second", "must be > 0", func() { c.RateLimiting.RequestsPerSecond = def.RateLimiting.RequestsPerSecond })
		}
		if c.RateLimiting.Burst <= 0 {
			repair("rate_limiting.burst", "must be > 0", func() { c.RateLimiting.Burst = def.RateLimiting.Burst })
		}
	}

	return notes
}

// DisplayLocation resolves the configured display timezone. Sanitize has
// already repaired unloadable names, so failures here fall back to UTC.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.Monitor.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ArchiveDir resolves the archive directory, defaulting to an archive/
// folder next to the connection log.
func (c *Config) ArchiveDir() string {
	if c.Archive.Dir != "" {
		return c.Archive.Dir
	}
	return filepath.Join(filepath.Dir(c.Monitor.LogPath), "archive")
}
