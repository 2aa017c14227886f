package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// DashboardFile is the optional TOML file of dashboard settings.
//
//	title = "Leak Detection Dashboard"
//	auto_refresh_seconds = 2
//	instance_ttl = "30m"
//
//	[backend]
//	url = "http://localhost:5000"
//	timeout = "10s"
type DashboardFile struct {
	Title              string      `toml:"title"`
	AutoRefreshSeconds int         `toml:"auto_refresh_seconds"`
	InstanceTTL        string      `toml:"instance_ttl"`
	Backend            BackendFile `toml:"backend"`
}

// BackendFile is the [backend] table of DashboardFile
type BackendFile struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// DashboardSettings is the resolved dashboard configuration
type DashboardSettings struct {
	Title              string
	AutoRefreshSeconds int
	InstanceTTL        time.Duration
	BackendURL         string
	BackendTimeout     time.Duration
}

// DefaultDashboardSettings is used for everything neither the file nor a flag sets
func DefaultDashboardSettings() DashboardSettings {
	return DashboardSettings{
		Title:              "Leak Detection Dashboard",
		AutoRefreshSeconds: 2,
		InstanceTTL:        30 * time.Minute,
		BackendTimeout:     10 * time.Second,
	}
}

// LoadDashboardFile reads and parses a TOML dashboard file
func LoadDashboardFile(path string) (*DashboardFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "dashboard config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read dashboard config file", goerr.V(ConfigPathKey, path))
	}

	var file DashboardFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse dashboard config file",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}
	return &file, nil
}

// Apply overlays the values set in the file onto s
func (f *DashboardFile) Apply(s *DashboardSettings) error {
	if f.Title != "" {
		s.Title = f.Title
	}
	if f.AutoRefreshSeconds != 0 {
		s.AutoRefreshSeconds = f.AutoRefreshSeconds
	}
	if f.InstanceTTL != "" {
		d, err := time.ParseDuration(f.InstanceTTL)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid instance_ttl", goerr.V(FieldKey, "instance_ttl"), goerr.V(ValueKey, f.InstanceTTL))
		}
		s.InstanceTTL = d
	}
	if f.Backend.URL != "" {
		s.BackendURL = f.Backend.URL
	}
	if f.Backend.Timeout != "" {
		d, err := time.ParseDuration(f.Backend.Timeout)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid backend timeout", goerr.V(FieldKey, "backend.timeout"), goerr.V(ValueKey, f.Backend.Timeout))
		}
		s.BackendTimeout = d
	}
	return nil
}

// Validate checks the resolved settings
func (s *DashboardSettings) Validate() error {
	if s.Title == "" {
		return goerr.Wrap(ErrInvalidConfig, "title is required", goerr.V(FieldKey, "title"))
	}
	if s.AutoRefreshSeconds < 0 {
		return goerr.Wrap(ErrInvalidConfig, "auto refresh must not be negative", goerr.V(FieldKey, "auto-refresh"), goerr.V(ValueKey, s.AutoRefreshSeconds))
	}
	if s.InstanceTTL <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "instance TTL must be positive", goerr.V(FieldKey, "instance-ttl"), goerr.V(ValueKey, s.InstanceTTL))
	}
	if s.BackendURL == "" {
		return goerr.Wrap(ErrInvalidConfig, "backend URL is required", goerr.V(FieldKey, "backend-url"))
	}
	if s.BackendTimeout <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "backend timeout must be positive", goerr.V(FieldKey, "backend-timeout"), goerr.V(ValueKey, s.BackendTimeout))
	}
	return nil
}

// Dashboard holds CLI flags for the dashboard and its backend. Flags given explicitly
// override the config file.
type Dashboard struct {
	configPath     string
	title          string
	autoRefresh    int
	instanceTTL    time.Duration
	backendURL     string
	backendTimeout time.Duration
}

func (x *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Dashboard config file (TOML)",
			Sources:     cli.EnvVars("LEAKWATCH_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Dashboard title",
			Sources:     cli.EnvVars("LEAKWATCH_TITLE"),
			Destination: &x.title,
		},
		&cli.IntFlag{
			Name:        "auto-refresh",
			Usage:       "Seconds between page reloads while data is loading (0 disables)",
			Sources:     cli.EnvVars("LEAKWATCH_AUTO_REFRESH"),
			Destination: &x.autoRefresh,
		},
		&cli.DurationFlag{
			Name:        "instance-ttl",
			Usage:       "Idle time after which a dashboard session is discarded",
			Sources:     cli.EnvVars("LEAKWATCH_INSTANCE_TTL"),
			Destination: &x.instanceTTL,
		},
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Base URL of the leak detection backend API",
			Category:    "Backend",
			Sources:     cli.EnvVars("LEAKWATCH_BACKEND_URL"),
			Destination: &x.backendURL,
		},
		&cli.DurationFlag{
			Name:        "backend-timeout",
			Usage:       "Timeout of a backend API request",
			Category:    "Backend",
			Sources:     cli.EnvVars("LEAKWATCH_BACKEND_TIMEOUT"),
			Destination: &x.backendTimeout,
		},
	}
}

func (x Dashboard) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("backend_url", x.backendURL),
	)
}

// Configure resolves defaults, the config file and explicitly set flags, in that order
func (x *Dashboard) Configure(c *cli.Command) (*DashboardSettings, error) {
	settings := DefaultDashboardSettings()

	if x.configPath != "" {
		file, err := LoadDashboardFile(x.configPath)
		if err != nil {
			return nil, err
		}
		if err := file.Apply(&settings); err != nil {
			return nil, goerr.Wrap(err, "invalid dashboard config file", goerr.V(ConfigPathKey, x.configPath))
		}
	}

	if c.IsSet("title") {
		settings.Title = x.title
	}
	if c.IsSet("auto-refresh") {
		settings.AutoRefreshSeconds = x.autoRefresh
	}
	if c.IsSet("instance-ttl") {
		settings.InstanceTTL = x.instanceTTL
	}
	if c.IsSet("backend-url") {
		settings.BackendURL = x.backendURL
	}
	if c.IsSet("backend-timeout") {
		settings.BackendTimeout = x.backendTimeout
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}
