// Package config loads canvaspdf command line configuration from a YAML
// file, a .env file, and CANVASPDF_* environment variables, in increasing
// order of precedence. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	canvaspdf "github.com/porticus-lab/go-canvas-pdf"
	"github.com/porticus-lab/go-canvas-pdf/internal/logging"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "CANVASPDF_"

// Config is the top-level configuration.
type Config struct {
	Browser BrowserConfig  `yaml:"browser"`
	Export  ExportConfig   `yaml:"export"`
	Log     logging.Config `yaml:"log"`
}

// BrowserConfig controls how Chrome is started.
type BrowserConfig struct {
	Driver       string        `yaml:"driver"` // chromedp | rod
	ChromePath   string        `yaml:"chrome_path"`
	AutoDownload bool          `yaml:"auto_download"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	Headless     bool          `yaml:"headless"`
	Stealth      bool          `yaml:"stealth"`
	UserDataDir  string        `yaml:"user_data_dir"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
}

// ExportConfig controls traversal and output.
type ExportConfig struct {
	CanvasSelector   string                   `yaml:"canvas_selector"`
	ToolbarSelectors []string                 `yaml:"toolbar_selectors"`
	NextPageLabels   []string                 `yaml:"next_page_labels"`
	ResetSettle      time.Duration            `yaml:"reset_settle"`
	ScrollSettle     time.Duration            `yaml:"scroll_settle"`
	PageSettle       time.Duration            `yaml:"page_settle"`
	ClickSettle      time.Duration            `yaml:"click_settle"`
	WorkDir          string                   `yaml:"work_dir"`
	Artifacts        canvaspdf.ArtifactConfig `yaml:"artifacts"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Browser: BrowserConfig{
			Driver:      string(canvaspdf.DriverChromedp),
			Headless:    true,
			LoadTimeout: 60 * time.Second,
		},
		Export: ExportConfig{
			CanvasSelector: "canvas",
			ResetSettle:    500 * time.Millisecond,
			ScrollSettle:   300 * time.Millisecond,
			PageSettle:     time.Second,
			ClickSettle:    time.Second,
		},
		Log: logging.Config{Level: "info", Format: "console"},
	}
}

// Load reads path over [Default] and then applies the environment.
// An empty path skips the file. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	duration := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("DRIVER", &c.Browser.Driver)
	str("CHROME_PATH", &c.Browser.ChromePath)
	str("USER_DATA_DIR", &c.Browser.UserDataDir)
	str("WORK_DIR", &c.Export.WorkDir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return errors.Join(
		boolean("NO_SANDBOX", &c.Browser.NoSandbox),
		boolean("HEADLESS", &c.Browser.Headless),
		boolean("AUTO_DOWNLOAD", &c.Browser.AutoDownload),
		boolean("STEALTH", &c.Browser.Stealth),
		duration("LOAD_TIMEOUT", &c.Browser.LoadTimeout),
	)
}

// LaunchOptions converts the browser section to [canvaspdf.Launch] options.
func (c Config) LaunchOptions() []canvaspdf.LaunchOption {
	b := c.Browser
	opts := []canvaspdf.LaunchOption{
		canvaspdf.WithDriver(canvaspdf.Driver(b.Driver)),
		canvaspdf.WithHeadless(b.Headless),
		canvaspdf.WithLoadTimeout(b.LoadTimeout),
	}
	if b.ChromePath != "" {
		opts = append(opts, canvaspdf.WithChromePath(b.ChromePath))
	}
	if b.AutoDownload {
		opts = append(opts, canvaspdf.WithAutoDownload())
	}
	if b.NoSandbox {
		opts = append(opts, canvaspdf.WithNoSandbox())
	}
	if b.Stealth {
		opts = append(opts, canvaspdf.WithStealth())
	}
	if b.UserDataDir != "" {
		opts = append(opts, canvaspdf.WithUserDataDir(b.UserDataDir))
	}
	return opts
}

// ExportOptions converts the export section to [canvaspdf.Exporter]
// options.
func (c Config) ExportOptions() []canvaspdf.Option {
	e := c.Export
	opts := []canvaspdf.Option{
		canvaspdf.WithCanvasSelector(e.CanvasSelector),
		canvaspdf.WithResetSettle(e.ResetSettle),
		canvaspdf.WithScrollSettle(e.ScrollSettle),
		canvaspdf.WithPageSettle(e.PageSettle),
		canvaspdf.WithClickSettle(e.ClickSettle),
		canvaspdf.WithArtifacts(e.Artifacts),
	}
	if e.ToolbarSelectors != nil {
		opts = append(opts, canvaspdf.WithToolbarSelectors(e.ToolbarSelectors...))
	}
	if len(e.NextPageLabels) > 0 {
		opts = append(opts, canvaspdf.WithNextPageLabels(e.NextPageLabels...))
	}
	if e.WorkDir != "" {
		opts = append(opts, canvaspdf.WithWorkDir(e.WorkDir))
	}
	return opts
}
