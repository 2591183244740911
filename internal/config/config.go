package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yunseokse0/viewtest/internal/humanize"
)

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// AppConfig holds the complete application configuration
type AppConfig struct {
	Target  TargetConfig  `yaml:"target"`
	Run     RunConfig     `yaml:"run"`
	Visit   VisitConfig   `yaml:"visit"`
	Browser BrowserConfig `yaml:"browser"`
	IO      IOConfig      `yaml:"io"`
}

// TargetConfig names the page every session opens
type TargetConfig struct {
	URL string `yaml:"url"`
}

// RunConfig controls how many sessions a batch starts and whether batches repeat
type RunConfig struct {
	Workers    int           `yaml:"workers"`
	StaggerMin time.Duration `yaml:"stagger_min"`
	StaggerMax time.Duration `yaml:"stagger_max"`
	Continuous bool          `yaml:"continuous"`
	Interval   time.Duration `yaml:"interval"`
}

// VisitConfig describes what a single browser session does on the page
type VisitConfig struct {
	WaitSelector   string        `yaml:"wait_selector"`
	LoadTimeout    time.Duration `yaml:"load_timeout"`
	MinDwell       time.Duration `yaml:"min_dwell"`
	MaxDwell       time.Duration `yaml:"max_dwell"`
	MinScrolls     int           `yaml:"min_scrolls"`
	MaxScrolls     int           `yaml:"max_scrolls"`
	MinScrollPx    int           `yaml:"min_scroll_px"`
	MaxScrollPx    int           `yaml:"max_scroll_px"`
	MinScrollPause time.Duration `yaml:"min_scroll_pause"`
	MaxScrollPause time.Duration `yaml:"max_scroll_pause"`
}

// BrowserConfig holds the Chrome launch configuration
type BrowserConfig struct {
	Headless      bool         `yaml:"headless"`
	NoSandbox     bool         `yaml:"no_sandbox"`
	DisableDevShm bool         `yaml:"disable_dev_shm"`
	UserAgent     string       `yaml:"user_agent"`
	ExecPath      string       `yaml:"exec_path"`
	WindowSizes   []WindowSize `yaml:"window_sizes"`
}

// WindowSize is a browser window size in CSS pixels
type WindowSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (w WindowSize) String() string {
	return fmt.Sprintf("%dx%d", w.Width, w.Height)
}

// IOConfig holds the result output configuration
type IOConfig struct {
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
}

// Load loads the configuration from a YAML file. Fields missing from the
// file keep their Default values.
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}

	if len(cfg.Browser.WindowSizes) == 0 {
		cfg.Browser.WindowSizes = DefaultWindowSizes()
	}

	return cfg, nil
}

// Default creates a configuration with the stock session behaviour
func Default() *AppConfig {
	return &AppConfig{
		Run: RunConfig{
			Workers:    5,
			StaggerMin: 500 * time.Millisecond,
			StaggerMax: 2 * time.Second,
			Interval:   30 * time.Second,
		},
		Visit: VisitConfig{
			WaitSelector:   "body",
			LoadTimeout:    10 * time.Second,
			MinDwell:       5 * time.Second,
			MaxDwell:       15 * time.Second,
			MinScrolls:     2,
			MaxScrolls:     5,
			MinScrollPx:    300,
			MaxScrollPx:    800,
			MinScrollPause: time.Second,
			MaxScrollPause: 3 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:      true,
			NoSandbox:     true,
			DisableDevShm: true,
			WindowSizes:   DefaultWindowSizes(),
		},
		IO: IOConfig{
			OutputFormat: FormatJSON,
		},
	}
}

// Validate reports the first inconsistency in the configuration.
func (c *AppConfig) Validate() error {
	if c.Target.URL == "" {
		return fmt.Errorf("%w: target url is required", ErrInvalid)
	}
	u, err := url.Parse(c.Target.URL)
	if err != nil {
		return fmt.Errorf("%w: target url: %v", ErrInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: target url must be http or https, got %q", ErrInvalid, c.Target.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: target url has no host", ErrInvalid)
	}

	if c.Run.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Run.Workers)
	}
	if err := checkDurations("stagger", c.Run.StaggerMin, c.Run.StaggerMax); err != nil {
		return err
	}
	if c.Run.Continuous && c.Run.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %v", ErrInvalid, c.Run.Interval)
	}

	if c.Visit.WaitSelector == "" {
		return fmt.Errorf("%w: wait selector is required", ErrInvalid)
	}
	if c.Visit.LoadTimeout <= 0 {
		return fmt.Errorf("%w: load timeout must be positive, got %v", ErrInvalid, c.Visit.LoadTimeout)
	}
	if err := checkDurations("dwell", c.Visit.MinDwell, c.Visit.MaxDwell); err != nil {
		return err
	}
	if err := checkInts("scrolls", c.Visit.MinScrolls, c.Visit.MaxScrolls); err != nil {
		return err
	}
	if err := checkInts("scroll px", c.Visit.MinScrollPx, c.Visit.MaxScrollPx); err != nil {
		return err
	}
	if err := checkDurations("scroll pause", c.Visit.MinScrollPause, c.Visit.MaxScrollPause); err != nil {
		return err
	}

	if len(c.Browser.WindowSizes) == 0 {
		return fmt.Errorf("%w: at least one window size is required", ErrInvalid)
	}
	for _, size := range c.Browser.WindowSizes {
		if size.Width <= 0 || size.Height <= 0 {
			return fmt.Errorf("%w: window size %s must be positive", ErrInvalid, size)
		}
	}

	switch c.IO.OutputFormat {
	case FormatJSON, FormatJSONL:
	default:
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalid, c.IO.OutputFormat)
	}

	return nil
}

// ScrollBounds returns the scroll ranges in the form the humanize package draws from.
func (v VisitConfig) ScrollBounds() humanize.ScrollBounds {
	return humanize.ScrollBounds{
		MinSteps:  v.MinScrolls,
		MaxSteps:  v.MaxScrolls,
		MinPixels: v.MinScrollPx,
		MaxPixels: v.MaxScrollPx,
		MinPause:  v.MinScrollPause,
		MaxPause:  v.MaxScrollPause,
	}
}

func checkDurations(name string, min, max time.Duration) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("%w: %s bounds must not be negative", ErrInvalid, name)
	}
	if min > max {
		return fmt.Errorf("%w: min %s %v exceeds max %v", ErrInvalid, name, min, max)
	}
	return nil
}

func checkInts(name string, min, max int) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("%w: %s bounds must not be negative", ErrInvalid, name)
	}
	if min > max {
		return fmt.Errorf("%w: min %s %d exceeds max %d", ErrInvalid, name, min, max)
	}
	return nil
}
