package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/animator"
	"github.com/vango-dev/catsite/pkg/assets"
	"github.com/vango-dev/catsite/pkg/page"
	"github.com/vango-dev/catsite/pkg/toast"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "catsite.toml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMaxSessions bounds concurrent WebSocket sessions.
	DefaultMaxSessions = 1000
)

// Asset source kinds.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceS3       = "s3"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Toast    ToastConfig    `toml:"toast"`
	Animator AnimatorConfig `toml:"animator"`
	Page     PageConfig     `toml:"page"`
	Form     FormConfig     `toml:"form"`
	Assets   AssetsConfig   `toml:"assets"`
	Actions  ActionsConfig  `toml:"actions"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Log      LogConfig      `toml:"log"`

	// path is where the config was loaded from.
	path string
}

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	MaxSessions     int      `toml:"max_sessions"`
	EventQueue      int      `toml:"event_queue"`
	ReadLimit       int64    `toml:"read_limit"`
	WriteTimeout    string   `toml:"write_timeout"`
	PingInterval    string   `toml:"ping_interval"`
	PongTimeout     string   `toml:"pong_timeout"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	H2C             bool     `toml:"h2c"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// ToastConfig holds the toast lifecycle timings.
type ToastConfig struct {
	EnterDelay string `toml:"enter_delay"`
	Display    string `toml:"display"`
	Exit       string `toml:"exit"`
}

// AnimatorConfig holds visibility animation settings.
type AnimatorConfig struct {
	Threshold      float64 `toml:"threshold"`
	FillDelay      string  `toml:"fill_delay"`
	CounterTick    string  `toml:"counter_tick"`
	CounterSteps   int     `toml:"counter_steps"`
	CarouselPeriod string  `toml:"carousel_period"`
	StaggerStep    string  `toml:"stagger_step"`
}

// PageConfig holds page-level thresholds and timings.
type PageConfig struct {
	RevealThreshold   float64 `toml:"reveal_threshold"`
	ProgressThreshold float64 `toml:"progress_threshold"`
	FadeStep          string  `toml:"fade_step"`
	MBAPeriod         string  `toml:"mba_period"`
	FeedbackRestore   string  `toml:"feedback_restore"`
}

// FormConfig holds contact form settings.
type FormConfig struct {
	SubmitDelay string `toml:"submit_delay"`
}

// AssetsConfig selects where the page is served from.
type AssetsConfig struct {
	Source    string            `toml:"source"`
	Dir       string            `toml:"dir"`
	Bucket    string            `toml:"bucket"`
	Prefix    string            `toml:"prefix"`
	Region    string            `toml:"region"`
	Endpoint  string            `toml:"endpoint"`
	PathStyle bool              `toml:"path_style"`
	Cache     string            `toml:"cache"`
	Headers   map[string]string `toml:"headers"`
}

// ActionsConfig locates the action table.
type ActionsConfig struct {
	// File is a YAML action table. Empty uses the built-in table.
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// MetricsConfig controls Prometheus and tracing.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Path      string `toml:"path"`
	Namespace string `toml:"namespace"`
	Tracing   bool   `toml:"tracing"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	tc := toast.DefaultConfig()
	ac := animator.DefaultConfig()
	pc := page.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			MaxSessions:     DefaultMaxSessions,
			EventQueue:      256,
			ReadLimit:       64 * 1024,
			WriteTimeout:    "10s",
			PingInterval:    "30s",
			PongTimeout:     "60s",
			ShutdownTimeout: "10s",
			H2C:             true,
		},
		Toast: ToastConfig{
			EnterDelay: tc.EnterDelay.String(),
			Display:    tc.Display.String(),
			Exit:       tc.Exit.String(),
		},
		Animator: AnimatorConfig{
			Threshold:      ac.Threshold,
			FillDelay:      ac.FillDelay.String(),
			CounterTick:    ac.CounterTick.String(),
			CounterSteps:   ac.CounterSteps,
			CarouselPeriod: ac.CarouselPeriod.String(),
			StaggerStep:    ac.StaggerStep.String(),
		},
		Page: PageConfig{
			RevealThreshold:   pc.RevealThreshold,
			ProgressThreshold: pc.ProgressThreshold,
			FadeStep:          pc.FadeStep.String(),
			MBAPeriod:         pc.MBAPeriod.String(),
			FeedbackRestore:   pc.FeedbackRestore.String(),
		},
		Form: FormConfig{
			SubmitDelay: pc.SubmitDelay.String(),
		},
		Assets: AssetsConfig{
			Source: SourceEmbedded,
			Dir:    "web",
			Cache:  "none",
		},
		Actions: ActionsConfig{
			Watch: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "catsite",
			Tracing:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.New("E105").Wrap(err).WithDetail(path)
	}
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	err := dec.Decode(c)
	if err == nil {
		return nil
	}

	var strict *toml.StrictMissingError
	if stderrors.As(err, &strict) {
		var errs []error
		for _, de := range strict.Errors {
			row, col := de.Position()
			errs = append(errs, errors.New("E108").
				WithKey(strings.Join(de.Key(), ".")).
				WithLocation(path, row, col))
		}
		return stderrors.Join(errs...)
	}

	var de *toml.DecodeError
	if stderrors.As(err, &de) {
		row, col := de.Position()
		return errors.New("E100").
			Wrap(err).
			WithLocation(path, row, col)
	}
	return errors.New("E100").Wrap(err)
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every value and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(err *errors.SiteError) {
		errs = append(errs, err)
	}

	checkDuration := func(key, value string, allowZero bool) {
		d, err := time.ParseDuration(value)
		if err != nil {
			add(errors.New("E101").WithKey(key).Wrap(err).WithExample(fmt.Sprintf("%s = %q", lastKey(key), "5s")))
			return
		}
		if d < 0 || (d == 0 && !allowZero) {
			add(errors.New("E102").WithKey(key).WithDetail(fmt.Sprintf("%s must be positive, got %s", key, value)))
		}
	}
	checkRatio := func(key string, v float64) {
		if v < 0 || v > 1 {
			add(errors.New("E102").WithKey(key).WithDetail(fmt.Sprintf("%s must be between 0 and 1, got %g", key, v)))
		}
	}
	checkPositive := func(key string, v int64) {
		if v <= 0 {
			add(errors.New("E102").WithKey(key).WithDetail(fmt.Sprintf("%s must be positive, got %d", key, v)))
		}
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		add(errors.New("E107").WithKey("server.addr").Wrap(err))
	}
	checkPositive("server.max_sessions", int64(c.Server.MaxSessions))
	checkPositive("server.event_queue", int64(c.Server.EventQueue))
	checkPositive("server.read_limit", c.Server.ReadLimit)
	checkDuration("server.write_timeout", c.Server.WriteTimeout, false)
	checkDuration("server.ping_interval", c.Server.PingInterval, false)
	checkDuration("server.pong_timeout", c.Server.PongTimeout, false)
	checkDuration("server.shutdown_timeout", c.Server.ShutdownTimeout, false)
	if ping, err1 := time.ParseDuration(c.Server.PingInterval); err1 == nil {
		if pong, err2 := time.ParseDuration(c.Server.PongTimeout); err2 == nil && pong <= ping {
			add(errors.New("E102").WithKey("server.pong_timeout").
				WithDetail("pong_timeout must be longer than ping_interval"))
		}
	}

	checkDuration("toast.enter_delay", c.Toast.EnterDelay, true)
	checkDuration("toast.display", c.Toast.Display, false)
	checkDuration("toast.exit", c.Toast.Exit, true)

	checkRatio("animator.threshold", c.Animator.Threshold)
	checkDuration("animator.fill_delay", c.Animator.FillDelay, true)
	checkDuration("animator.counter_tick", c.Animator.CounterTick, false)
	checkPositive("animator.counter_steps", int64(c.Animator.CounterSteps))
	checkDuration("animator.carousel_period", c.Animator.CarouselPeriod, false)
	checkDuration("animator.stagger_step", c.Animator.StaggerStep, true)

	checkRatio("page.reveal_threshold", c.Page.RevealThreshold)
	checkRatio("page.progress_threshold", c.Page.ProgressThreshold)
	checkDuration("page.fade_step", c.Page.FadeStep, true)
	checkDuration("page.mba_period", c.Page.MBAPeriod, false)
	checkDuration("page.feedback_restore", c.Page.FeedbackRestore, false)

	checkDuration("form.submit_delay", c.Form.SubmitDelay, true)

	switch c.Assets.Source {
	case SourceEmbedded:
	case SourceDir:
		if st, err := os.Stat(c.Assets.Dir); err != nil || !st.IsDir() {
			add(errors.New("E120").WithKey("assets.dir").WithDetail(c.Assets.Dir))
		}
	case SourceS3:
		if c.Assets.Bucket == "" {
			add(errors.New("E122").WithKey("assets.bucket"))
		}
	default:
		add(errors.New("E121").WithKey("assets.source").WithDetail(fmt.Sprintf("got %q", c.Assets.Source)))
	}
	if _, ok := assets.ParseCacheControl(c.Assets.Cache); !ok {
		add(errors.New("E104").WithKey("assets.cache").WithDetail(fmt.Sprintf("got %q", c.Assets.Cache)))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add(errors.New("E102").WithKey("metrics.path").WithDetail("metrics.path must start with /"))
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		add(errors.New("E106").WithKey("log.level").WithDetail(fmt.Sprintf("got %q", c.Log.Level)))
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		add(errors.New("E103").WithKey("log.format").WithDetail(fmt.Sprintf("got %q", c.Log.Format)))
	}

	return stderrors.Join(errs...)
}

func lastKey(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// duration parses s, falling back to def when s is invalid. Validate
// reports invalid values.
func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// ToastSettings returns the toast timings.
func (c *Config) ToastSettings() toast.Config {
	def := toast.DefaultConfig()
	return toast.Config{
		EnterDelay: duration(c.Toast.EnterDelay, def.EnterDelay),
		Display:    duration(c.Toast.Display, def.Display),
		Exit:       duration(c.Toast.Exit, def.Exit),
	}
}

// AnimatorSettings returns the animator settings.
func (c *Config) AnimatorSettings() animator.Config {
	def := animator.DefaultConfig()
	return animator.Config{
		Threshold:      c.Animator.Threshold,
		FillDelay:      duration(c.Animator.FillDelay, def.FillDelay),
		CounterTick:    duration(c.Animator.CounterTick, def.CounterTick),
		CounterSteps:   c.Animator.CounterSteps,
		CarouselPeriod: duration(c.Animator.CarouselPeriod, def.CarouselPeriod),
		StaggerStep:    duration(c.Animator.StaggerStep, def.StaggerStep),
	}
}

// PageSettings returns the complete page configuration.
func (c *Config) PageSettings() page.Config {
	def := page.DefaultConfig()
	return page.Config{
		Toast:             c.ToastSettings(),
		Animator:          c.AnimatorSettings(),
		SubmitDelay:       duration(c.Form.SubmitDelay, def.SubmitDelay),
		FeedbackRestore:   duration(c.Page.FeedbackRestore, def.FeedbackRestore),
		RevealThreshold:   c.Page.RevealThreshold,
		ProgressThreshold: c.Page.ProgressThreshold,
		FadeStep:          duration(c.Page.FadeStep, def.FadeStep),
		MBAPeriod:         duration(c.Page.MBAPeriod, def.MBAPeriod),
	}
}

// WriteTimeout returns the WebSocket write deadline.
func (c *Config) WriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 10*time.Second)
}

// PingInterval returns the WebSocket heartbeat period.
func (c *Config) PingInterval() time.Duration {
	return duration(c.Server.PingInterval, 30*time.Second)
}

// PongTimeout returns how long a connection may stay silent.
func (c *Config) PongTimeout() time.Duration {
	return duration(c.Server.PongTimeout, 60*time.Second)
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

// CacheControl returns the asset caching strategy.
func (c *Config) CacheControl() assets.CacheControl {
	cc, _ := assets.ParseCacheControl(c.Assets.Cache)
	return cc
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}
