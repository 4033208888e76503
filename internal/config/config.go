// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/surveyor/internal/classify"
)

// DefaultSurveyURL is the entry page of the survey.
const DefaultSurveyURL = "https://www.mcdvoice.com"

// Run modes.
const (
	ModeFull        = "full"
	ModeOverallOnly = "overall-only"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Survey  SurveyConfig  `mapstructure:"survey" yaml:"survey"`
	Pacing  PacingConfig  `mapstructure:"pacing" yaml:"pacing"`
	Finder  FinderConfig  `mapstructure:"finder" yaml:"finder"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the browser instance driven by the runner.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// RemoteURL attaches to an already running browser (ws:// or http://host:port)
	// instead of launching one.
	RemoteURL         string         `mapstructure:"remote_url" yaml:"remote_url"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration  `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// SurveyConfig describes the survey instance to complete.
type SurveyConfig struct {
	URL    string   `mapstructure:"url" yaml:"url"`
	Ticket []string `mapstructure:"ticket" yaml:"ticket"`
	// Precedence is the order in which answer policies run on a regular page.
	Precedence   []string      `mapstructure:"precedence" yaml:"precedence"`
	MaxPages     int           `mapstructure:"max_pages" yaml:"max_pages"`
	EntryTimeout time.Duration `mapstructure:"entry_timeout" yaml:"entry_timeout"`
	// Seed makes answer sampling reproducible. Zero means time seeded.
	Seed int64  `mapstructure:"seed" yaml:"seed"`
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// PacingConfig holds the literal pauses between survey steps.
type PacingConfig struct {
	AnswerPause        time.Duration `mapstructure:"answer_pause" yaml:"answer_pause"`
	QuestionDuration   time.Duration `mapstructure:"question_duration" yaml:"question_duration"`
	TicketSegmentPause time.Duration `mapstructure:"ticket_segment_pause" yaml:"ticket_segment_pause"`
	PostTicketPause    time.Duration `mapstructure:"post_ticket_pause" yaml:"post_ticket_pause"`
	PostSubmitPause    time.Duration `mapstructure:"post_submit_pause" yaml:"post_submit_pause"`
	PageLoadPause      time.Duration `mapstructure:"page_load_pause" yaml:"page_load_pause"`
	SessionExtendPause time.Duration `mapstructure:"session_extend_pause" yaml:"session_extend_pause"`
	ShutdownPause      time.Duration `mapstructure:"shutdown_pause" yaml:"shutdown_pause"`
	TextPause          time.Duration `mapstructure:"text_pause" yaml:"text_pause"`
	DetailPause        time.Duration `mapstructure:"detail_pause" yaml:"detail_pause"`
	TypingDelayMin     time.Duration `mapstructure:"typing_delay_min" yaml:"typing_delay_min"`
	TypingDelayMax     time.Duration `mapstructure:"typing_delay_max" yaml:"typing_delay_max"`
}

// FinderConfig bounds the element lookup retry loop.
type FinderConfig struct {
	Attempts   int           `mapstructure:"attempts" yaml:"attempts"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ReportConfig selects the optional report outputs.
type ReportConfig struct {
	JSON     bool   `mapstructure:"json" yaml:"json"`
	JSONFile string `mapstructure:"json_file" yaml:"json_file"`
	XLSXFile string `mapstructure:"xlsx_file" yaml:"xlsx_file"`
}

// DefaultPrecedence is the order of answer policies on a regular survey page.
var DefaultPrecedence = []string{
	"free-text",
	"dropdown",
	"radio",
	"table-radio",
	"checkbox-group",
	"problem-report",
	"satisfaction-na",
	"satisfaction",
	"overall-satisfaction",
}

// DefaultTicket is the receipt code used when none is configured.
var DefaultTicket = []string{"26108", "01130", "60525", "16266", "00380", "8"}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "surveyor")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "magenta")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.action_timeout", "10s")

	// -- Survey --
	v.SetDefault("survey.url", DefaultSurveyURL)
	v.SetDefault("survey.ticket", DefaultTicket)
	v.SetDefault("survey.precedence", DefaultPrecedence)
	v.SetDefault("survey.max_pages", 60)
	v.SetDefault("survey.entry_timeout", "15s")
	v.SetDefault("survey.seed", 0)
	v.SetDefault("survey.mode", ModeFull)

	// -- Pacing --
	v.SetDefault("pacing.answer_pause", "2s")
	v.SetDefault("pacing.question_duration", "10s")
	v.SetDefault("pacing.ticket_segment_pause", "3s")
	v.SetDefault("pacing.post_ticket_pause", "5s")
	v.SetDefault("pacing.post_submit_pause", "5s")
	v.SetDefault("pacing.page_load_pause", "5s")
	v.SetDefault("pacing.session_extend_pause", "5s")
	v.SetDefault("pacing.shutdown_pause", "3s")
	v.SetDefault("pacing.text_pause", "5s")
	v.SetDefault("pacing.detail_pause", "3s")
	v.SetDefault("pacing.typing_delay_min", "50ms")
	v.SetDefault("pacing.typing_delay_max", "150ms")

	// -- Finder --
	v.SetDefault("finder.attempts", 3)
	v.SetDefault("finder.retry_delay", "1s")

	// -- Report --
	v.SetDefault("report.json", false)
}

// NewConfigFromViper creates a validated configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves '~' in every file path the user can configure.
func (c *Config) expandPaths() error {
	paths := []*string{&c.Logger.LogFile, &c.Report.JSONFile, &c.Report.XLSXFile}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path '%s': %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Survey.URL) == "" {
		return fmt.Errorf("survey.url is a required configuration field")
	}
	if len(c.Survey.Ticket) == 0 {
		return fmt.Errorf("survey.ticket must contain at least one segment")
	}
	for i, seg := range c.Survey.Ticket {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("survey.ticket segment %d is empty", i+1)
		}
	}
	if len(c.Survey.Precedence) == 0 {
		return fmt.Errorf("survey.precedence must name at least one policy")
	}
	for _, name := range c.Survey.Precedence {
		if _, err := classify.ParseArchetype(name); err != nil {
			return fmt.Errorf("survey.precedence: %w", err)
		}
	}
	if c.Survey.MaxPages <= 0 {
		return fmt.Errorf("survey.max_pages must be a positive integer")
	}
	if c.Survey.EntryTimeout <= 0 {
		return fmt.Errorf("survey.entry_timeout must be a positive duration")
	}
	if c.Survey.Mode != ModeFull && c.Survey.Mode != ModeOverallOnly {
		return fmt.Errorf("survey.mode must be '%s' or '%s'", ModeFull, ModeOverallOnly)
	}
	if c.Finder.Attempts <= 0 {
		return fmt.Errorf("finder.attempts must be a positive integer")
	}
	if c.Finder.RetryDelay < 0 {
		return fmt.Errorf("finder.retry_delay cannot be negative")
	}
	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("pacing configuration invalid: %w", err)
	}
	return nil
}

// Validate checks that no pause is negative and the typing window is ordered.
func (p *PacingConfig) Validate() error {
	durations := map[string]time.Duration{
		"answer_pause":         p.AnswerPause,
		"question_duration":    p.QuestionDuration,
		"ticket_segment_pause": p.TicketSegmentPause,
		"post_ticket_pause":    p.PostTicketPause,
		"post_submit_pause":    p.PostSubmitPause,
		"page_load_pause":      p.PageLoadPause,
		"session_extend_pause": p.SessionExtendPause,
		"shutdown_pause":       p.ShutdownPause,
		"text_pause":           p.TextPause,
		"detail_pause":         p.DetailPause,
		"typing_delay_min":     p.TypingDelayMin,
		"typing_delay_max":     p.TypingDelayMax,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if p.TypingDelayMax < p.TypingDelayMin {
		return fmt.Errorf("typing_delay_max must not be lower than typing_delay_min")
	}
	return nil
}

// NoPacing returns a pacing configuration with every pause disabled. Used by
// the replay command and tests, where no real page needs time to settle.
func NoPacing() PacingConfig {
	return PacingConfig{}
}
