package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"StockWindow/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataPath          string `yaml:"data_path"`
	OutputPath        string `yaml:"output_path"`
	StocksPerExchange int    `yaml:"stocks_per_exchange"`
	WindowLength      int    `yaml:"window_length"`
	PredictionCount   int    `yaml:"prediction_count"`
	StartDate         string `yaml:"start_date"` // DD-MM-YYYY, empty picks a random window
	Seed              int64  `yaml:"seed"`
	Workers           int    `yaml:"workers"`
	FailFast          bool   `yaml:"fail_fast"`

	Manifest struct {
		Path   string `yaml:"path"`
		Replay bool   `yaml:"replay"`
	} `yaml:"manifest"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`

	// set when the path was filled in from another setting rather than given
	derivedOutput   bool
	derivedManifest bool
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.resolvePaths()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("STOCKWINDOW_DATA_PATH"); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv("STOCKWINDOW_OUTPUT_PATH"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("STOCKWINDOW_START_DATE"); v != "" {
		c.StartDate = v
	}
	if v := os.Getenv("STOCKWINDOW_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("STOCKWINDOW_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}

	ints := map[string]*int{
		"STOCKWINDOW_STOCKS_PER_EXCHANGE": &c.StocksPerExchange,
		"STOCKWINDOW_WINDOW_LENGTH":       &c.WindowLength,
		"STOCKWINDOW_WORKERS":             &c.Workers,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv("STOCKWINDOW_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STOCKWINDOW_SEED: %w", err)
		}
		c.Seed = seed
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataPath == "" {
		c.DataPath = "data"
	}
	if c.StocksPerExchange == 0 {
		c.StocksPerExchange = 1
	}
	if c.WindowLength == 0 {
		c.WindowLength = 10
	}
	if c.PredictionCount == 0 {
		c.PredictionCount = 3
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 18 * * 1-5"
	}
}

// resolvePaths fills the paths that default to a location relative to
// another one: output beside the data directory, manifest inside output.
// Paths derived earlier are recomputed so they follow later overrides.
func (c *Config) resolvePaths() {
	if c.OutputPath == "" || c.derivedOutput {
		c.OutputPath = filepath.Join(filepath.Dir(filepath.Clean(c.DataPath)), "output")
		c.derivedOutput = true
	}
	if c.Manifest.Path == "" || c.derivedManifest {
		c.Manifest.Path = filepath.Join(c.OutputPath, "manifest.json")
		c.derivedManifest = true
	}
}

// Override applies the flags that were explicitly set on the command line.
func (c *Config) Override(v *viper.Viper) {
	if v.IsSet("data") {
		c.DataPath = v.GetString("data")
	}
	if v.IsSet("output") {
		c.OutputPath = v.GetString("output")
		c.derivedOutput = false
	}
	if v.IsSet("per-exchange") {
		c.StocksPerExchange = v.GetInt("per-exchange")
	}
	if v.IsSet("window") {
		c.WindowLength = v.GetInt("window")
	}
	if v.IsSet("count") {
		c.PredictionCount = v.GetInt("count")
	}
	if v.IsSet("start") {
		c.StartDate = v.GetString("start")
	}
	if v.IsSet("seed") {
		c.Seed = v.GetInt64("seed")
	}
	if v.IsSet("workers") {
		c.Workers = v.GetInt("workers")
	}
	if v.IsSet("fail-fast") {
		c.FailFast = v.GetBool("fail-fast")
	}
	if v.IsSet("replay") {
		c.Manifest.Replay = v.GetBool("replay")
	}
	if v.IsSet("manifest") {
		c.Manifest.Path = v.GetString("manifest")
		c.derivedManifest = false
	}
	if v.IsSet("db") {
		c.Database.SQLitePath = v.GetString("db")
	}
	if v.IsSet("cron") {
		c.Schedule.Cron = v.GetString("cron")
	}
	if v.IsSet("metrics-addr") {
		c.Metrics.Addr = v.GetString("metrics-addr")
	}
	c.resolvePaths()
}

// Start returns the explicit start date, or nil when windows are picked at random.
func (c *Config) Start() (*time.Time, error) {
	if c.StartDate == "" {
		return nil, nil
	}
	t, err := model.ParseDate(c.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	return &t, nil
}

// TelegramEnabled reports whether run summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}
	if c.WindowLength <= 0 {
		return fmt.Errorf("window_length must be positive, got %d", c.WindowLength)
	}
	if c.PredictionCount != 3 {
		return fmt.Errorf("prediction_count must be 3, got %d", c.PredictionCount)
	}
	if c.StocksPerExchange < 0 {
		return fmt.Errorf("stocks_per_exchange must not be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	if c.TelegramEnabled() && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// ValidateSchedule checks the cron expression used by the schedule command.
func (c *Config) ValidateSchedule() error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", c.Schedule.Cron, err)
	}
	return nil
}
