package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Download DownloadConfig `yaml:"download" envconfig:"DOWNLOAD"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
}

// LoggingConfig contains logging configuration.
//
// No envconfig defaults here or on the sibling structs: a defaulted field is
// never empty after envconfig.Process, which would make the file merge a
// no-op. Defaults are applied last, after the env and file layers.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DownloadsDir   string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
	OutputFile     string `yaml:"output_file" envconfig:"OUTPUT_FILE"`
	ExamConfigFile string `yaml:"exam_config_file" envconfig:"EXAM_CONFIG_FILE"`
	LogsDir        string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// DownloadConfig contains browser automation configuration for the report
// download tool. Element IDs are configurable because the source system's
// page markup has drifted between releases.
type DownloadConfig struct {
	URL             string        `yaml:"url" envconfig:"URL"`
	Headless        bool          `yaml:"headless" envconfig:"HEADLESS"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout" envconfig:"PAGE_LOAD_TIMEOUT"`
	DownloadTimeout time.Duration `yaml:"download_timeout" envconfig:"DOWNLOAD_TIMEOUT"`
	LoginWait       time.Duration `yaml:"login_wait" envconfig:"LOGIN_WAIT"`
	DelayBetween    time.Duration `yaml:"delay_between" envconfig:"DELAY_BETWEEN"`
	DateFromID      string        `yaml:"date_from_id" envconfig:"DATE_FROM_ID"`
	DateToID        string        `yaml:"date_to_id" envconfig:"DATE_TO_ID"`
	GroupDropdownID string        `yaml:"group_dropdown_id" envconfig:"GROUP_DROPDOWN_ID"`
	GroupValue      string        `yaml:"group_value" envconfig:"GROUP_VALUE"`
}

// ReportConfig contains pipeline tuning that is not part of the exam lookup
// tables: the number of title rows preceding the header in each export, and
// the derived-column groups of the summary.
type ReportConfig struct {
	HeaderSkipRows int            `yaml:"header_skip_rows" envconfig:"HEADER_SKIP_ROWS"`
	DerivedGroups  []DerivedGroup `yaml:"derived_groups" ignored:"true"`
}

// DerivedGroup declares one derived summary column as the sum of a named list
// of source columns. Sources absent from the active schema contribute zero.
type DerivedGroup struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
}

// DefaultDerivedGroups returns the derived-column groups matching the source
// system's standard report layout. Group membership is configuration because
// the source column names have drifted between releases.
func DefaultDerivedGroups() []DerivedGroup {
	return []DerivedGroup{
		{
			Name:    "Hospitalización Total",
			Sources: []string{"Hospitalización", "URGENTE HOSPITALIZACION", "Sin tipo atención"},
		},
		{
			Name:    "Consulta Externa Total",
			Sources: []string{"Consulta Externa", "URGENTE CONSULTA EXTERNA", "REFERENCIA", "URGENTE REFERENCIA"},
		},
		{
			Name:    "Emergencia",
			Sources: []string{"Emergencia"},
		},
	}
}

// Load loads configuration in three layers: environment variables win over
// the config file, and whatever neither layer set falls back to the built-in
// defaults.
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("LABSTATS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
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

// mergeConfigs merges file config with env config (env takes precedence).
// A zero value means the layer did not set the field.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.DownloadsDir == "" {
		envConfig.Paths.DownloadsDir = fileConfig.Paths.DownloadsDir
	}
	if envConfig.Paths.OutputFile == "" {
		envConfig.Paths.OutputFile = fileConfig.Paths.OutputFile
	}
	if envConfig.Paths.ExamConfigFile == "" {
		envConfig.Paths.ExamConfigFile = fileConfig.Paths.ExamConfigFile
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Download.URL == "" {
		envConfig.Download.URL = fileConfig.Download.URL
	}
	if !envConfig.Download.Headless {
		envConfig.Download.Headless = fileConfig.Download.Headless
	}
	if envConfig.Download.PageLoadTimeout == 0 {
		envConfig.Download.PageLoadTimeout = fileConfig.Download.PageLoadTimeout
	}
	if envConfig.Download.DownloadTimeout == 0 {
		envConfig.Download.DownloadTimeout = fileConfig.Download.DownloadTimeout
	}
	if envConfig.Download.LoginWait == 0 {
		envConfig.Download.LoginWait = fileConfig.Download.LoginWait
	}
	if envConfig.Download.DelayBetween == 0 {
		envConfig.Download.DelayBetween = fileConfig.Download.DelayBetween
	}
	if envConfig.Download.DateFromID == "" {
		envConfig.Download.DateFromID = fileConfig.Download.DateFromID
	}
	if envConfig.Download.DateToID == "" {
		envConfig.Download.DateToID = fileConfig.Download.DateToID
	}
	if envConfig.Download.GroupDropdownID == "" {
		envConfig.Download.GroupDropdownID = fileConfig.Download.GroupDropdownID
	}
	if envConfig.Download.GroupValue == "" {
		envConfig.Download.GroupValue = fileConfig.Download.GroupValue
	}
	if envConfig.Report.HeaderSkipRows == 0 {
		envConfig.Report.HeaderSkipRows = fileConfig.Report.HeaderSkipRows
	}
	if len(fileConfig.Report.DerivedGroups) > 0 {
		envConfig.Report.DerivedGroups = fileConfig.Report.DerivedGroups
	}
	return envConfig
}

// applyDefaults fills every field still at its zero value from Default().
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = def.Logging.Output
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = def.Logging.FilePath
	}
	if cfg.Paths.DownloadsDir == "" {
		cfg.Paths.DownloadsDir = def.Paths.DownloadsDir
	}
	if cfg.Paths.OutputFile == "" {
		cfg.Paths.OutputFile = def.Paths.OutputFile
	}
	if cfg.Paths.ExamConfigFile == "" {
		cfg.Paths.ExamConfigFile = def.Paths.ExamConfigFile
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = def.Paths.LogsDir
	}
	if cfg.Download.URL == "" {
		cfg.Download.URL = def.Download.URL
	}
	if cfg.Download.PageLoadTimeout == 0 {
		cfg.Download.PageLoadTimeout = def.Download.PageLoadTimeout
	}
	if cfg.Download.DownloadTimeout == 0 {
		cfg.Download.DownloadTimeout = def.Download.DownloadTimeout
	}
	if cfg.Download.LoginWait == 0 {
		cfg.Download.LoginWait = def.Download.LoginWait
	}
	if cfg.Download.DelayBetween == 0 {
		cfg.Download.DelayBetween = def.Download.DelayBetween
	}
	if cfg.Download.DateFromID == "" {
		cfg.Download.DateFromID = def.Download.DateFromID
	}
	if cfg.Download.DateToID == "" {
		cfg.Download.DateToID = def.Download.DateToID
	}
	if cfg.Download.GroupDropdownID == "" {
		cfg.Download.GroupDropdownID = def.Download.GroupDropdownID
	}
	if cfg.Download.GroupValue == "" {
		cfg.Download.GroupValue = def.Download.GroupValue
	}
	if cfg.Report.HeaderSkipRows == 0 {
		cfg.Report.HeaderSkipRows = def.Report.HeaderSkipRows
	}
	if len(cfg.Report.DerivedGroups) == 0 {
		cfg.Report.DerivedGroups = def.Report.DerivedGroups
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Report.HeaderSkipRows < 0 {
		return fmt.Errorf("header skip rows cannot be negative: %d", c.Report.HeaderSkipRows)
	}

	for _, g := range c.Report.DerivedGroups {
		if g.Name == "" {
			return fmt.Errorf("derived group with empty name")
		}
		if len(g.Sources) == 0 {
			return fmt.Errorf("derived group %q has no source columns", g.Name)
		}
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "stdout" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/labstats.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/labstats.log",
		},
		Paths: PathsConfig{
			DownloadsDir:   "data/downloads",
			OutputFile:     "Estadistica Hospital.xlsx",
			ExamConfigFile: "config_examenes.json",
			LogsDir:        "logs",
		},
		Download: DownloadConfig{
			URL:             "https://hjmvi.orion-labs.com/informes/estadisticos",
			Headless:        false,
			PageLoadTimeout: 5 * time.Second,
			DownloadTimeout: 15 * time.Second,
			LoginWait:       5 * time.Minute,
			DelayBetween:    2 * time.Second,
			DateFromID:      "fecha-orden-desde",
			DateToID:        "fecha-orden-hasta",
			GroupDropdownID: "agrupar-por",
			GroupValue:      "SECCION_TIPO_ATENCION",
		},
		Report: ReportConfig{
			HeaderSkipRows: 4,
			DerivedGroups:  DefaultDerivedGroups(),
		},
	}
}
