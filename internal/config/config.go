// =============================================================================
// Sales Report Engine - Configuration Module
// =============================================================================
//
// This module loads the main application configuration and the per-outlet
// report profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): database, directories, logging, defaults.
//      Read with viper; every key can be overridden from the environment
//      with the SALESREPORT_ prefix, e.g. SALESREPORT_LOG_LEVEL=debug.
//   2. Report Profiles (profiles/*.yaml): outlet and owner names, brand
//      column order, "Others" normalization per report, layout overrides.
//
// ARCHITECTURE:
//   - Modular: each outlet has its own profile file
//   - Extensible: new outlets need no code changes
//   - Validated: all configurations are checked on load
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/salesreport/internal/report"
)

// EnvPrefix prefixes environment overrides of main config keys.
const EnvPrefix = "SALESREPORT"

// DefaultProfileName is used when no profile is selected.
const DefaultProfileName = "default"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// STORAGE AND DIRECTORY SETTINGS
	// =========================================================================

	// DatabasePath is the SQLite file holding sale records.
	// Default: "./data/sales.db"
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// OutputDir receives generated reports and backups.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// ArchiveDir receives reports replaced by a newer run with the same name.
	// Default: "./output_archive"
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`

	// ImportArchiveDir receives import files after a successful import.
	// Default: "./import_archive"
	ImportArchiveDir string `mapstructure:"import_archive_dir" yaml:"import_archive_dir"`

	// ArchiveRetentionDays prunes archived reports older than this after
	// each report run. 0 keeps everything.
	ArchiveRetentionDays int `mapstructure:"archive_retention_days" yaml:"archive_retention_days"`

	// ProfilesDir holds the report profile YAML files.
	// Default: "./profiles"
	ProfilesDir string `mapstructure:"profiles_dir" yaml:"profiles_dir"`

	// Profile is the profile used when --profile is not given.
	// Default: "default"
	Profile string `mapstructure:"profile" yaml:"profile"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file. Empty logs to stderr only.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// LogLevel: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat: "console" or "json". Default: "console"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// Timezone decides calendar days. Default: "Asia/Kolkata"
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// OutputNameFormat names generated files. Placeholders:
	//   {variant}   - report variant, e.g. "daily"
	//   {uuid}      - a random UUID
	//   {timestamp} - YYYYMMDD_HHMMSS
	//   {date}      - YYYYMMDD
	//   {profile}   - profile name
	//   {run}       - the report's run id
	// One run may write several variants at once, so the format must
	// contain {variant}, {run} or {uuid}.
	// The extension is added from the output format.
	// Default: "{variant}_{timestamp}"
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// DefaultFormat: "pdf" or "xlsx". Default: "pdf"
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`

	// DefaultMode: "value", "quantity" or "compact". Default: "value"
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`

	// MaxConcurrency bounds reports generated at once by "report all".
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ContinueOnError keeps generating the other reports when one fails.
	// Default: true
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`

	// Import configures CSV parsing for "import".
	Import CSVSettings `mapstructure:"import" yaml:"import"`
}

// CSVSettings contains settings for parsing imported CSV files.
type CSVSettings struct {
	// Delimiter: ",", "|", "\t", ";" or "auto" to sniff the first line.
	// Default: "auto"
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// HeaderRows is the number of header rows. Default: 1
	HeaderRows int `mapstructure:"header_rows" yaml:"header_rows"`

	// DataStartRow is the 1-based first data row. Default: HeaderRows + 1
	DataStartRow int `mapstructure:"data_start_row" yaml:"data_start_row"`

	// Encoding: "UTF-8", "Windows-1252" or "ISO-8859-1". Default: "UTF-8"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// Location resolves Timezone.
func (c *MainConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// =============================================================================
// MAIN CONFIGURATION LOADING
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: explicit config file. Empty searches ./config.yaml and
//     runs on defaults plus environment when none is found.
//
// RETURNS:
//   - The configuration with defaults applied and validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return decodeMainConfig(v)
}

// ParseMainConfig loads the main configuration from YAML bytes, with the
// same environment overrides as LoadMainConfig.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return decodeMainConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setMainConfigDefaults(v)
	return v
}

func decodeMainConfig(v *viper.Viper) (*MainConfig, error) {
	var config MainConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setMainConfigDefaults registers every key so environment overrides apply
// even when the file omits it.
func setMainConfigDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "./data/sales.db")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("archive_dir", "./output_archive")
	v.SetDefault("import_archive_dir", "./import_archive")
	v.SetDefault("archive_retention_days", 0)
	v.SetDefault("profiles_dir", "./profiles")
	v.SetDefault("profile", DefaultProfileName)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("timezone", "Asia/Kolkata")
	v.SetDefault("output_name_format", "{variant}_{timestamp}")
	v.SetDefault("default_format", "pdf")
	v.SetDefault("default_mode", "value")
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("import.delimiter", "auto")
	v.SetDefault("import.header_rows", 1)
	v.SetDefault("import.data_start_row", 0)
	v.SetDefault("import.encoding", "UTF-8")
}

// applyMainConfigDefaults fixes values that are set but unusable.
func applyMainConfigDefaults(config *MainConfig) {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	if config.ArchiveRetentionDays < 0 {
		config.ArchiveRetentionDays = 0
	}
	if config.Import.HeaderRows <= 0 {
		config.Import.HeaderRows = 1
	}
	if config.Import.DataStartRow <= config.Import.HeaderRows {
		config.Import.DataStartRow = config.Import.HeaderRows + 1
	}
	if config.Profile == "" {
		config.Profile = DefaultProfileName
	}
	if strings.TrimSpace(config.OutputNameFormat) == "" {
		config.OutputNameFormat = "{variant}_{timestamp}"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if config.DatabasePath == "" {
		return fmt.Errorf("database_path must be set")
	}
	if _, err := config.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", config.Timezone, err)
	}
	if _, err := report.ParseFormat(config.DefaultFormat); err != nil {
		return fmt.Errorf("default_format: %w", err)
	}
	if _, err := report.ParseMode(config.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	switch strings.ToLower(config.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", config.LogFormat)
	}
	if !distinctPerReport(config.OutputNameFormat) {
		return fmt.Errorf("output_name_format %q must contain {variant}, {run} or {uuid}", config.OutputNameFormat)
	}
	return nil
}

// distinctPerReport reports whether format names each report of a run
// differently.
func distinctPerReport(format string) bool {
	for _, p := range []string{"{variant}", "{run}", "{uuid}"} {
		if strings.Contains(format, p) {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORT PROFILES
// =============================================================================

// LoadProfiles loads every profile in profilesDir, keyed by name (the
// file's name field, or its base name without extension). A missing
// directory yields an empty map.
func LoadProfiles(profilesDir string) (map[string]*report.Profile, error) {
	profiles := make(map[string]*report.Profile)

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		profile, err := loadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if _, dup := profiles[profile.Name]; dup {
			return nil, fmt.Errorf("duplicate profile name %q in %s", profile.Name, file)
		}
		profiles[profile.Name] = profile
	}

	return profiles, nil
}

// SelectProfile returns the named profile. The default name falls back to
// report.DefaultProfile when no file defines it.
func SelectProfile(profiles map[string]*report.Profile, name string) (report.Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	if p, ok := profiles[name]; ok {
		return *p, nil
	}
	if name == DefaultProfileName {
		return report.DefaultProfile(), nil
	}
	return report.Profile{}, fmt.Errorf("profile %q not found", name)
}

// loadProfile loads a single profile file. Unknown keys are rejected so a
// typo does not silently fall back to defaults.
func loadProfile(filePath string) (*report.Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	profile, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	return profile, nil
}

// ParseProfile decodes, defaults and validates one profile document.
func ParseProfile(data []byte) (*report.Profile, error) {
	profile := report.DefaultProfile()
	profile.Name = ""

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	applyProfileDefaults(&profile)

	if err := validateProfile(&profile); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &profile, nil
}

// applyProfileDefaults trims names and drops blank brand entries.
func applyProfileDefaults(p *report.Profile) {
	p.Outlet = strings.TrimSpace(p.Outlet)
	p.Owner = strings.TrimSpace(p.Owner)
	if p.Locale == "" {
		p.Locale = "en-IN"
	}

	brands := p.BrandPriority[:0]
	for _, b := range p.BrandPriority {
		if b = strings.TrimSpace(b); b != "" {
			brands = append(brands, b)
		}
	}
	p.BrandPriority = brands
}

// validateProfile checks variant names and layout values.
func validateProfile(p *report.Profile) error {
	seen := make(map[string]bool)
	for _, b := range p.BrandPriority {
		if seen[b] {
			return fmt.Errorf("brand %q listed twice in brand_priority", b)
		}
		seen[b] = true
	}
	for _, v := range p.NormalizeOthers {
		if _, err := report.ParseVariant(string(v)); err != nil {
			return fmt.Errorf("normalize_others: %w", err)
		}
	}
	if p.Layout.FontSize < 0 || p.Layout.MinRowHeight < 0 || p.Layout.MinColumnWidth < 0 {
		return fmt.Errorf("layout values must not be negative")
	}
	for role, w := range p.ColumnWidths {
		if w <= 0 {
			return fmt.Errorf("column width %q must be positive", role)
		}
	}
	return nil
}
