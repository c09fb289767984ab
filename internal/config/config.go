package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/yadisk-grabber/internal/constants"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogFile is an optional path of a daily rotated log file.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
	// LogMaxBackups is how many rotated log files are kept besides the current one.
	LogMaxBackups int `mapstructure:"log_max_backups" yaml:"log_max_backups"`
	// APIBaseURL is the public resources endpoint of the Yandex Disk REST API.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`
	// RequestTimeout bounds every outbound HTTP call (e.g., "30s").
	RequestTimeout string `mapstructure:"request_timeout" yaml:"request_timeout"`
	// UserAgent overrides the User-Agent header of outbound requests.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// OutputPath is the directory where downloaded files are saved.
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	// PageSize is the number of entries requested per listing page.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
	// Sort is the listing order passed to the API (name, path, created, modified, size; "-" prefix for descending).
	Sort string `mapstructure:"sort" yaml:"sort"`
	// CacheTTL is how long a listing stays cached (e.g., "5m"); "0" disables caching.
	CacheTTL string `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	// CacheSize is the maximum number of cached listings.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
	// CollisionPolicy decides what happens when the target file already exists: overwrite or rename.
	CollisionPolicy string `mapstructure:"collision_policy" yaml:"collision_policy"`
	// MaxConcurrentDownloads is the maximum number of files downloaded simultaneously.
	MaxConcurrentDownloads int64 `mapstructure:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	// DownloadSpeedLimit sets the maximum download speed per file (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit" yaml:"download_speed_limit"`
	// RetryAttemptsCount is the number of attempts for retryable remote failures; 1 disables retries.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count" yaml:"retry_attempts_count"`
	// MinRetryPause is the minimum pause duration before retrying.
	MinRetryPause string `mapstructure:"min_retry_pause" yaml:"min_retry_pause"`
	// MaxRetryPause is the maximum pause duration before retrying.
	MaxRetryPause string `mapstructure:"max_retry_pause" yaml:"max_retry_pause"`
	// ServerAddress is the listen address of the web front end.
	ServerAddress string `mapstructure:"server_address" yaml:"server_address"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedRequestTimeout is the parsed outbound request timeout.
	ParsedRequestTimeout time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedCacheTTL is the parsed listing cache TTL.
	ParsedCacheTTL time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes per second.
	ParsedDownloadSpeedLimit int64 `mapstructure:"-" yaml:"-"`
	// ParsedMinRetryPause is the parsed minimum retry pause duration.
	ParsedMinRetryPause time.Duration `mapstructure:"-" yaml:"-"`
	// ParsedMaxRetryPause is the parsed maximum retry pause duration.
	ParsedMaxRetryPause time.Duration `mapstructure:"-" yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".yadisk-grabber.yaml"

	// DefaultAPIBaseURL is the public resources endpoint of the Yandex Disk REST API.
	DefaultAPIBaseURL = "https://cloud-api.yandex.net/v1/disk/public/resources/"

	// DefaultPageSize is the number of entries requested per listing page.
	DefaultPageSize = 100

	// DefaultCacheTTL is how long a listing stays cached.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheSize is the maximum number of cached listings.
	DefaultCacheSize = 128

	// DefaultServerAddress is the listen address of the web front end.
	DefaultServerAddress = ":8000"

	// CollisionPolicyOverwrite replaces an existing file with the downloaded one.
	CollisionPolicyOverwrite = "overwrite"
	// CollisionPolicyRename keeps the existing file and saves the new one as "name (N).ext".
	CollisionPolicyRename = "rename"

	// envPrefix prefixes environment variable overrides, e.g. YADISK_OUTPUT_PATH.
	envPrefix = "YADISK"

	// maxPageSize is the largest page the remote API is asked for.
	maxPageSize = 1000
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidLogMaxBackups indicates a negative log backups count.
	ErrInvalidLogMaxBackups = errors.New("log_max_backups cannot be negative")
	// ErrInvalidAPIBaseURL indicates that the API base URL is not an absolute http(s) URL.
	ErrInvalidAPIBaseURL = errors.New("api_base_url must be an absolute http(s) URL")
	// ErrInvalidRequestTimeout indicates a non-positive request timeout.
	ErrInvalidRequestTimeout = errors.New("request_timeout must be positive")
	// ErrEmptyOutputPath indicates that the output path is missing.
	ErrEmptyOutputPath = errors.New("output_path cannot be empty")
	// ErrInvalidPageSize indicates that the page size is out of range.
	ErrInvalidPageSize = errors.New("invalid page_size")
	// ErrInvalidSort indicates an unsupported sort field.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrInvalidCacheTTL indicates a negative cache TTL.
	ErrInvalidCacheTTL = errors.New("cache_ttl cannot be negative")
	// ErrInvalidCacheSize indicates a non-positive cache size.
	ErrInvalidCacheSize = errors.New("cache_size must be a positive integer")
	// ErrInvalidCollisionPolicy indicates an unknown collision policy.
	ErrInvalidCollisionPolicy = errors.New("invalid collision_policy")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry attempts count must be a positive integer")
	// ErrInvalidMinRetryPause indicates that the min retry pause duration is invalid.
	ErrInvalidMinRetryPause = errors.New("min_retry_pause cannot be negative")
	// ErrInvalidMaxRetryPause indicates that the max retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause cannot be negative")
	// ErrInvalidConcurrentDownloads indicates that the concurrent downloads count is invalid.
	ErrInvalidConcurrentDownloads = errors.New("max concurrent downloads must be a positive integer")
	// ErrEmptyServerAddress indicates that the server address is missing.
	ErrEmptyServerAddress = errors.New("server_address cannot be empty")
)

//nolint:gochecknoglobals // Immutable lookup table.
var sortFields = map[string]struct{}{
	"name":     {},
	"path":     {},
	"created":  {},
	"modified": {},
	"size":     {},
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel:               "info",
		LogFile:                "",
		LogMaxBackups:          logger.DefaultMaxBackups,
		APIBaseURL:             DefaultAPIBaseURL,
		RequestTimeout:         "30s",
		UserAgent:              "",
		OutputPath:             constants.DefaultOutputPath,
		PageSize:               DefaultPageSize,
		Sort:                   "",
		CacheTTL:               DefaultCacheTTL.String(),
		CacheSize:              DefaultCacheSize,
		CollisionPolicy:        CollisionPolicyRename,
		MaxConcurrentDownloads: 1,
		DownloadSpeedLimit:     "",
		RetryAttemptsCount:     3,
		MinRetryPause:          "500ms",
		MaxRetryPause:          "2s",
		ServerAddress:          DefaultServerAddress,
	}
}

// LoadConfig loads configuration from a YAML file, environment variables and built-in defaults.
// A missing file is only an error when configFilename was given explicitly.
// The returned configuration is already validated.
func LoadConfig(configFilename string) (*Config, error) {
	isExplicit := configFilename != ""
	if !isExplicit {
		configFilename = DefaultConfigFilename
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configFilename)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if isExplicit || !isMissingFile(err) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.LogMaxBackups < 0 {
		return ErrInvalidLogMaxBackups
	}

	baseURL, err := url.Parse(strings.TrimSpace(cfg.APIBaseURL))
	if err != nil || (baseURL.Scheme != "http" && baseURL.Scheme != "https") || baseURL.Host == "" {
		return fmt.Errorf("%w: '%s'", ErrInvalidAPIBaseURL, cfg.APIBaseURL)
	}

	cfg.ParsedRequestTimeout, err = time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse request timeout: %w", err)
	}

	if cfg.ParsedRequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	cfg.OutputPath = strings.TrimSpace(cfg.OutputPath)
	if cfg.OutputPath == "" {
		return ErrEmptyOutputPath
	}

	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidPageSize, maxPageSize)
	}

	cfg.Sort = strings.TrimSpace(cfg.Sort)
	if cfg.Sort != "" {
		if _, ok := sortFields[strings.TrimPrefix(cfg.Sort, "-")]; !ok {
			return fmt.Errorf("%w: '%s'", ErrInvalidSort, cfg.Sort)
		}
	}

	cacheTTL := strings.TrimSpace(cfg.CacheTTL)
	if cacheTTL != "" && cacheTTL != "0" {
		cfg.ParsedCacheTTL, err = time.ParseDuration(cacheTTL)
		if err != nil {
			return fmt.Errorf("failed to parse cache ttl: %w", err)
		}
	} else {
		cfg.ParsedCacheTTL = 0
	}

	if cfg.ParsedCacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	if cfg.CacheSize <= 0 {
		return ErrInvalidCacheSize
	}

	cfg.CollisionPolicy = strings.ToLower(strings.TrimSpace(cfg.CollisionPolicy))
	if cfg.CollisionPolicy != CollisionPolicyOverwrite && cfg.CollisionPolicy != CollisionPolicyRename {
		return fmt.Errorf("%w: '%s' (expected %s or %s)",
			ErrInvalidCollisionPolicy, cfg.CollisionPolicy, CollisionPolicyOverwrite, CollisionPolicyRename)
	}

	if cfg.MaxConcurrentDownloads <= 0 {
		return ErrInvalidConcurrentDownloads
	}

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	cfg.ParsedMinRetryPause, err = time.ParseDuration(cfg.MinRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse min retry pause: %w", err)
	}

	if cfg.ParsedMinRetryPause < 0 {
		return ErrInvalidMinRetryPause
	}

	cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse max retry pause: %w", err)
	}

	if cfg.ParsedMaxRetryPause < 0 {
		return ErrInvalidMaxRetryPause
	}

	cfg.ServerAddress = strings.TrimSpace(cfg.ServerAddress)
	if cfg.ServerAddress == "" {
		return ErrEmptyServerAddress
	}

	return nil
}

// WriteDefaultConfig writes the built-in defaults as YAML to path.
// An existing file is only replaced when overwrite is set.
func WriteDefaultConfig(path string, overwrite bool) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !overwrite {
		return fmt.Errorf("config file '%s' already exists: %w", path, os.ErrExist)
	}

	content, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(path, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults registers every key with viper so that environment overrides
// are picked up by Unmarshal even when the file does not mention the key.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_max_backups", defaults.LogMaxBackups)
	v.SetDefault("api_base_url", defaults.APIBaseURL)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("page_size", defaults.PageSize)
	v.SetDefault("sort", defaults.Sort)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("cache_size", defaults.CacheSize)
	v.SetDefault("collision_policy", defaults.CollisionPolicy)
	v.SetDefault("max_concurrent_downloads", defaults.MaxConcurrentDownloads)
	v.SetDefault("download_speed_limit", defaults.DownloadSpeedLimit)
	v.SetDefault("retry_attempts_count", defaults.RetryAttemptsCount)
	v.SetDefault("min_retry_pause", defaults.MinRetryPause)
	v.SetDefault("max_retry_pause", defaults.MaxRetryPause)
	v.SetDefault("server_address", defaults.ServerAddress)
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
