package common

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/util"
	"github.com/brandpulse/brandpulse-demo/util/logger"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

// MaxSignedURLExpiry is the longest expiry S3 accepts for a
// presigned URL.
const MaxSignedURLExpiry = 7 * 24 * time.Hour

type S3Credentials struct {
	Host      string
	KeyID     string
	SecretKey string
}

type Config struct {
	APIEndpoint       string
	APIKey            string
	CleanupChannel    string
	ConfigName        string
	HTTPAddr          string
	ImageFolder       string
	JournalTTL        time.Duration
	LogDir            string
	LogLevel          logging.Level
	MaxImageSize      int64
	MaxVideoSize      int64
	NsqLookupd        string
	NsqURL            string
	PidFile           string
	PublicURLBase     string
	RedisDefaultDB    int
	RedisPassword     string
	RedisURL          string
	ReferenceEncoding string
	RequestTimeout    time.Duration
	S3Bucket          string
	S3Credentials     S3Credentials
	S3Region          string
	S3UseSSL          bool
	SignatureFile     string
	SignedURLExpiry   time.Duration
	URLMode           string
	VideoFolder       string
	WireMode          string
}

var defaults = map[string]interface{}{
	"CLEANUP_CHANNEL":    constants.DefaultCleanupChannel,
	"HTTP_ADDR":          ":8501",
	"IMAGE_FOLDER":       "input_images",
	"JOURNAL_TTL":        "168h",
	"LOG_LEVEL":          "INFO",
	"MAX_IMAGE_SIZE":     "20mb",
	"MAX_VIDEO_SIZE":     "200mb",
	"REDIS_DEFAULT_DB":   0,
	"REFERENCE_ENCODING": constants.EncodingJSON,
	"REQUEST_TIMEOUT":    "600s",
	"S3_ENDPOINT":        "s3.amazonaws.com",
	"S3_REGION":          "us-east-1",
	"S3_USE_SSL":         true,
	"SIGNED_URL_EXPIRY":  "168h",
	"URL_MODE":           constants.URLModeSigned,
	"VIDEO_FOLDER":       "input_videos",
	"WIRE_MODE":          constants.ModeMultipart,
}

// NewConfig returns a new config based on the env vars
// BRANDPULSE_CONFIG_DIR and BRANDPULSE_ENV. It panics if the
// settings file exists but can't be read. Callers that need to
// report the problem instead should use LoadConfig.
func NewConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

// LoadConfig loads settings from .env.<BRANDPULSE_ENV> in
// BRANDPULSE_CONFIG_DIR. If those vars are not set, settings come from
// the environment alone. Environment variables always override values
// in the file. This does not validate the settings; call Validate for
// that.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv(constants.EnvConfigDir), os.Getenv(constants.EnvConfigName))
}

// LoadConfigFrom loads settings from .env.<envName> in configDir, with
// environment overrides. If either param is empty, it skips the file.
func LoadConfigFrom(configDir, envName string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	if configDir != "" && envName != "" {
		v.AddConfigPath(configDir)
		v.SetConfigName(".env." + envName)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, NewConfigurationError(
				fmt.Sprintf("Cannot read config file .env.%s in %s: %v", envName, configDir, err), err)
		}
	}
	config := &Config{
		APIEndpoint:       strings.TrimSpace(v.GetString("API_ENDPOINT")),
		APIKey:            strings.TrimSpace(v.GetString("API_KEY")),
		CleanupChannel:    v.GetString("CLEANUP_CHANNEL"),
		ConfigName:        envName,
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		ImageFolder:       strings.Trim(v.GetString("IMAGE_FOLDER"), "/"),
		JournalTTL:        v.GetDuration("JOURNAL_TTL"),
		LogDir:            v.GetString("LOG_DIR"),
		LogLevel:          logger.ParseLevel(v.GetString("LOG_LEVEL")),
		MaxImageSize:      int64(v.GetSizeInBytes("MAX_IMAGE_SIZE")),
		MaxVideoSize:      int64(v.GetSizeInBytes("MAX_VIDEO_SIZE")),
		NsqLookupd:        v.GetString("NSQ_LOOKUPD"),
		NsqURL:            strings.TrimRight(v.GetString("NSQ_URL"), "/"),
		PidFile:           v.GetString("PID_FILE"),
		PublicURLBase:     v.GetString("PUBLIC_URL_BASE"),
		RedisDefaultDB:    v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisURL:          v.GetString("REDIS_URL"),
		ReferenceEncoding: strings.ToLower(v.GetString("REFERENCE_ENCODING")),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Credentials: S3Credentials{
			Host:      v.GetString("S3_ENDPOINT"),
			KeyID:     v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
		S3Region:        v.GetString("S3_REGION"),
		S3UseSSL:        v.GetBool("S3_USE_SSL"),
		SignatureFile:   v.GetString("SIGNATURE_FILE"),
		SignedURLExpiry: v.GetDuration("SIGNED_URL_EXPIRY"),
		URLMode:         strings.ToLower(v.GetString("URL_MODE")),
		VideoFolder:     strings.Trim(v.GetString("VIDEO_FOLDER"), "/"),
		WireMode:        strings.ToLower(v.GetString("WIRE_MODE")),
	}
	if err := config.expandPaths(); err != nil {
		return nil, err
	}
	return config, nil
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() error {
	var err error
	for _, setting := range []*string{&c.LogDir, &c.PidFile, &c.SignatureFile} {
		*setting, err = util.ExpandTilde(*setting)
		if err != nil {
			return NewConfigurationError(fmt.Sprintf("Cannot expand path %s", *setting), err)
		}
	}
	return nil
}

// MakeDirs creates the log directory, if one is configured.
func (c *Config) MakeDirs() error {
	if c.LogDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.LogDir, 0755); err != nil {
		return NewConfigurationError(fmt.Sprintf("Cannot create log directory %s", c.LogDir), err)
	}
	return nil
}

// UsesStorage returns true when submissions go through object storage
// (reference mode).
func (c *Config) UsesStorage() bool {
	return c.WireMode == constants.ModeReference
}

// HasStorageSettings returns true if the bucket, endpoint and
// credentials are all set. The cleanup worker needs them in any wire
// mode, since it deletes what reference-mode submissions left behind.
func (c *Config) HasStorageSettings() bool {
	creds := c.S3Credentials
	return c.S3Bucket != "" && creds.Host != "" && creds.KeyID != "" && creds.SecretKey != ""
}

// UsesJournal returns true if a Redis server is configured for the
// upload journal.
func (c *Config) UsesJournal() bool {
	return c.RedisURL != ""
}

// UsesCleanupQueue returns true if an nsqd is configured to receive
// orphan cleanup requests.
func (c *Config) UsesCleanupQueue() bool {
	return c.NsqURL != ""
}

// StorageTarget returns the bucket settings for reference mode.
func (c *Config) StorageTarget() *StorageTarget {
	return &StorageTarget{
		Bucket:        c.S3Bucket,
		Host:          c.S3Credentials.Host,
		PublicURLBase: c.PublicURLBase,
		Region:        c.S3Region,
		Secure:        c.S3UseSSL,
	}
}

// Validate returns a ConfigurationError listing every problem with
// these settings, or nil if the settings are usable.
func (c *Config) Validate() error {
	problems := make([]string, 0)
	if c.APIEndpoint == "" {
		problems = append(problems, "API_ENDPOINT is required")
	} else if u, err := url.Parse(c.APIEndpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("API_ENDPOINT '%s' is not an http(s) URL", c.APIEndpoint))
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be a positive duration")
	}
	if !util.StringListContains(constants.WireModes, c.WireMode) {
		problems = append(problems, fmt.Sprintf("WIRE_MODE must be one of %s", strings.Join(constants.WireModes, ", ")))
	}
	if !util.StringListContains(constants.ReferenceEncodings, c.ReferenceEncoding) {
		problems = append(problems, fmt.Sprintf("REFERENCE_ENCODING must be one of %s", strings.Join(constants.ReferenceEncodings, ", ")))
	}
	if c.MaxVideoSize <= 0 {
		problems = append(problems, "MAX_VIDEO_SIZE must be positive")
	}
	if c.MaxImageSize <= 0 {
		problems = append(problems, "MAX_IMAGE_SIZE must be positive")
	}
	if c.UsesStorage() {
		problems = append(problems, c.storageProblems()...)
	}
	if len(problems) == 0 {
		return nil
	}
	return NewConfigurationError(strings.Join(problems, "; "), nil)
}

func (c *Config) storageProblems() []string {
	problems := make([]string, 0)
	if c.S3Bucket == "" {
		problems = append(problems, "S3_BUCKET is required in reference mode")
	}
	if c.S3Credentials.Host == "" {
		problems = append(problems, "S3_ENDPOINT is required in reference mode")
	}
	if c.S3Credentials.KeyID == "" || c.S3Credentials.SecretKey == "" {
		problems = append(problems, "S3_ACCESS_KEY and S3_SECRET_KEY are required in reference mode")
	}
	if !util.StringListContains(constants.URLModes, c.URLMode) {
		problems = append(problems, fmt.Sprintf("URL_MODE must be one of %s", strings.Join(constants.URLModes, ", ")))
	}
	if c.URLMode == constants.URLModeSigned && (c.SignedURLExpiry < time.Second || c.SignedURLExpiry > MaxSignedURLExpiry) {
		problems = append(problems, "SIGNED_URL_EXPIRY must be between 1s and 168h")
	}
	if c.VideoFolder == "" || c.ImageFolder == "" {
		problems = append(problems, "VIDEO_FOLDER and IMAGE_FOLDER cannot be empty")
	}
	return problems
}

// IsConfigurationError returns true if err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
