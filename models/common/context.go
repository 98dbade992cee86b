package common

import (
	"fmt"
	"strings"

	"github.com/brandpulse/brandpulse-demo/network"
	"github.com/brandpulse/brandpulse-demo/util"
	"github.com/brandpulse/brandpulse-demo/util/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// Context holds the config and the clients shared by every submission.
// All of the clients are safe for concurrent use. Clients for optional
// services are nil when those services aren't configured.
type Context struct {
	Config           *Config
	FormatIdentifier *util.FormatIdentifier
	Logger           *logging.Logger
	NSQClient        *network.NSQClient
	RedisClient      *network.RedisClient
	S3Client         *minio.Client

	configError error
}

// NewContext loads the config from the environment and returns a new
// Context that logs to LOG_DIR. It panics if the config file can't be
// read, since nothing works without it.
func NewContext() *Context {
	config := NewConfig()
	if err := config.MakeDirs(); err != nil {
		panic(err)
	}
	_logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return NewContextWithLogger(config, _logger)
}

// NewContextWithLogger returns a new Context for config. It does not
// fail on bad settings. Instead, it records them, and ConfigError
// returns them for each submission that needs them.
func NewContextWithLogger(config *Config, _logger *logging.Logger) *Context {
	context := &Context{
		Config: config,
		Logger: _logger,
	}
	problems := make([]string, 0)
	if err := config.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	identifier, err := util.NewFormatIdentifier(config.SignatureFile)
	if err != nil {
		problems = append(problems, err.Error())
		identifier, _ = util.NewFormatIdentifier("")
	}
	context.FormatIdentifier = identifier
	if !identifier.UsesSiegfried() {
		_logger.Info("Media types will be checked by content sniffing only")
	}
	if config.UsesStorage() || config.HasStorageSettings() {
		context.S3Client, err = getS3Client(config, _logger)
		if err != nil && config.UsesStorage() {
			problems = append(problems, err.Error())
		} else if err != nil {
			_logger.Warning(err.Error())
		}
	}
	if config.UsesJournal() {
		context.RedisClient = network.NewRedisClient(
			config.RedisURL,
			config.RedisPassword,
			config.RedisDefaultDB,
			config.JournalTTL)
	}
	if config.UsesCleanupQueue() {
		context.NSQClient = network.NewNSQClient(config.NsqURL)
	}
	if len(problems) > 0 {
		context.configError = NewConfigurationError(strings.Join(problems, "; "), nil)
		_logger.Errorf("Configuration problems: %s", context.configError.Error())
	}
	return context
}

// ConfigError returns a ConfigurationError describing everything wrong
// with the settings, or nil if they're usable.
func (context *Context) ConfigError() error {
	return context.configError
}

func getS3Client(config *Config, _logger *logging.Logger) (*minio.Client, error) {
	creds := config.S3Credentials
	// Force bucket lookup by path, since most S3-compatible services
	// and local test servers don't do virtual-host buckets.
	client, err := minio.New(
		creds.Host,
		&minio.Options{
			Creds:        credentials.NewStaticV4(creds.KeyID, creds.SecretKey, ""),
			Secure:       config.S3UseSSL,
			Region:       config.S3Region,
			BucketLookup: minio.BucketLookupPath,
		})
	if err != nil {
		return nil, fmt.Errorf("Cannot create S3 client for %s: %v", creds.Host, err)
	}
	if config.LogLevel == logging.DEBUG {
		client.TraceOn(NewTracer(_logger))
	}
	return client, nil
}
