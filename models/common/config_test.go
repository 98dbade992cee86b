package common_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvFile = `API_ENDPOINT=http://localhost:8000/process
API_KEY=secret-key
WIRE_MODE=reference
S3_ENDPOINT=localhost:9899
S3_BUCKET=demo-bucket
S3_ACCESS_KEY=access
S3_SECRET_KEY=shhh
S3_USE_SSL=false
MAX_VIDEO_SIZE=50mb
LOG_LEVEL=debug
REDIS_URL=localhost:6379
JOURNAL_TTL=2h
`

func writeEnvFile(t *testing.T, contents string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env.test"), []byte(contents), 0644)
	require.Nil(t, err)
	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	dir := writeEnvFile(t, testEnvFile)
	config, err := common.LoadConfigFrom(dir, "test")
	require.Nil(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "test", config.ConfigName)
	assert.Equal(t, "http://localhost:8000/process", config.APIEndpoint)
	assert.Equal(t, "secret-key", config.APIKey)
	assert.Equal(t, constants.ModeReference, config.WireMode)
	assert.True(t, config.UsesStorage())
	assert.Equal(t, "localhost:9899", config.S3Credentials.Host)
	assert.Equal(t, "demo-bucket", config.S3Bucket)
	assert.False(t, config.S3UseSSL)
	assert.EqualValues(t, 50*1024*1024, config.MaxVideoSize)
	assert.Equal(t, logging.DEBUG, config.LogLevel)
	assert.True(t, config.UsesJournal())
	assert.Equal(t, 2*time.Hour, config.JournalTTL)
	assert.False(t, config.UsesCleanupQueue())

	// Defaults
	assert.Equal(t, 600*time.Second, config.RequestTimeout)
	assert.Equal(t, constants.EncodingJSON, config.ReferenceEncoding)
	assert.Equal(t, constants.URLModeSigned, config.URLMode)
	assert.Equal(t, 168*time.Hour, config.SignedURLExpiry)
	assert.Equal(t, "input_videos", config.VideoFolder)
	assert.Equal(t, "input_images", config.ImageFolder)
	assert.Equal(t, ":8501", config.HTTPAddr)
	assert.Equal(t, "us-east-1", config.S3Region)

	assert.Nil(t, config.Validate())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeEnvFile(t, testEnvFile)
	t.Setenv("WIRE_MODE", "multipart")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	config, err := common.LoadConfigFrom(dir, "test")
	require.Nil(t, err)
	assert.Equal(t, constants.ModeMultipart, config.WireMode)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv(constants.EnvConfigDir, "")
	t.Setenv(constants.EnvConfigName, "")
	t.Setenv("API_ENDPOINT", "https://api.example.com/process")
	config, err := common.LoadConfig()
	require.Nil(t, err)
	assert.Equal(t, "https://api.example.com/process", config.APIEndpoint)
	assert.Equal(t, constants.ModeMultipart, config.WireMode)
	assert.False(t, config.UsesStorage())
	assert.Nil(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := common.LoadConfigFrom(t.TempDir(), "nope")
	require.NotNil(t, err)
	assert.True(t, common.IsConfigurationError(err))
	assert.Panics(t, func() {
		t.Setenv(constants.EnvConfigDir, t.TempDir())
		t.Setenv(constants.EnvConfigName, "nope")
		common.NewConfig()
	})
}

func TestConfigValidate(t *testing.T) {
	config := &common.Config{
		APIEndpoint:       "ftp://example.com",
		ReferenceEncoding: "xml",
		WireMode:          constants.ModeReference,
		URLMode:           constants.URLModeSigned,
		SignedURLExpiry:   30 * 24 * time.Hour,
	}
	err := config.Validate()
	require.NotNil(t, err)
	assert.True(t, common.IsConfigurationError(err))
	msg := err.Error()
	assert.Contains(t, msg, "API_ENDPOINT 'ftp://example.com' is not an http(s) URL")
	assert.Contains(t, msg, "REQUEST_TIMEOUT must be a positive duration")
	assert.Contains(t, msg, "REFERENCE_ENCODING must be one of json, form")
	assert.Contains(t, msg, "MAX_VIDEO_SIZE must be positive")
	assert.Contains(t, msg, "S3_BUCKET is required in reference mode")
	assert.Contains(t, msg, "S3_ACCESS_KEY and S3_SECRET_KEY are required in reference mode")
	assert.Contains(t, msg, "SIGNED_URL_EXPIRY must be between 1s and 168h")
	assert.Contains(t, msg, "VIDEO_FOLDER and IMAGE_FOLDER cannot be empty")

	config.APIEndpoint = ""
	config.WireMode = "carrier-pigeon"
	msg = config.Validate().Error()
	assert.Contains(t, msg, "API_ENDPOINT is required")
	assert.Contains(t, msg, "WIRE_MODE must be one of multipart, reference")
	assert.NotContains(t, msg, "S3_BUCKET")
}

func TestConfigHasStorageSettings(t *testing.T) {
	config := &common.Config{WireMode: constants.ModeMultipart}
	assert.False(t, config.HasStorageSettings())

	config.S3Bucket = "bucket"
	config.S3Credentials = common.S3Credentials{Host: "s3.example.com", KeyID: "key"}
	assert.False(t, config.HasStorageSettings())

	config.S3Credentials.SecretKey = "secret"
	assert.True(t, config.HasStorageSettings())
	assert.False(t, config.UsesStorage())
}

func TestConfigStorageTarget(t *testing.T) {
	config := &common.Config{
		S3Bucket:      "demo-bucket",
		S3Credentials: common.S3Credentials{Host: "s3.example.com"},
		S3Region:      "us-west-2",
		S3UseSSL:      true,
		PublicURLBase: "https://cdn.example.com",
	}
	target := config.StorageTarget()
	assert.Equal(t, "demo-bucket", target.Bucket)
	assert.Equal(t, "s3.example.com", target.Host)
	assert.Equal(t, "us-west-2", target.Region)
	assert.True(t, target.Secure)
	assert.Equal(t, "https://cdn.example.com", target.PublicURLBase)
}

func TestConfigMakeDirs(t *testing.T) {
	config := &common.Config{}
	assert.Nil(t, config.MakeDirs())
	config.LogDir = filepath.Join(t.TempDir(), "logs", "nested")
	require.Nil(t, config.MakeDirs())
	assert.DirExists(t, config.LogDir)
}
