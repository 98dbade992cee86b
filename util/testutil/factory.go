package testutil

import (
	"bytes"
	"fmt"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/util/logger"
)

const (
	PlayerName   = "John Doe"
	PlayerNumber = 23
)

// MP4Bytes returns the start of an MP4 file: an ftyp box with major
// brand mp42, followed by some padding.
func MP4Bytes() []byte {
	ftyp := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '1', 'i', 's', 'o', 'm'}
	return append(ftyp, bytes.Repeat([]byte{0x00}, 1000)...)
}

// PNGBytes returns the PNG signature plus padding.
func PNGBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x00}, 200)...)
}

// JPEGBytes returns the JPEG start-of-image marker plus padding.
func JPEGBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 200)...)
}

// GetUploadRequest returns a valid request with a video and the
// specified number of player and jersey images.
func GetUploadRequest(playerImages, jerseyImages int) *service.UploadRequest {
	req := &service.UploadRequest{
		Video:        service.NewMediaBlob("game.mp4", "video/mp4", MP4Bytes()),
		PlayerImages: make([]*service.MediaBlob, playerImages),
		JerseyImages: make([]*service.MediaBlob, jerseyImages),
		PlayerName:   PlayerName,
		PlayerNumber: PlayerNumber,
	}
	for i := 0; i < playerImages; i++ {
		req.PlayerImages[i] = service.NewMediaBlob(fmt.Sprintf("player_%d.jpg", i+1), "image/jpeg", JPEGBytes())
	}
	for i := 0; i < jerseyImages; i++ {
		req.JerseyImages[i] = service.NewMediaBlob(fmt.Sprintf("jersey_%d.png", i+1), "image/png", PNGBytes())
	}
	return req
}

// GetConfig returns a valid config for the given wire mode. The
// processing API lives at apiURL. If s3 is not nil, storage settings
// point at it. If redis is not nil, the journal uses it.
func GetConfig(mode, apiURL string, s3 *S3Server, redis *RedisServer) *common.Config {
	config := &common.Config{
		APIEndpoint:       apiURL,
		CleanupChannel:    constants.DefaultCleanupChannel,
		ConfigName:        "test",
		HTTPAddr:          "127.0.0.1:0",
		ImageFolder:       "input_images",
		JournalTTL:        time.Hour,
		LogLevel:          logger.ParseLevel("DEBUG"),
		MaxImageSize:      10 * 1024 * 1024,
		MaxVideoSize:      200 * 1024 * 1024,
		ReferenceEncoding: constants.EncodingJSON,
		RequestTimeout:    5 * time.Second,
		S3Region:          "us-east-1",
		SignedURLExpiry:   time.Hour,
		URLMode:           constants.URLModeSigned,
		VideoFolder:       "input_videos",
		WireMode:          mode,
	}
	if s3 != nil {
		config.S3Bucket = TestBucket
		config.S3Credentials = common.S3Credentials{
			Host:      s3.Host(),
			KeyID:     TestAccessKey,
			SecretKey: TestSecretKey,
		}
	}
	if redis != nil {
		config.RedisURL = redis.Addr()
	}
	return config
}
