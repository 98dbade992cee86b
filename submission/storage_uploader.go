package submission

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/network"
	"github.com/brandpulse/brandpulse-demo/util"
	"github.com/brandpulse/brandpulse-demo/util/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/op/go-logging"
)

// ObjectStore is what the workflow needs from storage. StorageUploader
// is the real implementation.
type ObjectStore interface {
	Store(ctx context.Context, blob *service.MediaBlob, key string) (*service.StorageReference, error)
	KeyFor(submissionID, playerName string, playerNumber int, role, fileName string) string
	Bucket() string
}

// StorageUploader copies submission media into an S3-compatible bucket
// and returns URLs the processing API can read.
type StorageUploader struct {
	Client          network.MinioClientInterface
	Logger          *logging.Logger
	Target          *common.StorageTarget
	ImageFolder     string
	SignedURLExpiry time.Duration
	URLMode         string
	VideoFolder     string

	// Now returns the current time. Object names include a timestamp.
	Now func() time.Time
}

// NewStorageUploader returns an uploader that uses the context's S3
// client and storage settings.
func NewStorageUploader(context *common.Context) *StorageUploader {
	config := context.Config
	uploader := &StorageUploader{
		Logger:          context.Logger,
		Target:          config.StorageTarget(),
		ImageFolder:     config.ImageFolder,
		SignedURLExpiry: config.SignedURLExpiry,
		URLMode:         config.URLMode,
		VideoFolder:     config.VideoFolder,
		Now:             time.Now,
	}
	// Avoid wrapping a nil *minio.Client in a non-nil interface.
	if context.S3Client != nil {
		uploader.Client = context.S3Client
	}
	return uploader
}

func (u *StorageUploader) Bucket() string {
	return u.Target.Bucket
}

// Store writes blob to key in the configured bucket, overwriting any
// existing object, and returns a reference with a public or signed URL.
// Errors are StorageErrors, except a missing S3 client, which is a
// ConfigurationError.
func (u *StorageUploader) Store(ctx context.Context, blob *service.MediaBlob, key string) (*service.StorageReference, error) {
	if u.Client == nil {
		return nil, errNoStorage()
	}
	if blob.IsEmpty() {
		return nil, common.NewStorageError(fmt.Sprintf("Refusing to store empty file at %s", key), nil)
	}
	contentType := ContentTypeFor(blob)
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": blob.FileName,
		},
	}
	if strings.HasPrefix(contentType, "video/") {
		opts.Progress = logger.NewMinioProgressLogger(u.Logger, key, blob.Size())
	}
	info, err := u.Client.PutObject(ctx, u.Target.Bucket, key, bytes.NewReader(blob.Data), blob.Size(), opts)
	if err != nil {
		return nil, common.NewStorageError(
			fmt.Sprintf("Error copying %s to %s/%s: %v", blob.FileName, u.Target.Bucket, key, err), err)
	}
	objURL, err := u.URLFor(ctx, key)
	if err != nil {
		return nil, err
	}
	u.Logger.Infof("Stored %s (%s, %s) at %s/%s", blob.FileName, contentType, util.HumanSize(blob.Size()), u.Target.Bucket, key)
	return &service.StorageReference{
		Bucket:      u.Target.Bucket,
		Key:         key,
		URL:         objURL,
		ContentType: contentType,
		Size:        info.Size,
		ETag:        info.ETag,
		StoredAt:    u.Now().UTC(),
	}, nil
}

// URLFor returns the URL through which the processing API will read
// key. In signed mode, that's a presigned GET URL valid for
// SignedURLExpiry. In public mode, it's a plain object URL.
func (u *StorageUploader) URLFor(ctx context.Context, key string) (string, error) {
	if u.URLMode == constants.URLModePublic {
		return u.Target.URLFor(key), nil
	}
	signed, err := u.Client.PresignedGetObject(ctx, u.Target.Bucket, key, u.SignedURLExpiry, nil)
	if err != nil {
		return "", common.NewStorageError(fmt.Sprintf("Cannot sign URL for %s/%s: %v", u.Target.Bucket, key, err), err)
	}
	return signed.String(), nil
}

// KeyFor returns a unique object key for a submitted file. The key
// looks like
//
// input_videos/John_Doe_23/<submission id>/game_20240102_150405_1a2b3c4d.mp4
//
// Images go under the image folder, in a player_images or
// jersey_images subfolder. Everything a submission writes shares the
// prefix <folder>/<player>/<submission id>/.
func (u *StorageUploader) KeyFor(submissionID, playerName string, playerNumber int, role, fileName string) string {
	parts := []string{u.ImageFolder, util.PlayerFolder(playerName, playerNumber), submissionID}
	switch role {
	case constants.RoleVideo:
		parts[0] = u.VideoFolder
	case constants.RolePlayerImage:
		parts = append(parts, constants.FolderPlayerImages)
	case constants.RoleJerseyImage:
		parts = append(parts, constants.FolderJerseyImages)
	}
	parts = append(parts, u.uniqueName(fileName))
	return path.Join(parts...)
}

// uniqueName returns <stem>_<YYYYmmdd_HHMMSS>_<8 hex chars><ext>.
func (u *StorageUploader) uniqueName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	stem := strings.Join(strings.Fields(strings.TrimSuffix(base, ext)), "_")
	if stem == "" || stem == "." {
		stem = "file"
	}
	timestamp := u.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s%s", stem, timestamp, uuid.New().String()[:8], ext)
}

// Remove deletes key from the bucket. Deleting a key that does not
// exist is not an error.
func (u *StorageUploader) Remove(ctx context.Context, key string) error {
	if u.Client == nil {
		return errNoStorage()
	}
	err := u.Client.RemoveObject(ctx, u.Target.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return common.NewStorageError(fmt.Sprintf("Error deleting %s/%s: %v", u.Target.Bucket, key, err), err)
	}
	return nil
}

// Diagnose checks that the bucket exists and that our credentials can
// reach it. It returns nil if all is well, or a StorageError saying
// what's wrong.
func (u *StorageUploader) Diagnose(ctx context.Context) error {
	if u.Client == nil {
		return errNoStorage()
	}
	bucket := u.Target.Bucket
	exists, err := u.Client.BucketExists(ctx, bucket)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		switch {
		case resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchBucket":
			return common.NewStorageError(fmt.Sprintf("Storage check failed: bucket '%s' does not exist", bucket), err)
		case resp.StatusCode == http.StatusForbidden || resp.Code == "AccessDenied":
			return common.NewStorageError(fmt.Sprintf("Storage check failed: access denied to bucket '%s'", bucket), err)
		}
		return common.NewStorageError(fmt.Sprintf("Storage check failed: %v", err), err)
	}
	if !exists {
		return common.NewStorageError(fmt.Sprintf("Storage check failed: bucket '%s' does not exist", bucket), nil)
	}
	return nil
}

// TestConnection returns true if the bucket is reachable. On failure,
// it logs the reason and returns false. It has no other side effects.
func (u *StorageUploader) TestConnection(ctx context.Context) bool {
	if err := u.Diagnose(ctx); err != nil {
		u.Logger.Warning(err.Error())
		return false
	}
	return true
}

// ContentTypeFor returns the content type to store and send for blob:
// the declared type if there is a useful one, else the type for the
// file extension, else application/octet-stream.
func ContentTypeFor(blob *service.MediaBlob) string {
	declared := strings.TrimSpace(blob.ContentType)
	if declared != "" && declared != constants.ContentTypeOctetStream {
		return declared
	}
	if contentType, ok := constants.ContentTypes[blob.Extension()]; ok {
		return contentType
	}
	return constants.ContentTypeOctetStream
}

func errNoStorage() error {
	return common.NewConfigurationError("Storage is not configured. Set S3_BUCKET, S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY.", nil)
}
