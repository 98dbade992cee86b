package network

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

/*
   Formally define the Minio client interface so we can mock it for testing.
   See https://min.io/docs/minio/linux/developers/go/API.html

   Note that we define only the calls the storage uploader and the
   cleanup worker make. They put, presign, and remove objects and check
   that the bucket exists. They do not create buckets or modify bucket
   policies, and we don't want them to even be able to perform those
   operations.
*/

type MinioClientInterface interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	EndpointURL() *url.URL
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Make sure the real client satisfies the interface.
var _ MinioClientInterface = (*minio.Client)(nil)
