package testutil

import (
	"net/http/httptest"
	"strings"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

const TestBucket = "brandpulse-test"
const TestAccessKey = "test-access-key"
const TestSecretKey = "test-secret-key"

// S3Server is an in-process S3 endpoint backed by memory. It starts
// with one empty bucket, TestBucket.
type S3Server struct {
	backend *s3mem.Backend
	server  *httptest.Server
	URL     string
}

func NewS3Server() *S3Server {
	backend := s3mem.New()
	if err := backend.CreateBucket(TestBucket); err != nil {
		panic(err)
	}
	faker := gofakes3.New(backend)
	server := httptest.NewServer(faker.Server())
	return &S3Server{
		backend: backend,
		server:  server,
		URL:     server.URL,
	}
}

// Host returns the server's host:port, which is what minio wants
// as an endpoint.
func (s *S3Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// ObjectExists returns true if key exists in bucket.
func (s *S3Server) ObjectExists(bucket, key string) bool {
	_, err := s.backend.HeadObject(bucket, key)
	return err == nil
}

func (s *S3Server) Close() {
	s.server.Close()
}
