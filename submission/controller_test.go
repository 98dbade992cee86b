package submission_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/submission"
	"github.com/brandpulse/brandpulse-demo/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore wraps the real uploader, remembers every key it was
// asked to store, and fails the call numbered failOn (1-based).
type recordingStore struct {
	*submission.StorageUploader
	keys   []string
	failOn int
}

func (s *recordingStore) Store(ctx context.Context, blob *service.MediaBlob, key string) (*service.StorageReference, error) {
	s.keys = append(s.keys, key)
	if len(s.keys) == s.failOn {
		return nil, common.NewStorageError(errAccessDenied.Error(), errAccessDenied)
	}
	return s.StorageUploader.Store(ctx, blob, key)
}

// recordingPublisher stands in for nsqd.
type recordingPublisher struct {
	mutex  sync.Mutex
	topics []string
	ids    []string
}

func (p *recordingPublisher) Enqueue(topic string, submissionID string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.topics = append(p.topics, topic)
	p.ids = append(p.ids, submissionID)
	return nil
}

func getController(t *testing.T, mode string) (*submission.Controller, *recordingStore, *recordingPublisher) {
	_context := getContext(t, mode)
	controller := submission.NewController(_context)
	store := &recordingStore{StorageUploader: submission.NewStorageUploader(_context)}
	if mode == constants.ModeReference {
		controller.Store = store
	}
	publisher := &recordingPublisher{}
	controller.Publisher = publisher
	return controller, store, publisher
}

func TestSubmitMissingVideo(t *testing.T) {
	for _, mode := range constants.WireModes {
		controller, store, publisher := getController(t, mode)
		req := testutil.GetUploadRequest(2, 1)
		req.Video = nil

		s := controller.Submit(context.Background(), req)
		assert.Equal(t, constants.StateIdle, s.State, mode)
		assert.True(t, s.Rejected(), mode)
		assert.Equal(t, string(common.ValidationError), s.ErrorKind, mode)
		assert.Contains(t, s.ErrorMessage, "A video file is required", mode)
		assert.Equal(t, []string{constants.StateIdle, constants.StateValidating, constants.StateIdle}, s.States())

		// No side effects
		assert.Empty(t, store.keys, mode)
		assert.Empty(t, s.References, mode)
		assert.Equal(t, 0, APITestServer.RequestCount(), mode)
		assert.Empty(t, publisher.ids, mode)
		assert.Nil(t, s.Result)
	}
}

// Scenario: 2 player images, no jerseys, multipart mode.
func TestSubmitMultipart(t *testing.T) {
	controller, store, _ := getController(t, constants.ModeMultipart)
	APITestServer.Respond(http.StatusOK, `{"output_video_url": "https://api.example.com/out.mp4", "detection_count": 150}`)

	s := controller.Submit(context.Background(), testutil.GetUploadRequest(2, 0))
	require.Equal(t, constants.StateSucceeded, s.State, s.ErrorMessage)
	assert.Equal(t, []string{
		constants.StateIdle,
		constants.StateValidating,
		constants.StateInvoking,
		constants.StateSucceeded,
	}, s.States())
	require.NotNil(t, s.Result)
	assert.Equal(t, "https://api.example.com/out.mp4", s.Result.OutputVideoURL)
	assert.EqualValues(t, 150, *s.Result.DetectionCount)
	assert.Empty(t, s.ErrorKind)
	assert.Empty(t, store.keys)

	require.Equal(t, 1, APITestServer.RequestCount())
	recorded := APITestServer.LastRequest()
	assert.Len(t, recorded.Files, 3)
	assert.Len(t, recorded.Fields, 2)
	assert.Equal(t, "John Doe", recorded.Fields.Get("player_name"))
	assert.Equal(t, "23", recorded.Fields.Get("player_number"))
}

func TestSubmitReference(t *testing.T) {
	controller, store, publisher := getController(t, constants.ModeReference)
	req := testutil.GetUploadRequest(2, 2)

	s := controller.Submit(context.Background(), req)
	require.Equal(t, constants.StateSucceeded, s.State, s.ErrorMessage)
	assert.Equal(t, []string{
		constants.StateIdle,
		constants.StateValidating,
		constants.StateUploading,
		constants.StateInvoking,
		constants.StateSucceeded,
	}, s.States())

	// One object per blob, in input order.
	require.Len(t, store.keys, 5)
	require.Len(t, s.References, 5)
	roles := make([]string, len(s.References))
	for i, ref := range s.References {
		roles[i] = ref.Role
		assert.Equal(t, store.keys[i], ref.Key)
		assert.True(t, S3TestServer.ObjectExists(testutil.TestBucket, ref.Key), ref.Key)
	}
	assert.Equal(t, []string{
		constants.RoleVideo,
		constants.RolePlayerImage,
		constants.RolePlayerImage,
		constants.RoleJerseyImage,
		constants.RoleJerseyImage,
	}, roles)
	assert.Contains(t, s.References[1].Key, "player_1_")
	assert.Contains(t, s.References[2].Key, "player_2_")

	// One invocation, carrying the stored URLs in the same order.
	require.Equal(t, 1, APITestServer.RequestCount())
	body := &service.ReferenceRequest{}
	require.Nil(t, json.Unmarshal(APITestServer.LastRequest().Body, body))
	assert.Equal(t, s.References[0].URL, body.VideoURL)
	assert.Equal(t, []string{s.References[1].URL, s.References[2].URL}, body.PlayerImageURLs)
	assert.Equal(t, []string{s.References[3].URL, s.References[4].URL}, body.JerseyImageURLs)
	assert.Equal(t, req.PlayerName, body.PlayerName)
	assert.Equal(t, req.PlayerNumber, body.PlayerNumber)

	// Everything is journaled, nothing is orphaned.
	keys, err := controller.Journal.(keyLister).Keys(s.ID)
	require.Nil(t, err)
	assert.Equal(t, store.keys, keys)
	assert.Empty(t, publisher.ids)
}

type keyLister interface {
	Keys(submissionID string) ([]string, error)
}

func TestSubmitReferenceTwice(t *testing.T) {
	controller, store, _ := getController(t, constants.ModeReference)
	req := testutil.GetUploadRequest(1, 1)

	first := controller.Submit(context.Background(), req)
	second := controller.Submit(context.Background(), req)
	require.True(t, first.Succeeded())
	require.True(t, second.Succeeded())
	assert.NotEqual(t, first.ID, second.ID)

	// Two independent sets of objects.
	require.Len(t, store.keys, 6)
	seen := make(map[string]bool)
	for _, key := range store.keys {
		assert.False(t, seen[key], key)
		seen[key] = true
		assert.True(t, S3TestServer.ObjectExists(testutil.TestBucket, key))
	}

	// Equivalent results.
	assert.Equal(t, first.Result.OutputVideoURL, second.Result.OutputVideoURL)
	assert.Equal(t, first.Result.Metrics(), second.Result.Metrics())
	assert.Equal(t, 2, APITestServer.RequestCount())
}

// Scenario: the upload of the second player image is denied.
func TestSubmitStorageFailure(t *testing.T) {
	controller, store, publisher := getController(t, constants.ModeReference)
	store.failOn = 3 // video, player image 1, player image 2

	s := controller.Submit(context.Background(), testutil.GetUploadRequest(2, 0))
	assert.Equal(t, constants.StateFailed, s.State)
	assert.Equal(t, string(common.StorageError), s.ErrorKind)
	assert.Contains(t, s.ErrorMessage, "Failed to upload player image 2 (player_2.jpg)")
	assert.Contains(t, s.ErrorMessage, "Access Denied")
	assert.Equal(t, []string{
		constants.StateIdle,
		constants.StateValidating,
		constants.StateUploading,
		constants.StateFailed,
	}, s.States())

	// No invocation, no rollback.
	assert.Equal(t, 0, APITestServer.RequestCount())
	require.Len(t, s.References, 2)
	for _, ref := range s.References {
		assert.True(t, S3TestServer.ObjectExists(testutil.TestBucket, ref.Key))
	}

	// The two stored objects are flagged for cleanup.
	assert.True(t, s.HasOrphans())
	assert.Equal(t, []string{constants.TopicOrphanCleanup}, publisher.topics)
	assert.Equal(t, []string{s.ID}, publisher.ids)
}

// Scenario: the processing API takes longer than the timeout.
func TestSubmitTimeout(t *testing.T) {
	controller, _, publisher := getController(t, constants.ModeReference)
	controller.Client.(*submission.ProcessingClient).Timeout = 200 * time.Millisecond
	APITestServer.Delay(2 * time.Second)

	s := controller.Submit(context.Background(), testutil.GetUploadRequest(1, 1))
	assert.Equal(t, constants.StateFailed, s.State)
	assert.Equal(t, string(common.TimeoutError), s.ErrorKind)
	assert.Nil(t, s.Result)

	// Stored objects remain.
	require.Len(t, s.References, 3)
	for _, ref := range s.References {
		assert.True(t, S3TestServer.ObjectExists(testutil.TestBucket, ref.Key))
	}
	assert.Equal(t, []string{s.ID}, publisher.ids)
}

func TestSubmitResponseErrors(t *testing.T) {
	controller, _, _ := getController(t, constants.ModeMultipart)

	APITestServer.Respond(http.StatusOK, `{"detection_count": 150}`)
	s := controller.Submit(context.Background(), testutil.GetUploadRequest(0, 0))
	assert.Equal(t, constants.StateFailed, s.State)
	assert.Equal(t, string(common.ResponseError), s.ErrorKind)
	assert.Contains(t, s.ErrorMessage, "output_video_url")
	assert.False(t, s.HasOrphans())

	APITestServer.Respond(http.StatusBadGateway, "upstream down")
	s = controller.Submit(context.Background(), testutil.GetUploadRequest(0, 0))
	assert.Equal(t, string(common.ResponseError), s.ErrorKind)
	assert.Contains(t, s.ErrorMessage, "status 502")
}

func TestSubmitConfigurationError(t *testing.T) {
	_context := getContext(t, constants.ModeReference)
	_context.Config.S3Bucket = ""
	_context = reloadContext(_context)
	controller := submission.NewController(_context)

	s := controller.Submit(context.Background(), testutil.GetUploadRequest(1, 0))
	assert.Equal(t, constants.StateFailed, s.State)
	assert.Equal(t, string(common.ConfigurationError), s.ErrorKind)
	assert.Contains(t, s.ErrorMessage, "S3_BUCKET is required")
	assert.Equal(t, []string{constants.StateIdle, constants.StateFailed}, s.States())
	assert.Equal(t, 0, APITestServer.RequestCount())
}

func TestSubmitWithoutJournal(t *testing.T) {
	controller, store, publisher := getController(t, constants.ModeReference)
	controller.Journal = nil
	store.failOn = 2

	s := controller.Submit(context.Background(), testutil.GetUploadRequest(1, 0))
	assert.Equal(t, string(common.StorageError), s.ErrorKind)
	assert.True(t, s.HasOrphans())
	// Without a journal, the cleanup worker can't know the keys.
	assert.Empty(t, publisher.ids)
}

func TestSubmitConcurrent(t *testing.T) {
	controller, _, _ := getController(t, constants.ModeMultipart)
	var wg sync.WaitGroup
	results := make([]*service.Submission, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = controller.Submit(context.Background(), testutil.GetUploadRequest(1, 1))
		}(i)
	}
	wg.Wait()
	for _, s := range results {
		assert.True(t, s.Succeeded(), s.ErrorMessage)
	}
	assert.Equal(t, 5, APITestServer.RequestCount())
}

func reloadContext(_context *common.Context) *common.Context {
	return common.NewContextWithLogger(_context.Config, _context.Logger)
}
