package submission

import (
	"context"
	"fmt"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/network"
	"github.com/op/go-logging"
)

// Journal records what each submission wrote to storage. The Redis
// client in network implements it.
type Journal interface {
	Record(submissionID, bucket, key string) error
	MarkOrphaned(submissionID string) error
}

// Controller runs the upload-and-invoke workflow:
//
// Idle -> Validating -> (Uploading ->) Invoking -> Succeeded | Failed
//
// Uploading happens only in reference mode. A validation error sends
// the submission back to Idle without touching storage or the network.
// The controller holds no per-submission state, so one controller can
// run concurrent submissions.
type Controller struct {
	Client    Invoker
	Journal   Journal
	Logger    *logging.Logger
	Mode      string
	Publisher network.NSQClientInterface
	Store     ObjectStore
	Validator *Validator

	configError error
}

// NewController returns a controller wired to the clients in context.
// The journal and publisher are left nil when Redis or NSQ are not
// configured.
func NewController(context *common.Context) *Controller {
	controller := &Controller{
		Client:      NewProcessingClientFromContext(context),
		Logger:      context.Logger,
		Mode:        context.Config.WireMode,
		Validator:   NewValidator(context),
		configError: context.ConfigError(),
	}
	if context.Config.UsesStorage() {
		controller.Store = NewStorageUploader(context)
	}
	if context.RedisClient != nil {
		controller.Journal = context.RedisClient
	}
	if context.NSQClient != nil {
		controller.Publisher = context.NSQClient
	}
	return controller
}

// Submit runs one submission from Idle to a final state and returns
// it. Check Submission.State, ErrorKind, and ErrorMessage for the
// outcome. Submit never returns a submission in Validating, Uploading,
// or Invoking.
func (c *Controller) Submit(ctx context.Context, req *service.UploadRequest) *service.Submission {
	submission := service.NewSubmission(c.Mode)
	if c.configError != nil {
		c.fail(submission, c.configError)
		return submission
	}
	if c.Mode == constants.ModeReference && c.Store == nil {
		c.fail(submission, common.NewConfigurationError("Reference mode requires storage settings", nil))
		return submission
	}

	c.moveTo(submission, constants.StateValidating)
	if err := c.Validator.Validate(req); err != nil {
		c.Logger.Infof("Submission %s rejected: %s", submission.ID, err.Error())
		submission.SetError(string(common.KindOf(err)), err.Error())
		c.moveTo(submission, constants.StateIdle)
		return submission
	}

	var result *service.ProcessingResult
	var err error
	if c.Mode == constants.ModeReference {
		c.moveTo(submission, constants.StateUploading)
		var refRequest *service.ReferenceRequest
		refRequest, err = c.upload(ctx, submission, req)
		if err != nil {
			c.fail(submission, err)
			return submission
		}
		c.moveTo(submission, constants.StateInvoking)
		result, err = c.Client.InvokeReferences(ctx, refRequest)
	} else {
		c.moveTo(submission, constants.StateInvoking)
		result, err = c.Client.Invoke(ctx, req)
	}
	if err != nil {
		c.fail(submission, err)
		return submission
	}
	submission.Result = result
	c.moveTo(submission, constants.StateSucceeded)
	c.Logger.Infof("Submission %s succeeded in %s. Output: %s",
		submission.ID, submission.RunTime(), result.OutputVideoURL)
	return submission
}

// upload stores the video, then the player images, then the jersey
// images, one at a time. It stops at the first failure. Objects
// stored before the failure stay where they are.
func (c *Controller) upload(ctx context.Context, submission *service.Submission, req *service.UploadRequest) (*service.ReferenceRequest, error) {
	video, err := c.storeOne(ctx, submission, req, constants.RoleVideo, "video", req.Video)
	if err != nil {
		return nil, err
	}
	playerRefs := make([]*service.StorageReference, len(req.PlayerImages))
	for i, blob := range req.PlayerImages {
		label := fmt.Sprintf("player image %d", i+1)
		if playerRefs[i], err = c.storeOne(ctx, submission, req, constants.RolePlayerImage, label, blob); err != nil {
			return nil, err
		}
	}
	jerseyRefs := make([]*service.StorageReference, len(req.JerseyImages))
	for i, blob := range req.JerseyImages {
		label := fmt.Sprintf("jersey image %d", i+1)
		if jerseyRefs[i], err = c.storeOne(ctx, submission, req, constants.RoleJerseyImage, label, blob); err != nil {
			return nil, err
		}
	}
	return service.NewReferenceRequest(video, playerRefs, jerseyRefs, req.PlayerName, req.PlayerNumber), nil
}

func (c *Controller) storeOne(ctx context.Context, submission *service.Submission, req *service.UploadRequest, role, label string, blob *service.MediaBlob) (*service.StorageReference, error) {
	key := c.Store.KeyFor(submission.ID, req.PlayerName, req.PlayerNumber, role, blob.FileName)
	ref, err := c.Store.Store(ctx, blob, key)
	if err != nil {
		return nil, common.NewStorageError(
			fmt.Sprintf("Failed to upload %s (%s): %s", label, blob.FileName, err.Error()), err)
	}
	ref.Role = role
	submission.AddReference(ref)
	if c.Journal != nil {
		if err := c.Journal.Record(submission.ID, c.Store.Bucket(), ref.Key); err != nil {
			c.Logger.Warningf("Submission %s: could not journal %s: %s", submission.ID, ref.Key, err.Error())
		}
	}
	return ref, nil
}

// fail moves the submission to Failed and records why. If the
// submission left objects in storage, it flags them for cleanup.
func (c *Controller) fail(submission *service.Submission, err error) {
	kind := common.KindOf(err)
	if kind == common.KindNone {
		kind = common.TransportError
	}
	submission.SetError(string(kind), err.Error())
	c.moveTo(submission, constants.StateFailed)
	if detailed, ok := err.(common.DetailedError); ok {
		c.Logger.Errorf("Submission %s failed: %s", submission.ID, detailed.Detail())
	} else {
		c.Logger.Errorf("Submission %s failed: %s", submission.ID, err.Error())
	}
	if submission.HasOrphans() {
		c.reportOrphans(submission)
	}
}

// reportOrphans marks the submission's journal entry orphaned and asks
// the cleanup worker to delete its objects. Failures here are logged
// and never change the submission's outcome.
func (c *Controller) reportOrphans(submission *service.Submission) {
	c.Logger.Warningf("Submission %s left %d objects in storage", submission.ID, len(submission.References))
	if c.Journal == nil {
		return
	}
	if err := c.Journal.MarkOrphaned(submission.ID); err != nil {
		c.Logger.Warningf("Submission %s: could not mark orphans: %s", submission.ID, err.Error())
		return
	}
	if c.Publisher != nil {
		if err := c.Publisher.Enqueue(constants.TopicOrphanCleanup, submission.ID); err != nil {
			c.Logger.Warningf("Submission %s: could not queue cleanup: %s", submission.ID, err.Error())
		}
	}
}

func (c *Controller) moveTo(submission *service.Submission, state string) {
	from := submission.State
	if err := submission.Transition(state); err != nil {
		c.Logger.Error(err.Error())
		return
	}
	c.Logger.Debugf("Submission %s: %s -> %s", submission.ID, from, state)
}
