package deletion

import (
	ctx "context"
	"fmt"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/submission"
)

// Remover deletes objects from the submission bucket.
type Remover interface {
	Bucket() string
	Remove(ctx ctx.Context, key string) error
}

// Manager deletes the objects a failed submission left in storage and
// then removes the submission's journal entry.
type Manager struct {
	// Context is the context, which includes config settings and
	// clients to access S3 and Redis.
	Context *common.Context

	// SubmissionID is the ID of the submission whose objects
	// we're deleting.
	SubmissionID string

	// Remover deletes the objects. Defaults to a StorageUploader
	// built from Context.
	Remover Remover
}

// NewManager creates a new deletion.Manager.
func NewManager(context *common.Context, submissionID string) *Manager {
	return &Manager{
		Context:      context,
		SubmissionID: submissionID,
		Remover:      submission.NewStorageUploader(context),
	}
}

// Run deletes every object recorded in the submission's journal entry
// and returns the number of objects deleted. Objects that are already
// gone count as deleted.
//
// Run refuses to touch submissions that aren't marked orphaned, since
// the processing API may still be reading the objects of a submission
// that succeeded. The journal entry is forgotten only if every delete
// succeeded, so a later run can retry the rest.
func (m *Manager) Run(c ctx.Context) (count int, errors []error) {
	journal := m.Context.RedisClient
	if journal == nil {
		return 0, append(errors, common.NewConfigurationError("Orphan cleanup requires REDIS_URL", nil))
	}
	entry, err := journal.Get(m.SubmissionID)
	if err != nil {
		return 0, append(errors, common.NewStorageError(err.Error(), err))
	}
	if entry == nil {
		// Expired or cleaned up on a prior run. Make sure it's
		// not left in the orphan set.
		m.Context.Logger.Infof("Submission %s has no journal entry. Nothing to delete.", m.SubmissionID)
		if err = journal.Forget(m.SubmissionID); err != nil {
			errors = append(errors, err)
		}
		return 0, errors
	}
	if !entry.Orphaned {
		return 0, append(errors, common.NewValidationError(
			fmt.Sprintf("Submission %s is not marked orphaned. Refusing to delete its objects.", m.SubmissionID)))
	}
	if uploader, ok := m.Remover.(*submission.StorageUploader); ok && uploader.Client == nil {
		return 0, append(errors, common.NewConfigurationError(
			"Orphan cleanup requires S3_BUCKET, S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY", nil))
	}
	if entry.Bucket != m.Remover.Bucket() {
		return 0, append(errors, common.NewConfigurationError(
			fmt.Sprintf("Submission %s wrote to bucket %s, but this cleaner deletes from %s",
				m.SubmissionID, entry.Bucket, m.Remover.Bucket()), nil))
	}
	for _, key := range entry.Keys {
		err = m.Remover.Remove(c, key)
		if err != nil {
			m.Context.Logger.Errorf("Submission %s: delete %s/%s failed: %s", m.SubmissionID, entry.Bucket, key, err.Error())
			errors = append(errors, err)
			continue
		}
		m.Context.Logger.Infof("Submission %s: deleted %s/%s", m.SubmissionID, entry.Bucket, key)
		count++
	}
	if len(errors) == 0 {
		if err = journal.Forget(m.SubmissionID); err != nil {
			errors = append(errors, err)
		}
	}
	return count, errors
}
