package workers

import (
	ctx "context"
	"fmt"
	"strings"

	"github.com/brandpulse/brandpulse-demo/deletion"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/nsqio/go-nsq"
)

// OrphanCleaner deletes the objects that failed reference-mode
// submissions left in storage. The web front end queues the
// submission id in NSQ when a submission fails after uploading.
type OrphanCleaner struct {
	// Context contains config settings and the S3 and Redis clients.
	Context *common.Context

	// ItemsInProcess keeps track of submission ids the worker is
	// currently cleaning up. We need this because NSQ does not
	// dedupe messages.
	ItemsInProcess *service.RingList

	// NSQConsumer receives messages from NSQ. It's nil until
	// RegisterAsNsqConsumer is called.
	NSQConsumer *nsq.Consumer

	// ProcessChannel is where the deletes actually happen.
	ProcessChannel chan *Task

	// Remover, if set, replaces the storage uploader the deletion
	// manager would otherwise build from Context.
	Remover deletion.Remover

	// Settings control retries and concurrency.
	Settings *Settings
}

// NewOrphanCleaner creates a new cleanup worker and starts
// Settings.NumberOfWorkers goroutines reading the ProcessChannel.
func NewOrphanCleaner(context *common.Context, settings *Settings) *OrphanCleaner {
	cleaner := &OrphanCleaner{
		Context:        context,
		ItemsInProcess: service.NewRingList(settings.ChannelBufferSize),
		ProcessChannel: make(chan *Task, settings.ChannelBufferSize),
		Settings:       settings,
	}
	context.Logger.Info("Orphan cleanup worker started with the following settings:")
	context.Logger.Info(settings.ToJSON())
	for i := 0; i < settings.NumberOfWorkers; i++ {
		context.Logger.Infof("Starting worker #%d", i+1)
		go cleaner.ProcessItem()
	}
	return cleaner
}

// RegisterAsNsqConsumer registers this worker as an NSQ consumer on
// Settings.NSQTopic and Settings.NSQChannel. Note that as soon as you
// call this, your worker will start handling messages if any are
// available.
func (c *OrphanCleaner) RegisterAsNsqConsumer() error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", c.Settings.ChannelBufferSize)
	consumer, err := nsq.NewConsumer(c.Settings.NSQTopic, c.Settings.NSQChannel, config)
	if err != nil {
		return err
	}
	consumer.SetLogger(&nsqLogger{c.Context}, nsq.LogLevelWarning)
	consumer.AddHandler(c)
	c.NSQConsumer = consumer
	if err = consumer.ConnectToNSQLookupd(c.Context.Config.NsqLookupd); err != nil {
		return err
	}
	c.Context.Logger.Info("Registered as NSQ consumer")
	return nil
}

// HandleMessage queues a cleanup for the submission id in the message
// body. Returning nil with auto response on tells NSQ the message is
// done, which is what we want for empty and duplicate messages.
func (c *OrphanCleaner) HandleMessage(message *nsq.Message) error {
	submissionID := strings.TrimSpace(string(message.Body))
	if submissionID == "" {
		c.Context.Logger.Warning("Skipping NSQ message with empty body")
		return nil
	}
	if c.ItemsInProcess.Contains(submissionID) {
		c.Context.Logger.Infof("Skipping submission %s: already cleaning it up", submissionID)
		return nil
	}
	task := &Task{
		SubmissionID: submissionID,
		NSQMessage:   message,
	}
	task.NSQStart()
	c.ItemsInProcess.Add(submissionID)
	c.ProcessChannel <- task
	return nil
}

// ProcessItem runs cleanups from the ProcessChannel until the
// channel is closed.
func (c *OrphanCleaner) ProcessItem() {
	for task := range c.ProcessChannel {
		c.Context.Logger.Infof("Cleaning up submission %s (attempt %d)", task.SubmissionID, task.Attempts())
		task.Deleted, task.Errors = c.manager(task.SubmissionID).Run(ctx.Background())
		c.ItemsInProcess.Del(task.SubmissionID)
		c.finish(task)
	}
}

func (c *OrphanCleaner) finish(task *Task) {
	if len(task.Errors) == 0 {
		c.Context.Logger.Infof("Submission %s: deleted %d orphaned objects", task.SubmissionID, task.Deleted)
		task.NSQFinish()
		return
	}
	for _, err := range task.Errors {
		c.Context.Logger.Errorf("Submission %s: %s", task.SubmissionID, err.Error())
	}
	if c.ShouldRetry(task) {
		c.Context.Logger.Infof("Submission %s: requeueing cleanup in %s", task.SubmissionID, c.Settings.RequeueTimeout)
		task.NSQRequeue(c.Settings.RequeueTimeout)
		return
	}
	c.Context.Logger.Errorf("Submission %s: giving up on cleanup after %d attempts. "+
		"Run orphan_cleanup -sweep after fixing the problem.", task.SubmissionID, task.Attempts())
	task.NSQFinish()
}

// ShouldRetry returns true if the task failed with errors a later
// attempt might get past and it hasn't used up Settings.MaxAttempts.
func (c *OrphanCleaner) ShouldRetry(task *Task) bool {
	if task.Attempts() >= c.Settings.MaxAttempts {
		return false
	}
	for _, err := range task.Errors {
		if !common.IsRecoverable(err) || common.KindOf(err) == common.ValidationError {
			return false
		}
	}
	return true
}

// Sweep cleans up every submission in the journal's orphan set and
// returns the number of submissions it cleaned up and the number it
// could not. Use this to catch up on cleanups NSQ gave up on, or when
// NSQ isn't running at all.
func (c *OrphanCleaner) Sweep(runCtx ctx.Context) (cleaned int, failed int, err error) {
	if c.Context.RedisClient == nil {
		return 0, 0, common.NewConfigurationError("Orphan sweep requires REDIS_URL", nil)
	}
	ids, err := c.Context.RedisClient.Orphaned()
	if err != nil {
		return 0, 0, err
	}
	c.Context.Logger.Infof("Sweep found %d orphaned submissions", len(ids))
	for _, id := range ids {
		if runCtx.Err() != nil {
			return cleaned, failed, runCtx.Err()
		}
		count, errs := c.manager(id).Run(runCtx)
		if len(errs) > 0 {
			for _, e := range errs {
				c.Context.Logger.Errorf("Submission %s: %s", id, e.Error())
			}
			failed++
			continue
		}
		c.Context.Logger.Infof("Submission %s: deleted %d orphaned objects", id, count)
		cleaned++
	}
	return cleaned, failed, nil
}

func (c *OrphanCleaner) manager(submissionID string) *deletion.Manager {
	manager := deletion.NewManager(c.Context, submissionID)
	if c.Remover != nil {
		manager.Remover = c.Remover
	}
	return manager
}

// nsqLogger sends go-nsq's log output to our logger.
type nsqLogger struct {
	context *common.Context
}

func (l *nsqLogger) Output(calldepth int, s string) error {
	l.context.Logger.Info(fmt.Sprintf("nsq: %s", s))
	return nil
}
