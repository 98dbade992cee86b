package workers

import (
	"encoding/json"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/util/cli"
)

// Settings contains settings for the orphan cleanup worker.
type Settings struct {
	// ChannelBufferSize is the size of the ProcessChannel buffer
	// and the number of NSQ messages in flight at once.
	ChannelBufferSize int

	// MaxAttempts is the maximum number of times the worker should
	// attempt a cleanup before giving up. Note that this applies
	// only to attempts that fail from recoverable errors.
	// Configuration errors are never retried.
	MaxAttempts int

	// NSQChannel is the NSQ channel the worker should subscribe
	// to to receive messages.
	NSQChannel string

	// NSQTopic is the NSQ topic the worker should subscribe
	// to to receive messages.
	NSQTopic string

	// NumberOfWorkers is the number of go routines to spin up
	// to process cleanups.
	NumberOfWorkers int

	// RequeueTimeout describes how long of a timeout to set
	// on the NSQ requeue after a cleanup fails with recoverable
	// errors.
	RequeueTimeout time.Duration
}

// NewSettings returns settings for the orphan cleanup worker based
// on config and command-line options.
func NewSettings(config *common.Config, opts cli.Options) *Settings {
	channel := config.CleanupChannel
	if channel == "" {
		channel = constants.DefaultCleanupChannel
	}
	workers := opts.NumWorkers
	if workers < 1 {
		workers = 1
	}
	return &Settings{
		ChannelBufferSize: opts.ChannelBufferSize,
		MaxAttempts:       opts.MaxAttempts,
		NSQChannel:        channel,
		NSQTopic:          constants.TopicOrphanCleanup,
		NumberOfWorkers:   workers,
		RequeueTimeout:    opts.RequeueTimeout,
	}
}

func (settings *Settings) ToJSON() string {
	data, _ := json.Marshal(settings)
	return string(data)
}
