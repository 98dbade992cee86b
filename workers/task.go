package workers

import (
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
)

// TouchInterval is how often a task touches its NSQ message while
// the cleanup is running, so nsqd doesn't hand it to another worker.
var TouchInterval = 2 * time.Minute

// Task is one orphan cleanup, passed from HandleMessage to the
// goroutines reading the ProcessChannel.
type Task struct {
	// SubmissionID identifies the submission whose objects we're
	// deleting. It's the body of the NSQ message.
	SubmissionID string

	// NSQMessage is the NSQ message the worker is processing.
	NSQMessage *nsq.Message

	// Deleted is the number of objects the cleanup deleted.
	Deleted int

	// Errors holds whatever went wrong during cleanup.
	Errors []error

	nsqStopChannel chan bool
	stopOnce       sync.Once

	// For testing
	nsqStartCalled bool
}

// NSQStart takes over responding to the NSQ message and starts a
// ticker that touches the message every TouchInterval until
// NSQFinish or NSQRequeue is called.
func (task *Task) NSQStart() {
	task.NSQMessage.DisableAutoResponse()
	ticker := time.NewTicker(TouchInterval)
	stopChannel := make(chan bool)
	go func() {
		for {
			select {
			case <-ticker.C:
				task.NSQMessage.Touch()
			case <-stopChannel:
				ticker.Stop()
				return
			}
		}
	}()
	task.nsqStartCalled = true
	task.nsqStopChannel = stopChannel
}

// NSQRequeue requeues the message with the specified delay
// and stops sending touches.
func (task *Task) NSQRequeue(delay time.Duration) {
	task.stopTicker()
	task.NSQMessage.Requeue(delay)
}

// NSQFinish finishes the message and stops sending touches.
func (task *Task) NSQFinish() {
	task.stopTicker()
	task.NSQMessage.Finish()
}

func (task *Task) stopTicker() {
	if task.nsqStopChannel == nil {
		return
	}
	task.stopOnce.Do(func() { close(task.nsqStopChannel) })
}

// StartCalled returns true if NSQStart() has been called on this task.
// This method exists for testing purposes.
func (task *Task) StartCalled() bool {
	return task.nsqStartCalled
}

// Attempts returns the number of times NSQ has delivered this message.
func (task *Task) Attempts() int {
	return int(task.NSQMessage.Attempts)
}
