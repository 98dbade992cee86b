package constants

const (
	StateIdle       = "Idle"
	StateValidating = "Validating"
	StateUploading  = "Uploading"
	StateInvoking   = "Invoking"
	StateSucceeded  = "Succeeded"
	StateFailed     = "Failed"
)

// Stage describes one state of a submission and the states it may move to.
type Stage struct {
	Name  string
	Order int64
	Next  []string
}

var SubmissionStages = []Stage{
	{
		Name:  StateIdle,
		Order: 1,
		Next:  []string{StateValidating, StateFailed},
	},
	{
		Name:  StateValidating,
		Order: 2,
		Next:  []string{StateIdle, StateUploading, StateInvoking},
	},
	{
		Name:  StateUploading,
		Order: 3,
		Next:  []string{StateInvoking, StateFailed},
	},
	{
		Name:  StateInvoking,
		Order: 4,
		Next:  []string{StateSucceeded, StateFailed},
	},
	{
		Name:  StateSucceeded,
		Order: 5,
		Next:  []string{},
	},
	{
		Name:  StateFailed,
		Order: 6,
		Next:  []string{},
	},
}

// CanTransition returns true if a submission in state from may move
// to state to.
func CanTransition(from, to string) bool {
	for _, stage := range SubmissionStages {
		if stage.Name != from {
			continue
		}
		for _, next := range stage.Next {
			if next == to {
				return true
			}
		}
		return false
	}
	return false
}

// IsTerminal returns true for states that end a submission.
func IsTerminal(state string) bool {
	return state == StateSucceeded || state == StateFailed
}
