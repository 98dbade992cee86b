package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/google/uuid"
)

// StateChange records when a submission entered a state.
type StateChange struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// Submission records one run of the upload-and-invoke workflow. It
// lives only for the duration of one request.
type Submission struct {
	// ID uniquely identifies this submission. Object keys and the
	// upload journal use it.
	ID string `json:"id"`

	// Mode is the wire mode: multipart or reference.
	Mode string `json:"mode"`

	// State is the current workflow state. See constants.SubmissionStages.
	State string `json:"state"`

	// History lists every state the submission passed through, in order,
	// starting with Idle.
	History []StateChange `json:"history"`

	// References describes the objects written to storage, in upload
	// order. Always empty in multipart mode.
	References []*StorageReference `json:"references"`

	// Result is the processing API's response. Set only on success.
	Result *ProcessingResult `json:"result,omitempty"`

	// ErrorKind and ErrorMessage describe why the submission failed
	// or was rejected.
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// StartedAt describes when validation began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt describes when the submission reached a terminal
	// state or went back to Idle after a validation error.
	FinishedAt time.Time `json:"finished_at"`
}

func NewSubmission(mode string) *Submission {
	return &Submission{
		ID:         uuid.New().String(),
		Mode:       mode,
		State:      constants.StateIdle,
		History:    []StateChange{{State: constants.StateIdle, At: time.Now().UTC()}},
		References: make([]*StorageReference, 0),
	}
}

// Transition moves the submission to state to, returning an error if
// the move is not allowed from the current state.
func (s *Submission) Transition(to string) error {
	if !constants.CanTransition(s.State, to) {
		return fmt.Errorf("Submission %s cannot move from %s to %s", s.ID, s.State, to)
	}
	now := time.Now().UTC()
	if to == constants.StateValidating {
		s.StartedAt = now
	}
	if constants.IsTerminal(to) || to == constants.StateIdle {
		s.FinishedAt = now
	}
	s.State = to
	s.History = append(s.History, StateChange{State: to, At: now})
	return nil
}

// States returns the names of the states in History, in order.
func (s *Submission) States() []string {
	states := make([]string, len(s.History))
	for i, change := range s.History {
		states[i] = change.State
	}
	return states
}

// AddReference records an object written to storage.
func (s *Submission) AddReference(ref *StorageReference) {
	s.References = append(s.References, ref)
}

// SetError records the kind and message of the error that stopped
// the submission.
func (s *Submission) SetError(kind string, message string) {
	s.ErrorKind = kind
	s.ErrorMessage = message
}

func (s *Submission) Succeeded() bool {
	return s.State == constants.StateSucceeded
}

func (s *Submission) Failed() bool {
	return s.State == constants.StateFailed
}

// Rejected returns true if validation sent the submission back to Idle.
func (s *Submission) Rejected() bool {
	return s.State == constants.StateIdle && len(s.History) > 1
}

// HasOrphans returns true if the submission failed after writing
// objects to storage.
func (s *Submission) HasOrphans() bool {
	return s.Failed() && len(s.References) > 0
}

func (s *Submission) RunTime() time.Duration {
	if s.StartedAt.IsZero() {
		return time.Duration(0)
	}
	endTime := s.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now().UTC()
	}
	return endTime.Sub(s.StartedAt)
}

func SubmissionFromJSON(jsonData string) (*Submission, error) {
	s := &Submission{}
	err := json.Unmarshal([]byte(jsonData), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Submission) ToJSON() (string, error) {
	bytes, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
