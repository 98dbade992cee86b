package constants_test

import (
	"testing"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/stretchr/testify/assert"
)

type transition struct {
	From     string
	To       string
	Expected bool
}

var transitions = []transition{
	{constants.StateIdle, constants.StateValidating, true},
	{constants.StateIdle, constants.StateFailed, true},
	{constants.StateValidating, constants.StateIdle, true},
	{constants.StateValidating, constants.StateUploading, true},
	{constants.StateValidating, constants.StateInvoking, true},
	{constants.StateValidating, constants.StateSucceeded, false},
	{constants.StateUploading, constants.StateInvoking, true},
	{constants.StateUploading, constants.StateFailed, true},
	{constants.StateUploading, constants.StateSucceeded, false},
	{constants.StateInvoking, constants.StateSucceeded, true},
	{constants.StateInvoking, constants.StateFailed, true},
	{constants.StateInvoking, constants.StateUploading, false},
	{constants.StateSucceeded, constants.StateIdle, false},
	{constants.StateFailed, constants.StateIdle, false},
	{"Bogus", constants.StateIdle, false},
}

func TestCanTransition(t *testing.T) {
	for _, tr := range transitions {
		assert.Equal(t, tr.Expected, constants.CanTransition(tr.From, tr.To),
			"%s -> %s", tr.From, tr.To)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, constants.IsTerminal(constants.StateSucceeded))
	assert.True(t, constants.IsTerminal(constants.StateFailed))
	assert.False(t, constants.IsTerminal(constants.StateIdle))
	assert.False(t, constants.IsTerminal(constants.StateInvoking))
}

func TestStageOrder(t *testing.T) {
	for i, stage := range constants.SubmissionStages {
		assert.Equal(t, int64(i+1), stage.Order, stage.Name)
	}
}
