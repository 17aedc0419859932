package order

import (
	"testing"

	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validEdges lists the six legal transitions of the lifecycle graph
var validEdges = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusDelivered},
}

func isValidEdge(from, to Status) bool {
	for _, t := range validEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusPreparing, true},
		{StatusReady, true},
		{StatusDelivered, true},
		{StatusCancelled, true},
		{Status("shipped"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

// TestValidateTransition_FullMatrix checks the entire status x status matrix:
// exactly the six listed edges succeed, every other pair (including all
// self-loops and every pair with a terminal source) fails.
func TestValidateTransition_FullMatrix(t *testing.T) {
	valid := 0
	invalid := 0

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			err := ValidateTransition(from, to)
			if isValidEdge(from, to) {
				assert.NoError(t, err, "expected %s -> %s to be valid", from, to)
				valid++
			} else {
				require.Error(t, err, "expected %s -> %s to be invalid", from, to)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
				// The error names both states so the caller can surface them
				assert.Contains(t, domainErr.Message, string(from))
				assert.Contains(t, domainErr.Message, string(to))
				invalid++
			}
		}
	}

	assert.Equal(t, 6, valid)
	assert.Equal(t, 30, invalid)
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	err := ValidateTransition(Status("shipped"), StatusReady)
	require.Error(t, err)

	err = ValidateTransition(StatusPending, Status(""))
	require.Error(t, err)
}

func TestStatus_SelfLoopAlwaysInvalid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.False(t, s.CanTransitionTo(s), "self-loop allowed for %s", s)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusPreparing.IsTerminal())
	assert.False(t, StatusReady.IsTerminal())
	// unknown statuses are not terminal, just invalid
	assert.False(t, Status("archived").IsTerminal())
}

func TestPredecessorsOf(t *testing.T) {
	tests := []struct {
		target Status
		preds  []Status
	}{
		{StatusPending, nil},
		{StatusConfirmed, []Status{StatusPending}},
		{StatusPreparing, []Status{StatusConfirmed}},
		{StatusReady, []Status{StatusPreparing}},
		{StatusDelivered, []Status{StatusReady}},
		{StatusCancelled, []Status{StatusPending, StatusConfirmed}},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.preds, PredecessorsOf(tt.target))
		})
	}
}

func TestStatus_Presentation(t *testing.T) {
	// every valid status has a label and an icon; the tables cannot drift
	for _, s := range AllStatuses() {
		assert.NotEmpty(t, s.Label(), "missing label for %s", s)
		assert.NotEmpty(t, s.Icon(), "missing icon for %s", s)
	}

	assert.Equal(t, "Pendente", StatusPending.Label())
	assert.Equal(t, "Entregue", StatusDelivered.Label())
}
