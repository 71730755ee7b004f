package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseEntryValidateBasic(t *testing.T) {
	entry := NewPhaseEntry("val-a", 3, PhaseConsensusScoring, nil)
	require.NoError(t, entry.ValidateBasic())
	assert.False(t, entry.Timestamp.IsZero())

	testCases := []struct {
		name   string
		mutate func(*PhaseEntry)
		err    error
	}{
		{"empty validator", func(e *PhaseEntry) { e.ValidatorID = "" }, ErrEmptyValidatorID},
		{"negative cycle", func(e *PhaseEntry) { e.Cycle = -1 }, ErrNegativeCycle},
		{"invalid phase", func(e *PhaseEntry) { e.Phase = CyclePhase(0x09) }, ErrInvalidPhase},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bad := NewPhaseEntry("val-a", 3, PhaseConsensusScoring, nil)
			tc.mutate(&bad)
			assert.ErrorIs(t, bad.ValidateBasic(), tc.err)
		})
	}
}
