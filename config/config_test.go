package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subnetsync/types"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	// validator_id只能由部署方提供，默认配置缺了它必须不过校验
	assert.Error(t, cfg.ValidateBasic())

	cfg.ValidatorID = "validator-1"
	cfg.Cycle.ExpectedValidators = []string{"validator-1"}
	assert.NoError(t, cfg.ValidateBasic())
}

func TestCycleConfigValidateBasic(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*CycleConfig)
		ok     bool
	}{
		{"default with validators", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"} }, true},
		{"negative anchor", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"}; cfg.EpochAnchor = -1 }, false},
		{"zero phase duration", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"}; cfg.ConsensusScoring = 0 }, false},
		{"bad mode", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"}; cfg.Mode = "turbo" }, false},
		{"no validators", func(cfg *CycleConfig) { cfg.ExpectedValidators = nil }, false},
		{"zero quorum timeout", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"}; cfg.QuorumTimeout = 0 }, false},
		{"negative retain", func(cfg *CycleConfig) { cfg.ExpectedValidators = []string{"v1"}; cfg.RetainCycles = -1 }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultCycleConfig()
			tc.mutate(cfg)
			err := cfg.ValidateBasic()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestQuorumThresholdIsSimpleMajority(t *testing.T) {
	cfg := DefaultCycleConfig()
	for n, want := range map[int]int{1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 10: 6} {
		cfg.ExpectedValidators = make([]string, n)
		assert.Equal(t, want, cfg.QuorumThreshold(), "n=%d", n)
	}
}

func TestCycleDurations(t *testing.T) {
	cfg := DefaultCycleConfig()
	require.Equal(t, 5*time.Minute, cfg.CycleDuration()) // 120+120+30+30s

	var sum time.Duration
	for _, phase := range types.CyclePhases() {
		d := cfg.PhaseDuration(phase)
		assert.Positive(t, d)
		sum += d
	}
	assert.Equal(t, cfg.CycleDuration(), sum)
}
