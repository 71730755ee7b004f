package types

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrEmptyValidatorID = errors.New("phase entry has empty validator id")
	ErrNegativeCycle    = errors.New("phase entry has negative cycle")
	ErrInvalidPhase     = errors.New("phase entry has invalid phase")
)

// PhaseEntry 是validator进入某个phase时写到协调存储里的登记记录
// key为(cycle, phase, validator_id)，每个validator只写自己的key
// 重复Register是幂等的，last write wins
type PhaseEntry struct {
	ValidatorID string          `json:"validator_id"`
	Cycle       int64           `json:"cycle"`
	Phase       CyclePhase      `json:"phase"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// NewPhaseEntry returns an entry stamped with the current wall time.
func NewPhaseEntry(validatorID string, cycle int64, phase CyclePhase, payload json.RawMessage) PhaseEntry {
	return PhaseEntry{
		ValidatorID: validatorID,
		Cycle:       cycle,
		Phase:       phase,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
}

func (e PhaseEntry) ValidateBasic() error {
	if e.ValidatorID == "" {
		return ErrEmptyValidatorID
	}
	if e.Cycle < 0 {
		return ErrNegativeCycle
	}
	if !e.Phase.Valid() {
		return ErrInvalidPhase
	}
	return nil
}

// ScoresPayload 是ConsensusScoring阶段entry.Payload的内容
type ScoresPayload struct {
	Scores map[string]float64 `json:"scores"`
}
