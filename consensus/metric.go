package consensus

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

func newOrchestratorMetric(validatorID, mode string) *orchestratorMetric {
	return &orchestratorMetric{
		ValidatorID:        validatorID,
		Mode:               mode,
		LastCompletedCycle: -1,
	}
}

type orchestratorMetric struct {
	mtx sync.RWMutex

	ValidatorID string `json:"validator_id"`
	Mode        string `json:"mode"`

	Cycle int64  `json:"current_cycle"`
	Phase string `json:"current_phase"`

	LastQuorumSize     int   `json:"last_quorum_size"`
	DegradedCycles     int64 `json:"degraded_cycles"`
	ClockSkewEvents    int64 `json:"clock_skew_events"`
	LastCompletedCycle int64 `json:"last_completed_cycle"`

	IsWorking bool `json:"is_working"`
}

func (om *orchestratorMetric) JSONString() string {
	om.mtx.RLock()
	defer om.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(om)
	return s
}

func (om *orchestratorMetric) MarkPosition(cycle int64, phase string) {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.Cycle = cycle
	om.Phase = phase
}

func (om *orchestratorMetric) MarkQuorumSize(size int) {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.LastQuorumSize = size
}

func (om *orchestratorMetric) MarkDegraded() {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.DegradedCycles++
}

func (om *orchestratorMetric) MarkClockSkew() {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.ClockSkewEvents++
}

func (om *orchestratorMetric) MarkCompletedCycle(cycle int64) {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.LastCompletedCycle = cycle
}

func (om *orchestratorMetric) MarkIsWorking(v bool) {
	om.mtx.Lock()
	defer om.mtx.Unlock()
	om.IsWorking = v
}
