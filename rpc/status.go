package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

type ResultStatus struct {
	ValidatorID string `json:"validator_id"`
	Moniker     string `json:"moniker"`
	Mode        string `json:"mode"`

	CurrentCycle       int64   `json:"current_cycle"`
	CurrentPhase       string  `json:"current_phase"`
	PhaseRemainingSecs float64 `json:"phase_remaining_secs"`
	LastCompletedCycle int64   `json:"last_completed_cycle"`
}

// Status 返回本validator的当前(cycle, phase)位置和推进进度
func Status(ctx *rpctypes.Context) (*ResultStatus, error) {
	orchestrator := env.Orchestrator
	cycle, phase, remaining := orchestrator.Position()

	return &ResultStatus{
		ValidatorID:        orchestrator.ValidatorID(),
		Moniker:            env.Config.Moniker,
		Mode:               string(orchestrator.Mode()),
		CurrentCycle:       cycle,
		CurrentPhase:       phase.String(),
		PhaseRemainingSecs: remaining.Seconds(),
		LastCompletedCycle: orchestrator.LastCompletedCycle(),
	}, nil
}
