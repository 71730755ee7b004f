package types

//-----------------------------------------------------------------------------
// CyclePhase enum type

// CyclePhase enumerates the stages of one coordination cycle.
// 相位严格有序且循环：MetagraphUpdate之后回到下一个cycle的TaskAssignment
type CyclePhase uint8

const (
	PhaseTaskAssignment   = CyclePhase(0x01) // validator挑选miner并下发任务
	PhaseTaskExecution    = CyclePhase(0x02) // miner执行任务，validator等待结果
	PhaseConsensusScoring = CyclePhase(0x03) // validator交换本地打分，聚合共识分数
	PhaseMetagraphUpdate  = CyclePhase(0x04) // 把共识分数提交到链上的metagraph
)

var phaseNames = map[CyclePhase]string{
	PhaseTaskAssignment:   "TaskAssignment",
	PhaseTaskExecution:    "TaskExecution",
	PhaseConsensusScoring: "ConsensusScoring",
	PhaseMetagraphUpdate:  "MetagraphUpdate",
}

func (p CyclePhase) String() string {
	name, ok := phaseNames[p]
	if !ok {
		return "UnknownPhase"
	}
	return name
}

func (p CyclePhase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}

// Next returns the phase following p. The second return value reports
// whether the transition wraps into the next cycle.
func (p CyclePhase) Next() (CyclePhase, bool) {
	if p == PhaseMetagraphUpdate {
		return PhaseTaskAssignment, true
	}
	return p + 1, false
}

// CyclePhases 按顺序返回一个cycle内的所有phase
func CyclePhases() []CyclePhase {
	return []CyclePhase{
		PhaseTaskAssignment,
		PhaseTaskExecution,
		PhaseConsensusScoring,
		PhaseMetagraphUpdate,
	}
}

// ParsePhase resolves a phase from its string name.
func ParsePhase(name string) (CyclePhase, bool) {
	for p, n := range phaseNames {
		if n == name {
			return p, true
		}
	}
	return CyclePhase(0), false
}
