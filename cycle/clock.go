package cycle

import (
	"time"

	"subnetsync/config"
	"subnetsync/types"
)

// Clock 把墙上时钟映射为(cycle, phase)的纯函数，本身不保存任何状态
//
// 所有validator共享同一个epoch anchor和phase时长，因此只要时钟漂移远小于
// 最短的phase时长，各节点不经过任何协商就能独立算出一致的(cycle, phase)。
// 这是"不协商的协商"机制，取代了节点间的时钟同步消息。
type Clock struct {
	anchor    time.Time
	durations []time.Duration // indexed in phase order
	total     time.Duration
}

// NewClock derives an immutable clock from the cycle configuration.
func NewClock(cfg *config.CycleConfig) *Clock {
	durations := make([]time.Duration, 0, len(types.CyclePhases()))
	for _, phase := range types.CyclePhases() {
		durations = append(durations, cfg.PhaseDuration(phase))
	}
	return &Clock{
		anchor:    time.Unix(cfg.EpochAnchor, 0),
		durations: durations,
		total:     cfg.CycleDuration(),
	}
}

// CycleAt returns the cycle number containing now:
// floor((now - anchor) / cycleDuration), clamped to >= 0.
func (c *Clock) CycleAt(now time.Time) int64 {
	elapsed := now.Sub(c.anchor)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / c.total)
}

// PhaseAt returns the phase containing now together with the elapsed and
// remaining time inside that phase.
// now落在anchor之前(时钟偏斜)时不报错，返回TaskAssignment兜底
func (c *Clock) PhaseAt(now time.Time) (types.CyclePhase, time.Duration, time.Duration) {
	offset := c.cycleOffset(now)
	if offset < 0 {
		return types.PhaseTaskAssignment, 0, c.durations[0]
	}

	var start time.Duration
	for i, phase := range types.CyclePhases() {
		end := start + c.durations[i]
		if offset < end {
			return phase, offset - start, end - offset
		}
		start = end
	}

	// unreachable while offset < total; keep the safe default anyway
	return types.PhaseTaskAssignment, 0, c.durations[0]
}

// NextBoundary returns the phase that starts next and how long until it
// starts. At an exact boundary the phase just entered is already current,
// so the result is always strictly in the future.
func (c *Clock) NextBoundary(now time.Time) (types.CyclePhase, time.Duration) {
	phase, _, remaining := c.PhaseAt(now)
	next, _ := phase.Next()
	return next, remaining
}

// InSchedule reports whether now falls inside the configured schedule.
// false意味着时钟偏斜(now早于epoch anchor)
func (c *Clock) InSchedule(now time.Time) bool {
	return !now.Before(c.anchor)
}

// CycleStart returns the wall time at which the given cycle begins.
func (c *Clock) CycleStart(cycle int64) time.Time {
	return c.anchor.Add(time.Duration(cycle) * c.total)
}

// CycleDuration returns the total duration of one cycle.
func (c *Clock) CycleDuration() time.Duration {
	return c.total
}

// cycleOffset returns now's offset inside its cycle, negative before anchor.
func (c *Clock) cycleOffset(now time.Time) time.Duration {
	elapsed := now.Sub(c.anchor)
	if elapsed < 0 {
		return -1
	}
	return elapsed % c.total
}
