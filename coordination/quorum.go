package coordination

import (
	"context"
	"sort"

	"github.com/tendermint/tendermint/libs/log"

	"subnetsync/libs/retry"
	"subnetsync/types"
)

// Gate 轮询Store，直到(cycle, phase)下登记的validator达到阈值或者超时。
//
// 超时不是错误：返回当时已经就绪的部分集合，由caller比较len(ready)和阈值
// 来区分正常完成和降级完成。自己的登记记录也计入自己的quorum检查。
type Gate struct {
	store  Store
	policy retry.Policy

	logger log.Logger
}

func NewGate(store Store, policy retry.Policy) *Gate {
	return &Gate{
		store:  store,
		policy: policy,
		logger: log.NewNopLogger(),
	}
}

func (g *Gate) SetLogger(l log.Logger) {
	g.logger = l
}

// WaitForQuorum polls until at least threshold members of expected have
// registered for (cycle, phase). The returned set is always a subset of
// expected, sorted, and never accompanied by an error on timeout or
// cancellation: callers inspect its size instead.
func (g *Gate) WaitForQuorum(ctx context.Context, cycle int64, phase types.CyclePhase, expected []string, threshold int) []string {
	expectedSet := make(map[string]struct{}, len(expected))
	for _, id := range expected {
		expectedSet[id] = struct{}{}
	}

	var ready []string
	_, err := g.policy.Do(ctx, func() (bool, error) {
		registered, err := g.store.QueryReady(cycle, phase)
		if err != nil {
			// 存储抖动不终止等待，下一个poll再试
			g.logger.Error("query ready set failed", "cycle", cycle, "phase", phase, "err", err)
			return false, nil
		}

		ready = ready[:0]
		for _, id := range registered {
			if _, ok := expectedSet[id]; ok {
				ready = append(ready, id)
			}
		}
		return len(ready) >= threshold, nil
	})
	if err != nil {
		// 只有ctx取消会走到这里，同样返回已有的部分集合
		g.logger.Info("quorum wait canceled", "cycle", cycle, "phase", phase, "ready", len(ready))
	}

	sort.Strings(ready)
	return ready
}
