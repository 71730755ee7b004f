package tasks

import (
	"context"
)

// Layer 是任务分发/执行/本地打分的外部协作者接口
// miner具体做什么工作、怎么打分不属于本核心，核心只消费这三个操作
type Layer interface {
	// SelectMiners 为一个cycle挑选要下发任务的miner集合
	SelectMiners(cycle int64) ([]string, error)

	// SendTasks 向选中的miner下发任务
	SendTasks(ctx context.Context, cycle int64, minerIDs []string) error

	// ScoreMinerResults 对已返回的结果做本地打分
	// 输出即ScoreAggregator的local_scores输入
	ScoreMinerResults() (map[string]float64, error)
}
