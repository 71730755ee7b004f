package mock

import (
	"context"
	"sync"

	"subnetsync/tasks"
)

// Layer is a configurable in-memory implementation of tasks.Layer, useful
// for testing and for running a node without a real execution backend.
type Layer struct {
	mtx sync.Mutex

	// Miners is returned by SelectMiners.
	Miners []string
	// Scores is returned by ScoreMinerResults.
	Scores map[string]float64
	// Err, when set, is returned by every call.
	Err error

	// 调用记录，测试用
	SelectedCycles []int64
	SentCycles     []int64
	ScoreCalls     int
}

var _ tasks.Layer = (*Layer)(nil)

func (l *Layer) SelectMiners(cycle int64) ([]string, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.SelectedCycles = append(l.SelectedCycles, cycle)
	return append([]string{}, l.Miners...), nil
}

func (l *Layer) SendTasks(_ context.Context, cycle int64, _ []string) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.SentCycles = append(l.SentCycles, cycle)
	return nil
}

func (l *Layer) ScoreMinerResults() (map[string]float64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.ScoreCalls++
	scores := make(map[string]float64, len(l.Scores))
	for k, v := range l.Scores {
		scores[k] = v
	}
	return scores, nil
}

// SetErr 动态切换注入的错误
func (l *Layer) SetErr(err error) {
	l.mtx.Lock()
	l.Err = err
	l.mtx.Unlock()
}
