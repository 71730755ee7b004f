package retry

import (
	"context"
	"time"
)

// Policy 描述一个睡眠-重查循环：先立即执行一次condition，
// 之后每隔Interval执行一次，直到condition完成、超过Timeout或者ctx被取消。
// quorum轮询和orchestrator的tick循环共用这一个实现。
type Policy struct {
	Interval time.Duration

	// Timeout <= 0 表示没有截止时间，只能靠condition完成或ctx取消退出
	Timeout time.Duration
}

// Do runs condition until it reports done. It returns done=false when the
// timeout elapsed first, and ctx.Err() when the context was canceled.
// condition返回error会立即终止循环
func (p Policy) Do(ctx context.Context, condition func() (bool, error)) (bool, error) {
	var deadline <-chan time.Time
	if p.Timeout > 0 {
		timer := time.NewTimer(p.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		done, err := condition()
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline:
			return false, nil
		case <-ticker.C:
		}
	}
}
