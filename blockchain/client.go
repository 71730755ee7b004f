package blockchain

import (
	"context"
	"errors"
	"fmt"

	"subnetsync/types"
)

// ErrNotFound is returned by QueryResource when the address holds no
// resource of the requested type.
var ErrNotFound = errors.New("blockchain: resource not found")

// SubmissionError 表示交易提交或确认失败
// orchestrator收到它之后走单边本地应用的降级路径，而不是无限重试
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("blockchain submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Client 是链上交互的外部协作者接口
// 签名、钱包、合约ABI都在它后面，本核心只关心提交和查询
type Client interface {
	// SubmitAndConfirm 提交一笔交易并等待确认，返回tx id
	// 失败时返回*SubmissionError
	SubmitAndConfirm(ctx context.Context, tx []byte) (string, error)

	// QueryResource 按地址和类型查询链上资源，缺失时返回ErrNotFound
	QueryResource(ctx context.Context, address, resourceType string) ([]byte, error)
}

// MetagraphTx 是MetagraphUpdate阶段提交的交易内容
type MetagraphTx struct {
	Cycle       int64                           `json:"cycle"`
	Scores      map[string]types.MinerConsensus `json:"scores"`
	ValidatorID string                          `json:"validator_id"`
}
