package mock

import (
	"context"
	"fmt"
	"sync"

	"subnetsync/blockchain"
)

// Client is a configurable in-memory implementation of blockchain.Client,
// useful for testing and for running a node without chain access.
type Client struct {
	mtx sync.Mutex

	// FailSubmit, when set, makes SubmitAndConfirm return a SubmissionError.
	FailSubmit bool
	// Resources backs QueryResource, keyed by address+"/"+resourceType.
	Resources map[string][]byte

	// Submitted 记录每笔提交的原始交易
	Submitted [][]byte
}

var _ blockchain.Client = (*Client)(nil)

func (c *Client) SubmitAndConfirm(_ context.Context, tx []byte) (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.FailSubmit {
		return "", &blockchain.SubmissionError{Err: fmt.Errorf("mock submit failure")}
	}

	raw := make([]byte, len(tx))
	copy(raw, tx)
	c.Submitted = append(c.Submitted, raw)
	return fmt.Sprintf("tx-%04d", len(c.Submitted)), nil
}

func (c *Client) QueryResource(_ context.Context, address, resourceType string) ([]byte, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	data, ok := c.Resources[address+"/"+resourceType]
	if !ok {
		return nil, blockchain.ErrNotFound
	}
	return data, nil
}

// SubmittedCount returns the number of confirmed submissions so far.
func (c *Client) SubmittedCount() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.Submitted)
}

// SetFailSubmit 动态切换提交失败注入
func (c *Client) SetFailSubmit(fail bool) {
	c.mtx.Lock()
	c.FailSubmit = fail
	c.mtx.Unlock()
}
