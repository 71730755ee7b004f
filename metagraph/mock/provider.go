package mock

import (
	"sync"

	"subnetsync/metagraph"
)

// Provider is a configurable in-memory implementation of
// metagraph.Provider, useful for testing.
type Provider struct {
	mtx sync.Mutex

	Miners     map[string]metagraph.NodeInfo
	Validators map[string]metagraph.NodeInfo
	Err        error
}

var _ metagraph.Provider = (*Provider)(nil)

func (p *Provider) GetAllMiners() (map[string]metagraph.NodeInfo, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	return copyInfos(p.Miners), nil
}

func (p *Provider) GetAllValidators() (map[string]metagraph.NodeInfo, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	return copyInfos(p.Validators), nil
}

func copyInfos(src map[string]metagraph.NodeInfo) map[string]metagraph.NodeInfo {
	dst := make(map[string]metagraph.NodeInfo, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
