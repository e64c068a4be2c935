// pkg/rpcpool/pool.go
package rpcpool

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Pool hands out RPC clients round-robin so entropy reads spread across
// endpoints and a single flaky provider does not stall trades.
type Pool struct {
	mu      sync.Mutex
	clients []*rpc.Client
	index   int
	logger  *zap.Logger
}

func NewPool(endpoints []string, logger *zap.Logger) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("empty RPC endpoint list")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clients := make([]*rpc.Client, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, errors.New("invalid RPC URL: " + endpoint)
		}
		clients = append(clients, rpc.New(endpoint))
	}

	return &Pool{
		clients: clients,
		logger:  logger.Named("rpc_pool"),
	}, nil
}

// Get returns the next client in the rotation.
func (p *Pool) Get() *rpc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	client := p.clients[p.index]
	p.index = (p.index + 1) % len(p.clients)
	return client
}

// Size reports how many clients remain in the rotation.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// HealthCheck drops unreachable clients from the rotation. The last
// client is never dropped so the pool stays usable.
func (p *Pool) HealthCheck(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := make([]*rpc.Client, 0, len(p.clients))
	for i, client := range p.clients {
		if p.healthy(ctx, client) {
			kept = append(kept, client)
		} else {
			p.logger.Warn("Dropping unhealthy RPC client from pool", zap.Int("index", i))
		}
	}
	if len(kept) == 0 {
		p.logger.Warn("All RPC clients unhealthy, keeping existing rotation")
		return
	}
	p.clients = kept
	if p.index >= len(p.clients) {
		p.index = 0
	}
}

func (p *Pool) healthy(ctx context.Context, client *rpc.Client) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := client.GetHealth(checkCtx)
	return err == nil
}
