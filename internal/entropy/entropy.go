// internal/entropy/entropy.go
package entropy

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/fossrlabs/fossr-engine/pkg/rpcpool"
)

// RPCSource feeds the lock scheduler from chain data: the latest
// blockhash as the hash fragment and the current slot as the monotonic
// counter. Both are public well before a trade lands, so this is mixing
// material, not a secrecy source.
type RPCSource struct {
	pool   *rpcpool.Pool
	logger *zap.Logger
}

func NewRPCSource(endpoints []string, logger *zap.Logger) (*RPCSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := rpcpool.NewPool(endpoints, logger)
	if err != nil {
		return nil, err
	}
	return &RPCSource{
		pool:   pool,
		logger: logger.Named("entropy"),
	}, nil
}

// Fragment returns the latest blockhash bytes and the current slot.
func (s *RPCSource) Fragment(ctx context.Context) ([]byte, uint64, error) {
	client := s.pool.Get()
	blockhash, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	slot, err := client.GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get slot: %w", err)
	}

	hash := blockhash.Value.Blockhash
	s.logger.Debug("Fetched entropy fragment",
		zap.String("blockhash", hash.String()),
		zap.Uint64("slot", slot))
	return hash[:], slot, nil
}

// StaticSource returns a fixed fragment with a self-incrementing
// counter. It backs tests and offline runs where no RPC is configured.
type StaticSource struct {
	frag    []byte
	counter atomic.Uint64
}

func NewStaticSource(frag []byte) *StaticSource {
	return &StaticSource{frag: frag}
}

func (s *StaticSource) Fragment(context.Context) ([]byte, uint64, error) {
	return s.frag, s.counter.Add(1), nil
}
