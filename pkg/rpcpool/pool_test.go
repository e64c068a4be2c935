package rpcpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewPoolRejectsEmptyList(t *testing.T) {
	_, err := NewPool(nil, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGetRotatesRoundRobin(t *testing.T) {
	pool, err := NewPool([]string{
		"https://rpc-one.example.com",
		"https://rpc-two.example.com",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 2, pool.Size())

	first := pool.Get()
	second := pool.Get()
	third := pool.Get()

	assert.NotSame(t, first, second)
	assert.Same(t, first, third)
}
