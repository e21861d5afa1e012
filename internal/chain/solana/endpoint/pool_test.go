package endpoint

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// nopClient implements Client with zero-value responses; the pool never
// invokes RPC methods itself so the bodies are irrelevant here.
type nopClient struct{ id int }

func (n *nopClient) GetRecentPrioritizationFees(context.Context, solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error) {
	return nil, nil
}
func (n *nopClient) GetBlockHeight(context.Context, rpc.CommitmentType) (uint64, error) {
	return 0, nil
}
func (n *nopClient) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return nil, nil
}
func (n *nopClient) SendTransactionWithOpts(context.Context, *solana.Transaction, rpc.TransactionOpts) (solana.Signature, error) {
	return solana.Signature{}, nil
}
func (n *nopClient) GetSignatureStatuses(context.Context, bool, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return nil, nil
}
func (n *nopClient) GetTransaction(context.Context, solana.Signature, *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	return nil, nil
}
func (n *nopClient) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return nil, nil
}
func (n *nopClient) GetTokenAccountBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	return nil, nil
}

func TestNewPoolRejectsEmptySet(t *testing.T) {
	_, err := NewPool(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = Dial(nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNextRoundRobinWraps(t *testing.T) {
	clients := []Client{&nopClient{id: 0}, &nopClient{id: 1}, &nopClient{id: 2}}
	pool, err := NewPool(clients, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		got := pool.Next().(*nopClient)
		assert.Equal(t, i%3, got.id, "rotation must be strict round-robin")
	}
}

func TestNextConcurrentDistribution(t *testing.T) {
	clients := []Client{&nopClient{id: 0}, &nopClient{id: 1}, &nopClient{id: 2}}
	pool, err := NewPool(clients, zap.NewNop())
	require.NoError(t, err)

	const perWorker = 300
	const workers = 4

	var mu sync.Mutex
	counts := make(map[int]int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make(map[int]int)
			for i := 0; i < perWorker; i++ {
				local[pool.Next().(*nopClient).id]++
			}
			mu.Lock()
			for id, c := range local {
				counts[id] += c
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := 0
	for id, c := range counts {
		assert.Equal(t, perWorker*workers/len(clients), c, "client %d", id)
		total += c
	}
	assert.Equal(t, perWorker*workers, total)
}

func TestAllReturnsEveryClient(t *testing.T) {
	clients := []Client{&nopClient{id: 0}, &nopClient{id: 1}}
	pool, err := NewPool(clients, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, pool.All(), 2)
	assert.Equal(t, 2, pool.Len())
}
