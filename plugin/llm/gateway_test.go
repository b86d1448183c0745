package llm

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

// fakeClient scripts provider behavior per call.
type fakeClient struct {
	calls   atomic.Int32
	respond func(call int32) (string, error)
}

func (c *fakeClient) Complete(_ context.Context, _ []Message) (string, error) {
	return c.respond(c.calls.Add(1))
}

func (c *fakeClient) GetModel() string { return "fake-model" }

func newTestGateway(clients map[string]Client, fallbackOrder []string) *Gateway {
	return &Gateway{
		clients:        clients,
		fallbackOrder:  fallbackOrder,
		maxRetries:     2,
		attemptTimeout: 5 * time.Second,
		sem:            semaphore.NewWeighted(8),
	}
}

func TestGatewayCompleteSuccess(t *testing.T) {
	client := &fakeClient{respond: func(int32) (string, error) { return "hello", nil }}
	g := newTestGateway(map[string]Client{ProviderOpenAI: client}, nil)

	reply, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestGatewayRetriesTimeout(t *testing.T) {
	client := &fakeClient{respond: func(call int32) (string, error) {
		if call == 1 {
			return "", ErrTimeout
		}
		return "recovered", nil
	}}
	g := newTestGateway(map[string]Client{ProviderOpenAI: client}, nil)

	reply, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestGatewayRetriesRateLimit(t *testing.T) {
	client := &fakeClient{respond: func(call int32) (string, error) {
		if call == 1 {
			return "", ErrRateLimited
		}
		return "recovered", nil
	}}
	g := newTestGateway(map[string]Client{ProviderDeepSeek: client}, nil)

	reply, err := g.Complete(context.Background(), ProviderDeepSeek, []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
}

func TestGatewayNoRetryOnUnavailable(t *testing.T) {
	primary := &fakeClient{respond: func(int32) (string, error) { return "", ErrUnavailable }}
	g := newTestGateway(map[string]Client{ProviderOpenAI: primary}, nil)

	_, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrUnavailable)
	// Unavailability fails the provider without a second attempt.
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestGatewayFallback(t *testing.T) {
	primary := &fakeClient{respond: func(int32) (string, error) { return "", ErrUnavailable }}
	secondary := &fakeClient{respond: func(int32) (string, error) { return "from fallback", nil }}
	g := newTestGateway(map[string]Client{
		ProviderOpenAI:   primary,
		ProviderDeepSeek: secondary,
	}, []string{ProviderOpenAI, ProviderDeepSeek})

	reply, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", reply)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestGatewayFallbackSkipsRequestedDuplicate(t *testing.T) {
	primary := &fakeClient{respond: func(int32) (string, error) { return "", ErrUnavailable }}
	g := newTestGateway(map[string]Client{ProviderOpenAI: primary},
		[]string{ProviderOpenAI, ProviderOpenAI})

	_, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestGatewayAuthFailsFast(t *testing.T) {
	primary := &fakeClient{respond: func(int32) (string, error) { return "", ErrAuth }}
	secondary := &fakeClient{respond: func(int32) (string, error) { return "never", nil }}
	g := newTestGateway(map[string]Client{
		ProviderOpenAI:   primary,
		ProviderDeepSeek: secondary,
	}, []string{ProviderDeepSeek})

	_, err := g.Complete(context.Background(), ProviderOpenAI, []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrAuth)
	// No retry, no fallback on credential failures.
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(0), secondary.calls.Load())
}

func TestGatewayUnknownProvider(t *testing.T) {
	g := newTestGateway(map[string]Client{}, nil)

	_, err := g.Complete(context.Background(), "nope", []Message{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGatewayContextCancelStopsBackoff(t *testing.T) {
	client := &fakeClient{respond: func(int32) (string, error) { return "", ErrTimeout }}
	g := newTestGateway(map[string]Client{ProviderOpenAI: client}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := g.Complete(ctx, ProviderOpenAI, []Message{UserMessage("hi")})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGatewayHasAndProviders(t *testing.T) {
	g := newTestGateway(map[string]Client{
		ProviderOllama: &fakeClient{respond: func(int32) (string, error) { return "", nil }},
		ProviderOpenAI: &fakeClient{respond: func(int32) (string, error) { return "", nil }},
	}, nil)

	assert.True(t, g.Has(ProviderOpenAI))
	assert.False(t, g.Has(ProviderDeepSeek))
	assert.Equal(t, []string{ProviderOllama, ProviderOpenAI}, g.Providers())
}
