package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"
)

// MetricsRecorder receives the outcome of every provider attempt.
type MetricsRecorder interface {
	RecordCall(provider string, duration time.Duration, err error)
}

// Gateway routes chat completions to one of the configured providers with
// bounded retry and per-turn fallback. It holds no mutable state across calls
// and is safe for unlimited parallel use.
type Gateway struct {
	clients        map[string]Client
	fallbackOrder  []string
	maxRetries     int
	attemptTimeout time.Duration
	sem            *semaphore.Weighted
	metrics        MetricsRecorder
}

// SetMetricsRecorder attaches a recorder for per-attempt call metrics. Must
// be called before the gateway is shared across goroutines.
func (g *Gateway) SetMetricsRecorder(recorder MetricsRecorder) {
	g.metrics = recorder
}

// NewGateway creates a gateway from configuration.
func NewGateway(cfg *Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clients := make(map[string]Client, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		client, err := NewClient(pc)
		if err != nil {
			return nil, err
		}
		clients[name] = client
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	return &Gateway{
		clients:        clients,
		fallbackOrder:  cfg.FallbackOrder,
		maxRetries:     maxRetries,
		attemptTimeout: attemptTimeout,
		sem:            semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Has reports whether the named provider is configured.
func (g *Gateway) Has(provider string) bool {
	_, ok := g.clients[provider]
	return ok
}

// Providers returns the configured provider names, sorted.
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.clients))
	for name := range g.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Complete sends the transcript to the named provider, retrying on transient
// failures and falling back to secondary providers for this call only. The
// session's provider identity is never changed by rerouting.
//
// Auth failures surface immediately without retry or fallback.
func (g *Gateway) Complete(ctx context.Context, provider string, messages []Message) (string, error) {
	candidates := g.candidates(provider)
	if len(candidates) == 0 {
		return "", ErrUnavailable
	}

	var lastErr error
	for _, name := range candidates {
		reply, err := g.completeWithRetry(ctx, name, messages)
		if err == nil {
			if name != provider {
				slog.Info("provider call rerouted to fallback",
					slog.String("requested", provider),
					slog.String("served_by", name))
			}
			return reply, nil
		}
		if errors.Is(err, ErrAuth) || errors.Is(err, context.Canceled) {
			return "", err
		}
		lastErr = err
		slog.Warn("provider exhausted, trying fallback",
			slog.String("provider", name),
			slog.String("error", err.Error()))
	}

	return "", lastErr
}

// candidates returns the providers to try for one call: the requested provider
// first, then the configured fallback order with duplicates removed.
func (g *Gateway) candidates(provider string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] && g.Has(name) {
			seen[name] = true
			out = append(out, name)
		}
	}
	add(provider)
	for _, name := range g.fallbackOrder {
		add(name)
	}
	return out
}

// completeWithRetry executes one provider's attempts with exponential backoff.
// Only timeouts and rate limits are retried; unavailability fails the provider
// straight away so fallback can take over.
func (g *Gateway) completeWithRetry(ctx context.Context, provider string, messages []Message) (string, error) {
	client := g.clients[provider]

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		start := time.Now()
		reply, err := g.completeOnce(ctx, client, messages)
		if g.metrics != nil {
			g.metrics.RecordCall(provider, time.Since(start), err)
		}
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrRateLimited) {
			return "", err
		}
		if attempt < g.maxRetries-1 {
			waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			slog.Debug("provider request failed, retrying",
				slog.String("provider", provider),
				slog.Int("attempt", attempt+1),
				slog.Duration("wait_time", waitTime),
				slog.String("error", err.Error()))
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

func (g *Gateway) completeOnce(ctx context.Context, client Client, messages []Message) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer g.sem.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	return client.Complete(attemptCtx, messages)
}
