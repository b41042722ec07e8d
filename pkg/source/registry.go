// Package source maintains the list of liquidity and bridge providers
// available for the active network.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"swapquote/pkg/types"
)

// ErrUnavailable indicates the registry endpoint could not be reached or
// returned an unusable response. The whole engine is disabled until a
// retry succeeds.
var ErrUnavailable = errors.New("source registry unavailable")

// Registry fetches and caches the provider list per network. The cache
// is invalidated when the network changes or Refresh is called.
type Registry struct {
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	networkID string
	cached    []types.Source
}

// NewRegistry creates a registry backed by the given endpoint root
func NewRegistry(baseURL string, client *http.Client) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Registry{
		baseURL: baseURL,
		client:  client,
	}
}

// Sources returns the provider list for the network, fetching it on
// first use and whenever the network differs from the cached one. The
// returned slice preserves registration order; callers must not mutate
// it.
func (r *Registry) Sources(ctx context.Context, network types.Network) ([]types.Source, error) {
	r.mu.Lock()
	if r.networkID == network.ID && r.cached != nil {
		sources := r.cached
		r.mu.Unlock()
		return sources, nil
	}
	r.mu.Unlock()

	return r.Refresh(ctx, network)
}

// Refresh re-fetches the provider list for the network, replacing the cache
func (r *Registry) Refresh(ctx context.Context, network types.Network) ([]types.Source, error) {
	url := fmt.Sprintf("%s/v1/networks/%s/sources", r.baseURL, network.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var sources []types.Source
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	r.mu.Lock()
	r.networkID = network.ID
	r.cached = sources
	r.mu.Unlock()

	// An empty list is valid: it disables the engine without being an error
	return sources, nil
}
