package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/yogabrata/formation/config"
	"github.com/yogabrata/formation/logger"
	"go.uber.org/zap"
)

// Client is the query surface the rest of the system depends on.
type Client interface {
	Query(ctx context.Context, sourceName string, query string, params map[string]any) Response
	QueryMany(ctx context.Context, sourceNames []string, query string, params map[string]any) map[string]Response
}

var _ Client = new(Manager)

// Manager holds the named source connections. Sources are registered at
// startup; the set is read-only while workflows execute.
type Manager struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

func NewManager() *Manager {
	return &Manager{
		sources: make(map[string]*Source),
	}
}

func (m *Manager) AddSource(conf config.SourceConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[conf.Name] = NewSource(conf)
}

// ConnectAll probes every registered source. A failed probe leaves the source
// registered but disconnected, queries to it answer with an error response.
func (m *Manager) ConnectAll(ctx context.Context) map[string]bool {
	m.mu.RLock()
	sources := make(map[string]*Source, len(m.sources))
	for name, source := range m.sources {
		sources[name] = source
	}
	m.mu.RUnlock()

	results := make(map[string]bool, len(sources))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup
	for name, source := range sources {
		wg.Add(1)
		go func(name string, source *Source) {
			defer wg.Done()
			ok := source.Connect(ctx)
			resultsMu.Lock()
			results[name] = ok
			resultsMu.Unlock()
		}(name, source)
	}
	wg.Wait()
	logger.Info("source connection results", zap.Any("results", results))
	return results
}

func (m *Manager) getSource(name string) (*Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	source, ok := m.sources[name]
	return source, ok
}

func (m *Manager) Query(ctx context.Context, sourceName string, query string, params map[string]any) Response {
	source, ok := m.getSource(sourceName)
	if !ok {
		return errorResponse(sourceName, fmt.Sprintf("source %s not registered", sourceName))
	}
	return source.Query(ctx, query, params)
}

// QueryMany queries the named sources concurrently and collects the answers
// independently: one source failing or timing out never aborts its siblings.
func (m *Manager) QueryMany(ctx context.Context, sourceNames []string, query string, params map[string]any) map[string]Response {
	results := make(map[string]Response, len(sourceNames))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range sourceNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			resp := m.Query(ctx, name, query, params)
			resultsMu.Lock()
			results[name] = resp
			resultsMu.Unlock()
		}(name)
	}
	wg.Wait()
	return results
}

type SourceStatus struct {
	Connected    bool              `json:"connected"`
	RequestCount int               `json:"requestCount"`
	Type         config.SourceType `json:"type"`
	RateLimit    int               `json:"rateLimit"`
}

func (m *Manager) Status() map[string]SourceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := make(map[string]SourceStatus, len(m.sources))
	for name, source := range m.sources {
		status[name] = SourceStatus{
			Connected:    source.Connected(),
			RequestCount: source.RequestCount(),
			Type:         source.conf.Type,
			RateLimit:    source.conf.RateLimit,
		}
	}
	return status
}
