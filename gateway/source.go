package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/yogabrata/formation/config"
	"github.com/yogabrata/formation/logger"
	"go.uber.org/zap"
)

const maxWebResponseBytes = 1 << 20

// Response is the uniform answer from an external source. A failed query is
// reported through Error, it is never raised as a Go error across the gateway
// boundary.
type Response struct {
	Source string         `json:"source"`
	Data   map[string]any `json:"data,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (r Response) IsError() bool {
	return r.Error != ""
}

func errorResponse(source string, reason string) Response {
	return Response{Source: source, Error: reason}
}

// Source is one external capability provider. The rate-limit clock is shared
// by every caller of the source, across all workflow instances.
type Source struct {
	conf   config.SourceConfig
	client *http.Client

	mu           sync.Mutex
	connected    bool
	lastRequest  time.Time
	requestCount int
}

func NewSource(conf config.SourceConfig) *Source {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if conf.TimeoutSeconds <= 0 {
		timeout = 30 * time.Second
	}
	return &Source{
		conf:   conf,
		client: &http.Client{Timeout: timeout},
	}
}

// Connect probes the source endpoint and records connection health. The probe
// is retried with capped exponential backoff; queries themselves are never
// retried by the gateway.
func (s *Source) Connect(ctx context.Context) bool {
	probe := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.conf.Url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxWebResponseBytes))
		if resp.StatusCode >= 400 {
			return fmt.Errorf("source %s returned status %d", s.conf.Name, resp.StatusCode)
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	err := backoff.Retry(probe, policy)
	if err != nil {
		logger.Warn("source connection failed", zap.String("source", s.conf.Name), zap.Error(err))
	}
	s.mu.Lock()
	s.connected = err == nil
	s.mu.Unlock()
	return err == nil
}

func (s *Source) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Source) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// Query issues one request to the source. Callers exceeding the rate limit
// are delayed, not rejected: each caller reserves the next free slot on the
// shared clock and sleeps until it arrives.
func (s *Source) Query(ctx context.Context, query string, params map[string]any) Response {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return errorResponse(s.conf.Name, "not connected")
	}
	slot := time.Now()
	if s.conf.RateLimit > 0 {
		interval := time.Minute / time.Duration(s.conf.RateLimit)
		if next := s.lastRequest.Add(interval); next.After(slot) {
			slot = next
		}
	}
	s.lastRequest = slot
	s.requestCount++
	s.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return errorResponse(s.conf.Name, ctx.Err().Error())
		}
	}

	switch s.conf.Type {
	case config.SOURCE_TYPE_API:
		return s.queryApi(ctx, query, params)
	case config.SOURCE_TYPE_WEB:
		return s.queryWeb(ctx)
	}
	return errorResponse(s.conf.Name, fmt.Sprintf("unsupported source type %s", s.conf.Type))
}

func (s *Source) queryApi(ctx context.Context, query string, params map[string]any) Response {
	body, err := json.Marshal(map[string]any{"query": query, "params": params})
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.conf.Url, bytes.NewReader(body))
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorResponse(s.conf.Name, fmt.Sprintf("source returned status %d", resp.StatusCode))
	}
	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	return Response{Source: s.conf.Name, Data: data}
}

func (s *Source) queryWeb(ctx context.Context) Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.conf.Url, nil)
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorResponse(s.conf.Name, fmt.Sprintf("source returned status %d", resp.StatusCode))
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxWebResponseBytes))
	if err != nil {
		return errorResponse(s.conf.Name, err.Error())
	}
	return Response{Source: s.conf.Name, Data: map[string]any{
		"content": string(content),
		"url":     s.conf.Url,
	}}
}
