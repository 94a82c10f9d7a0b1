package store

import (
	"fmt"
	"time"

	c "github.com/patrickmn/go-cache"
)

type NotFoundError struct {
	WorkflowId string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("workflow %s not found", e.WorkflowId)
}

// Store holds the active workflow executions keyed by workflow id. It is an
// injected component with an explicit lifecycle, entries live until evicted.
type Store[T any] struct {
	cache *c.Cache
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		cache: c.New(c.NoExpiration, 10*time.Minute),
	}
}

func (s *Store[T]) Add(workflowId string, value T) {
	s.cache.Set(workflowId, value, c.NoExpiration)
}

func (s *Store[T]) Get(workflowId string) (T, error) {
	var zero T
	value, found := s.cache.Get(workflowId)
	if !found {
		return zero, NotFoundError{WorkflowId: workflowId}
	}
	return value.(T), nil
}

func (s *Store[T]) List() []T {
	items := s.cache.Items()
	values := make([]T, 0, len(items))
	for _, item := range items {
		values = append(values, item.Object.(T))
	}
	return values
}

func (s *Store[T]) Evict(workflowId string) {
	s.cache.Delete(workflowId)
}

func (s *Store[T]) Len() int {
	return s.cache.ItemCount()
}
