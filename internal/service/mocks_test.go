package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catalog-annotations/internal/domain"
	"catalog-annotations/internal/repository"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.record("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

func (m *MockLogger) Contains(fragment string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.messages {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

// flakyStore wraps the memory store with switchable failures.
type flakyStore struct {
	*repository.MemoryAnnotationStore

	mu              sync.Mutex
	failQuery       bool
	failInsert      bool
	failDelete      bool
	insertWithoutID bool
	insertGate      chan struct{}
	inserts         int
	queries         int
	foreign         []*domain.Annotation
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryAnnotationStore: repository.NewMemoryAnnotationStore()}
}

func (s *flakyStore) set(fn func(s *flakyStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *flakyStore) Query(ctx context.Context, kind domain.AnnotationKind, filter domain.AnnotationFilter) ([]*domain.Annotation, error) {
	s.mu.Lock()
	s.queries++
	fail := s.failQuery
	foreign := s.foreign
	s.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w: simulated read failure", domain.ErrRemoteUnavailable)
	}
	out, err := s.MemoryAnnotationStore.Query(ctx, kind, filter)
	if err != nil {
		return nil, err
	}
	// Records leaked by a misbehaving backend.
	return append(out, foreign...), nil
}

func (s *flakyStore) Insert(ctx context.Context, annotation *domain.Annotation) (*domain.Annotation, error) {
	s.mu.Lock()
	s.inserts++
	fail, withoutID, gate := s.failInsert, s.insertWithoutID, s.insertGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, fmt.Errorf("%w: simulated write failure", domain.ErrRemoteUnavailable)
	}
	stored, err := s.MemoryAnnotationStore.Insert(ctx, annotation)
	if err != nil {
		return nil, err
	}
	if withoutID {
		copied := *stored
		copied.ID = ""
		return &copied, nil
	}
	return stored, nil
}

func (s *flakyStore) DeleteByID(ctx context.Context, kind domain.AnnotationKind, ownerID, id string) error {
	s.mu.Lock()
	fail := s.failDelete
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: simulated delete failure", domain.ErrRemoteUnavailable)
	}
	return s.MemoryAnnotationStore.DeleteByID(ctx, kind, ownerID, id)
}

func (s *flakyStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

type fakeCatalog struct {
	items []domain.CatalogItem
	err   error
	gate  chan struct{}
}

func (c *fakeCatalog) wait(ctx context.Context) error {
	if c.gate == nil {
		return nil
	}
	select {
	case <-c.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeCatalog) FetchAll(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	return append([]domain.CatalogItem(nil), c.items...), nil
}

func (c *fakeCatalog) FetchByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	for _, item := range c.items {
		if item.Name == name {
			found := item
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrCatalogItemNotFound, name)
}

func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{items: []domain.CatalogItem{
		{Name: "Koromon", ImageURL: "https://img/koromon.jpg", Level: "In Training"},
		{Name: "Agumon", ImageURL: "https://img/agumon.jpg", Level: "Rookie"},
		{Name: "Gabumon", ImageURL: "https://img/gabumon.jpg", Level: "Rookie"},
	}}
}
