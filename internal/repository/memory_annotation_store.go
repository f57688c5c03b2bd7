package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-annotations/internal/domain"

	"github.com/google/uuid"
)

// MemoryAnnotationStore is an in-process domain.AnnotationStore used for local
// development (STORE_DRIVER=memory) and tests.
type MemoryAnnotationStore struct {
	mu      sync.RWMutex
	records map[domain.AnnotationKind][]*domain.Annotation
	now     func() time.Time
}

func NewMemoryAnnotationStore() *MemoryAnnotationStore {
	return &MemoryAnnotationStore{
		records: make(map[domain.AnnotationKind][]*domain.Annotation),
		now:     time.Now,
	}
}

func (s *MemoryAnnotationStore) Query(ctx context.Context, kind domain.AnnotationKind, filter domain.AnnotationFilter) ([]*domain.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Annotation, 0)
	for _, a := range s.records[kind] {
		if a.OwnerID != filter.OwnerID {
			continue
		}
		if filter.SubjectName != "" && a.SubjectName != filter.SubjectName {
			continue
		}
		copied := *a
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryAnnotationStore) Insert(ctx context.Context, annotation *domain.Annotation) (*domain.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if annotation.Kind != domain.AnnotationFavorite && annotation.Kind != domain.AnnotationDislike {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, annotation.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// One record per (owner, subject): a repeated insert returns the existing one.
	for _, a := range s.records[annotation.Kind] {
		if a.OwnerID == annotation.OwnerID && a.SubjectName == annotation.SubjectName {
			existing := *a
			return &existing, nil
		}
	}

	stored := *annotation
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()
	s.records[annotation.Kind] = append(s.records[annotation.Kind], &stored)

	out := stored
	return &out, nil
}

func (s *MemoryAnnotationStore) DeleteByID(ctx context.Context, kind domain.AnnotationKind, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[kind][:0]
	for _, a := range s.records[kind] {
		if a.ID == id && a.OwnerID == ownerID {
			continue
		}
		kept = append(kept, a)
	}
	s.records[kind] = kept
	return nil
}

// Count returns the number of records of kind for the owner and subject.
func (s *MemoryAnnotationStore) Count(kind domain.AnnotationKind, ownerID, subjectName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.records[kind] {
		if a.OwnerID == ownerID && a.SubjectName == subjectName {
			n++
		}
	}
	return n
}
