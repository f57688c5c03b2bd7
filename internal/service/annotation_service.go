package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"catalog-annotations/internal/domain"
)

const defaultSnapshotPollInterval = 5 * time.Second

type watchKey struct {
	kind    domain.AnnotationKind
	ownerID string
}

// AnnotationService wraps an AnnotationStore with the favorite/dislike
// operations. It holds no annotation state beyond open subscriptions.
type AnnotationService struct {
	store        domain.AnnotationStore
	logger       domain.Logger
	pollInterval time.Duration

	mu       sync.Mutex
	watchers map[watchKey]map[*Subscription]struct{}
}

func NewAnnotationService(store domain.AnnotationStore, pollInterval time.Duration, logger domain.Logger) *AnnotationService {
	if pollInterval <= 0 {
		pollInterval = defaultSnapshotPollInterval
	}
	return &AnnotationService{
		store:        store,
		logger:       logger,
		pollInterval: pollInterval,
		watchers:     make(map[watchKey]map[*Subscription]struct{}),
	}
}

// Subscription streams complete snapshots of one owner's collection.
type Subscription struct {
	snapshots chan domain.AnnotationSnapshot
	wake      chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

// Snapshots returns the snapshot stream. It is closed when the subscription ends.
func (s *Subscription) Snapshots() <-chan domain.AnnotationSnapshot {
	return s.snapshots
}

// Close releases the subscription and waits until nothing more can be emitted.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// ObserveAll opens a live subscription. The first snapshot is always emitted;
// later ones only when the collection changed. Read failures emit nothing.
func (s *AnnotationService) ObserveAll(ctx context.Context, kind domain.AnnotationKind, ownerID string) (domain.AnnotationSubscription, error) {
	if _, err := domain.ParseAnnotationKind(string(kind)); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		snapshots: make(chan domain.AnnotationSnapshot),
		wake:      make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	key := watchKey{kind: kind, ownerID: ownerID}
	s.mu.Lock()
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[*Subscription]struct{})
	}
	s.watchers[key][sub] = struct{}{}
	s.mu.Unlock()

	go s.watch(subCtx, key, sub)
	return sub, nil
}

func (s *AnnotationService) watch(ctx context.Context, key watchKey, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.snapshots)
	defer s.unregister(key, sub)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last string
	emitted := false
	for {
		annotations, err := s.store.Query(ctx, key.kind, domain.AnnotationFilter{OwnerID: key.ownerID})
		switch {
		case err != nil:
			if ctx.Err() == nil {
				s.logger.Warn("Annotation snapshot read failed", "kind", key.kind, "owner_id", key.ownerID, "error", err)
			}
		default:
			annotations = ownedBy(annotations, key.ownerID)
			fingerprint := snapshotFingerprint(annotations)
			if !emitted || fingerprint != last {
				snapshot := domain.AnnotationSnapshot{Kind: key.kind, OwnerID: key.ownerID, Annotations: annotations}
				select {
				case sub.snapshots <- snapshot:
					emitted = true
					last = fingerprint
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-sub.wake:
		}
	}
}

func (s *AnnotationService) unregister(key watchKey, sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers[key], sub)
	if len(s.watchers[key]) == 0 {
		delete(s.watchers, key)
	}
}

// notify wakes every subscription of (kind, owner) after a local mutation.
func (s *AnnotationService) notify(kind domain.AnnotationKind, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.watchers[watchKey{kind: kind, ownerID: ownerID}] {
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

// Snapshot reads the owner's collection once. Unlike ObserveAll, errors propagate.
func (s *AnnotationService) Snapshot(ctx context.Context, kind domain.AnnotationKind, ownerID string) (domain.AnnotationSnapshot, error) {
	if _, err := domain.ParseAnnotationKind(string(kind)); err != nil {
		return domain.AnnotationSnapshot{}, err
	}
	if ownerID == "" {
		return domain.AnnotationSnapshot{}, domain.ErrUnauthenticated
	}

	annotations, err := s.store.Query(ctx, kind, domain.AnnotationFilter{OwnerID: ownerID})
	if err != nil {
		return domain.AnnotationSnapshot{}, fmt.Errorf("read %s annotations: %w", kind, err)
	}
	return domain.AnnotationSnapshot{Kind: kind, OwnerID: ownerID, Annotations: ownedBy(annotations, ownerID)}, nil
}

// FindByName returns the owner's annotation for the subject, or nil. Read
// failures are logged and reported as absent.
func (s *AnnotationService) FindByName(ctx context.Context, kind domain.AnnotationKind, subjectName, ownerID string) *domain.Annotation {
	if ownerID == "" || subjectName == "" {
		return nil
	}

	annotations, err := s.store.Query(ctx, kind, domain.AnnotationFilter{OwnerID: ownerID, SubjectName: subjectName})
	if err != nil {
		s.logger.Warn("Annotation lookup failed", "kind", kind, "subject_name", subjectName, "owner_id", ownerID, "error", err)
		return nil
	}

	annotations = ownedBy(annotations, ownerID)
	if len(annotations) == 0 {
		return nil
	}
	if len(annotations) > 1 {
		s.logger.Warn("Duplicate annotations found", "kind", kind, "subject_name", subjectName, "owner_id", ownerID, "count", len(annotations))
	}
	return annotations[0]
}

// Create persists a new annotation and returns it with the store-assigned ID.
func (s *AnnotationService) Create(ctx context.Context, annotation *domain.Annotation) (*domain.Annotation, error) {
	if annotation == nil {
		return nil, &domain.ValidationError{Message: "annotation is required"}
	}
	if _, err := domain.ParseAnnotationKind(string(annotation.Kind)); err != nil {
		return nil, err
	}
	if annotation.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(annotation.SubjectName) == "" {
		return nil, &domain.ValidationError{Field: "subject_name", Message: "is required"}
	}
	if annotation.ID != "" {
		return nil, &domain.ValidationError{Field: "id", Message: "is assigned by the store"}
	}

	stored, err := s.store.Insert(ctx, annotation)
	if err != nil {
		return nil, fmt.Errorf("create %s annotation: %w", annotation.Kind, err)
	}
	s.notify(annotation.Kind, annotation.OwnerID)

	s.logger.Info("Annotation created", "kind", annotation.Kind, "owner_id", annotation.OwnerID, "subject_name", annotation.SubjectName, "annotation_id", stored.ID)
	return stored, nil
}

// DeleteByID removes an annotation. An empty id is a no-op.
func (s *AnnotationService) DeleteByID(ctx context.Context, kind domain.AnnotationKind, ownerID, id string) error {
	if id == "" {
		return nil
	}
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}

	if err := s.store.DeleteByID(ctx, kind, ownerID, id); err != nil {
		return fmt.Errorf("delete %s annotation: %w", kind, err)
	}
	s.notify(kind, ownerID)

	s.logger.Info("Annotation deleted", "kind", kind, "owner_id", ownerID, "annotation_id", id)
	return nil
}

// ownedBy drops records belonging to anyone but ownerID.
func ownedBy(annotations []*domain.Annotation, ownerID string) []*domain.Annotation {
	out := make([]*domain.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if a != nil && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

func snapshotFingerprint(annotations []*domain.Annotation) string {
	keys := make([]string, 0, len(annotations))
	for _, a := range annotations {
		keys = append(keys, a.ID+"\x00"+a.SubjectName)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x01")
}
