package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AnnotationKind identifies one of the per-user marker collections.
type AnnotationKind string

const (
	AnnotationFavorite AnnotationKind = "favorite"
	AnnotationDislike  AnnotationKind = "dislike"
)

// AnnotationKinds lists every supported kind.
var AnnotationKinds = []AnnotationKind{AnnotationFavorite, AnnotationDislike}

// ParseAnnotationKind converts a path/query value into an AnnotationKind.
func ParseAnnotationKind(s string) (AnnotationKind, error) {
	switch AnnotationKind(strings.ToLower(strings.TrimSpace(s))) {
	case AnnotationFavorite:
		return AnnotationFavorite, nil
	case AnnotationDislike:
		return AnnotationDislike, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Annotation marks a catalog subject as favorite or disliked for one owner.
// The record existing is the "on" state; there is no "off" record.
type Annotation struct {
	ID          string         `json:"id,omitempty"`
	OwnerID     string         `json:"owner_id"`
	SubjectName string         `json:"subject_name"`
	Kind        AnnotationKind `json:"kind"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// AnnotationFilter scopes a store query. OwnerID is mandatory.
type AnnotationFilter struct {
	OwnerID     string
	SubjectName string
	Limit       int
}

// AnnotationStore is the remote document store holding one collection per kind.
type AnnotationStore interface {
	Query(ctx context.Context, kind AnnotationKind, filter AnnotationFilter) ([]*Annotation, error)
	// Insert persists the record and returns it with the store-assigned ID.
	// Implementations that cannot report the ID return it with ID empty.
	Insert(ctx context.Context, annotation *Annotation) (*Annotation, error)
	// DeleteByID removes a record owned by ownerID. Deleting a missing ID is not an error.
	DeleteByID(ctx context.Context, kind AnnotationKind, ownerID, id string) error
}

// AnnotationSnapshot is one complete, point-in-time view of an owner's collection.
type AnnotationSnapshot struct {
	Kind        AnnotationKind `json:"kind"`
	OwnerID     string         `json:"owner_id"`
	Annotations []*Annotation  `json:"annotations"`
}

// AnnotationSet indexes annotations by subject name. When a name appears more
// than once the first record wins.
type AnnotationSet struct {
	byName map[string]*Annotation
	order  []*Annotation
}

// NewAnnotationSet builds a set from a snapshot slice.
func NewAnnotationSet(annotations []*Annotation) AnnotationSet {
	set := AnnotationSet{byName: make(map[string]*Annotation, len(annotations))}
	for _, a := range annotations {
		if a == nil {
			continue
		}
		if _, exists := set.byName[a.SubjectName]; exists {
			continue
		}
		set.byName[a.SubjectName] = a
		set.order = append(set.order, a)
	}
	return set
}

// Get returns the annotation for the subject, or nil.
func (s AnnotationSet) Get(subjectName string) *Annotation {
	return s.byName[subjectName]
}

// Has reports whether the subject is annotated.
func (s AnnotationSet) Has(subjectName string) bool {
	_, ok := s.byName[subjectName]
	return ok
}

// Len returns the number of distinct subjects.
func (s AnnotationSet) Len() int {
	return len(s.order)
}

// Items returns the annotations in insertion order.
func (s AnnotationSet) Items() []*Annotation {
	out := make([]*Annotation, len(s.order))
	copy(out, s.order)
	return out
}

// With returns a copy of the set with the annotation's subject replaced.
func (s AnnotationSet) With(a *Annotation) AnnotationSet {
	items := s.Without(a.SubjectName).Items()
	return NewAnnotationSet(append(items, a))
}

// Without returns a copy of the set with the subject removed.
func (s AnnotationSet) Without(subjectName string) AnnotationSet {
	items := make([]*Annotation, 0, len(s.order))
	for _, a := range s.order {
		if a.SubjectName != subjectName {
			items = append(items, a)
		}
	}
	return NewAnnotationSet(items)
}

// AnnotationSubscription is a live, cancellable view of an owner's collection.
// Snapshots is closed once the subscription ends.
type AnnotationSubscription interface {
	Snapshots() <-chan AnnotationSnapshot
	Close()
}

// AnnotationService defines the domain operations over an AnnotationStore.
type AnnotationService interface {
	ObserveAll(ctx context.Context, kind AnnotationKind, ownerID string) (AnnotationSubscription, error)
	Snapshot(ctx context.Context, kind AnnotationKind, ownerID string) (AnnotationSnapshot, error)
	FindByName(ctx context.Context, kind AnnotationKind, subjectName, ownerID string) *Annotation
	Create(ctx context.Context, annotation *Annotation) (*Annotation, error)
	DeleteByID(ctx context.Context, kind AnnotationKind, ownerID, id string) error
}

// AnnotationToggler flips an annotation between present and absent.
type AnnotationToggler interface {
	Toggle(ctx context.Context, kind AnnotationKind, subjectName, ownerID string, current *Annotation) (*Annotation, error)
}
