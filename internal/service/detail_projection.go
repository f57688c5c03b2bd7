package service

import (
	"context"
	"strings"
	"sync"

	"catalog-annotations/internal/domain"

	"golang.org/x/sync/errgroup"
)

// DetailProjection holds the state of one catalog subject. The annotation
// lookups are one-shot; the state is only refreshed by a toggle or a new Load.
type DetailProjection struct {
	catalog     domain.CatalogSource
	annotations domain.AnnotationService
	toggles     domain.AnnotationToggler
	logger      domain.Logger
	ownerID     string

	mu    sync.Mutex
	state domain.DetailState
}

func NewDetailProjection(
	catalog domain.CatalogSource,
	annotations domain.AnnotationService,
	toggles domain.AnnotationToggler,
	ownerID, name string,
	logger domain.Logger,
) (*DetailProjection, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	return &DetailProjection{
		catalog:     catalog,
		annotations: annotations,
		toggles:     toggles,
		logger:      logger,
		ownerID:     ownerID,
		state:       domain.DetailState{Name: name, Loading: true},
	}, nil
}

// Load fetches the catalog item and both annotations concurrently. The
// returned error is the catalog failure, if any; lookups never fail.
func (p *DetailProjection) Load(ctx context.Context) (domain.DetailState, error) {
	name := p.State().Name

	var g errgroup.Group
	g.Go(func() error {
		item, err := p.catalog.FetchByName(ctx, name)
		if err != nil {
			p.logger.Warn("Catalog detail fetch failed", "name", name, "error", err)
			p.update(func(s domain.DetailState) domain.DetailState {
				s.Loading = false
				s.Error = err.Error()
				return s
			})
			return err
		}
		p.update(func(s domain.DetailState) domain.DetailState {
			s.Item = item
			s.Loading = false
			s.Error = ""
			return s
		})
		return nil
	})
	for _, kind := range domain.AnnotationKinds {
		g.Go(func() error {
			found := p.annotations.FindByName(ctx, kind, name, p.ownerID)
			p.update(func(s domain.DetailState) domain.DetailState {
				return s.WithAnnotation(kind, found)
			})
			return nil
		})
	}

	err := g.Wait()
	return p.State(), err
}

// State returns the current state.
func (p *DetailProjection) State() domain.DetailState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *DetailProjection) update(fn func(domain.DetailState) domain.DetailState) domain.DetailState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = fn(p.state)
	return p.state
}

// ToggleFavorite flips the favorite annotation of the subject.
func (p *DetailProjection) ToggleFavorite(ctx context.Context) (domain.DetailState, error) {
	return p.Toggle(ctx, domain.AnnotationFavorite)
}

// ToggleDislike flips the dislike annotation of the subject.
func (p *DetailProjection) ToggleDislike(ctx context.Context) (domain.DetailState, error) {
	return p.Toggle(ctx, domain.AnnotationDislike)
}

// Toggle flips the annotation of kind. On failure the state is left unchanged.
func (p *DetailProjection) Toggle(ctx context.Context, kind domain.AnnotationKind) (domain.DetailState, error) {
	state := p.State()

	next, err := p.toggles.Toggle(ctx, kind, state.Name, p.ownerID, state.Annotation(kind))
	if err != nil {
		return state, err
	}
	return p.update(func(s domain.DetailState) domain.DetailState {
		return s.WithAnnotation(kind, next)
	}), nil
}
