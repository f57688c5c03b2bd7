package service

import (
	"context"
	"fmt"
	"sync"

	"catalog-annotations/internal/domain"
)

// ListProjection combines the catalog with the owner's live favorites and
// dislikes. It lives as long as the context it was opened with, or until Close.
type ListProjection struct {
	catalog     domain.CatalogSource
	annotations domain.AnnotationService
	toggles     domain.AnnotationToggler
	logger      domain.Logger
	ownerID     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     domain.ListState
	closed    bool
	updates   chan domain.ListState
	ready     chan struct{}
	readyOnce sync.Once
}

// OpenListProjection starts the catalog fetch and both annotation subscriptions.
func OpenListProjection(
	ctx context.Context,
	catalog domain.CatalogSource,
	annotations domain.AnnotationService,
	toggles domain.AnnotationToggler,
	ownerID string,
	logger domain.Logger,
) (*ListProjection, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	pctx, cancel := context.WithCancel(ctx)
	p := &ListProjection{
		catalog:     catalog,
		annotations: annotations,
		toggles:     toggles,
		logger:      logger,
		ownerID:     ownerID,
		ctx:         pctx,
		cancel:      cancel,
		state: domain.ListState{
			Favorites:        domain.NewAnnotationSet(nil),
			Dislikes:         domain.NewAnnotationSet(nil),
			Loading:          true,
			LoadingFavorites: true,
			LoadingDislikes:  true,
		},
		updates: make(chan domain.ListState, 1),
		ready:   make(chan struct{}),
	}

	subs := make([]domain.AnnotationSubscription, 0, len(domain.AnnotationKinds))
	for _, kind := range domain.AnnotationKinds {
		sub, err := annotations.ObserveAll(pctx, kind, ownerID)
		if err != nil {
			for _, opened := range subs {
				opened.Close()
			}
			cancel()
			return nil, err
		}
		subs = append(subs, sub)
	}

	p.wg.Add(1 + len(subs))
	go p.loadCatalog()
	for i, sub := range subs {
		go p.follow(domain.AnnotationKinds[i], sub)
	}
	return p, nil
}

func (p *ListProjection) loadCatalog() {
	defer p.wg.Done()

	items, err := p.catalog.FetchAll(p.ctx)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.logger.Error("Catalog fetch failed", err, "owner_id", p.ownerID)
		p.update(func(s domain.ListState) domain.ListState {
			s.Loading = false
			s.CatalogError = err.Error()
			return s
		})
		return
	}

	p.update(func(s domain.ListState) domain.ListState {
		s.Items = items
		s.Loading = false
		s.CatalogError = ""
		return s
	})
}

func (p *ListProjection) follow(kind domain.AnnotationKind, sub domain.AnnotationSubscription) {
	defer p.wg.Done()
	defer sub.Close()

	for {
		select {
		case <-p.ctx.Done():
			return
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			set := domain.NewAnnotationSet(snapshot.Annotations)
			p.update(func(s domain.ListState) domain.ListState {
				return s.WithSnapshot(kind, set)
			})
		}
	}
}

// update applies fn to the whole state under the lock and publishes the result.
func (p *ListProjection) update(fn func(domain.ListState) domain.ListState) domain.ListState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.state
	}
	p.state = fn(p.state)

	// Only the latest state is kept for a slow reader.
	select {
	case <-p.updates:
	default:
	}
	p.updates <- p.state

	if p.state.Ready() {
		p.readyOnce.Do(func() { close(p.ready) })
	}
	return p.state
}

// State returns the current state.
func (p *ListProjection) State() domain.ListState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Updates delivers the newest state after every change. It is closed by Close.
func (p *ListProjection) Updates() <-chan domain.ListState {
	return p.updates
}

// WaitReady blocks until all three sources have loaded or ctx ends.
func (p *ListProjection) WaitReady(ctx context.Context) (domain.ListState, error) {
	select {
	case <-p.ready:
		return p.State(), nil
	case <-ctx.Done():
		return p.State(), ctx.Err()
	case <-p.ctx.Done():
		return p.State(), p.ctx.Err()
	}
}

// ToggleFavorite flips the favorite annotation of the named item.
func (p *ListProjection) ToggleFavorite(ctx context.Context, name string) (domain.ListState, error) {
	return p.toggle(ctx, domain.AnnotationFavorite, name)
}

// ToggleDislike flips the dislike annotation of the named item.
func (p *ListProjection) ToggleDislike(ctx context.Context, name string) (domain.ListState, error) {
	return p.toggle(ctx, domain.AnnotationDislike, name)
}

// toggle refuses to run before the first snapshot of kind: an absent entry
// in an unloaded set says nothing about the store.
func (p *ListProjection) toggle(ctx context.Context, kind domain.AnnotationKind, name string) (domain.ListState, error) {
	state := p.State()
	if !state.Loaded(kind) {
		return state, fmt.Errorf("toggle %s %q: %w", kind, name, domain.ErrAnnotationsLoading)
	}
	current := state.Set(kind).Get(name)

	next, err := p.toggles.Toggle(ctx, kind, name, p.ownerID, current)
	if err != nil {
		return p.State(), err
	}

	return p.update(func(s domain.ListState) domain.ListState {
		set := s.Set(kind).Without(name)
		if next != nil {
			set = set.With(next)
		}
		return s.WithSet(kind, set)
	}), nil
}

// Close cancels every task of the projection and closes Updates.
func (p *ListProjection) Close() {
	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.updates)
	}
}
