package service

import (
	"context"
	"strings"
	"time"

	"catalog-annotations/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ToggleController flips an annotation between present and absent.
//
// A toggle is two remote steps, not a transaction. Toggles of the same
// (kind, owner, subject, current state) that overlap share one execution, so a
// double tap cannot create two records. Different subjects never wait on each other.
type ToggleController struct {
	annotations domain.AnnotationService
	logger      domain.Logger
	inflight    singleflight.Group
	timeout     time.Duration
}

const defaultToggleTimeout = 30 * time.Second

func NewToggleController(annotations domain.AnnotationService, logger domain.Logger) *ToggleController {
	return &ToggleController{
		annotations: annotations,
		logger:      logger,
		timeout:     defaultToggleTimeout,
	}
}

// Toggle deletes current when present, otherwise creates a new annotation.
// It returns the state the caller should now hold. On error the caller keeps
// its previous state.
func (c *ToggleController) Toggle(ctx context.Context, kind domain.AnnotationKind, subjectName, ownerID string, current *domain.Annotation) (*domain.Annotation, error) {
	if ownerID == "" {
		return current, domain.ErrUnauthenticated
	}
	if _, err := domain.ParseAnnotationKind(string(kind)); err != nil {
		return current, err
	}
	if strings.TrimSpace(subjectName) == "" {
		return current, &domain.ValidationError{Field: "subject_name", Message: "is required"}
	}

	if err := ctx.Err(); err != nil {
		return current, err
	}

	state := "off"
	if current != nil {
		state = "on:" + current.ID
	}
	key := strings.Join([]string{string(kind), ownerID, subjectName, state}, "\x00")

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	results := c.inflight.DoChan(key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.toggle(sharedCtx, kind, subjectName, ownerID, current)
	})

	select {
	case <-ctx.Done():
		return current, ctx.Err()
	case res := <-results:
		if res.Shared {
			c.logger.Debug("Toggle collapsed into in-flight call", "kind", kind, "subject_name", subjectName, "owner_id", ownerID)
		}
		if res.Err != nil {
			c.logger.Error("Toggle failed", res.Err, "kind", kind, "subject_name", subjectName, "owner_id", ownerID)
			return current, res.Err
		}
		next, _ := res.Val.(*domain.Annotation)
		return next, nil
	}
}

func (c *ToggleController) toggle(ctx context.Context, kind domain.AnnotationKind, subjectName, ownerID string, current *domain.Annotation) (*domain.Annotation, error) {
	if current != nil {
		if err := c.annotations.DeleteByID(ctx, kind, ownerID, current.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	stored, err := c.annotations.Create(ctx, &domain.Annotation{
		OwnerID:     ownerID,
		SubjectName: subjectName,
		Kind:        kind,
	})
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.ID != "" {
		return stored, nil
	}

	// The store did not report the id; look the record up. A concurrent delete
	// can make this nil, which is accepted as-is.
	return c.annotations.FindByName(ctx, kind, subjectName, ownerID), nil
}
