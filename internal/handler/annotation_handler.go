package handler

import (
	"net/http"

	"catalog-annotations/internal/config"
	"catalog-annotations/internal/domain"

	"github.com/gorilla/mux"
)

// AnnotationHandler exposes one-shot snapshots of the owner's annotations.
type AnnotationHandler struct {
	container *config.Container
}

func NewAnnotationHandler(container *config.Container) *AnnotationHandler {
	return &AnnotationHandler{container: container}
}

// List returns every annotation of {kind} owned by the caller.
func (h *AnnotationHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	kind, err := domain.ParseAnnotationKind(mux.Vars(r)["kind"])
	if err != nil {
		writeAppError(w, err)
		return
	}

	snapshot, err := h.container.AnnotationService.Snapshot(r.Context(), kind, owner)
	if err != nil {
		h.container.Logger.Error("Failed to read annotations", err, "kind", kind, "owner_id", owner)
		writeAppError(w, err)
		return
	}

	annotations := snapshot.Annotations
	if annotations == nil {
		annotations = []*domain.Annotation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":        kind,
		"annotations": annotations,
		"count":       len(annotations),
	})
}
