package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"catalog-annotations/internal/config"
	"catalog-annotations/internal/domain"
	"catalog-annotations/internal/service"

	"github.com/gorilla/mux"
)

const streamHeartbeatInterval = 30 * time.Second

// CatalogHandler serves the catalog grid, its live stream and the detail view.
type CatalogHandler struct {
	container *config.Container
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(container *config.Container) *CatalogHandler {
	return &CatalogHandler{container: container}
}

type listResponse struct {
	Ready bool             `json:"ready"`
	State domain.ListState `json:"state"`
	Rows  []domain.ListRow `json:"rows"`
}

func newListResponse(state domain.ListState) listResponse {
	return listResponse{Ready: state.Ready(), State: state, Rows: state.Rows()}
}

func (h *CatalogHandler) openList(ctx context.Context, ownerID string) (*service.ListProjection, error) {
	return service.OpenListProjection(
		ctx,
		h.container.CatalogSource,
		h.container.AnnotationService,
		h.container.ToggleController,
		ownerID,
		h.container.Logger,
	)
}

// List waits for the grid to become renderable and returns it. When the
// wait times out the partial state is returned with ready=false.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	projection, err := h.openList(r.Context(), owner)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer projection.Close()

	ctx, cancel := context.WithTimeout(r.Context(), h.container.Config.GetProjectionReadyTimeout())
	defer cancel()

	state, err := projection.WaitReady(ctx)
	if err != nil {
		h.container.Logger.Warn("Catalog projection not ready", "owner_id", owner, "error", err)
	}
	writeJSON(w, http.StatusOK, newListResponse(state))
}

// Stream emits the grid state as server-sent events until the client leaves.
func (h *CatalogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	projection, err := h.openList(r.Context(), owner)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer projection.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.container.Logger.Error("Streaming not supported", err)
		return
	}

	if err := sendEvent(w, rc, "state", newListResponse(projection.State())); err != nil {
		return
	}

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.container.Logger.Debug("Catalog stream closed", "owner_id", owner)
			return
		case state, open := <-projection.Updates():
			if !open {
				return
			}
			if err := sendEvent(w, rc, "state", newListResponse(state)); err != nil {
				h.container.Logger.Debug("Client disconnected", "owner_id", owner)
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func sendEvent(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *CatalogHandler) openDetail(r *http.Request, owner string) (*service.DetailProjection, error) {
	return service.NewDetailProjection(
		h.container.CatalogSource,
		h.container.AnnotationService,
		h.container.ToggleController,
		owner,
		mux.Vars(r)["name"],
		h.container.Logger,
	)
}

// Detail returns one catalog item with the owner's annotations on it.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	projection, err := h.openDetail(r, owner)
	if err != nil {
		writeAppError(w, err)
		return
	}

	state, err := projection.Load(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Toggle flips the favorite or dislike annotation of one catalog item.
func (h *CatalogHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	kind, err := domain.ParseAnnotationKind(mux.Vars(r)["kind"])
	if err != nil {
		writeAppError(w, err)
		return
	}

	projection, err := h.openDetail(r, owner)
	if err != nil {
		writeAppError(w, err)
		return
	}

	// A missing catalog item does not block toggling the annotation.
	if _, err := projection.Load(r.Context()); err != nil && !errors.Is(err, domain.ErrCatalogItemNotFound) {
		h.container.Logger.Warn("Detail load failed before toggle", "name", projection.State().Name, "error", err)
	}

	state, err := projection.Toggle(r.Context(), kind)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
