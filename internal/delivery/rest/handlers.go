// Path: internal/delivery/rest/handlers.go
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"catalog-viewer/internal/domain"
	"catalog-viewer/internal/events"
	"catalog-viewer/internal/service"
)

// viewerService defines the interface required by the handlers from the core service.
// This keeps the delivery layer decoupled from the full service implementation.
type viewerService interface {
	View() domain.View
	SetPage(ctx context.Context, page int) (domain.View, error)
	SetPageSize(ctx context.Context, size int) (domain.View, error)
	SetBrand(ctx context.Context, brand string) domain.View
	SetFilters(ctx context.Context, t service.FilterToggles) domain.View
	SetSort(ctx context.Context, key domain.SortKey) (domain.View, error)
	AddFavorite(ctx context.Context, uuid string) (domain.View, error)
	RemoveFavorite(ctx context.Context, uuid string) domain.View
}

type pageRequest struct {
	Page int `schema:"page,required"`
}

type sizeRequest struct {
	Size int `schema:"size,required"`
}

type brandRequest struct {
	Brand string `schema:"brand,required"`
}

type filterRequest struct {
	Price    *bool `schema:"price"`
	Release  *bool `schema:"release"`
	Favorite *bool `schema:"favorite"`
}

type sortRequest struct {
	Key string `schema:"key"`
}

// ViewHandlers holds dependencies for the viewer action handlers.
type ViewHandlers struct {
	service viewerService
	broker  *events.Broker
	decoder *schema.Decoder
}

// NewViewHandlers creates a new handler struct.
func NewViewHandlers(s viewerService, broker *events.Broker) *ViewHandlers {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &ViewHandlers{service: s, broker: broker, decoder: decoder}
}

// GetView returns the current view.
func (h *ViewHandlers) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.View())
}

// SetPage handles POST /api/page?page=N.
func (h *ViewHandlers) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.SetPage(r.Context(), req.Page)
	h.respond(w, view, err)
}

// SetPageSize handles POST /api/size?size=N.
func (h *ViewHandlers) SetPageSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.SetPageSize(r.Context(), req.Size)
	h.respond(w, view, err)
}

// SetBrand handles POST /api/brand?brand=X.
func (h *ViewHandlers) SetBrand(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, h.service.SetBrand(r.Context(), req.Brand), nil)
}

// SetFilters handles POST /api/filters?price=&release=&favorite=.
// Omitted toggles keep their current value.
func (h *ViewHandlers) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.decode(w, r, &req) {
		return
	}
	view := h.service.SetFilters(r.Context(), service.FilterToggles{
		Price:    req.Price,
		Release:  req.Release,
		Favorite: req.Favorite,
	})
	h.respond(w, view, nil)
}

// SetSort handles POST /api/sort?key=K.
func (h *ViewHandlers) SetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.SetSort(r.Context(), domain.SortKey(req.Key))
	h.respond(w, view, err)
}

// AddFavorite handles PUT /api/favorites/{uuid}.
func (h *ViewHandlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.AddFavorite(r.Context(), chi.URLParam(r, "uuid"))
	h.respond(w, view, err)
}

// RemoveFavorite handles DELETE /api/favorites/{uuid}.
func (h *ViewHandlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.service.RemoveFavorite(r.Context(), chi.URLParam(r, "uuid")), nil)
}

// Stream sends the current view, then every rendered view, as server-sent
// "view" events. Freshly fetched pages also produce a "page" event carrying
// the new pagination.
func (h *ViewHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	const op = "ViewHandlers.Stream"
	log := slog.With("op", op)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	views := h.broker.Subscribe(events.TopicViewRendered)
	defer h.broker.Unsubscribe(events.TopicViewRendered, views)
	pages := h.broker.Subscribe(events.TopicPageLoaded)
	defer h.broker.Unsubscribe(events.TopicPageLoaded, pages)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "view", h.service.View()); err != nil {
		log.Debug("client gone", "err", err)
		return
	}
	flusher.Flush()

	for {
		var (
			name string
			ev   events.Event
			open bool
		)
		select {
		case <-r.Context().Done():
			return
		case ev, open = <-views:
			name = "view"
		case ev, open = <-pages:
			name = "page"
		}
		if !open {
			return
		}
		if err := writeEvent(w, name, ev.Data); err != nil {
			log.Debug("client gone", "err", err)
			return
		}
		flusher.Flush()
	}
}

func (h *ViewHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := h.decoder.Decode(dst, r.URL.Query()); err != nil {
		http.Error(w, fmt.Sprintf("invalid parameters: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *ViewHandlers) respond(w http.ResponseWriter, view domain.View, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case errors.Is(err, domain.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidPage),
		errors.Is(err, domain.ErrInvalidPageSize),
		errors.Is(err, domain.ErrInvalidSortKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("action failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
