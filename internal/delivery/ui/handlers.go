// path: internal/delivery/ui/handlers.go
package ui

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"catalog-viewer/internal/domain"
	"catalog-viewer/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// dataService defines the interface required by the UI handlers.
type dataService interface {
	View() domain.View
	SetPage(ctx context.Context, page int) (domain.View, error)
	SetPageSize(ctx context.Context, size int) (domain.View, error)
	SetBrand(ctx context.Context, brand string) domain.View
	SetFilters(ctx context.Context, t service.FilterToggles) domain.View
	SetSort(ctx context.Context, key domain.SortKey) (domain.View, error)
	AddFavorite(ctx context.Context, uuid string) (domain.View, error)
	RemoveFavorite(ctx context.Context, uuid string) domain.View
}

type sortOption struct {
	Key   domain.SortKey
	Label string
}

var (
	pageSizes   = []int{12, 24, 48}
	sortOptions = []sortOption{
		{domain.SortNone, "none"},
		{domain.SortPriceAsc, "Cheapest"},
		{domain.SortPriceDesc, "Expensive"},
		{domain.SortDateAsc, "Recently released"},
		{domain.SortDateDesc, "Anciently released"},
	}
)

// actionForm is what the page's selectors, checkboxes and favorite buttons post.
type actionForm struct {
	Size       int     `schema:"size"`
	Page       int     `schema:"page"`
	Brand      string  `schema:"brand"`
	Sort       *string `schema:"sort"`
	Filters    bool    `schema:"filters"`
	Price      bool    `schema:"price"`
	Release    bool    `schema:"release"`
	Favorite   bool    `schema:"favorite"`
	FavoriteID string  `schema:"favorite_id"`
	Unfavorite string  `schema:"unfavorite"`
}

// Handlers holds dependencies for UI handlers.
type Handlers struct {
	service   dataService
	templates *template.Template
	decoder   *schema.Decoder
}

// NewHandlers creates a new UI handler struct.
func NewHandlers(s dataService) *Handlers {
	tpl := template.Must(template.New("").Funcs(template.FuncMap{
		"euro": euro,
	}).ParseFS(templateFS, "templates/*.html"))

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handlers{
		service:   s,
		templates: tpl,
		decoder:   decoder,
	}
}

// RegisterRoutes registers all UI routes on the given router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleShowIndex)
	r.Post("/ui/action", h.handleAction)
}

// handleShowIndex serves the catalog page for the current view.
func (h *Handlers) handleShowIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.service.View())
}

// handleAction applies whatever the posted form changed, then redirects to
// the index so a reload does not resubmit.
func (h *Handlers) handleAction(w http.ResponseWriter, r *http.Request) {
	const op = "ui.handleAction"
	log := slog.With("op", op)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	var form actionForm
	if err := h.decoder.Decode(&form, r.PostForm); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if err := h.apply(r.Context(), form); err != nil {
		log.Warn("action rejected", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) apply(ctx context.Context, form actionForm) error {
	current := h.service.View()

	switch {
	case form.FavoriteID != "":
		_, err := h.service.AddFavorite(ctx, form.FavoriteID)
		return err
	case form.Unfavorite != "":
		h.service.RemoveFavorite(ctx, form.Unfavorite)
		return nil
	}

	if form.Size > 0 && form.Size != current.Pagination.PageSize {
		if _, err := h.service.SetPageSize(ctx, form.Size); err != nil {
			return err
		}
	} else if form.Page > 0 && form.Page != current.Pagination.CurrentPage {
		if _, err := h.service.SetPage(ctx, form.Page); err != nil {
			return err
		}
	}
	if form.Brand != "" && form.Brand != current.Filter.Brand {
		h.service.SetBrand(ctx, form.Brand)
	}
	if form.Sort != nil && domain.SortKey(*form.Sort) != current.Sort {
		if _, err := h.service.SetSort(ctx, domain.SortKey(*form.Sort)); err != nil {
			return err
		}
	}
	if form.Filters {
		f := current.Filter
		if form.Price != f.Price || form.Release != f.Release || form.Favorite != f.Favorite {
			h.service.SetFilters(ctx, service.FilterToggles{
				Price:    &form.Price,
				Release:  &form.Release,
				Favorite: &form.Favorite,
			})
		}
	}
	return nil
}

func (h *Handlers) render(w http.ResponseWriter, view domain.View) {
	data := map[string]any{
		"View":      view,
		"PageSizes": sizesFor(view.Pagination.PageSize),
		"SortKeys":  sortOptions,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.Error("template execution error", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// sizesFor lists the selectable page sizes, keeping the current one selectable.
func sizesFor(current int) []int {
	if current < 1 || slices.Contains(pageSizes, current) {
		return pageSizes
	}
	sizes := append(slices.Clone(pageSizes), current)
	slices.Sort(sizes)
	return sizes
}

// euro formats a price the way the catalog shows it: "29.5€".
func euro(v any) string {
	var f float64
	switch p := v.(type) {
	case float64:
		f = p
	case domain.FlexiblePrice:
		f = float64(p)
	default:
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "€"
}
