// Path: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catalog-viewer/internal/catalog"
	"catalog-viewer/internal/config"
	"catalog-viewer/internal/domain"
	"catalog-viewer/internal/events"
	"catalog-viewer/internal/metrics"
)

// State is the single explicit viewer state. The Service owns it for the
// whole session; every action mutates it under the Service lock.
type State struct {
	Store     *catalog.ProductStore
	Favorites *catalog.FavoritesSet
	Filter    domain.FilterConfig
	Sort      domain.SortKey
}

func newState() *State {
	return &State{
		Store:     catalog.NewProductStore(),
		Favorites: catalog.NewFavoritesSet(),
		Filter:    domain.DefaultFilter(),
	}
}

// FilterToggles carries the checkbox filters. Nil fields are left unchanged.
type FilterToggles struct {
	Price    *bool
	Release  *bool
	Favorite *bool
}

// Service is the view coordinator: it drives the catalog engine on every
// user action or page load and hands the resulting view to the renderers.
type Service struct {
	cfg       config.CatalogConfig
	fetcher   Fetcher
	sessions  SessionStorage
	broker    *events.Broker
	log       *slog.Logger
	sessionID string
	rules     catalog.Rules

	mu    sync.Mutex
	state *State
}

// NewService creates a new viewer service.
func NewService(
	cfg config.CatalogConfig,
	fetcher Fetcher,
	sessions SessionStorage,
	broker *events.Broker,
	log *slog.Logger,
	sessionID string,
) *Service {
	rules := catalog.DefaultRules()
	if cfg.PriceCap > 0 {
		rules.PriceCap = cfg.PriceCap
	}
	if cfg.RecencyDays > 0 {
		rules.RecencyDays = cfg.RecencyDays
	}
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = 12
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		sessions:  sessions,
		broker:    broker,
		log:       log,
		sessionID: sessionID,
		rules:     rules,
		state:     newState(),
	}
}

// SetClock replaces the clock used by the recency rule.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules.Now = now
}

// Start restores the persisted session, if any, and loads the first page.
// A session that cannot be read is logged and the viewer starts fresh.
func (s *Service) Start(ctx context.Context) domain.View {
	const op = "Service.Start"
	log := s.log.With("op", op, "session", s.sessionID)

	page, size := 1, s.cfg.DefaultPageSize
	if s.sessions != nil {
		doc, err := s.sessions.Load(ctx, s.sessionID)
		if err != nil {
			log.Warn("could not load session, starting fresh", "err", err)
		}
		if doc != nil {
			s.mu.Lock()
			s.state.Favorites.Restore(doc.Favorites)
			s.state.Filter = doc.Filter
			if s.state.Filter.Brand == "" {
				s.state.Filter.Brand = domain.AllBrands
			}
			s.state.Sort = doc.Sort
			s.mu.Unlock()

			if doc.Pagination.CurrentPage >= 1 {
				page = doc.Pagination.CurrentPage
			}
			if doc.Pagination.PageSize >= 1 {
				size = doc.Pagination.PageSize
			}
			log.Info("session restored", "favorites", len(doc.Favorites), "page", page, "size", size)
		}
	}

	return s.load(ctx, "load", page, size)
}

// SetPage fetches another page number, keeping the page size.
func (s *Service) SetPage(ctx context.Context, page int) (domain.View, error) {
	if page < 1 {
		return domain.View{}, fmt.Errorf("%w: %d", domain.ErrInvalidPage, page)
	}
	_, size := s.position()
	return s.load(ctx, "page", page, size), nil
}

// SetPageSize fetches the current page number with another page size. When
// the new size leaves fewer pages than the current number, the last page is
// fetched instead.
func (s *Service) SetPageSize(ctx context.Context, size int) (domain.View, error) {
	if size < 1 {
		return domain.View{}, fmt.Errorf("%w: %d", domain.ErrInvalidPageSize, size)
	}
	page, _ := s.position()
	s.mu.Lock()
	count := s.state.Store.Pagination().Count
	s.mu.Unlock()
	if count > 0 {
		page = min(page, (count+size-1)/size)
	}
	return s.load(ctx, "size", page, size), nil
}

// SetBrand selects a brand bucket. A brand absent from the current page is
// accepted and simply renders an empty result.
func (s *Service) SetBrand(ctx context.Context, brand string) domain.View {
	view, _ := s.mutate(ctx, "brand", func(st *State) error {
		st.Filter.Brand = brand
		return nil
	})
	return view
}

// SetFilters applies the given checkbox filters in one mutation.
func (s *Service) SetFilters(ctx context.Context, t FilterToggles) domain.View {
	view, _ := s.mutate(ctx, "filters", func(st *State) error {
		if t.Price != nil {
			st.Filter.Price = *t.Price
		}
		if t.Release != nil {
			st.Filter.Release = *t.Release
		}
		if t.Favorite != nil {
			st.Filter.Favorite = *t.Favorite
		}
		return nil
	})
	return view
}

func (s *Service) SetPriceFilter(ctx context.Context, on bool) domain.View {
	return s.SetFilters(ctx, FilterToggles{Price: &on})
}

func (s *Service) SetReleaseFilter(ctx context.Context, on bool) domain.View {
	return s.SetFilters(ctx, FilterToggles{Release: &on})
}

func (s *Service) SetFavoriteFilter(ctx context.Context, on bool) domain.View {
	return s.SetFilters(ctx, FilterToggles{Favorite: &on})
}

// SetSort orders the current index and remembers the key for later pages.
func (s *Service) SetSort(ctx context.Context, key domain.SortKey) (domain.View, error) {
	if _, err := domain.ParseSortKey(string(key)); err != nil {
		return domain.View{}, err
	}
	return s.mutate(ctx, "sort", func(st *State) error {
		st.Sort = key
		catalog.Sort(key, st.Store.Index())
		return nil
	})
}

// AddFavorite marks a product of the current page as favorite.
func (s *Service) AddFavorite(ctx context.Context, uuid string) (domain.View, error) {
	return s.mutate(ctx, "favorite_add", func(st *State) error {
		p, ok := st.Store.Find(uuid)
		if !ok {
			if st.Favorites.Contains(uuid) {
				return nil
			}
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, uuid)
		}
		st.Favorites.Add(p)
		return nil
	})
}

// RemoveFavorite unmarks a product. Unknown ids are a no-op.
func (s *Service) RemoveFavorite(ctx context.Context, uuid string) domain.View {
	view, _ := s.mutate(ctx, "favorite_remove", func(st *State) error {
		st.Favorites.Remove(uuid)
		return nil
	})
	return view
}

// View renders the current state without announcing it.
func (s *Service) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Service) position() (page, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := s.state.Store.Pagination()
	page, size = meta.CurrentPage, meta.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.cfg.DefaultPageSize
	}
	return page, size
}

// load fetches a page and installs it. The fetch runs outside the lock, so a
// slower response can overwrite a newer one: the last to resolve wins.
// On a FetchError the previous products and pagination stay in place.
func (s *Service) load(ctx context.Context, action string, page, size int) domain.View {
	const op = "Service.load"
	log := s.log.With("op", op, "page", page, "size", size)

	result, err := s.fetcher.FetchPage(ctx, page, size)
	if err != nil {
		metrics.Fetches.WithLabelValues(metrics.OutcomeFallback).Inc()
		log.Warn("fetch failed, keeping last known page", "err", err)
		s.mu.Lock()
		defer s.mu.Unlock()
		view := s.renderLocked()
		s.announceLocked(view)
		return view
	}
	metrics.Fetches.WithLabelValues(metrics.OutcomeSuccess).Inc()

	view, _ := s.mutate(ctx, action, func(st *State) error {
		index := st.Store.Update(result.Result, result.Meta)
		catalog.Sort(st.Sort, index)
		return nil
	})
	s.broker.Publish(events.TopicPageLoaded, result.Meta)
	log.Debug("page loaded", "products", len(result.Result), "pageCount", result.Meta.PageCount)
	return view
}

// mutate applies fn to the state atomically, then renders, publishes and
// persists the resulting snapshot. When fn fails nothing is rendered.
func (s *Service) mutate(ctx context.Context, action string, fn func(*State) error) (domain.View, error) {
	const op = "Service.mutate"
	log := s.log.With("op", op, "action", action)

	s.mu.Lock()
	if err := fn(s.state); err != nil {
		s.mu.Unlock()
		log.Debug("action rejected", "err", err)
		return domain.View{}, err
	}
	view := s.renderLocked()
	doc := s.snapshotLocked()
	metrics.Favorites.Set(float64(s.state.Favorites.Len()))
	s.announceLocked(view)
	s.mu.Unlock()

	metrics.Actions.WithLabelValues(action).Inc()

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, doc); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("failed to save session", "err", err)
		}
	}
	return view, nil
}

// announceLocked hands a rendered view to the subscribed renderers.
// s.mu must be held.
func (s *Service) announceLocked(view domain.View) {
	metrics.Renders.Inc()
	metrics.VisibleProducts.Set(float64(len(view.Products)))
	s.broker.Publish(events.TopicViewRendered, view)
}

func (s *Service) renderLocked() domain.View {
	st := s.state
	return catalog.Render(st.Store.Pagination(), st.Store.Index(), st.Filter, st.Sort, st.Favorites, s.rules)
}

func (s *Service) snapshotLocked() domain.SessionDocument {
	return domain.SessionDocument{
		ID:         s.sessionID,
		Favorites:  s.state.Favorites.List(),
		Filter:     s.state.Filter,
		Sort:       s.state.Sort,
		Pagination: s.state.Store.Pagination(),
		UpdatedAt:  time.Now().UTC(),
	}
}
