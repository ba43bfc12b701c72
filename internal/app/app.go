// Package app owns the client's catalog, filter, selection and conversation
// state and drives rendering, persistence and relay exchanges from it.
package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Rrens/routine-advisor/internal/catalog"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/relayclient"
	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnknownProduct is returned when selecting an id the catalog does not hold
var ErrUnknownProduct = errors.New("product not in catalog")

// CatalogLoader fetches the product document
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, error)

// Exchanger sends one payload to the relay
type Exchanger interface {
	Exchange(ctx context.Context, req relayclient.Request) (*relayclient.Reply, error)
}

// Options configures an App
type Options struct {
	Catalog CatalogLoader
	Store   store.Store
	View    View
	Relay   Exchanger
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// App is the single controller of client state
type App struct {
	loadCatalog CatalogLoader
	store       store.Store
	view        View
	relay       Exchanger
	logger      zerolog.Logger
	now         func() time.Time

	mu       sync.Mutex
	loaded   bool
	catalog  *catalog.Catalog
	filter   catalog.Filter
	selected []domain.ProductID
	messages []domain.Message

	// lastExchange is closed when the most recently queued exchange finishes
	lastExchange chan struct{}
	inflight     sync.WaitGroup
}

// New creates an App with an empty catalog
func New(opts Options) *App {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemory()
	}
	var v View = discardView{}
	if opts.View != nil {
		v = opts.View
	}

	done := make(chan struct{})
	close(done)

	return &App{
		loadCatalog:  opts.Catalog,
		store:        st,
		view:         v,
		relay:        opts.Relay,
		logger:       logger.With().Str("component", "app").Logger(),
		now:          now,
		catalog:      catalog.New(nil),
		lastExchange: done,
	}
}

// LoadCatalog loads the product document once. On failure the catalog stays
// empty, the empty state is rendered and the error is returned.
func (a *App) LoadCatalog(ctx context.Context) error {
	a.mu.Lock()
	if a.loaded {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	var (
		c   *catalog.Catalog
		err error
	)
	if a.loadCatalog != nil {
		c, err = a.loadCatalog(ctx)
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to load catalog")
		c = nil
	}

	a.mu.Lock()
	if c != nil {
		a.catalog = c
		a.loaded = true
	}
	a.mu.Unlock()

	a.renderProducts()
	a.renderSelection()
	return err
}

// ToggleSelect adds id to the selection if absent and removes it if present.
// It reports whether id is selected afterwards.
func (a *App) ToggleSelect(ctx context.Context, id domain.ProductID) (bool, error) {
	a.mu.Lock()
	idx := slices.Index(a.selected, id)
	selected := idx < 0
	if selected {
		if !a.catalog.Has(id) {
			a.mu.Unlock()
			return false, ErrUnknownProduct
		}
		a.selected = append(a.selected, id)
	} else {
		a.selected = slices.Delete(a.selected, idx, idx+1)
	}
	a.persistSelection(ctx)
	a.mu.Unlock()

	a.view.MarkProduct(id, selected)
	a.renderSelection()
	return selected, nil
}

// ClearSelection empties the selection
func (a *App) ClearSelection(ctx context.Context) {
	a.mu.Lock()
	a.selected = nil
	a.persistSelection(ctx)
	a.mu.Unlock()

	a.renderProducts()
	a.renderSelection()
}

// ApplyFilter recomputes the visible products. Nothing is persisted.
func (a *App) ApplyFilter(query, category string) {
	a.mu.Lock()
	a.filter = catalog.Filter{Query: query, Category: category}
	a.mu.Unlock()

	a.renderProducts()
}

// Categories lists the catalog's categories for the category picker
func (a *App) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Categories()
}

// Product looks up one catalog entry
func (a *App) Product(id domain.ProductID) (domain.Product, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Get(id)
}

// Visible returns the products passing the current filter
func (a *App) Visible() []domain.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Filter(a.filter)
}

// Selected returns the selected products in catalog order
func (a *App) Selected() []domain.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Pick(a.selected)
}

// SelectedIDs returns the selection in insertion order, including ids
// restored from storage that the catalog no longer holds
func (a *App) SelectedIDs() []domain.ProductID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ProductID(nil), a.selected...)
}

// Conversation returns a copy of the conversation
func (a *App) Conversation() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Message(nil), a.messages...)
}

func (a *App) renderProducts() {
	a.mu.Lock()
	visible := a.catalog.Filter(a.filter)
	marks := make(map[domain.ProductID]bool, len(a.selected))
	for _, id := range a.selected {
		marks[id] = true
	}
	a.mu.Unlock()

	a.view.RenderProducts(visible, marks)
}

func (a *App) renderSelection() {
	a.view.RenderSelection(a.Selected())
}

func (a *App) renderChat() {
	a.view.RenderChat(a.Conversation())
}
