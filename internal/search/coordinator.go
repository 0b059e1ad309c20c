// Package search owns the list screen's input state: debounced free-text
// search, field selection, pagination cursor and sort order. Any change to
// query or field resets pagination to page 1 and reloads the list.
package search

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/service"

	"go.uber.org/zap"
)

// DefaultDebounce is the pause after the last keystroke before a search
// fires.
const DefaultDebounce = 300 * time.Millisecond

// SortDirection values cycled by ToggleSort.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageItem is one entry of the compact pagination window: either a page
// number or an ellipsis gap.
type PageItem struct {
	Number int
	Gap    bool
}

// Coordinator debounces search input and drives list reloads through the
// store. One coordinator lives per list screen.
type Coordinator struct {
	ctx      context.Context
	store    *service.Store
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	page    int
	size    int
	sortBy  string
	sortDir string
}

// NewCoordinator creates a coordinator. debounce <= 0 falls back to
// DefaultDebounce; pageSize <= 0 falls back to 10.
func NewCoordinator(ctx context.Context, store *service.Store, debounce time.Duration, pageSize int, logger *zap.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Coordinator{
		ctx:      ctx,
		store:    store,
		logger:   logger,
		debounce: debounce,
		page:     1,
		size:     pageSize,
	}
}

// SetQueryInput records one keystroke of the search box. Only the last
// value within the debounce window takes effect; each keystroke cancels
// the pending timer.
func (c *Coordinator) SetQueryInput(value string) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.applySearch(value, c.store.SearchField())
	})
	c.mu.Unlock()
}

// SetField applies a field-selector change immediately, keeping the
// current query.
func (c *Coordinator) SetField(field string) {
	c.applySearch(c.store.SearchQuery(), field)
}

// ClearSearch resets query and field and reloads from page 1.
func (c *Coordinator) ClearSearch() {
	c.applySearch("", domain.SearchFieldAll)
}

func (c *Coordinator) applySearch(query, field string) {
	c.store.SetSearch(query, field)

	c.mu.Lock()
	c.page = 1
	c.mu.Unlock()

	c.logger.Debug("search changed",
		zap.String("query", query),
		zap.String("field", field),
	)
	c.Reload()
}

// Reload fetches the current page with the current search and sort.
func (c *Coordinator) Reload() {
	c.mu.Lock()
	q := domain.ListQuery{
		Page:        c.page,
		Size:        c.size,
		Search:      c.store.SearchQuery(),
		SearchField: c.store.SearchField(),
		SortBy:      c.sortBy,
		SortDir:     c.sortDir,
	}
	c.mu.Unlock()

	c.store.LoadList(c.ctx, q)
}

// ToggleSort cycles a column through desc → asc → off. Selecting a new
// column starts at desc.
func (c *Coordinator) ToggleSort(column string) {
	c.mu.Lock()
	switch {
	case c.sortBy != column:
		c.sortBy = column
		c.sortDir = SortDesc
	case c.sortDir == SortDesc:
		c.sortDir = SortAsc
	default:
		c.sortBy = ""
		c.sortDir = ""
	}
	c.mu.Unlock()

	c.Reload()
}

// Page returns the current 1-based page.
func (c *Coordinator) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// PageSize returns the page size.
func (c *Coordinator) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Sort returns the current sort column and direction ("" when unsorted).
func (c *Coordinator) Sort() (column, direction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortBy, c.sortDir
}

// TotalPages computes ceil(total/size), never below 1.
func (c *Coordinator) TotalPages() int {
	c.mu.Lock()
	size := c.size
	c.mu.Unlock()

	pages := int(math.Ceil(float64(c.store.TotalCustomers()) / float64(size)))
	if pages < 1 {
		return 1
	}
	return pages
}

// GoToPage jumps to a page within bounds and reloads.
func (c *Coordinator) GoToPage(page int) {
	if page < 1 || page > c.TotalPages() {
		return
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	c.Reload()
}

// NextPage advances one page when possible.
func (c *Coordinator) NextPage() {
	c.GoToPage(c.Page() + 1)
}

// PrevPage steps back one page when possible.
func (c *Coordinator) PrevPage() {
	c.GoToPage(c.Page() - 1)
}

// FirstPage jumps to page 1.
func (c *Coordinator) FirstPage() {
	c.GoToPage(1)
}

// LastPage jumps to the last page.
func (c *Coordinator) LastPage() {
	c.GoToPage(c.TotalPages())
}

// VisiblePages produces the compact pagination window: first page, an
// ellipsis when the gap exceeds one page, up to one page either side of the
// current page, another ellipsis, last page. Seven pages or fewer are shown
// in full.
func (c *Coordinator) VisiblePages() []PageItem {
	total := c.TotalPages()
	current := c.Page()

	if total <= 7 {
		items := make([]PageItem, 0, total)
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	}

	items := []PageItem{{Number: 1}}

	if current > 3 {
		items = append(items, PageItem{Gap: true})
	}

	start := current - 1
	if start < 2 {
		start = 2
	}
	end := current + 1
	if end > total-1 {
		end = total - 1
	}
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Number: i})
	}

	if current < total-2 {
		items = append(items, PageItem{Gap: true})
	}

	items = append(items, PageItem{Number: total})
	return items
}
