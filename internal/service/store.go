package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/infra/reactive"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var storeTracer = otel.Tracer("service/store")

// DefaultErrorTTL is how long a transient error banner stays up unless a
// newer error supersedes it.
const DefaultErrorTTL = 5 * time.Second

// Fallback messages per load path.
const (
	msgLoadCustomers = "Unable to load customers. Please try again."
	msgLoadCustomer  = "Unable to load customer details. Please try again."
	msgLoadContacts  = "Unable to load contacts."
	msgLoadNotes     = "Unable to load notes."
	msgNotFound      = "Customer not found."
)

// Store is the reactive cache mediating all customer reads and writes
// between UI surfaces and the backend. It holds the current list page, the
// single active customer view, and the transient error slot. All mutation
// goes through its methods; the view's sibling fields stay referentially
// stable under contact/note mutations.
type Store struct {
	customers port.CustomerGateway
	contacts  port.ContactGateway
	notes     port.NoteGateway
	logger    *zap.Logger
	metrics   *observability.Metrics
	errorTTL  time.Duration

	customersList  *reactive.Signal[[]domain.Customer]
	totalCustomers *reactive.Signal[int]
	customerView   *reactive.Signal[*domain.CustomerView]
	loading        *reactive.Signal[bool]
	errorMsg       *reactive.Signal[string]
	notFound       *reactive.Signal[bool]
	searchQuery    *reactive.Signal[string]
	searchField    *reactive.Signal[string]

	// listSeq fences list loads: a response only lands if no newer load
	// started after it.
	listSeq atomic.Int64

	errMu    sync.Mutex
	errEpoch int
	errTimer *time.Timer
}

// NewStore creates the resource store. errorTTL <= 0 falls back to
// DefaultErrorTTL.
func NewStore(customers port.CustomerGateway, contacts port.ContactGateway, notes port.NoteGateway, errorTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Store {
	if errorTTL <= 0 {
		errorTTL = DefaultErrorTTL
	}
	return &Store{
		customers: customers,
		contacts:  contacts,
		notes:     notes,
		logger:    logger,
		metrics:   metrics,
		errorTTL:  errorTTL,

		customersList:  reactive.NewSignal([]domain.Customer{}),
		totalCustomers: reactive.NewSignal(0),
		customerView:   reactive.NewSignal[*domain.CustomerView](nil),
		loading:        reactive.NewSignal(false),
		errorMsg:       reactive.NewSignal(""),
		notFound:       reactive.NewSignal(false),
		searchQuery:    reactive.NewSignal(""),
		searchField:    reactive.NewSignal(domain.SearchFieldAll),
	}
}

// --- Derived state ---

// CustomersList returns the current list page.
func (s *Store) CustomersList() []domain.Customer { return s.customersList.Get() }

// TotalCustomers returns the total matching the current search.
func (s *Store) TotalCustomers() int { return s.totalCustomers.Get() }

// CustomerView returns the active view, or nil.
func (s *Store) CustomerView() *domain.CustomerView { return s.customerView.Get() }

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool { return s.loading.Get() }

// Error returns the current banner message, or "".
func (s *Store) Error() string { return s.errorMsg.Get() }

// NotFound reports whether the last view load hit a missing customer.
func (s *Store) NotFound() bool { return s.notFound.Get() }

// SearchQuery returns the current search text.
func (s *Store) SearchQuery() string { return s.searchQuery.Get() }

// SearchField returns the current field selector.
func (s *Store) SearchField() string { return s.searchField.Get() }

// SubscribeView registers fn for active-view changes.
func (s *Store) SubscribeView(fn func(*domain.CustomerView)) func() {
	return s.customerView.Subscribe(fn)
}

// SubscribeError registers fn for error-slot changes.
func (s *Store) SubscribeError(fn func(string)) func() {
	return s.errorMsg.Subscribe(fn)
}

// SubscribeList registers fn for list-page changes.
func (s *Store) SubscribeList(fn func([]domain.Customer)) func() {
	return s.customersList.Subscribe(fn)
}

// --- Search state ---

// SetSearch updates the search text and field selector. Pure state change;
// reloading is the coordinator's job.
func (s *Store) SetSearch(query, field string) {
	s.searchQuery.Set(query)
	s.searchField.Set(field)
}

// --- Error slot ---

// SetError replaces the current error and schedules its expiry. A newer
// error restarts the clock; only the latest message is ever cleared by its
// own timer.
func (s *Store) SetError(message string) {
	s.setError(message, true)
}

func (s *Store) setError(message string, expire bool) {
	s.errMu.Lock()
	s.errEpoch++
	epoch := s.errEpoch
	if s.errTimer != nil {
		s.errTimer.Stop()
		s.errTimer = nil
	}
	if expire && message != "" {
		s.errTimer = time.AfterFunc(s.errorTTL, func() {
			s.errMu.Lock()
			stale := epoch != s.errEpoch
			s.errMu.Unlock()
			if !stale {
				s.errorMsg.Set("")
			}
		})
	}
	s.errMu.Unlock()

	s.errorMsg.Set(message)
}

// --- List ---

// LoadList fetches one customer page. Responses are fenced: when a newer
// load starts before this one lands, the stale response is discarded
// untouched.
func (s *Store) LoadList(ctx context.Context, q domain.ListQuery) {
	ctx, span := storeTracer.Start(ctx, "Store.LoadList")
	defer span.End()
	span.SetAttributes(attribute.Int("page", q.Page), attribute.String("search", q.Search))

	seq := s.listSeq.Add(1)
	s.loading.Set(true)
	s.setError("", false)

	page, err := s.customers.List(ctx, q)

	if s.listSeq.Load() != seq {
		s.metrics.IncrStaleListDiscard()
		s.logger.Debug("discarding stale list response", zap.Int64("seq", seq))
		return
	}

	if err != nil {
		s.setError(domain.UserMessage(err, msgLoadCustomers), false)
		s.loading.Set(false)
		return
	}

	data := page.Data
	if data == nil {
		data = []domain.Customer{}
	}
	s.customersList.Set(data)
	s.totalCustomers.Set(page.Total)
	s.loading.Set(false)
}

// --- Active view ---

// LoadCustomerByID loads the customer record, publishes a view with empty
// contacts/notes so core fields render immediately, then fetches contacts
// and notes concurrently. Each of the two merges independently and reports
// its own failure without blocking the other.
func (s *Store) LoadCustomerByID(ctx context.Context, id int64) {
	ctx, span := storeTracer.Start(ctx, "Store.LoadCustomerByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", id))

	s.loading.Set(true)
	s.setError("", false)
	s.notFound.Set(false)

	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		var missing *domain.ErrNotFound
		if errors.As(err, &missing) {
			s.notFound.Set(true)
			s.setError(msgNotFound, false)
		} else {
			s.setError(domain.UserMessage(err, msgLoadCustomer), false)
		}
		s.loading.Set(false)
		return
	}

	s.customerView.Set(&domain.CustomerView{
		Customer: *customer,
		Contacts: []domain.Contact{},
		Notes:    []domain.Note{},
	})
	s.loading.Set(false)

	s.loadContactsAndNotes(ctx, id)
}

func (s *Store) loadContactsAndNotes(ctx context.Context, customerID int64) {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		contacts, err := s.contacts.ListByCustomer(gCtx, customerID)
		if err != nil {
			s.logger.Warn("failed to load contacts",
				zap.Int64("customer_id", customerID),
				zap.Error(err),
			)
			s.SetError(domain.UserMessage(err, msgLoadContacts))
			return nil
		}
		s.mergeContacts(customerID, contacts)
		return nil
	})

	g.Go(func() error {
		notes, err := s.notes.ListByCustomer(gCtx, customerID)
		if err != nil {
			s.logger.Warn("failed to load notes",
				zap.Int64("customer_id", customerID),
				zap.Error(err),
			)
			s.SetError(domain.UserMessage(err, msgLoadNotes))
			return nil
		}
		s.mergeNotes(customerID, notes)
		return nil
	})

	_ = g.Wait()
}

// mergeContacts lands fetched contacts only while the same customer is
// still active, so sequences from two customers never interleave.
func (s *Store) mergeContacts(customerID int64, contacts []domain.Contact) {
	s.customerView.Update(func(view *domain.CustomerView) *domain.CustomerView {
		if view == nil || view.ID != customerID {
			return view
		}
		next := *view
		next.Contacts = contacts
		return &next
	})
}

func (s *Store) mergeNotes(customerID int64, notes []domain.Note) {
	s.customerView.Update(func(view *domain.CustomerView) *domain.CustomerView {
		if view == nil || view.ID != customerID {
			return view
		}
		next := *view
		next.Notes = notes
		return &next
	})
}

// ClearCustomer discards the active view. Must be called when leaving the
// detail screen so the next screen never reads a stale view.
func (s *Store) ClearCustomer() {
	s.customerView.Set(nil)
	s.notFound.Set(false)
	s.setError("", false)
}

// MutateContacts applies a pure transform to the active view's contacts.
// No-op without an active view. The rest of the view is left untouched.
func (s *Store) MutateContacts(transform func([]domain.Contact) []domain.Contact) {
	s.customerView.Update(func(view *domain.CustomerView) *domain.CustomerView {
		if view == nil {
			return view
		}
		next := *view
		next.Contacts = transform(view.Contacts)
		return &next
	})
}

// MutateNotes applies a pure transform to the active view's notes. No-op
// without an active view.
func (s *Store) MutateNotes(transform func([]domain.Note) []domain.Note) {
	s.customerView.Update(func(view *domain.CustomerView) *domain.CustomerView {
		if view == nil {
			return view
		}
		next := *view
		next.Notes = transform(view.Notes)
		return &next
	})
}
