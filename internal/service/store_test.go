package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockCustomerGateway struct {
	mu      sync.Mutex
	listFn  func(q domain.ListQuery) (*domain.CustomerPage, error)
	getFn   func(id int64) (*domain.Customer, error)
	created *domain.Customer
}

func (m *mockCustomerGateway) List(_ context.Context, q domain.ListQuery) (*domain.CustomerPage, error) {
	m.mu.Lock()
	fn := m.listFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.CustomerPage{Data: []domain.Customer{}}, nil
	}
	return fn(q)
}

func (m *mockCustomerGateway) Get(_ context.Context, id int64) (*domain.Customer, error) {
	if m.getFn == nil {
		return &domain.Customer{ID: id, CustomerDetails: domain.CustomerDetails{Name: "Acme"}}, nil
	}
	return m.getFn(id)
}

func (m *mockCustomerGateway) Create(_ context.Context, details *domain.CustomerDetails) (*domain.Customer, error) {
	return m.created, nil
}

func (m *mockCustomerGateway) Update(_ context.Context, id int64, details *domain.CustomerDetails) (*domain.Customer, error) {
	return &domain.Customer{ID: id, CustomerDetails: *details}, nil
}

func (m *mockCustomerGateway) Delete(_ context.Context, _ int64) error { return nil }

type mockContactGateway struct {
	listFn func(customerID int64) ([]domain.Contact, error)
}

func (m *mockContactGateway) ListByCustomer(_ context.Context, customerID int64) ([]domain.Contact, error) {
	if m.listFn == nil {
		return []domain.Contact{}, nil
	}
	return m.listFn(customerID)
}

func (m *mockContactGateway) Create(_ context.Context, contact *domain.Contact) (*domain.Contact, error) {
	saved := *contact
	saved.ID = 101
	return &saved, nil
}

func (m *mockContactGateway) Update(_ context.Context, id int64, contact *domain.Contact) (*domain.Contact, error) {
	saved := *contact
	saved.ID = id
	return &saved, nil
}

func (m *mockContactGateway) Delete(_ context.Context, _ int64) error { return nil }

type mockNoteGateway struct {
	listFn func(customerID int64) ([]domain.Note, error)
}

func (m *mockNoteGateway) ListByCustomer(_ context.Context, customerID int64) ([]domain.Note, error) {
	if m.listFn == nil {
		return []domain.Note{}, nil
	}
	return m.listFn(customerID)
}

func (m *mockNoteGateway) Create(_ context.Context, note *domain.Note) (*domain.Note, error) {
	saved := *note
	saved.ID = 201
	return &saved, nil
}

func (m *mockNoteGateway) Update(_ context.Context, id int64, note *domain.Note) (*domain.Note, error) {
	saved := *note
	saved.ID = id
	return &saved, nil
}

func (m *mockNoteGateway) Delete(_ context.Context, _ int64) error { return nil }

func newTestStore(customers *mockCustomerGateway, contacts *mockContactGateway, notes *mockNoteGateway, errorTTL time.Duration) *service.Store {
	if customers == nil {
		customers = &mockCustomerGateway{}
	}
	if contacts == nil {
		contacts = &mockContactGateway{}
	}
	if notes == nil {
		notes = &mockNoteGateway{}
	}
	return service.NewStore(customers, contacts, notes, errorTTL, observability.NewMetrics(), zap.NewNop())
}

// --- Tests ---

func TestLoadList_Success(t *testing.T) {
	customers := &mockCustomerGateway{
		listFn: func(q domain.ListQuery) (*domain.CustomerPage, error) {
			return &domain.CustomerPage{
				Data:  []domain.Customer{{ID: 1, CustomerDetails: domain.CustomerDetails{Name: "Acme"}}},
				Total: 12,
			}, nil
		},
	}
	store := newTestStore(customers, nil, nil, 0)

	store.LoadList(context.Background(), domain.ListQuery{Page: 1, Size: 10})

	if got := store.CustomersList(); len(got) != 1 || got[0].Name != "Acme" {
		t.Errorf("unexpected list: %+v", got)
	}
	if store.TotalCustomers() != 12 {
		t.Errorf("expected total 12, got %d", store.TotalCustomers())
	}
	if store.Loading() {
		t.Error("expected loading cleared")
	}
	if store.Error() != "" {
		t.Errorf("expected no error, got %q", store.Error())
	}
}

func TestLoadList_NilDataYieldsEmptySlice(t *testing.T) {
	customers := &mockCustomerGateway{
		listFn: func(q domain.ListQuery) (*domain.CustomerPage, error) {
			return &domain.CustomerPage{Data: nil, Total: 0}, nil
		},
	}
	store := newTestStore(customers, nil, nil, 0)

	store.LoadList(context.Background(), domain.ListQuery{Page: 1, Size: 10})

	if got := store.CustomersList(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestLoadList_ErrorIsSanitizedAndSticky(t *testing.T) {
	customers := &mockCustomerGateway{
		listFn: func(q domain.ListQuery) (*domain.CustomerPage, error) {
			return nil, &domain.ErrUnreachable{Err: errors.New("dial tcp: connection refused")}
		},
	}
	store := newTestStore(customers, nil, nil, 20*time.Millisecond)

	store.LoadList(context.Background(), domain.ListQuery{Page: 1, Size: 10})

	if got := store.Error(); got != domain.MsgUnreachable {
		t.Errorf("expected sanitized message, got %q", got)
	}
	if store.Loading() {
		t.Error("expected loading cleared on error")
	}

	// Load errors do not auto-expire; they clear on the next load.
	time.Sleep(60 * time.Millisecond)
	if got := store.Error(); got != domain.MsgUnreachable {
		t.Errorf("expected error to persist, got %q", got)
	}
}

func TestLoadList_StaleResponseDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	customers := &mockCustomerGateway{}
	customers.listFn = func(q domain.ListQuery) (*domain.CustomerPage, error) {
		if q.Search == "slow" {
			close(firstStarted)
			<-release
			return &domain.CustomerPage{
				Data:  []domain.Customer{{ID: 1, CustomerDetails: domain.CustomerDetails{Name: "Stale"}}},
				Total: 99,
			}, nil
		}
		return &domain.CustomerPage{
			Data:  []domain.Customer{{ID: 2, CustomerDetails: domain.CustomerDetails{Name: "Fresh"}}},
			Total: 1,
		}, nil
	}
	store := newTestStore(customers, nil, nil, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.LoadList(context.Background(), domain.ListQuery{Page: 1, Size: 10, Search: "slow"})
	}()

	<-firstStarted
	store.LoadList(context.Background(), domain.ListQuery{Page: 1, Size: 10, Search: "fast"})
	close(release)
	<-done

	if got := store.CustomersList(); len(got) != 1 || got[0].Name != "Fresh" {
		t.Errorf("expected the newer response to win, got %+v", got)
	}
	if store.TotalCustomers() != 1 {
		t.Errorf("expected total 1, got %d", store.TotalCustomers())
	}
}

func TestLoadCustomerByID_MergesContactsAndNotes(t *testing.T) {
	contacts := &mockContactGateway{
		listFn: func(customerID int64) ([]domain.Contact, error) {
			return []domain.Contact{{ID: 10, CustomerID: customerID, Name: "Ana"}}, nil
		},
	}
	notes := &mockNoteGateway{
		listFn: func(customerID int64) ([]domain.Note, error) {
			return []domain.Note{{ID: 20, CustomerID: customerID, Title: "Call"}}, nil
		},
	}
	store := newTestStore(nil, contacts, notes, 0)

	store.LoadCustomerByID(context.Background(), 7)

	view := store.CustomerView()
	if view == nil || view.ID != 7 {
		t.Fatalf("expected view for customer 7, got %+v", view)
	}
	if len(view.Contacts) != 1 || view.Contacts[0].Name != "Ana" {
		t.Errorf("expected merged contacts, got %+v", view.Contacts)
	}
	if len(view.Notes) != 1 || view.Notes[0].Title != "Call" {
		t.Errorf("expected merged notes, got %+v", view.Notes)
	}
}

func TestLoadCustomerByID_NotFound(t *testing.T) {
	customers := &mockCustomerGateway{
		getFn: func(id int64) (*domain.Customer, error) {
			return nil, &domain.ErrNotFound{Resource: "customer", ID: "404"}
		},
	}
	store := newTestStore(customers, nil, nil, 0)

	store.LoadCustomerByID(context.Background(), 404)

	if !store.NotFound() {
		t.Error("expected notFound flag")
	}
	if store.CustomerView() != nil {
		t.Error("expected no view")
	}
	if got := store.Error(); got != "Customer not found." {
		t.Errorf("expected not-found message, got %q", got)
	}
}

func TestLoadCustomerByID_ContactsFailureKeepsNotes(t *testing.T) {
	contacts := &mockContactGateway{
		listFn: func(customerID int64) ([]domain.Contact, error) {
			return nil, &domain.ErrUnreachable{Err: errors.New("boom")}
		},
	}
	notes := &mockNoteGateway{
		listFn: func(customerID int64) ([]domain.Note, error) {
			return []domain.Note{{ID: 20, Title: "Call"}}, nil
		},
	}
	store := newTestStore(nil, contacts, notes, time.Minute)

	store.LoadCustomerByID(context.Background(), 7)

	view := store.CustomerView()
	if view == nil || view.ID != 7 {
		t.Fatalf("expected view despite contact failure, got %+v", view)
	}
	if len(view.Contacts) != 0 {
		t.Errorf("expected empty contacts, got %+v", view.Contacts)
	}
	if len(view.Notes) != 1 {
		t.Errorf("expected notes merged, got %+v", view.Notes)
	}
	if store.Error() == "" {
		t.Error("expected contact failure reported")
	}
}

func TestLoadCustomerByID_StaleContactsNeverLandOnNewView(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	contacts := &mockContactGateway{}
	contacts.listFn = func(customerID int64) ([]domain.Contact, error) {
		if customerID == 1 {
			close(firstStarted)
			<-release
			return []domain.Contact{{ID: 10, CustomerID: 1, Name: "Stale"}}, nil
		}
		return []domain.Contact{{ID: 11, CustomerID: 2, Name: "Current"}}, nil
	}
	store := newTestStore(nil, contacts, nil, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.LoadCustomerByID(context.Background(), 1)
	}()

	<-firstStarted
	store.LoadCustomerByID(context.Background(), 2)
	close(release)
	<-done

	view := store.CustomerView()
	if view == nil || view.ID != 2 {
		t.Fatalf("expected view for customer 2, got %+v", view)
	}
	if len(view.Contacts) != 1 || view.Contacts[0].Name != "Current" {
		t.Errorf("expected customer 2's contacts only, got %+v", view.Contacts)
	}
}

func TestSetError_ExpiresAfterTTL(t *testing.T) {
	store := newTestStore(nil, nil, nil, 30*time.Millisecond)

	store.SetError("Unable to add contact. Please try again.")
	if store.Error() == "" {
		t.Fatal("expected error set")
	}

	time.Sleep(80 * time.Millisecond)
	if got := store.Error(); got != "" {
		t.Errorf("expected error expired, got %q", got)
	}
}

func TestSetError_SupersedingErrorRestartsClock(t *testing.T) {
	store := newTestStore(nil, nil, nil, 60*time.Millisecond)

	store.SetError("first")
	time.Sleep(40 * time.Millisecond)
	store.SetError("second")

	// Past the first error's TTL: the second must still be visible.
	time.Sleep(40 * time.Millisecond)
	if got := store.Error(); got != "second" {
		t.Errorf("expected superseding error to survive, got %q", got)
	}

	time.Sleep(60 * time.Millisecond)
	if got := store.Error(); got != "" {
		t.Errorf("expected expiry after its own TTL, got %q", got)
	}
}

func TestClearCustomer_ResetsViewState(t *testing.T) {
	store := newTestStore(nil, nil, nil, 0)
	store.LoadCustomerByID(context.Background(), 7)

	store.ClearCustomer()

	if store.CustomerView() != nil {
		t.Error("expected view cleared")
	}
	if store.NotFound() {
		t.Error("expected notFound cleared")
	}
	if store.Error() != "" {
		t.Error("expected error cleared")
	}
}

func TestMutateContacts_NoOpWithoutView(t *testing.T) {
	store := newTestStore(nil, nil, nil, 0)

	called := false
	store.MutateContacts(func(contacts []domain.Contact) []domain.Contact {
		called = true
		return contacts
	})

	if called {
		t.Error("expected transform not to run without a view")
	}
	if store.CustomerView() != nil {
		t.Error("expected no view")
	}
}

func TestMutateContacts_LeavesNotesUntouched(t *testing.T) {
	notes := &mockNoteGateway{
		listFn: func(customerID int64) ([]domain.Note, error) {
			return []domain.Note{{ID: 20, Title: "Call"}}, nil
		},
	}
	store := newTestStore(nil, nil, notes, 0)
	store.LoadCustomerByID(context.Background(), 7)

	before := store.CustomerView()
	store.MutateContacts(func(contacts []domain.Contact) []domain.Contact {
		return append(contacts, domain.Contact{ID: 30, Name: "New"})
	})
	after := store.CustomerView()

	if len(after.Contacts) != 1 || after.Contacts[0].Name != "New" {
		t.Errorf("expected contact added, got %+v", after.Contacts)
	}
	if len(after.Notes) != 1 || &before.Notes[0] != &after.Notes[0] {
		t.Error("expected notes slice to remain referentially stable")
	}
}
