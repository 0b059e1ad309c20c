package service

import (
	"context"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"go.uber.org/zap"
)

// ContactService drives contact CRUD, keeping the active view in sync
// through the store's contact mutator instead of re-fetching.
type ContactService struct {
	gateway port.ContactGateway
	store   *Store
	logger  *zap.Logger
}

// NewContactService creates the contact service.
func NewContactService(gateway port.ContactGateway, store *Store, logger *zap.Logger) *ContactService {
	return &ContactService{gateway: gateway, store: store, logger: logger}
}

// Add creates a contact and appends it to the active view.
func (s *ContactService) Add(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	saved, err := s.gateway.Create(ctx, contact)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to add contact. Please try again."))
		return nil, err
	}

	s.store.MutateContacts(func(contacts []domain.Contact) []domain.Contact {
		return append(append([]domain.Contact{}, contacts...), *saved)
	})
	return saved, nil
}

// Update rewrites a contact and replaces it in the active view.
func (s *ContactService) Update(ctx context.Context, id int64, contact *domain.Contact) (*domain.Contact, error) {
	saved, err := s.gateway.Update(ctx, id, contact)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to update contact. Please try again."))
		return nil, err
	}

	s.store.MutateContacts(func(contacts []domain.Contact) []domain.Contact {
		next := make([]domain.Contact, len(contacts))
		for i, c := range contacts {
			if c.ID == id {
				next[i] = *saved
			} else {
				next[i] = c
			}
		}
		return next
	})
	return saved, nil
}

// Delete removes a contact and drops it from the active view.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to delete contact. Please try again."))
		return err
	}

	s.store.MutateContacts(func(contacts []domain.Contact) []domain.Contact {
		next := make([]domain.Contact, 0, len(contacts))
		for _, c := range contacts {
			if c.ID != id {
				next = append(next, c)
			}
		}
		return next
	})
	s.logger.Debug("contact deleted", zap.Int64("contact_id", id))
	return nil
}
