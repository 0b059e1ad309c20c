package service

import (
	"context"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"go.uber.org/zap"
)

// CustomerService drives customer CRUD, reporting failures into the store's
// error slot so every screen shows them the same way.
type CustomerService struct {
	gateway port.CustomerGateway
	store   *Store
	logger  *zap.Logger
}

// NewCustomerService creates the customer service.
func NewCustomerService(gateway port.CustomerGateway, store *Store, logger *zap.Logger) *CustomerService {
	return &CustomerService{gateway: gateway, store: store, logger: logger}
}

// Add creates a customer.
func (s *CustomerService) Add(ctx context.Context, details *domain.CustomerDetails) (*domain.Customer, error) {
	customer, err := s.gateway.Create(ctx, details)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to add customer. Please try again."))
		return nil, err
	}
	s.logger.Info("customer created", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// Update rewrites a customer's details and patches the active view when it
// shows the same customer.
func (s *CustomerService) Update(ctx context.Context, id int64, details *domain.CustomerDetails) (*domain.Customer, error) {
	customer, err := s.gateway.Update(ctx, id, details)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to update customer. Please try again."))
		return nil, err
	}

	if view := s.store.CustomerView(); view != nil && view.ID == id {
		s.store.LoadCustomerByID(ctx, id)
	}
	s.logger.Info("customer updated", zap.Int64("customer_id", id))
	return customer, nil
}

// Delete removes a customer. The caller reloads the list afterwards.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to delete customer. Please try again."))
		return err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}
