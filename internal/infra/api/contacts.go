package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ContactClient implements port.ContactGateway.
type ContactClient struct {
	backend *Backend
}

// NewContactClient creates the contact gateway.
func NewContactClient(backend *Backend) *ContactClient {
	return &ContactClient{backend: backend}
}

// ListByCustomer fetches all contacts of one customer.
func (c *ContactClient) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "ContactClient.ListByCustomer")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", customerID))

	var envelope listEnvelope[domain.Contact]
	path := fmt.Sprintf("/contacts/customer/%d", customerID)
	if err := c.backend.do(ctx, "contacts_list", http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []domain.Contact{}, nil
	}
	return envelope.Data, nil
}

// Create adds a contact to its customer.
func (c *ContactClient) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "ContactClient.Create")
	defer span.End()

	var saved domain.Contact
	if err := c.backend.do(ctx, "contacts_create", http.MethodPost, "/contacts", nil, contact, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update rewrites a contact.
func (c *ContactClient) Update(ctx context.Context, id int64, contact *domain.Contact) (*domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "ContactClient.Update")
	defer span.End()

	var saved domain.Contact
	if err := c.backend.do(ctx, "contacts_update", http.MethodPut, fmt.Sprintf("/contacts/%d", id), nil, contact, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a contact.
func (c *ContactClient) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "ContactClient.Delete")
	defer span.End()

	return c.backend.do(ctx, "contacts_delete", http.MethodDelete, fmt.Sprintf("/contacts/%d", id), nil, nil, nil)
}
