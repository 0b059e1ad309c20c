package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// CustomerClient implements port.CustomerGateway.
type CustomerClient struct {
	backend *Backend
}

// NewCustomerClient creates the customer gateway.
func NewCustomerClient(backend *Backend) *CustomerClient {
	return &CustomerClient{backend: backend}
}

// List fetches a customer page. q.Page is 1-based; the backend pages from 0.
func (c *CustomerClient) List(ctx context.Context, q domain.ListQuery) (*domain.CustomerPage, error) {
	ctx, span := tracer.Start(ctx, "CustomerClient.List")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", q.Page),
		attribute.String("search_field", q.SearchField),
	)

	field := q.SearchField
	if field == "" {
		field = domain.SearchFieldAll
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page-1))
	params.Set("size", strconv.Itoa(q.Size))
	params.Set("search", q.Search)
	params.Set("searchField", field)
	if q.SortBy != "" && q.SortDir != "" {
		params.Set("sortBy", q.SortBy)
		params.Set("sortDir", q.SortDir)
	}

	var page domain.CustomerPage
	if err := c.backend.do(ctx, "customers_list", http.MethodGet, "/customers", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single customer.
func (c *CustomerClient) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerClient.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", id))

	var customer domain.Customer
	err := c.backend.do(ctx, "customers_get", http.MethodGet, fmt.Sprintf("/customers/%d", id), nil, nil, &customer)
	if err != nil {
		var status *domain.ErrStatus
		if errors.As(err, &status) && status.Status == http.StatusNotFound {
			return nil, &domain.ErrNotFound{Resource: "customer", ID: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	return &customer, nil
}

// Create adds a customer.
func (c *CustomerClient) Create(ctx context.Context, details *domain.CustomerDetails) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerClient.Create")
	defer span.End()

	var customer domain.Customer
	if err := c.backend.do(ctx, "customers_create", http.MethodPost, "/customers", nil, details, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update rewrites a customer's details.
func (c *CustomerClient) Update(ctx context.Context, id int64, details *domain.CustomerDetails) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerClient.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", id))

	var customer domain.Customer
	if err := c.backend.do(ctx, "customers_update", http.MethodPut, fmt.Sprintf("/customers/%d", id), nil, details, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete removes a customer.
func (c *CustomerClient) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "CustomerClient.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", id))

	return c.backend.do(ctx, "customers_delete", http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil, nil, nil)
}
