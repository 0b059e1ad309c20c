package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// NoteClient implements port.NoteGateway.
type NoteClient struct {
	backend *Backend
}

// NewNoteClient creates the note gateway.
func NewNoteClient(backend *Backend) *NoteClient {
	return &NoteClient{backend: backend}
}

// ListByCustomer fetches all notes of one customer, newest first.
func (c *NoteClient) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteClient.ListByCustomer")
	defer span.End()
	span.SetAttributes(attribute.Int64("customer.id", customerID))

	var envelope listEnvelope[domain.Note]
	path := fmt.Sprintf("/notes/customer/%d", customerID)
	if err := c.backend.do(ctx, "notes_list", http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []domain.Note{}, nil
	}
	return envelope.Data, nil
}

// Create adds a note to its customer.
func (c *NoteClient) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteClient.Create")
	defer span.End()

	var saved domain.Note
	if err := c.backend.do(ctx, "notes_create", http.MethodPost, "/notes", nil, note, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update rewrites a note.
func (c *NoteClient) Update(ctx context.Context, id int64, note *domain.Note) (*domain.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteClient.Update")
	defer span.End()

	var saved domain.Note
	if err := c.backend.do(ctx, "notes_update", http.MethodPut, fmt.Sprintf("/notes/%d", id), nil, note, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a note.
func (c *NoteClient) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "NoteClient.Delete")
	defer span.End()

	return c.backend.do(ctx, "notes_delete", http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil, nil)
}
