package service

import (
	"context"
	"time"

	"github.com/boddenberg/crm-desk-go/internal/domain"
	"github.com/boddenberg/crm-desk-go/internal/port"

	"go.uber.org/zap"
)

// NoteService drives note CRUD. Notes display newest first, so new notes
// are prepended to the active view.
type NoteService struct {
	gateway port.NoteGateway
	store   *Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewNoteService creates the note service.
func NewNoteService(gateway port.NoteGateway, store *Store, logger *zap.Logger) *NoteService {
	return &NoteService{gateway: gateway, store: store, logger: logger, now: time.Now}
}

// Add creates a note, stamping createdAt client-side, and prepends it to
// the active view.
func (s *NoteService) Add(ctx context.Context, customerID int64, title, content string) (*domain.Note, error) {
	note := &domain.Note{
		CustomerID: customerID,
		Title:      title,
		Content:    content,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}

	saved, err := s.gateway.Create(ctx, note)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to add note. Please try again."))
		return nil, err
	}

	s.store.MutateNotes(func(notes []domain.Note) []domain.Note {
		return append([]domain.Note{*saved}, notes...)
	})
	return saved, nil
}

// Update rewrites a note and replaces it in the active view.
func (s *NoteService) Update(ctx context.Context, id int64, note *domain.Note) (*domain.Note, error) {
	saved, err := s.gateway.Update(ctx, id, note)
	if err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to update note. Please try again."))
		return nil, err
	}

	s.store.MutateNotes(func(notes []domain.Note) []domain.Note {
		next := make([]domain.Note, len(notes))
		for i, n := range notes {
			if n.ID == id {
				next[i] = *saved
			} else {
				next[i] = n
			}
		}
		return next
	})
	return saved, nil
}

// Delete removes a note and drops it from the active view.
func (s *NoteService) Delete(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.store.SetError(domain.UserMessage(err, "Unable to delete note. Please try again."))
		return err
	}

	s.store.MutateNotes(func(notes []domain.Note) []domain.Note {
		next := make([]domain.Note, 0, len(notes))
		for _, n := range notes {
			if n.ID != id {
				next = append(next, n)
			}
		}
		return next
	})
	s.logger.Debug("note deleted", zap.Int64("note_id", id))
	return nil
}
