package service

import (
	"context"

	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"

	"github.com/google/uuid"
)

type EntryInput struct {
	ID            *uuid.UUID          `json:"id"`
	CreatedBy     *uuid.UUID          `json:"created_by"`
	Title         Nullable[string]    `json:"title"`
	Template      Nullable[uuid.UUID] `json:"template"`
	QuoteOfTheDay Nullable[string]    `json:"quote_of_the_day"`
	RateYourDay   Nullable[int]       `json:"rate_your_day"`
}

func (s *Service) applyEntry(ctx context.Context, tx *store.Store, p *models.User, e *models.JournalEntry, in EntryInput) error {
	if err := immutable("id", in.ID, e.ID); err != nil {
		return err
	}
	if err := immutable("created_by", in.CreatedBy, e.CreatedByID); err != nil {
		return err
	}
	if err := optionalText("title", in.Title, 240); err != nil {
		return err
	}
	if err := optionalText("quote_of_the_day", in.QuoteOfTheDay, 500); err != nil {
		return err
	}
	if in.Template.Set {
		if in.Template.Value == nil {
			e.TemplateID = nil
		} else {
			id := *in.Template.Value
			t, err := tx.GetTemplate(ctx, id)
			if err := referenced("template", id, err); err != nil {
				return err
			}
			if err := owns(p, t.CreatedByID); err != nil {
				return err
			}
			e.TemplateID = &t.ID
		}
	}
	if in.Title.Set {
		e.Title = in.Title.Value
	}
	if in.QuoteOfTheDay.Set {
		e.QuoteOfTheDay = in.QuoteOfTheDay.Value
	}
	if in.RateYourDay.Set {
		e.RateYourDay = in.RateYourDay.Value
	}
	return nil
}

func (s *Service) CreateEntry(ctx context.Context, p *models.User, in EntryInput) (*models.JournalEntry, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	e := &models.JournalEntry{CreatedByID: p.ID}
	in.ID, in.CreatedBy = nil, nil
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.applyEntry(ctx, tx, p, e, in); err != nil {
			return err
		}
		return tx.CreateEntry(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindEntry, e.ID.String(), p)
	return e, nil
}

func (s *Service) ListEntries(ctx context.Context, p *models.User, f store.EntryFilter) ([]models.JournalEntry, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	f.OwnerID = p.ID
	return s.store.ListEntries(ctx, f)
}

func (s *Service) GetEntry(ctx context.Context, p *models.User, id uuid.UUID) (*models.JournalEntry, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	return s.ownedEntry(ctx, s.store, p, id)
}

func (s *Service) ownedEntry(ctx context.Context, st *store.Store, p *models.User, id uuid.UUID) (*models.JournalEntry, error) {
	e, err := st.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := owns(p, e.CreatedByID); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry has no required attributes, so PUT and PATCH behave alike.
func (s *Service) UpdateEntry(ctx context.Context, p *models.User, id uuid.UUID, in EntryInput) (*models.JournalEntry, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	var e *models.JournalEntry
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if e, err = s.ownedEntry(ctx, tx, p, id); err != nil {
			return err
		}
		if err := s.applyEntry(ctx, tx, p, e, in); err != nil {
			return err
		}
		return tx.SaveEntry(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindEntry, e.ID.String(), p)
	return e, nil
}

func (s *Service) DeleteEntry(ctx context.Context, p *models.User, id uuid.UUID) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.ownedEntry(ctx, tx, p, id); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionDelete, KindEntry, id.String(), p)
	return nil
}

// EntryAnswers loads the answers of the principal's entries, keyed by entry.
func (s *Service) EntryAnswers(ctx context.Context, p *models.User, entries []models.JournalEntry) (map[uuid.UUID][]models.EntryFieldAnswer, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.CreatedByID == p.ID {
			ids = append(ids, e.ID)
		}
	}
	answers, err := s.store.AnswersForEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]models.EntryFieldAnswer, len(ids))
	for _, a := range answers {
		out[a.EntryID] = append(out[a.EntryID], a)
	}
	return out, nil
}
