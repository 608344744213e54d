package service

import (
	"context"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"

	"github.com/google/uuid"
)

const msgAnswerExists = "an answer for this entry and field already exists"

type AnswerInput struct {
	ID    *uuid.UUID       `json:"id"`
	Entry *uuid.UUID       `json:"entry"`
	Field *uint            `json:"field"`
	Value Nullable[string] `json:"value"`
}

// applyAnswer checks the entry first, then the field, then uniqueness of
// the resulting (entry, field) pair.
func (s *Service) applyAnswer(ctx context.Context, tx *store.Store, p *models.User, a *models.EntryFieldAnswer, in AnswerInput, full bool) error {
	if err := immutable("id", in.ID, a.ID); err != nil {
		return err
	}
	if in.Entry != nil {
		e, err := tx.GetEntry(ctx, *in.Entry)
		if err := referenced("entry", *in.Entry, err); err != nil {
			return err
		}
		if err := owns(p, e.CreatedByID); err != nil {
			return err
		}
		a.EntryID = e.ID
	} else if full {
		return errs.Invalid("entry", "This field is required.")
	}

	if in.Field != nil {
		f, err := tx.GetField(ctx, *in.Field)
		if err := referenced("field", *in.Field, err); err != nil {
			return err
		}
		t, err := tx.GetTemplate(ctx, f.TemplateID)
		if err != nil {
			return err
		}
		if err := owns(p, t.CreatedByID); err != nil {
			return err
		}
		a.FieldID = f.ID
	} else if full {
		return errs.Invalid("field", "This field is required.")
	}

	if in.Value.Set {
		a.Value = in.Value.Value
	}

	if in.Entry != nil || in.Field != nil {
		exists, err := tx.AnswerExists(ctx, a.EntryID, a.FieldID, a.ID)
		if err != nil {
			return err
		}
		if exists {
			return errs.Invalid("field", "%s", msgAnswerExists)
		}
	}
	return nil
}

// CreateAnswer records a value for one field of one of the principal's
// entries. A second answer for the same pair is rejected, not merged.
func (s *Service) CreateAnswer(ctx context.Context, p *models.User, in AnswerInput) (*models.EntryFieldAnswer, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	a := &models.EntryFieldAnswer{}
	in.ID = nil
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.applyAnswer(ctx, tx, p, a, in, true); err != nil {
			return err
		}
		return tx.CreateAnswer(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindAnswer, a.ID.String(), p)
	return a, nil
}

func (s *Service) ListAnswers(ctx context.Context, p *models.User, f store.AnswerFilter) ([]models.EntryFieldAnswer, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	f.OwnerID = p.ID
	return s.store.ListAnswers(ctx, f)
}

func (s *Service) GetAnswer(ctx context.Context, p *models.User, id uuid.UUID) (*models.EntryFieldAnswer, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	return s.ownedAnswer(ctx, s.store, p, id)
}

// ownedAnswer resolves ownership through the answer's entry.
func (s *Service) ownedAnswer(ctx context.Context, st *store.Store, p *models.User, id uuid.UUID) (*models.EntryFieldAnswer, error) {
	a, err := st.GetAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := st.GetEntry(ctx, a.EntryID)
	if err != nil {
		return nil, err
	}
	if err := owns(p, e.CreatedByID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) UpdateAnswer(ctx context.Context, p *models.User, id uuid.UUID, in AnswerInput, partial bool) (*models.EntryFieldAnswer, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	var a *models.EntryFieldAnswer
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if a, err = s.ownedAnswer(ctx, tx, p, id); err != nil {
			return err
		}
		if err := s.applyAnswer(ctx, tx, p, a, in, !partial); err != nil {
			return err
		}
		return tx.SaveAnswer(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindAnswer, a.ID.String(), p)
	return a, nil
}

func (s *Service) DeleteAnswer(ctx context.Context, p *models.User, id uuid.UUID) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.ownedAnswer(ctx, tx, p, id); err != nil {
			return err
		}
		return tx.DeleteAnswer(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionDelete, KindAnswer, id.String(), p)
	return nil
}
