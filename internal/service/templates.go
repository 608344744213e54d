package service

import (
	"context"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/google/uuid"
)

// TemplateInput is the writable part of a template. Nil pointers are
// absent keys; ID and CreatedBy are only compared against stored values.
type TemplateInput struct {
	ID          *uuid.UUID       `json:"id"`
	CreatedBy   *uuid.UUID       `json:"created_by"`
	Title       *string          `json:"title"`
	Description Nullable[string] `json:"description"`
	Slug        *string          `json:"slug"`
}

func (in TemplateInput) apply(t *models.Template, full bool) error {
	if err := immutable("id", in.ID, t.ID); err != nil {
		return err
	}
	if err := immutable("created_by", in.CreatedBy, t.CreatedByID); err != nil {
		return err
	}
	title, ok, err := requiredText("title", in.Title, full, 240)
	if err != nil {
		return err
	}
	if ok {
		t.Title = title
	}
	if in.Slug != nil {
		if err := util.ValidateSlug(*in.Slug); err != nil {
			return errs.Invalid("slug", "%s", err.Error())
		}
		t.Slug = *in.Slug
	} else if full {
		return errs.Invalid("slug", "This field is required.")
	}
	if in.Description.Set {
		t.Description = in.Description.Value
	}
	return nil
}

func (s *Service) CreateTemplate(ctx context.Context, p *models.User, in TemplateInput) (*models.Template, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	t := &models.Template{CreatedByID: p.ID}
	// id and created_by are assigned here, never taken from the payload
	in.ID, in.CreatedBy = nil, nil
	if err := in.apply(t, true); err != nil {
		return nil, err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateTemplate(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindTemplate, t.ID.String(), p)
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, p *models.User, f store.TemplateFilter) ([]models.Template, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	f.OwnerID = p.ID
	return s.store.ListTemplates(ctx, f)
}

func (s *Service) GetTemplate(ctx context.Context, p *models.User, id uuid.UUID) (*models.Template, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	return s.ownedTemplate(ctx, s.store, p, id)
}

func (s *Service) ownedTemplate(ctx context.Context, st *store.Store, p *models.User, id uuid.UUID) (*models.Template, error) {
	t, err := st.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := owns(p, t.CreatedByID); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTemplate applies in to the template. partial selects PATCH
// semantics; otherwise the required attributes must be present.
func (s *Service) UpdateTemplate(ctx context.Context, p *models.User, id uuid.UUID, in TemplateInput, partial bool) (*models.Template, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	var t *models.Template
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if t, err = s.ownedTemplate(ctx, tx, p, id); err != nil {
			return err
		}
		if err := in.apply(t, !partial); err != nil {
			return err
		}
		return tx.SaveTemplate(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindTemplate, t.ID.String(), p)
	return t, nil
}

// DeleteTemplate removes the template and its fields; entries made from
// it survive with no template.
func (s *Service) DeleteTemplate(ctx context.Context, p *models.User, id uuid.UUID) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.ownedTemplate(ctx, tx, p, id); err != nil {
			return err
		}
		return tx.DeleteTemplate(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionDelete, KindTemplate, id.String(), p)
	return nil
}
