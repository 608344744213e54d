package service

import (
	"context"
	"strconv"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"

	"github.com/google/uuid"
)

type FieldInput struct {
	ID         *uint               `json:"id"`
	Template   *uuid.UUID          `json:"template"`
	Name       *string             `json:"name"`
	FieldType  *models.FieldType   `json:"field_type"`
	Category   Nullable[uuid.UUID] `json:"category"`
	Order      *int                `json:"order"`
	IsRequired *bool               `json:"is_required"`
}

// applyField validates in against the principal's data and copies it onto
// f. Referenced templates and categories must exist and be owned.
func (s *Service) applyField(ctx context.Context, tx *store.Store, p *models.User, f *models.TemplateField, in FieldInput, full bool) error {
	if err := immutable("id", in.ID, f.ID); err != nil {
		return err
	}
	if in.Template != nil {
		t, err := tx.GetTemplate(ctx, *in.Template)
		if err := referenced("template", *in.Template, err); err != nil {
			return err
		}
		if err := owns(p, t.CreatedByID); err != nil {
			return err
		}
		f.TemplateID = t.ID
	} else if full {
		return errs.Invalid("template", "This field is required.")
	}

	name, ok, err := requiredText("name", in.Name, full, 120)
	if err != nil {
		return err
	}
	if ok {
		f.Name = name
	}

	if in.FieldType != nil {
		if !in.FieldType.Valid() {
			return errs.Invalid("field_type", "%s is not a valid choice.", strconv.Quote(string(*in.FieldType)))
		}
		f.FieldType = *in.FieldType
	} else if full {
		return errs.Invalid("field_type", "This field is required.")
	}

	if in.Category.Set {
		if in.Category.Value == nil {
			f.CategoryID = nil
		} else {
			id := *in.Category.Value
			c, err := tx.GetCategory(ctx, id)
			if err := referenced("category", id, err); err != nil {
				return err
			}
			if err := owns(p, c.CreatedByID); err != nil {
				return err
			}
			f.CategoryID = &c.ID
		}
	}

	if in.Order != nil {
		if *in.Order < 0 {
			return errs.Invalid("order", "Ensure this value is greater than or equal to 0.")
		}
		f.Order = uint(*in.Order)
	}
	if in.IsRequired != nil {
		f.IsRequired = *in.IsRequired
	}
	return nil
}

// CreateField adds a field to one of the principal's templates. order
// defaults to 0 and is_required to false.
func (s *Service) CreateField(ctx context.Context, p *models.User, in FieldInput) (*models.TemplateField, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	f := &models.TemplateField{}
	in.ID = nil
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.applyField(ctx, tx, p, f, in, true); err != nil {
			return err
		}
		return tx.CreateField(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindField, strconv.FormatUint(uint64(f.ID), 10), p)
	return f, nil
}

func (s *Service) ListFields(ctx context.Context, p *models.User, f store.FieldFilter) ([]models.TemplateField, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	f.OwnerID = p.ID
	return s.store.ListFields(ctx, f)
}

func (s *Service) GetField(ctx context.Context, p *models.User, id uint) (*models.TemplateField, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	return s.ownedField(ctx, s.store, p, id)
}

// ownedField resolves ownership through the field's template.
func (s *Service) ownedField(ctx context.Context, st *store.Store, p *models.User, id uint) (*models.TemplateField, error) {
	f, err := st.GetField(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := st.GetTemplate(ctx, f.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := owns(p, t.CreatedByID); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) UpdateField(ctx context.Context, p *models.User, id uint, in FieldInput, partial bool) (*models.TemplateField, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	var f *models.TemplateField
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if f, err = s.ownedField(ctx, tx, p, id); err != nil {
			return err
		}
		if err := s.applyField(ctx, tx, p, f, in, !partial); err != nil {
			return err
		}
		return tx.SaveField(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindField, strconv.FormatUint(uint64(id), 10), p)
	return f, nil
}

func (s *Service) DeleteField(ctx context.Context, p *models.User, id uint) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.ownedField(ctx, tx, p, id); err != nil {
			return err
		}
		return tx.DeleteField(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionDelete, KindField, strconv.FormatUint(uint64(id), 10), p)
	return nil
}
