package service

import (
	"context"

	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"

	"github.com/google/uuid"
)

type CategoryInput struct {
	ID          *uuid.UUID       `json:"id"`
	CreatedBy   *uuid.UUID       `json:"created_by"`
	Name        *string          `json:"name"`
	Description Nullable[string] `json:"description"`
}

func (in CategoryInput) apply(c *models.Category, full bool) error {
	if err := immutable("id", in.ID, c.ID); err != nil {
		return err
	}
	if err := immutable("created_by", in.CreatedBy, c.CreatedByID); err != nil {
		return err
	}
	name, ok, err := requiredText("name", in.Name, full, 120)
	if err != nil {
		return err
	}
	if ok {
		c.Name = name
	}
	if in.Description.Set {
		c.Description = in.Description.Value
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, p *models.User, in CategoryInput) (*models.Category, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	c := &models.Category{CreatedByID: p.ID}
	in.ID, in.CreatedBy = nil, nil
	if err := in.apply(c, true); err != nil {
		return nil, err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindCategory, c.ID.String(), p)
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, p *models.User, f store.CategoryFilter) ([]models.Category, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	f.OwnerID = p.ID
	return s.store.ListCategories(ctx, f)
}

func (s *Service) GetCategory(ctx context.Context, p *models.User, id uuid.UUID) (*models.Category, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	return s.ownedCategory(ctx, s.store, p, id)
}

func (s *Service) ownedCategory(ctx context.Context, st *store.Store, p *models.User, id uuid.UUID) (*models.Category, error) {
	c, err := st.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := owns(p, c.CreatedByID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, p *models.User, id uuid.UUID, in CategoryInput, partial bool) (*models.Category, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	var c *models.Category
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if c, err = s.ownedCategory(ctx, tx, p, id); err != nil {
			return err
		}
		if err := in.apply(c, !partial); err != nil {
			return err
		}
		return tx.SaveCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindCategory, c.ID.String(), p)
	return c, nil
}

// DeleteCategory removes the category; fields tagged with it lose the tag.
func (s *Service) DeleteCategory(ctx context.Context, p *models.User, id uuid.UUID) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.ownedCategory(ctx, tx, p, id); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionDelete, KindCategory, id.String(), p)
	return nil
}
