// Package service is the authorization and validation gate in front of the
// store. Every operation takes the acting principal; nil means the request
// is unauthenticated. Mutations run in one store transaction and, once it
// has committed, the registered hooks are called in order.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entity kinds reported in events.
const (
	KindTemplate = "template"
	KindCategory = "category"
	KindField    = "template_field"
	KindEntry    = "journal_entry"
	KindAnswer   = "entry_field_answer"
	KindUser     = "user"
)

// Event describes a committed mutation.
type Event struct {
	Action  Action
	Kind    string
	ID      string
	ActorID uuid.UUID
}

// Hook runs after a mutation has committed. It cannot fail the request.
type Hook func(ctx context.Context, ev Event)

type Service struct {
	store      *store.Store
	hooks      []Hook
	bcryptCost int
}

func New(st *store.Store, hooks ...Hook) *Service {
	return &Service{store: st, hooks: hooks}
}

// SetBcryptCost sets the cost used for new password hashes.
func (s *Service) SetBcryptCost(cost int) {
	s.bcryptCost = cost
}

func (s *Service) emit(ctx context.Context, action Action, kind, id string, actor *models.User) {
	ev := Event{Action: action, Kind: kind, ID: id, ActorID: actor.ID}
	for _, h := range s.hooks {
		h(ctx, ev)
	}
}

func authenticated(p *models.User) error {
	if p == nil {
		return errs.ErrUnauthorized
	}
	return nil
}

// owns reports ErrForbidden unless ownerID is the principal.
func owns(p *models.User, ownerID uuid.UUID) error {
	if p.ID != ownerID {
		return errs.ErrForbidden
	}
	return nil
}

// immutable rejects a payload that tries to change a read-only value.
func immutable[T comparable](field string, got *T, stored T) error {
	if got != nil && *got != stored {
		return errs.Invalid(field, "this field cannot be changed")
	}
	return nil
}

// Nullable distinguishes an absent JSON key (Set false) from an explicit
// null (Set true, Value nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// requiredText validates a mandatory string attribute. When full is false
// and v is nil the attribute is left alone.
func requiredText(field string, v *string, full bool, max int) (string, bool, error) {
	if v == nil {
		if full {
			return "", false, errs.Invalid(field, "This field is required.")
		}
		return "", false, nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", false, errs.Invalid(field, "This field may not be blank.")
	}
	if err := util.ValidateLength(s, max); err != nil {
		return "", false, errs.Invalid(field, "%s", err.Error())
	}
	return s, true, nil
}

// optionalText validates a nullable string attribute; max <= 0 means
// unbounded.
func optionalText(field string, v Nullable[string], max int) error {
	if v.Value == nil || max <= 0 {
		return nil
	}
	if err := util.ValidateLength(*v.Value, max); err != nil {
		return errs.Invalid(field, "%s", err.Error())
	}
	return nil
}

// referenced turns a missing referenced row into a ValidationError on field.
func referenced(field string, id any, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrNotFound) {
		return errs.Invalid(field, "Invalid pk \"%v\" - object does not exist.", id)
	}
	return err
}
