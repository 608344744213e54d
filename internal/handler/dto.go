package handler

import (
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

// ---------- 响应结构 ----------

type userResp struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
	}
}

type templateResp struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Slug        string    `json:"slug"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTemplateResp(t *models.Template) templateResp {
	return templateResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Slug:        t.Slug,
		CreatedBy:   t.CreatedByID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type categoryResp struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategoryResp(c *models.Category) categoryResp {
	return categoryResp{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedByID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type fieldResp struct {
	ID         uint             `json:"id"`
	Template   uuid.UUID        `json:"template"`
	Name       string           `json:"name"`
	FieldType  models.FieldType `json:"field_type"`
	Category   *uuid.UUID       `json:"category"`
	Order      uint             `json:"order"`
	IsRequired bool             `json:"is_required"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func toFieldResp(f *models.TemplateField) fieldResp {
	return fieldResp{
		ID:         f.ID,
		Template:   f.TemplateID,
		Name:       f.Name,
		FieldType:  f.FieldType,
		Category:   f.CategoryID,
		Order:      f.Order,
		IsRequired: f.IsRequired,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

type entryResp struct {
	ID            uuid.UUID  `json:"id"`
	Title         *string    `json:"title"`
	Template      *uuid.UUID `json:"template"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	QuoteOfTheDay *string    `json:"quote_of_the_day"`
	RateYourDay   *int       `json:"rate_your_day"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toEntryResp(e *models.JournalEntry) entryResp {
	return entryResp{
		ID:            e.ID,
		Title:         e.Title,
		Template:      e.TemplateID,
		CreatedBy:     e.CreatedByID,
		QuoteOfTheDay: e.QuoteOfTheDay,
		RateYourDay:   e.RateYourDay,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

type answerResp struct {
	ID        uuid.UUID `json:"id"`
	Entry     uuid.UUID `json:"entry"`
	Field     uint      `json:"field"`
	Value     *string   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAnswerResp(a *models.EntryFieldAnswer) answerResp {
	return answerResp{
		ID:        a.ID,
		Entry:     a.EntryID,
		Field:     a.FieldID,
		Value:     a.Value,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// mapSlice 用 fn 转换列表
func mapSlice[M, R any](items []M, fn func(*M) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
