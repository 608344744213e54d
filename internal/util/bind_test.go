package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optional[T any] struct {
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type bindReq struct {
	Title    string              `json:"title" binding:"required"`
	Template *uuid.UUID          `json:"template"`
	Category optional[uuid.UUID] `json:"category"`
	Field    *uint               `json:"field"`
	Rate     optional[int]       `json:"rate_your_day"`
	Secret   string              `json:"-"`
}

func bindBody(body string) error {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var r bindReq
	return BindJSON(c, &r)
}

func TestBindJSON_FieldErrors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"bad uuid", `{"title":"a","template":"not-a-uuid"}`, "template", "Must be a valid UUID."},
		{"bad wrapped uuid", `{"title":"a","category":"zzz"}`, "category", "Must be a valid UUID."},
		{"negative uint", `{"title":"a","field":-1}`, "field", "A valid non-negative integer is required."},
		{"string for int", `{"title":"a","rate_your_day":"great"}`, "rate_your_day", "A valid integer is required."},
		{"number for string", `{"title":5}`, "title", "Not a valid string."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ve *errs.ValidationError
			require.True(t, errors.As(bindBody(tc.body), &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.msg, ve.Message)
		})
	}
}

func TestBindJSON_Malformed(t *testing.T) {
	for _, body := range []string{``, `{"title":`, `[1,2]`} {
		var ve *errs.ValidationError
		require.True(t, errors.As(bindBody(body), &ve), body)
		assert.Empty(t, ve.Field, body)
	}
}

func TestBindJSON_ValidatesAfterDecode(t *testing.T) {
	var ve *errs.ValidationError
	require.True(t, errors.As(bindBody(`{"template":"`+uuid.NewString()+`"}`), &ve))
	assert.Contains(t, ve.Message, "required")

	assert.NoError(t, bindBody(`{"title":"ok","field":3,"rate_your_day":4}`))
}

func TestFail_BindErrorIsBadRequest(t *testing.T) {
	w, body := failWith(t, bindBody(`{"title":"a","template":"not-a-uuid"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "template", body["field"])
}
