package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func failWith(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFail_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   float64
	}{
		{errs.ErrUnauthorized, http.StatusUnauthorized, CodeAuth},
		{fmt.Errorf("get template: %w", errs.ErrForbidden), http.StatusForbidden, CodeForbidden},
		{fmt.Errorf("get entry: %w", errs.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{errs.Invalid("slug", "bad slug"), http.StatusBadRequest, CodeInvalidParam},
		{errs.Conflict("email", "Email already exists"), http.StatusBadRequest, CodeConflict},
		{errors.New("boom"), http.StatusInternalServerError, CodeServerErr},
	}
	for _, tc := range cases {
		w, body := failWith(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, body["code"], tc.err.Error())
	}
}

func TestFail_FieldIncluded(t *testing.T) {
	_, body := failWith(t, errs.Conflict("username", "Username already exists"))
	assert.Equal(t, "username", body["field"])
	assert.Equal(t, "Username already exists", body["message"])
}

func TestBindError_Validator(t *testing.T) {
	type req struct {
		Title string `json:"title" binding:"required,max=5"`
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"far too long"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var r req
	err := BindError(c.ShouldBindJSON(&r))
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Message, "no more than 5")
}

func TestBindError_Malformed(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var r struct {
		Title string `json:"title"`
	}
	var ve *errs.ValidationError
	assert.ErrorAs(t, BindError(c.ShouldBindJSON(&r)), &ve)
}
