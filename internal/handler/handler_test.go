package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/router"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field"`
	Data    map[string]any `json:"data"`
}

type apiClient struct {
	t *testing.T
	r *gin.Engine
}

func setup(t *testing.T) *apiClient {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "handler-secret", Issuer: "logjournal", AccessTTLMinutes: 5, RefreshTTLHours: 1},
		Security: config.SecurityConfig{EncryptionKey: "audit-key"},
		App:      config.AppSubConfig{PageSize: 20},
	}
	db := testutil.NewDB(t)
	svc := service.New(store.New(db))
	svc.SetBcryptCost(bcrypt.MinCost)

	log := logrus.New()
	log.SetOutput(io.Discard)

	r := router.SetupRouter(cfg, router.Deps{DB: db, Svc: svc, Log: log})
	return &apiClient{t: t, r: r}
}

func (a *apiClient) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// register 注册用户并返回 access / refresh token
func (a *apiClient) register(username string) (string, string) {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return env.Data["access"].(string), env.Data["refresh"].(string)
}

func (a *apiClient) createTemplate(token, slug string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/templates", token, gin.H{"title": "Daily", "slug": slug})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return env.Data["template"].(map[string]any)["id"].(string)
}

func TestHealthz(t *testing.T) {
	api := setup(t)
	w, _ := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnauthenticatedResources(t *testing.T) {
	api := setup(t)
	paths := []string{"/api/templates", "/api/categories", "/api/template-fields", "/api/entries", "/api/entry-field-answers"}
	for _, p := range paths {
		w, env := api.do(http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
		assert.NotZero(t, env.Code, p)

		w, _ = api.do(http.MethodPost, p, "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}
}

func TestRegister_Conflicts(t *testing.T) {
	api := setup(t)
	api.register("alice")

	w, env := api.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username", env.Field)

	w, env = api.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "alice2", "email": "ALICE@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", env.Field)

	// 校验错误返回 JSON 字段名
	w, env = api.do(http.MethodPost, "/api/register", "", gin.H{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", env.Field)
}

func TestTemplateLifecycle(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")
	bob, _ := api.register("bob")

	id := api.createTemplate(alice, "daily")

	w, env := api.do(http.MethodGet, "/api/templates/"+id, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "daily", env.Data["template"].(map[string]any)["slug"])

	w, _ = api.do(http.MethodGet, "/api/templates/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodDelete, "/api/templates/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodGet, "/api/templates/"+uuid.NewString(), alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = api.do(http.MethodGet, "/api/templates/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bob 看不到 alice 的数据
	w, env = api.do(http.MethodGet, "/api/templates", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, env.Data["total"])

	w, env = api.do(http.MethodPatch, "/api/templates/"+id, alice, gin.H{"title": "Evening"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Evening", env.Data["template"].(map[string]any)["title"])

	w, env = api.do(http.MethodPut, "/api/templates/"+id, alice, gin.H{"title": "Evening"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "slug", env.Field)

	w, _ = api.do(http.MethodPost, "/api/templates", bob, gin.H{"title": "Copy", "slug": "daily"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/templates/"+id, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = api.do(http.MethodGet, "/api/templates/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFieldsEntriesAnswers(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")
	bob, _ := api.register("bob")
	tplID := api.createTemplate(alice, "daily")

	w, env := api.do(http.MethodPost, "/api/categories", alice, gin.H{"name": "Mood"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := env.Data["category"].(map[string]any)["id"].(string)

	w, env = api.do(http.MethodPost, "/api/template-fields", alice, gin.H{
		"template": tplID, "name": "How was it", "field_type": "text", "category": catID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	field := env.Data["template_field"].(map[string]any)
	assert.EqualValues(t, 0, field["order"])
	assert.Equal(t, false, field["is_required"])
	fieldID := uint(field["id"].(float64))

	w, env = api.do(http.MethodPost, "/api/template-fields", alice, gin.H{
		"template": tplID, "name": "Bad", "field_type": "colour",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "field_type", env.Field)

	// bob 不能给 alice 的模板加字段
	w, _ = api.do(http.MethodPost, "/api/template-fields", bob, gin.H{
		"template": tplID, "name": "Sneaky", "field_type": "text",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodGet, fmt.Sprintf("/api/template-fields/%d", fieldID), bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodPost, "/api/entries", alice, gin.H{
		"title": "Monday", "template": tplID, "rate_your_day": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entryID := env.Data["entry"].(map[string]any)["id"].(string)

	answer := gin.H{"entry": entryID, "field": fieldID, "value": "fine"}
	w, _ = api.do(http.MethodPost, "/api/entry-field-answers", alice, answer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = api.do(http.MethodPost, "/api/entry-field-answers", alice, answer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "field", env.Field)

	w, env = api.do(http.MethodGet, "/api/entry-field-answers?entry="+entryID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Data["total"])

	w, env = api.do(http.MethodGet, "/api/entries?template=nope", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "template", env.Field)

	// 删除模板不删除日记
	w, _ = api.do(http.MethodDelete, "/api/templates/"+tplID, alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w, env = api.do(http.MethodGet, "/api/entries/"+entryID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Data["entry"].(map[string]any)["template"])
}

func TestMalformedPayloads(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")
	tpl := api.createTemplate(alice, "daily")

	cases := []struct {
		name  string
		path  string
		body  gin.H
		field string
	}{
		{"template not a uuid", "/api/template-fields", gin.H{"template": "not-a-uuid", "name": "Mood", "field_type": "text"}, "template"},
		{"category not a uuid", "/api/template-fields", gin.H{"template": tpl, "name": "Mood", "field_type": "text", "category": "nope"}, "category"},
		{"entry template not a uuid", "/api/entries", gin.H{"title": "Sunny", "template": "not-a-uuid"}, "template"},
		{"created_by not a uuid", "/api/templates", gin.H{"title": "Daily", "slug": "other", "created_by": "zzz"}, "created_by"},
		{"entry not a uuid", "/api/entry-field-answers", gin.H{"entry": "xyz", "field": 1, "value": "x"}, "entry"},
		{"negative field", "/api/entry-field-answers", gin.H{"entry": uuid.NewString(), "field": -1, "value": "x"}, "field"},
		{"rate_your_day as text", "/api/entries", gin.H{"title": "Sunny", "rate_your_day": "great"}, "rate_your_day"},
		{"is_required as text", "/api/template-fields", gin.H{"template": tpl, "name": "Mood", "field_type": "text", "is_required": "yes"}, "is_required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := api.do(http.MethodPost, tc.path, alice, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.field, env.Field)
			assert.NotEmpty(t, env.Message)
		})
	}

	w, env := api.do(http.MethodPatch, "/api/templates/"+tpl, alice, gin.H{"created_by": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "created_by", env.Field)
}

func TestLoginRefreshLogout(t *testing.T) {
	api := setup(t)
	api.register("alice")

	w, env := api.do(http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Message)

	w, env = api.do(http.MethodPost, "/api/login", "", gin.H{"password": "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", env.Field)

	// 以 username 传入的邮箱不会按 email 查找
	w, _ = api.do(http.MethodPost, "/api/login", "", gin.H{"username": "alice@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := env.Data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, false, user["is_staff"])
	access := env.Data["access"].(string)
	refresh := env.Data["refresh"].(string)

	w, env = api.do(http.MethodPost, "/api/refresh", "", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := env.Data["refresh"].(string)
	assert.NotEqual(t, refresh, rotated)

	// 轮换后旧 refresh token 已失效
	w, _ = api.do(http.MethodPost, "/api/refresh", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// access token 不能当 refresh token 用
	w, _ = api.do(http.MethodPost, "/api/refresh", "", gin.H{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodPost, "/api/logout", access, gin.H{"refresh": rotated})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = api.do(http.MethodPost, "/api/refresh", "", gin.H{"refresh": rotated})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAndUsers(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")

	w, env := api.do(http.MethodGet, "/api/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", env.Data["user"].(map[string]any)["username"])

	w, env = api.do(http.MethodPatch, "/api/profile", alice, gin.H{"display_name": "Alice A."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alice A.", env.Data["user"].(map[string]any)["display_name"])

	w, env = api.do(http.MethodPost, "/api/profile/password", alice, gin.H{"old_password": "nope-nope", "new_password": "another-horse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "old_password", env.Field)

	w, _ = api.do(http.MethodGet, "/api/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodDelete, "/api/profile", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, env.Data["delete_permanently_at"])

	w, _ = api.do(http.MethodGet, "/api/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExport(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")
	w, _ := api.do(http.MethodPost, "/api/entries", alice, gin.H{"title": "Sunny", "quote_of_the_day": "carpe diem"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = api.do(http.MethodGet, "/api/export/csv", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, w.Body.String(), "Sunny")
	assert.Contains(t, w.Body.String(), "carpe diem")

	w, _ = api.do(http.MethodGet, "/api/export/xlsx", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue("Journal", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Sunny", title)

	w, _ = api.do(http.MethodGet, "/api/export/csv", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditLogs(t *testing.T) {
	api := setup(t)
	alice, _ := api.register("alice")
	api.createTemplate(alice, "daily")

	w, env := api.do(http.MethodGet, "/api/logs?method=post", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, env.Data["total"])
	item := env.Data["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "/api/templates", item["path"])
	assert.Contains(t, item["action"], `"slug":"daily"`)

	w, env = api.do(http.MethodGet, "/api/logs?start=yesterday", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start", env.Field)
}

func TestAuditLogs_NoCredentials(t *testing.T) {
	api := setup(t)
	alice, refresh := api.register("alice")

	w, _ := api.do(http.MethodPost, "/api/profile/password", alice, gin.H{"old_password": "nope-nope", "new_password": "another-horse"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(http.MethodPost, "/api/profile/password", alice, gin.H{"old_password": "correct-horse", "new_password": "another-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := api.do(http.MethodPost, "/api/login", "", gin.H{"username": "alice", "password": "another-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access := env.Data["access"].(string)
	w, _ = api.do(http.MethodPost, "/api/logout", access, gin.H{"refresh": env.Data["refresh"]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// 修改密码时已撤销
	w, _ = api.do(http.MethodPost, "/api/logout", access, gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = api.do(http.MethodGet, "/api/logs", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 4, env.Data["total"])
	for _, it := range env.Data["items"].([]any) {
		action := it.(map[string]any)["action"].(string)
		for _, secret := range []string{"nope-nope", "correct-horse", "another-horse", refresh} {
			assert.NotContains(t, action, secret)
		}
	}
	assert.NotContains(t, w.Body.String(), "another-horse")
}
