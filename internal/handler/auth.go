package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责注册/登录/刷新/登出
type AuthHandler struct {
	Svc        *service.Service
	Store      *store.Store
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewAuthHandler 构造函数，ttl 非正数时使用默认值
func NewAuthHandler(svc *service.Service, st *store.Store, secret, issuer string, accessMinutes, refreshHours int) *AuthHandler {
	if accessMinutes <= 0 {
		accessMinutes = 60
	}
	if refreshHours <= 0 {
		refreshHours = 24 * 7
	}
	return &AuthHandler{
		Svc:        svc,
		Store:      st,
		Secret:     secret,
		Issuer:     issuer,
		AccessTTL:  time.Duration(accessMinutes) * time.Minute,
		RefreshTTL: time.Duration(refreshHours) * time.Hour,
	}
}

// issueTokens 签发 access/refresh，并把 refresh 的 jti 记为会话
func (h *AuthHandler) issueTokens(ctx context.Context, st *store.Store, u *models.User) (util.Response, error) {
	access, _, err := util.GenerateToken(h.Secret, h.Issuer, u.ID, util.AccessToken, h.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := util.GenerateToken(h.Secret, h.Issuer, u.ID, util.RefreshToken, h.RefreshTTL)
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		ID:        claims.ID,
		UserID:    u.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := st.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return util.Response{"access": access, "refresh": refresh}, nil
}

// authFail 登录类错误返回具体原因，而不是通用的 401 文案
func authFail(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrUnauthorized) {
		msg := strings.TrimPrefix(err.Error(), errs.ErrUnauthorized.Error()+": ")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, msg)
		return
	}
	util.Fail(c, err)
}

// ---------- 注册 ----------

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		util.Fail(c, err)
		return
	}
	data, err := h.issueTokens(c.Request.Context(), h.Store, u)
	if err != nil {
		util.Fail(c, err)
		return
	}
	data["user"] = toUserResp(u)
	util.Created(c, data)
}

// ---------- 登录 ----------

// loginReq 只按传入的字段查找用户：email 优先，其次 username
type loginReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	u, err := h.Svc.Authenticate(c.Request.Context(), service.Credentials{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}, c.ClientIP())
	if err != nil {
		authFail(c, err)
		return
	}
	data, err := h.issueTokens(c.Request.Context(), h.Store, u)
	if err != nil {
		util.Fail(c, err)
		return
	}
	data["user"] = gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
		"is_staff": u.IsStaff,
	}
	util.Success(c, data)
}

// ---------- 刷新 / 登出 ----------

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh 轮换 refresh token：撤销旧会话并签发新的一对
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	invalid := func() {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Token is invalid or expired")
	}

	claims, err := util.ParseToken(h.Secret, req.Refresh, util.RefreshToken)
	if err != nil {
		invalid()
		return
	}
	sess, err := h.Store.GetSession(ctx, claims.ID)
	if errors.Is(err, errs.ErrNotFound) {
		invalid()
		return
	}
	if err != nil {
		util.Fail(c, err)
		return
	}
	if sess.Revoked || !time.Now().Before(sess.ExpiresAt) || sess.UserID != claims.UserID {
		invalid()
		return
	}
	u, err := h.Store.GetUser(ctx, claims.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		invalid()
		return
	}
	if err != nil {
		util.Fail(c, err)
		return
	}
	if u.DeletedAt != nil {
		invalid()
		return
	}

	// 撤销旧 token 与签发新 token 在同一事务内，已被撤销则视为无效
	var data util.Response
	err = h.Store.Transaction(ctx, func(tx *store.Store) error {
		ok, err := tx.RevokeSession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrUnauthorized
		}
		data, err = h.issueTokens(ctx, tx, u)
		return err
	})
	if errors.Is(err, errs.ErrUnauthorized) {
		invalid()
		return
	}
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, data)
}

// Logout 撤销指定的 refresh token，只能撤销自己的
func (h *AuthHandler) Logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		util.Fail(c, errs.ErrUnauthorized)
		return
	}
	var req refreshReq
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	claims, err := util.ParseToken(h.Secret, req.Refresh, util.RefreshToken)
	if err != nil || claims.UserID != user.ID {
		util.FieldError(c, http.StatusBadRequest, util.CodeInvalidParam, "refresh", "Token is invalid or expired")
		return
	}
	// 重复登出同一 token 仍返回成功
	if _, err := h.Store.RevokeSession(c.Request.Context(), claims.ID); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "logged out"})
}
