package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		util.Fail(c, errs.ErrUnauthorized)
		return
	}
	util.Success(c, util.Response{"user": toUserResp(user)})
}

type UserHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewUserHandler(svc *service.Service, pageSize int) *UserHandler {
	return &UserHandler{Svc: svc, PageSize: pageSize}
}

// ListUsers 仅 staff 可用
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageParams(c, h.PageSize)
	users, total, err := h.Svc.ListUsers(c.Request.Context(), currentUser(c), store.UserFilter{
		Username: c.Query("username"),
		Email:    c.Query("email"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Page:     page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(users, toUserResp), total, page)
}
