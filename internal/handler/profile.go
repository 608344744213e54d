package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 当前用户资料、改密和注销
type ProfileHandler struct {
	Svc *service.Service
}

func NewProfileHandler(svc *service.Service) *ProfileHandler {
	return &ProfileHandler{Svc: svc}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		util.Fail(c, errs.ErrUnauthorized)
		return
	}
	util.Success(c, util.Response{"user": toUserResp(user)})
}

// UpdateProfile 修改用户名、邮箱或昵称，未传的字段保持不变
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"user": toUserResp(u)})
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改密码后所有 refresh token 失效
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := util.BindJSON(c, &req); err != nil {
		util.Fail(c, err)
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), currentUser(c), req.OldPassword, req.NewPassword); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "password changed, please sign in again",
	})
}

// DeleteAccount 注销当前账号（7 天缓冲期内重新登录可恢复）
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	purgeAt, err := h.Svc.DeleteAccount(c.Request.Context(), currentUser(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"message":               "account scheduled for deletion",
		"delete_permanently_at": purgeAt,
		"tip":                   "sign in again within 7 days to restore the account",
	})
}
