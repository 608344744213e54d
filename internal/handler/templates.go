package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TemplateHandler 负责日记模板接口
type TemplateHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewTemplateHandler(svc *service.Service, pageSize int) *TemplateHandler {
	return &TemplateHandler{Svc: svc, PageSize: pageSize}
}

// ListTemplates 支持 title / username / search 过滤和 ordering 排序
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	page := pageParams(c, h.PageSize)
	items, total, err := h.Svc.ListTemplates(c.Request.Context(), currentUser(c), store.TemplateFilter{
		Title:    c.Query("title"),
		Username: c.Query("username"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Page:     page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(items, toTemplateResp), total, page)
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var in service.TemplateInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	t, err := h.Svc.CreateTemplate(c.Request.Context(), currentUser(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Created(c, util.Response{"template": toTemplateResp(t)})
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.Svc.GetTemplate(c.Request.Context(), currentUser(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"template": toTemplateResp(t)})
}

// UpdateTemplate 同时处理 PUT 和 PATCH
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var in service.TemplateInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	t, err := h.Svc.UpdateTemplate(c.Request.Context(), currentUser(c), id, in, partial(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"template": toTemplateResp(t)})
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteTemplate(c.Request.Context(), currentUser(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.NoContent(c)
}
