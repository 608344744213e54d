package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewCategoryHandler(svc *service.Service, pageSize int) *CategoryHandler {
	return &CategoryHandler{Svc: svc, PageSize: pageSize}
}

// ListCategories ?template= 只返回该模板字段用到的分类
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	tplID, err := uuidQuery(c, "template")
	if err != nil {
		util.Fail(c, err)
		return
	}
	page := pageParams(c, h.PageSize)
	items, total, err := h.Svc.ListCategories(c.Request.Context(), currentUser(c), store.CategoryFilter{
		TemplateID: tplID,
		Ordering:   c.Query("ordering"),
		Page:       page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(items, toCategoryResp), total, page)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), currentUser(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Created(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	cat, err := h.Svc.GetCategory(c.Request.Context(), currentUser(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var in service.CategoryInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), currentUser(c), id, in, partial(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteCategory(c.Request.Context(), currentUser(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.NoContent(c)
}
