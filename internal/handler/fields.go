package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// FieldHandler 负责模板字段接口，字段 id 为自增整数
type FieldHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewFieldHandler(svc *service.Service, pageSize int) *FieldHandler {
	return &FieldHandler{Svc: svc, PageSize: pageSize}
}

func (h *FieldHandler) ListFields(c *gin.Context) {
	tplID, err := uuidQuery(c, "template")
	if err != nil {
		util.Fail(c, err)
		return
	}
	page := pageParams(c, h.PageSize)
	items, total, err := h.Svc.ListFields(c.Request.Context(), currentUser(c), store.FieldFilter{
		TemplateID: tplID,
		Page:       page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(items, toFieldResp), total, page)
}

func (h *FieldHandler) CreateField(c *gin.Context) {
	var in service.FieldInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	f, err := h.Svc.CreateField(c.Request.Context(), currentUser(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Created(c, util.Response{"template_field": toFieldResp(f)})
}

func (h *FieldHandler) GetField(c *gin.Context) {
	id, ok := parseUintID(c, "id")
	if !ok {
		return
	}
	f, err := h.Svc.GetField(c.Request.Context(), currentUser(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"template_field": toFieldResp(f)})
}

func (h *FieldHandler) UpdateField(c *gin.Context) {
	id, ok := parseUintID(c, "id")
	if !ok {
		return
	}
	var in service.FieldInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	f, err := h.Svc.UpdateField(c.Request.Context(), currentUser(c), id, in, partial(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"template_field": toFieldResp(f)})
}

func (h *FieldHandler) DeleteField(c *gin.Context) {
	id, ok := parseUintID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteField(c.Request.Context(), currentUser(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.NoContent(c)
}
