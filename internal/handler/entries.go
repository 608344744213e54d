package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EntryHandler 负责日记条目接口
type EntryHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewEntryHandler(svc *service.Service, pageSize int) *EntryHandler {
	return &EntryHandler{Svc: svc, PageSize: pageSize}
}

// ---------- 列表 ----------

func (h *EntryHandler) ListEntries(c *gin.Context) {
	tplID, err := uuidQuery(c, "template")
	if err != nil {
		util.Fail(c, err)
		return
	}
	page := pageParams(c, h.PageSize)
	items, total, err := h.Svc.ListEntries(c.Request.Context(), currentUser(c), store.EntryFilter{
		TemplateID: tplID,
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Page:       page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(items, toEntryResp), total, page)
}

// ---------- 写一篇 ----------

func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var in service.EntryInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	e, err := h.Svc.CreateEntry(c.Request.Context(), currentUser(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Created(c, util.Response{"entry": toEntryResp(e)})
}

func (h *EntryHandler) GetEntry(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	e, err := h.Svc.GetEntry(c.Request.Context(), currentUser(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(e)})
}

// UpdateEntry 条目没有必填字段，PUT 与 PATCH 行为一致
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var in service.EntryInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	e, err := h.Svc.UpdateEntry(c.Request.Context(), currentUser(c), id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(e)})
}

func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteEntry(c.Request.Context(), currentUser(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.NoContent(c)
}
