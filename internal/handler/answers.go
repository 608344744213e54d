package handler

import (
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	Svc      *service.Service
	PageSize int
}

func NewAnswerHandler(svc *service.Service, pageSize int) *AnswerHandler {
	return &AnswerHandler{Svc: svc, PageSize: pageSize}
}

// ListAnswers 支持 ?entry= 和 ?field= 过滤
func (h *AnswerHandler) ListAnswers(c *gin.Context) {
	entryID, err := uuidQuery(c, "entry")
	if err != nil {
		util.Fail(c, err)
		return
	}
	fieldID, err := uintQuery(c, "field")
	if err != nil {
		util.Fail(c, err)
		return
	}
	page := pageParams(c, h.PageSize)
	items, total, err := h.Svc.ListAnswers(c.Request.Context(), currentUser(c), store.AnswerFilter{
		EntryID: entryID,
		FieldID: fieldID,
		Page:    page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	listResponse(c, mapSlice(items, toAnswerResp), total, page)
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var in service.AnswerInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	a, err := h.Svc.CreateAnswer(c.Request.Context(), currentUser(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Created(c, util.Response{"entry_field_answer": toAnswerResp(a)})
}

func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.Svc.GetAnswer(c.Request.Context(), currentUser(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry_field_answer": toAnswerResp(a)})
}

func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var in service.AnswerInput
	if err := util.BindJSON(c, &in); err != nil {
		util.Fail(c, err)
		return
	}
	a, err := h.Svc.UpdateAnswer(c.Request.Context(), currentUser(c), id, in, partial(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry_field_answer": toAnswerResp(a)})
}

func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteAnswer(c.Request.Context(), currentUser(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.NoContent(c)
}
