package handler

import (
	"net/http"
	"strconv"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/middleware"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPageSize = 100

// currentUser 可能为 nil，由 service 层返回 401
func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// parseUUID 读取路径中的 uuid，格式错误的 id 不可能命中记录，按 404 处理
func parseUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found.")
		return uuid.Nil, false
	}
	return id, true
}

func parseUintID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found.")
		return 0, false
	}
	return uint(id), true
}

// pageParams 读取 page / page_size，缺省用 def，上限 maxPageSize
func pageParams(c *gin.Context, def int) store.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.Query("page_size"))
	if size <= 0 {
		size = def
	}
	if size <= 0 || size > maxPageSize {
		size = maxPageSize
	}
	return store.Page{Number: page, Size: size}
}

// uuidQuery 解析可选的 uuid 过滤参数
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.Invalid(name, "%q is not a valid UUID.", raw)
	}
	return &id, nil
}

func uintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errs.Invalid(name, "A valid integer is required.")
	}
	v := uint(n)
	return &v, nil
}

func listResponse(c *gin.Context, items any, total int64, page store.Page) {
	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page.Number,
		"size":  page.Size,
	})
}

// partial 为 true 表示 PATCH；PUT 需要提供全部必填字段
func partial(c *gin.Context) bool {
	return c.Request.Method == http.MethodPatch
}
