package handler

import (
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LogHandler 负责操作日志查询接口
type LogHandler struct {
	Store      *store.Store
	EncryptKey string
	PageSize   int
}

func NewLogHandler(st *store.Store, encryptKey string, pageSize int) *LogHandler {
	return &LogHandler{Store: st, EncryptKey: encryptKey, PageSize: pageSize}
}

// decryptField 解密失败（如更换了密钥）时原样返回
func (h *LogHandler) decryptField(cipherStr string) string {
	plain, err := util.DecryptString(h.EncryptKey, cipherStr)
	if err != nil {
		return cipherStr
	}
	return plain
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// parseDay 解析 YYYY-MM-DD 格式的查询参数
func parseDay(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, errs.Invalid(name, "Date has wrong format. Use YYYY-MM-DD.")
	}
	return &t, nil
}

// ListLogs 列出当前用户的操作日志（分页 + 日期 + 请求方法）
func (h *LogHandler) ListLogs(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		util.Fail(c, errs.ErrUnauthorized)
		return
	}
	start, err := parseDay(c, "start")
	if err != nil {
		util.Fail(c, err)
		return
	}
	end, err := parseDay(c, "end")
	if err != nil {
		util.Fail(c, err)
		return
	}
	if end != nil {
		// end 当天也包含在内
		next := end.Add(24 * time.Hour)
		end = &next
	}

	page := pageParams(c, h.PageSize)
	logs, total, err := h.Store.ListAuditLogs(c.Request.Context(), store.AuditFilter{
		UserID: user.ID,
		Start:  start,
		End:    end,
		Method: strings.ToUpper(strings.TrimSpace(c.Query("method"))),
		Page:   page,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}

	items := make([]logResp, 0, len(logs))
	for _, l := range logs {
		items = append(items, logResp{
			ID:        l.ID,
			Action:    h.decryptField(l.ActionEnc),
			Path:      h.decryptField(l.PathEnc),
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}
	listResponse(c, items, total, page)
}
