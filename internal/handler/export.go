package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Title", "Template", "Created", "Quote of the day", "Rate your day", "Answers"}

type ExportHandler struct {
	Svc *service.Service
}

func NewExportHandler(svc *service.Service) *ExportHandler {
	return &ExportHandler{Svc: svc}
}

// exportRows 按时间倒序取出当前用户的全部日记，展开成表格行
func (h *ExportHandler) exportRows(ctx context.Context, p *models.User) ([][]string, error) {
	entries, _, err := h.Svc.ListEntries(ctx, p, store.EntryFilter{Ordering: "-created_at"})
	if err != nil {
		return nil, err
	}
	templates, _, err := h.Svc.ListTemplates(ctx, p, store.TemplateFilter{})
	if err != nil {
		return nil, err
	}
	fields, _, err := h.Svc.ListFields(ctx, p, store.FieldFilter{})
	if err != nil {
		return nil, err
	}
	answers, err := h.Svc.EntryAnswers(ctx, p, entries)
	if err != nil {
		return nil, err
	}

	tplTitle := make(map[uuid.UUID]string, len(templates))
	for _, t := range templates {
		tplTitle[t.ID] = t.Title
	}
	fieldName := make(map[uint]string, len(fields))
	for _, f := range fields {
		fieldName[f.ID] = f.Name
	}

	rows := make([][]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		var tpl, quote, rate string
		if e.TemplateID != nil {
			tpl = tplTitle[*e.TemplateID]
		}
		if e.QuoteOfTheDay != nil {
			quote = *e.QuoteOfTheDay
		}
		if e.RateYourDay != nil {
			rate = strconv.Itoa(*e.RateYourDay)
		}
		parts := make([]string, 0, len(answers[e.ID]))
		for _, a := range answers[e.ID] {
			v := ""
			if a.Value != nil {
				v = *a.Value
			}
			parts = append(parts, fieldName[a.FieldID]+": "+v)
		}
		rows = append(rows, []string{
			e.DisplayTitle(),
			tpl,
			e.CreatedAt.Format("2006-01-02 15:04"),
			quote,
			rate,
			strings.Join(parts, "; "),
		})
	}
	return rows, nil
}

func attachment(c *gin.Context, contentType, ext string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"journal_%s.%s\"",
		time.Now().Format("20060102"), ext))
}

// ExportCSV 导出日记为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, err := h.exportRows(c.Request.Context(), currentUser(c))
	if err != nil {
		util.Fail(c, err)
		return
	}

	attachment(c, "text/csv; charset=utf-8", "csv")
	c.Status(http.StatusOK)

	// UTF-8 BOM（让 Excel 正确识别中文）
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

// ExportXLSX 导出日记为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, err := h.exportRows(c.Request.Context(), currentUser(c))
	if err != nil {
		util.Fail(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Journal"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		util.Fail(c, err)
		return
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		util.Fail(c, err)
		return
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			util.Fail(c, err)
			return
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 24)
	_ = f.SetColWidth(sheet, "C", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 60)

	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
