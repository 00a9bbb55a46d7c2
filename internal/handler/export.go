package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/ztrve/lover-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 账本数据导出
type ExportHandler struct {
	Entries *service.EntryService
}

func NewExportHandler(entries *service.EntryService) *ExportHandler {
	return &ExportHandler{Entries: entries}
}

// ExportCSV 把账本的全部账目导出为 CSV 文件
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	ledgerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.Entries.EntriesForExport(user, ledgerID)
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("ledger_%d_%s.csv", ledgerID, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	// UTF-8 BOM，避免 Excel 打开乱码
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	_ = w.Write([]string{"日期", "类型", "类别", "金额(元)", "备注", "记账人ID"})
	for i := range entries {
		e := &entries[i]
		_ = w.Write([]string{
			e.OccurredAt.Format("2006-01-02"),
			e.Type,
			e.Category,
			formatCentToYuan(e.AmountCent),
			e.Note,
			fmt.Sprintf("%d", e.UserID),
		})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
