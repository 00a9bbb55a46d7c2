package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/service"
	"github.com/ztrve/lover-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// EntryHandler 负责账本内的账目接口
type EntryHandler struct {
	Entries *service.EntryService
}

func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{Entries: entries}
}

// ---------- 请求/响应结构 ----------

type createEntryReq struct {
	Type       string `json:"type" binding:"required,oneof=income expense"`
	Category   string `json:"category" binding:"required,max=32"`
	AmountYuan string `json:"amount" binding:"required"`
	Note       string `json:"note" binding:"max=255"`
	OccurredAt string `json:"occurred_at"`
}

type entryResp struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	AmountCent int64     `json:"amount_cent"` // 分
	AmountYuan string    `json:"amount"`      // 元（字符串，方便前端直接显示）
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ---------- 工具函数 ----------

// convertYuanToCent 将字符串金额（元）转换为分，简单处理两位小数
func convertYuanToCent(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f*100 + 0.5), nil
}

// formatCentToYuan 把分转成元的字符串，两位小数
func formatCentToYuan(amountCent int64) string {
	return strconv.FormatFloat(float64(amountCent)/100.0, 'f', 2, 64)
}

// parseOccurredAt 解析交易时间，默认为现在
func parseOccurredAt(s string) time.Time {
	occurredAt := time.Now()
	if s == "" {
		return occurredAt
	}
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+08:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			occurredAt = t
			break
		}
	}
	return occurredAt
}

func toEntryResp(e *models.Entry) entryResp {
	return entryResp{
		ID:         e.ID,
		UserID:     e.UserID,
		Type:       e.Type,
		Category:   e.Category,
		AmountCent: e.AmountCent,
		AmountYuan: formatCentToYuan(e.AmountCent),
		Note:       e.Note,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

// ---------- 记一笔 ----------

func (h *EntryHandler) CreateEntry(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	ledgerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请选择类别")
		return
	}

	// 金额校验：>0，格式正确
	amountCent, err := convertYuanToCent(req.AmountYuan)
	if err != nil || util.ValidateAmount(amountCent) != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}

	// 交易日期不能晚于今天
	occurredAt := parseOccurredAt(req.OccurredAt)
	if occurredAt.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "交易日期不能晚于今天")
		return
	}

	entry, err := h.Entries.CreateEntry(user, ledgerID, service.EntryInput{
		Type:       req.Type,
		Category:   req.Category,
		AmountCent: amountCent,
		Note:       req.Note,
		OccurredAt: occurredAt,
	})
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"entry": toEntryResp(entry),
	})
}

// ListEntries 查询账本账目，支持分页和类型筛选
func (h *EntryHandler) ListEntries(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	ledgerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, err := h.Entries.ListEntries(user, ledgerID, service.EntryFilter{
		Type: c.Query("type"),
		Page: page,
		Size: size,
	})
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]entryResp, 0, len(entries))
	for i := range entries {
		items = append(items, toEntryResp(&entries[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
	})
}

// DeleteEntry 删除一条账目
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	ledgerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entryId")
	if !ok {
		return
	}

	if err := h.Entries.DeleteEntry(user, ledgerID, entryID); err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "删除成功",
	})
}

// GetSummary 账本收支汇总
func (h *EntryHandler) GetSummary(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	ledgerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.Entries.Summary(user, ledgerID)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"total_income":  formatCentToYuan(summary.TotalIncomeCent),
		"total_expense": formatCentToYuan(summary.TotalExpenseCent),
		"balance":       formatCentToYuan(summary.BalanceCent),
		"summary":       summary,
	})
}
