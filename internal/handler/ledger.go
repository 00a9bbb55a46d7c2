package handler

import (
	"net/http"
	"strconv"

	"github.com/ztrve/lover-ledger/internal/service"
	"github.com/ztrve/lover-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// LedgerHandler 账本相关接口，业务都在 service.LedgerService 里
type LedgerHandler struct {
	Ledgers *service.LedgerService
}

func NewLedgerHandler(ledgers *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{Ledgers: ledgers}
}

// ---------- 请求结构 ----------

type createLedgerReq struct {
	Name      string `json:"name" binding:"required,max=64"`
	MemberIDs []uint `json:"member_ids"`
}

type updateLedgerReq struct {
	Name      string `json:"name" binding:"max=64"`
	LeaderID  uint   `json:"leader_id"`
	MemberIDs []uint `json:"member_ids"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return 0, false
	}
	return uint(id), true
}

// MyLedgers 我加入的所有账本
func (h *LedgerHandler) MyLedgers(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	ledgers, err := h.Ledgers.MyLedgers(user)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"ledgers": ledgers,
	})
}

// GetDetail 账本详情（owner/leader/成员都带用户信息）
func (h *LedgerHandler) GetDetail(c *gin.Context) {
	if _, ok := mustCurrentUser(c); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.Ledgers.GetDetailByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	if detail == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "账本不存在")
		return
	}

	util.Success(c, util.Response{
		"ledger": detail,
	})
}

// Create 创建账本，除创建人以外的候选成员收到邀请通知
func (h *LedgerHandler) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req createLedgerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	if err := util.ValidateLedgerName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "账本名称不合法")
		return
	}

	detail, err := h.Ledgers.CreateLedger(user, service.CreateLedgerInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"ledger": detail,
	})
}

// Update 修改账本配置和成员
func (h *LedgerHandler) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateLedgerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	detail, err := h.Ledgers.UpdateLedger(user, service.UpdateLedgerInput{
		ID:        id,
		Name:      req.Name,
		LeaderID:  req.LeaderID,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"ledger": detail,
	})
}

// Remove 删除账本，返回删除前的快照
func (h *LedgerHandler) Remove(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	snapshot, err := h.Ledgers.RemoveLedger(user, id)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"ledger": snapshot,
	})
}
