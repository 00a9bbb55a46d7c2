package handler

import (
	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/service"
	"github.com/ztrve/lover-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// NoticeHandler 通知相关接口
type NoticeHandler struct {
	Notices *service.NoticeService
}

func NewNoticeHandler(notices *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{Notices: notices}
}

// MyNotices 当前用户待处理的通知列表
func (h *NoticeHandler) MyNotices(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	notices, err := h.Notices.MyNotices(user)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"notices": notices,
	})
}

// Agree 同意通知
func (h *NoticeHandler) Agree(c *gin.Context) {
	h.resolve(c, notice.DecisionAgree)
}

// Disagree 拒绝通知
func (h *NoticeHandler) Disagree(c *gin.Context) {
	h.resolve(c, notice.DecisionDisagree)
}

func (h *NoticeHandler) resolve(c *gin.Context, d notice.Decision) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resolved, err := h.Notices.Resolve(user, id, d)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"notice": resolved,
	})
}
