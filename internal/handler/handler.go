package handler

import (
	"errors"
	"net/http"

	"github.com/ztrve/lover-ledger/internal/middleware"
	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/service"
	"github.com/ztrve/lover-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// mustCurrentUser 取当前用户，没有则直接写 401 并返回 false
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	return user, true
}

// fail 把 service 层错误翻译成统一返回
func fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "资源不存在")
	case errors.Is(err, notice.ErrLedgerNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "账本不存在或已删除")
	case errors.Is(err, service.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "无权限操作")
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, ve.Message)
	case errors.Is(err, notice.ErrUnknownNoticeType):
		// 配置缺陷，向外只暴露内部错误
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "通知类型未注册")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "操作失败，请重试")
	}
}
