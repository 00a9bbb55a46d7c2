package notice

import (
	"errors"
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownNoticeType 表示通知类型没有注册对应的 handler
// 属于部署/配置错误，不重试
var ErrUnknownNoticeType = errors.New("unknown notice type")

// Decision 用户对通知的决定
type Decision string

const (
	DecisionAgree    Decision = "agree"
	DecisionDisagree Decision = "disagree"
)

// Handler 绑定到一种通知类型的处理逻辑
// AgreeCall / DisagreeCall 在调用方的事务内执行，成功后状态流转同事务提交
type Handler interface {
	NoticeType() models.NoticeType
	AgreeCall(tx *gorm.DB, n *models.Notice) error
	DisagreeCall(tx *gorm.DB, n *models.Notice) error
}

// Registry 通知类型到 handler 的映射，进程启动时构建一次
type Registry struct {
	handlers map[models.NoticeType]Handler
	notices  store.NoticeStore
	logger   *zap.Logger
}

func NewRegistry(notices store.NoticeStore, logger *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[models.NoticeType]Handler),
		notices:  notices,
		logger:   logger,
	}
}

// Register 注册 handler，同一类型注册两次属于启动配置错误
func (r *Registry) Register(h Handler) error {
	t := h.NoticeType()
	if _, ok := r.handlers[t]; ok {
		return fmt.Errorf("notice handler for %q registered twice", t)
	}
	r.handlers[t] = h
	return nil
}

// Dispatch 根据通知类型找到 handler，执行 agree/disagree 回调并持久化新状态
// 每次调用恰好发生一次状态流转
func (r *Registry) Dispatch(tx *gorm.DB, n *models.Notice, d Decision) error {
	h, ok := r.handlers[n.NoticeType]
	if !ok {
		r.logger.Error("no handler registered for notice type",
			zap.String("notice_type", string(n.NoticeType)),
			zap.Uint("notice_id", n.ID))
		return fmt.Errorf("%w: %s", ErrUnknownNoticeType, n.NoticeType)
	}

	status := models.NoticeDisagreed
	if d == DecisionAgree {
		status = models.NoticeAgreed
		if err := h.AgreeCall(tx, n); err != nil {
			return err
		}
	} else {
		if err := h.DisagreeCall(tx, n); err != nil {
			return err
		}
	}

	return r.notices.WithTx(tx).UpdateStatus(n.ID, status)
}
