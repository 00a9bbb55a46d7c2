package service

import (
	"encoding/json"
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/store"

	"gorm.io/gorm"
)

// NoticeView 通知展示
type NoticeView struct {
	ID          uint              `json:"id"`
	NoticeType  models.NoticeType `json:"notice_type"`
	InitiatorID uint              `json:"initiator_id"`
	NoticeData  json.RawMessage   `json:"notice_data"`
	Status      string            `json:"status"`
	CreatedAt   string            `json:"created_at"`
}

func toNoticeView(n *models.Notice) NoticeView {
	return NoticeView{
		ID:          n.ID,
		NoticeType:  n.NoticeType,
		InitiatorID: n.InitiatorID,
		NoticeData:  json.RawMessage(n.NoticeData),
		Status:      n.Status,
		CreatedAt:   n.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// NoticeService 负责通知的批量创建和 agree/disagree 的分发
type NoticeService struct {
	db       *gorm.DB
	notices  store.NoticeStore
	registry *notice.Registry
}

func NewNoticeService(db *gorm.DB, notices store.NoticeStore, registry *notice.Registry) *NoticeService {
	return &NoticeService{db: db, notices: notices, registry: registry}
}

// CreateLedgerInvites 为每个候选成员各创建一条 LEDGER_INVITE 通知
// 在调用方（创建账本）的事务内执行
func (s *NoticeService) CreateLedgerInvites(tx *gorm.DB, ledger *models.Ledger,
	initiator *models.User, memberIDs []uint) error {
	data, err := json.Marshal(notice.LedgerInviteData{LedgerID: ledger.ID})
	if err != nil {
		return fmt.Errorf("marshal ledger invite data: %w", err)
	}

	notices := s.notices.WithTx(tx)
	for _, id := range memberIDs {
		n := models.Notice{
			NoticeType:  models.NoticeLedgerInvite,
			InitiatorID: initiator.ID,
			HandlerID:   id,
			NoticeData:  string(data),
			Status:      models.NoticePending,
		}
		if err := notices.Save(&n); err != nil {
			return err
		}
	}
	return nil
}

// MyNotices 当前用户待处理的通知
func (s *NoticeService) MyNotices(me *models.User) ([]NoticeView, error) {
	list, err := s.notices.ListPendingByHandler(me.ID)
	if err != nil {
		return nil, err
	}
	views := make([]NoticeView, 0, len(list))
	for i := range list {
		views = append(views, toNoticeView(&list[i]))
	}
	return views, nil
}

// Resolve 处理通知：只有通知的目标用户可以处理，pending 才能处理，
// 回调和状态流转在同一事务内提交
func (s *NoticeService) Resolve(me *models.User, noticeID uint, d notice.Decision) (*NoticeView, error) {
	var resolved *models.Notice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.notices.WithTx(tx).FindByID(noticeID)
		if err != nil {
			return err
		}
		if n == nil {
			return ErrNotFound
		}
		if n.HandlerID != me.ID {
			return ErrForbidden
		}
		if n.Status != models.NoticePending {
			return validationErr("通知已处理，不能重复操作")
		}

		if err := s.registry.Dispatch(tx, n, d); err != nil {
			return err
		}

		if d == notice.DecisionAgree {
			n.Status = models.NoticeAgreed
		} else {
			n.Status = models.NoticeDisagreed
		}
		resolved = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := toNoticeView(resolved)
	return &v, nil
}
