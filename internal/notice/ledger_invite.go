package notice

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/store"

	"gorm.io/gorm"
)

// ErrLedgerNotFound 邀请指向的账本已不存在
// 典型场景：邀请还没被处理，账本先被删除了
var ErrLedgerNotFound = errors.New("ledger not found")

// LedgerInviteData 是 LEDGER_INVITE 通知的负载
type LedgerInviteData struct {
	LedgerID uint `json:"ledgerId"`
}

// LedgerInviteHandler 账本邀请
// 同意后把被邀请人写进账本成员表，拒绝则什么都不做
type LedgerInviteHandler struct {
	members store.MemberStore
	ledgers store.LedgerStore
}

func NewLedgerInviteHandler(members store.MemberStore, ledgers store.LedgerStore) *LedgerInviteHandler {
	return &LedgerInviteHandler{members: members, ledgers: ledgers}
}

func (h *LedgerInviteHandler) NoticeType() models.NoticeType {
	return models.NoticeLedgerInvite
}

// AgreeCall 对同一通知可重试：成员行写入是幂等的，已存在时视为成功
func (h *LedgerInviteHandler) AgreeCall(tx *gorm.DB, n *models.Notice) error {
	var data LedgerInviteData
	if err := json.Unmarshal([]byte(n.NoticeData), &data); err != nil {
		return fmt.Errorf("parse ledger invite data: %w", err)
	}
	if data.LedgerID == 0 {
		return fmt.Errorf("ledger invite notice %d has no ledgerId", n.ID)
	}
	// 在同一事务里确认账本仍然存在，避免给已删除的账本写成员行
	ledger, err := h.ledgers.WithTx(tx).GetByID(data.LedgerID)
	if err != nil {
		return err
	}
	if ledger == nil {
		return fmt.Errorf("%w: %d", ErrLedgerNotFound, data.LedgerID)
	}
	return h.members.WithTx(tx).Save(data.LedgerID, n.HandlerID)
}

func (h *LedgerInviteHandler) DisagreeCall(tx *gorm.DB, n *models.Notice) error {
	// none
	return nil
}
