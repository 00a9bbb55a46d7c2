package models

import "time"

// NoticeType 通知类型，决定由哪个 handler 处理
type NoticeType string

const (
	// NoticeLedgerInvite 账本邀请
	NoticeLedgerInvite NoticeType = "LEDGER_INVITE"
)

// Notice 状态：pending -> agreed / disagreed，终态后不再变更
const (
	NoticePending   = "pending"
	NoticeAgreed    = "agreed"
	NoticeDisagreed = "disagreed"
)

// Notice 是一条等待用户决定的通知
type Notice struct {
	ID          uint       `gorm:"primaryKey"`
	NoticeType  NoticeType `gorm:"size:32;index;not null"`
	InitiatorID uint       `gorm:"index;not null"`          // 发起人
	HandlerID   uint       `gorm:"index;not null"`          // 需要处理该通知的用户
	NoticeData  string     `gorm:"size:1024"`               // 类型相关负载（JSON）
	Status      string     `gorm:"size:16;index;not null"`  // pending / agreed / disagreed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
