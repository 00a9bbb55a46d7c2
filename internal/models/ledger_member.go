package models

import "time"

// LedgerMember 账本成员关系，(ledger_id, member_id) 唯一
// 该表的行是"是否为成员"的唯一事实来源
type LedgerMember struct {
	ID        uint `gorm:"primaryKey"`
	LedgerID  uint `gorm:"uniqueIndex:idx_ledger_member;not null"`
	MemberID  uint `gorm:"uniqueIndex:idx_ledger_member;not null"`
	CreatedAt time.Time
}
