package models

import "time"

// Entry 表示账本里的一笔账目
// 金额用分存储，避免浮点误差，比如 12.34 元 = 1234 分
type Entry struct {
	ID         uint      `gorm:"primaryKey"`
	LedgerID   uint      `gorm:"index;not null"`
	UserID     uint      `gorm:"index;not null"` // 记账人
	Type       string    `gorm:"size:16;not null"`
	Category   string    `gorm:"size:32;not null"`
	AmountCent int64     `gorm:"not null"` // 金额（分）
	Note       string    `gorm:"size:255"`
	OccurredAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
