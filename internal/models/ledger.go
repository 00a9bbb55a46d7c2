package models

import "time"

// Ledger 表示一个共享账本
// owner 是创建者（不可变更），leader 是掌门人（可移交，可与 owner 为同一人）
type Ledger struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null"`
	OwnerID   uint   `gorm:"index;not null"` // 拥有者
	LeaderID  uint   `gorm:"index;not null"` // 掌门人
	CreatedAt time.Time
	UpdatedAt time.Time
}
