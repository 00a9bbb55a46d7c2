package store

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberStore 账本成员关系的存储接口
type MemberStore interface {
	// Save 幂等写入成员行，(ledger_id, member_id) 已存在时视为成功
	Save(ledgerID, memberID uint) error
	RemoveByLedgerID(ledgerID uint) error
	GetMemberIDsByLedgerID(ledgerID uint) ([]uint, error)
	IsMember(ledgerID, memberID uint) (bool, error)
	MyLedgerIDs(userID uint) ([]uint, error)
	// UpdateLedgerMembers 按差集增删成员行，使其与 newMemberIDs 一致
	UpdateLedgerMembers(ledgerID uint, newMemberIDs []uint) error
	WithTx(tx *gorm.DB) MemberStore
}

type memberStore struct {
	db *gorm.DB
}

func NewMemberStore(db *gorm.DB) MemberStore {
	return &memberStore{db: db}
}

func (s *memberStore) WithTx(tx *gorm.DB) MemberStore {
	return &memberStore{db: tx}
}

// Save 依赖 (ledger_id, member_id) 唯一索引，冲突时 DO NOTHING
// 同一通知被并发重复处理时最多只会留下一行
func (s *memberStore) Save(ledgerID, memberID uint) error {
	m := models.LedgerMember{LedgerID: ledgerID, MemberID: memberID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error; err != nil {
		return fmt.Errorf("save ledger member (%d, %d): %w", ledgerID, memberID, err)
	}
	return nil
}

func (s *memberStore) RemoveByLedgerID(ledgerID uint) error {
	if err := s.db.Where("ledger_id = ?", ledgerID).
		Delete(&models.LedgerMember{}).Error; err != nil {
		return fmt.Errorf("remove members of ledger %d: %w", ledgerID, err)
	}
	return nil
}

func (s *memberStore) GetMemberIDsByLedgerID(ledgerID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.LedgerMember{}).
		Where("ledger_id = ?", ledgerID).
		Order("id ASC").
		Pluck("member_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("member ids of ledger %d: %w", ledgerID, err)
	}
	return ids, nil
}

func (s *memberStore) IsMember(ledgerID, memberID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.LedgerMember{}).
		Where("ledger_id = ? AND member_id = ?", ledgerID, memberID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check member (%d, %d): %w", ledgerID, memberID, err)
	}
	return count > 0, nil
}

func (s *memberStore) MyLedgerIDs(userID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.LedgerMember{}).
		Where("member_id = ?", userID).
		Pluck("ledger_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("ledger ids of user %d: %w", userID, err)
	}
	return ids, nil
}

func (s *memberStore) UpdateLedgerMembers(ledgerID uint, newMemberIDs []uint) error {
	current, err := s.GetMemberIDsByLedgerID(ledgerID)
	if err != nil {
		return err
	}

	want := make(map[uint]bool, len(newMemberIDs))
	for _, id := range newMemberIDs {
		want[id] = true
	}
	have := make(map[uint]bool, len(current))
	for _, id := range current {
		have[id] = true
	}

	// 新增
	for _, id := range newMemberIDs {
		if !have[id] {
			if err := s.Save(ledgerID, id); err != nil {
				return err
			}
		}
	}

	// 删除
	var toRemove []uint
	for _, id := range current {
		if !want[id] {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) > 0 {
		if err := s.db.Where("ledger_id = ? AND member_id IN ?", ledgerID, toRemove).
			Delete(&models.LedgerMember{}).Error; err != nil {
			return fmt.Errorf("remove members of ledger %d: %w", ledgerID, err)
		}
	}
	return nil
}
