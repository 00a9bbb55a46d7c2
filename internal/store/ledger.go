package store

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"

	"gorm.io/gorm"
)

// LedgerStore 账本表的存储接口
type LedgerStore interface {
	Save(l *models.Ledger) error
	GetByID(id uint) (*models.Ledger, error)
	ListByIDs(ids []uint) ([]models.Ledger, error)
	UpdateByID(l *models.Ledger) error
	RemoveByID(id uint) error
	WithTx(tx *gorm.DB) LedgerStore
}

type ledgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) WithTx(tx *gorm.DB) LedgerStore {
	return &ledgerStore{db: tx}
}

func (s *ledgerStore) Save(l *models.Ledger) error {
	if err := s.db.Create(l).Error; err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// GetByID 查不到时返回 (nil, nil)，由上层决定是否算错误
func (s *ledgerStore) GetByID(id uint) (*models.Ledger, error) {
	var l models.Ledger
	if err := s.db.First(&l, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger %d: %w", id, err)
	}
	return &l, nil
}

func (s *ledgerStore) ListByIDs(ids []uint) ([]models.Ledger, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ledgers []models.Ledger
	if err := s.db.Where("id IN ?", ids).Find(&ledgers).Error; err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	return ledgers, nil
}

func (s *ledgerStore) UpdateByID(l *models.Ledger) error {
	if err := s.db.Model(&models.Ledger{ID: l.ID}).
		Updates(map[string]interface{}{
			"name":      l.Name,
			"leader_id": l.LeaderID,
		}).Error; err != nil {
		return fmt.Errorf("update ledger %d: %w", l.ID, err)
	}
	return nil
}

func (s *ledgerStore) RemoveByID(id uint) error {
	if err := s.db.Delete(&models.Ledger{}, id).Error; err != nil {
		return fmt.Errorf("remove ledger %d: %w", id, err)
	}
	return nil
}
