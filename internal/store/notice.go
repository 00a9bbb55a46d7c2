package store

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"

	"gorm.io/gorm"
)

// NoticeStore 通知的存储接口，只追加创建 + 状态流转，不做物理删除
type NoticeStore interface {
	Save(n *models.Notice) error
	FindByID(id uint) (*models.Notice, error)
	UpdateStatus(id uint, status string) error
	ListPendingByHandler(userID uint) ([]models.Notice, error)
	WithTx(tx *gorm.DB) NoticeStore
}

type noticeStore struct {
	db *gorm.DB
}

func NewNoticeStore(db *gorm.DB) NoticeStore {
	return &noticeStore{db: db}
}

func (s *noticeStore) WithTx(tx *gorm.DB) NoticeStore {
	return &noticeStore{db: tx}
}

func (s *noticeStore) Save(n *models.Notice) error {
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("save notice: %w", err)
	}
	return nil
}

// FindByID 查不到时返回 (nil, nil)
func (s *noticeStore) FindByID(id uint) (*models.Notice, error) {
	var n models.Notice
	if err := s.db.First(&n, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("find notice %d: %w", id, err)
	}
	return &n, nil
}

func (s *noticeStore) UpdateStatus(id uint, status string) error {
	if err := s.db.Model(&models.Notice{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("update notice %d status: %w", id, err)
	}
	return nil
}

func (s *noticeStore) ListPendingByHandler(userID uint) ([]models.Notice, error) {
	var notices []models.Notice
	if err := s.db.Where("handler_id = ? AND status = ?", userID, models.NoticePending).
		Order("id DESC").
		Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("list pending notices of user %d: %w", userID, err)
	}
	return notices, nil
}
