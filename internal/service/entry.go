package service

import (
	"fmt"
	"time"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/store"

	"gorm.io/gorm"
)

// EntryInput 记一笔
type EntryInput struct {
	Type       string // income / expense
	Category   string
	AmountCent int64
	Note       string
	OccurredAt time.Time
}

// EntryFilter 账目查询条件
type EntryFilter struct {
	Type string // 为空表示不筛选
	Page int
	Size int
}

// CategorySummary 按类别汇总
type CategorySummary struct {
	Category    string `json:"category"`
	IncomeCent  int64  `json:"income_cent"`
	ExpenseCent int64  `json:"expense_cent"`
}

// LedgerSummary 账本收支汇总
type LedgerSummary struct {
	TotalIncomeCent  int64             `json:"total_income_cent"`
	TotalExpenseCent int64             `json:"total_expense_cent"`
	BalanceCent      int64             `json:"balance_cent"`
	ByCategory       []CategorySummary `json:"by_category"`
}

// EntryService 账本内账目的增删查，所有操作都要求调用者是账本成员
type EntryService struct {
	db      *gorm.DB
	ledgers store.LedgerStore
	members store.MemberStore
}

func NewEntryService(db *gorm.DB, ledgers store.LedgerStore, members store.MemberStore) *EntryService {
	return &EntryService{db: db, ledgers: ledgers, members: members}
}

// requireMember 账本不存在返回 ErrNotFound，非成员返回 ErrForbidden
func (s *EntryService) requireMember(ledgerID, userID uint) (*models.Ledger, error) {
	ledger, err := s.ledgers.GetByID(ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, ErrNotFound
	}
	ok, err := s.members.IsMember(ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return ledger, nil
}

func (s *EntryService) CreateEntry(me *models.User, ledgerID uint, input EntryInput) (*models.Entry, error) {
	if _, err := s.requireMember(ledgerID, me.ID); err != nil {
		return nil, err
	}

	entry := models.Entry{
		LedgerID:   ledgerID,
		UserID:     me.ID,
		Type:       input.Type,
		Category:   input.Category,
		AmountCent: input.AmountCent,
		Note:       input.Note,
		OccurredAt: input.OccurredAt,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}
	return &entry, nil
}

func (s *EntryService) ListEntries(me *models.User, ledgerID uint, f EntryFilter) ([]models.Entry, int64, error) {
	if _, err := s.requireMember(ledgerID, me.ID); err != nil {
		return nil, 0, err
	}

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 || f.Size > 100 {
		f.Size = 20
	}

	base := s.db.Model(&models.Entry{}).Where("ledger_id = ?", ledgerID)
	if f.Type == "income" || f.Type == "expense" {
		base = base.Where("type = ?", f.Type)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	var entries []models.Entry
	if err := base.Session(&gorm.Session{}).
		Order("occurred_at DESC, id DESC").
		Limit(f.Size).
		Offset((f.Page - 1) * f.Size).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	return entries, total, nil
}

// DeleteEntry 记账人本人、账本 owner 或 leader 可删
func (s *EntryService) DeleteEntry(me *models.User, ledgerID, entryID uint) error {
	ledger, err := s.requireMember(ledgerID, me.ID)
	if err != nil {
		return err
	}

	var entry models.Entry
	if err := s.db.Where("id = ? AND ledger_id = ?", entryID, ledgerID).
		First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("get entry %d: %w", entryID, err)
	}

	if entry.UserID != me.ID && me.ID != ledger.OwnerID && me.ID != ledger.LeaderID {
		return ErrForbidden
	}

	if err := s.db.Delete(&models.Entry{}, entry.ID).Error; err != nil {
		return fmt.Errorf("delete entry %d: %w", entryID, err)
	}
	return nil
}

// Summary 账本收支汇总（总收入/总支出/结余 + 按类别）
func (s *EntryService) Summary(me *models.User, ledgerID uint) (*LedgerSummary, error) {
	if _, err := s.requireMember(ledgerID, me.ID); err != nil {
		return nil, err
	}

	var entries []models.Entry
	if err := s.db.Where("ledger_id = ?", ledgerID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	summary := LedgerSummary{ByCategory: []CategorySummary{}}
	catMap := make(map[string]*CategorySummary)
	for i := range entries {
		e := &entries[i]
		cs, ok := catMap[e.Category]
		if !ok {
			cs = &CategorySummary{Category: e.Category}
			catMap[e.Category] = cs
		}
		if e.Type == "income" {
			summary.TotalIncomeCent += e.AmountCent
			cs.IncomeCent += e.AmountCent
		} else {
			summary.TotalExpenseCent += e.AmountCent
			cs.ExpenseCent += e.AmountCent
		}
	}
	summary.BalanceCent = summary.TotalIncomeCent - summary.TotalExpenseCent
	for _, cs := range catMap {
		summary.ByCategory = append(summary.ByCategory, *cs)
	}
	return &summary, nil
}

// EntriesForExport 导出账本全部账目（按发生时间升序）
func (s *EntryService) EntriesForExport(me *models.User, ledgerID uint) ([]models.Entry, error) {
	if _, err := s.requireMember(ledgerID, me.ID); err != nil {
		return nil, err
	}
	var entries []models.Entry
	if err := s.db.Where("ledger_id = ?", ledgerID).
		Order("occurred_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return entries, nil
}
