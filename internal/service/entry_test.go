package service

import (
	"testing"
	"time"

	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/store"

	"gorm.io/gorm"
)

func newEntryService(db *gorm.DB) *EntryService {
	return NewEntryService(db, store.NewLedgerStore(db), store.NewMemberStore(db))
}

func TestEntry_MembersOnly(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, _ := newServices(t, db)
	entrySvc := newEntryService(db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{Name: "测试"})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}

	input := EntryInput{
		Type:       "expense",
		Category:   "餐饮",
		AmountCent: 1234,
		OccurredAt: time.Now(),
	}

	// 非成员不能记账
	if _, err := entrySvc.CreateEntry(u2, detail.ID, input); err != ErrForbidden {
		t.Errorf("非成员记账应返回 ErrForbidden, got %v", err)
	}

	// 不存在的账本
	if _, err := entrySvc.CreateEntry(u1, 9999, input); err != ErrNotFound {
		t.Errorf("应返回 ErrNotFound, got %v", err)
	}

	// 成员正常记账
	entry, err := entrySvc.CreateEntry(u1, detail.ID, input)
	if err != nil {
		t.Fatalf("记账失败: %v", err)
	}
	if entry.AmountCent != 1234 || entry.LedgerID != detail.ID {
		t.Errorf("账目内容错误: %+v", entry)
	}
}

func TestEntry_ListAndSummary(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)
	entrySvc := newEntryService(db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{Name: "测试", MemberIDs: []uint{u2.ID}})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	n2, _ := noticeSvc.MyNotices(u2)
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}

	now := time.Now()
	seed := []EntryInput{
		{Type: "income", Category: "工资", AmountCent: 500000, OccurredAt: now},
		{Type: "expense", Category: "餐饮", AmountCent: 3000, OccurredAt: now},
		{Type: "expense", Category: "餐饮", AmountCent: 2000, OccurredAt: now},
		{Type: "expense", Category: "交通", AmountCent: 1000, OccurredAt: now},
	}
	for _, in := range seed {
		if _, err := entrySvc.CreateEntry(u2, detail.ID, in); err != nil {
			t.Fatalf("记账失败: %v", err)
		}
	}

	// 成员可以看到彼此的账目
	entries, total, err := entrySvc.ListEntries(u1, detail.ID, EntryFilter{})
	if err != nil {
		t.Fatalf("查账目失败: %v", err)
	}
	if total != 4 || len(entries) != 4 {
		t.Errorf("账目数错误: total=%d len=%d", total, len(entries))
	}

	// 类型筛选
	_, total, err = entrySvc.ListEntries(u1, detail.ID, EntryFilter{Type: "expense"})
	if err != nil {
		t.Fatalf("查账目失败: %v", err)
	}
	if total != 3 {
		t.Errorf("支出应为3条, got %d", total)
	}

	// 汇总
	summary, err := entrySvc.Summary(u1, detail.ID)
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}
	if summary.TotalIncomeCent != 500000 {
		t.Errorf("总收入错误: %d", summary.TotalIncomeCent)
	}
	if summary.TotalExpenseCent != 6000 {
		t.Errorf("总支出错误: %d", summary.TotalExpenseCent)
	}
	if summary.BalanceCent != 494000 {
		t.Errorf("结余错误: %d", summary.BalanceCent)
	}
	if len(summary.ByCategory) != 3 {
		t.Errorf("类别汇总应为3项, got %v", summary.ByCategory)
	}
}

func TestEntry_DeleteAuthorization(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)
	entrySvc := newEntryService(db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")
	u3 := makeUser(t, db, "u3")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{Name: "测试", MemberIDs: []uint{u2.ID, u3.ID}})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	n2, _ := noticeSvc.MyNotices(u2)
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}
	n3, _ := noticeSvc.MyNotices(u3)
	if _, err := noticeSvc.Resolve(u3, n3[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}

	entry, err := entrySvc.CreateEntry(u2, detail.ID, EntryInput{
		Type: "expense", Category: "餐饮", AmountCent: 100, OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("记账失败: %v", err)
	}

	// 普通成员不能删别人的账目
	if err := entrySvc.DeleteEntry(u3, detail.ID, entry.ID); err != ErrForbidden {
		t.Errorf("应返回 ErrForbidden, got %v", err)
	}

	// owner 可以删
	if err := entrySvc.DeleteEntry(u1, detail.ID, entry.ID); err != nil {
		t.Errorf("owner 删除应成功: %v", err)
	}

	// 已删除的账目
	if err := entrySvc.DeleteEntry(u1, detail.ID, entry.ID); err != ErrNotFound {
		t.Errorf("应返回 ErrNotFound, got %v", err)
	}
}
