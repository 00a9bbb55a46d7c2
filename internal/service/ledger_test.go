package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ztrve/lover-ledger/internal/database"
	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/store"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建临时 sqlite 数据库并迁移全部表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

// newServices 组装测试用的账本/通知服务
func newServices(t *testing.T, db *gorm.DB) (*LedgerService, *NoticeService) {
	t.Helper()
	ledgerStore := store.NewLedgerStore(db)
	memberStore := store.NewMemberStore(db)
	noticeStore := store.NewNoticeStore(db)
	userStore := store.NewUserStore(db)

	registry := notice.NewRegistry(noticeStore, zap.NewNop())
	if err := registry.Register(notice.NewLedgerInviteHandler(memberStore, ledgerStore)); err != nil {
		t.Fatalf("注册 handler 失败: %v", err)
	}

	noticeSvc := NewNoticeService(db, noticeStore, registry)
	ledgerSvc := NewLedgerService(db, ledgerStore, memberStore, userStore, noticeSvc)
	return ledgerSvc, noticeSvc
}

func makeUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x", DisplayName: username}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return &u
}

func memberIDs(t *testing.T, db *gorm.DB, ledgerID uint) []uint {
	t.Helper()
	ids, err := store.NewMemberStore(db).GetMemberIDsByLedgerID(ledgerID)
	if err != nil {
		t.Fatalf("查成员失败: %v", err)
	}
	return ids
}

func TestCreateLedger_InvitesOthers(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")
	u3 := makeUser(t, db, "u3")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "情侣账本",
		MemberIDs: []uint{u1.ID, u2.ID, u3.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}

	// owner = leader = 创建人
	if detail.Owner == nil || detail.Owner.ID != u1.ID {
		t.Errorf("owner 应为创建人, got %+v", detail.Owner)
	}
	if detail.Leader == nil || detail.Leader.ID != u1.ID {
		t.Errorf("leader 应为创建人, got %+v", detail.Leader)
	}

	// 创建人立即入账本，其余人还不是成员
	if len(detail.MemberIDs) != 1 || detail.MemberIDs[0] != u1.ID {
		t.Errorf("初始成员应只有创建人, got %v", detail.MemberIDs)
	}

	// u2、u3 各收到一条 pending 的邀请通知
	for _, u := range []*models.User{u2, u3} {
		notices, err := noticeSvc.MyNotices(u)
		if err != nil {
			t.Fatalf("查通知失败: %v", err)
		}
		if len(notices) != 1 {
			t.Fatalf("用户 %s 应有1条通知, got %d", u.Username, len(notices))
		}
		if notices[0].NoticeType != models.NoticeLedgerInvite {
			t.Errorf("通知类型错误: %s", notices[0].NoticeType)
		}
		if notices[0].Status != models.NoticePending {
			t.Errorf("通知应为 pending, got %s", notices[0].Status)
		}
	}

	// 创建人自己不会收到通知
	mine, _ := noticeSvc.MyNotices(u1)
	if len(mine) != 0 {
		t.Errorf("创建人不应收到通知, got %d", len(mine))
	}
}

func TestCreateLedger_NormalizesMemberSet(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	// 不带自己 + 重复的候选成员
	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "测试",
		MemberIDs: []uint{u2.ID, u2.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	if len(detail.MemberIDs) != 1 || detail.MemberIDs[0] != u1.ID {
		t.Errorf("创建人应被自动加入, got %v", detail.MemberIDs)
	}

	notices, _ := noticeSvc.MyNotices(u2)
	if len(notices) != 1 {
		t.Errorf("候选成员去重后应只有1条通知, got %d", len(notices))
	}
}

func TestResolveNotice_AgreeAddsMember(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")
	u3 := makeUser(t, db, "u3")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "合租账本",
		MemberIDs: []uint{u2.ID, u3.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}

	// u2 同意 → 成为成员
	n2, _ := noticeSvc.MyNotices(u2)
	resolved, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree)
	if err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}
	if resolved.Status != models.NoticeAgreed {
		t.Errorf("状态应为 agreed, got %s", resolved.Status)
	}
	ids := memberIDs(t, db, detail.ID)
	if len(ids) != 2 {
		t.Errorf("成员应为 {u1, u2}, got %v", ids)
	}

	// u3 拒绝 → 不是成员，状态 disagreed
	n3, _ := noticeSvc.MyNotices(u3)
	resolved, err = noticeSvc.Resolve(u3, n3[0].ID, notice.DecisionDisagree)
	if err != nil {
		t.Fatalf("拒绝通知失败: %v", err)
	}
	if resolved.Status != models.NoticeDisagreed {
		t.Errorf("状态应为 disagreed, got %s", resolved.Status)
	}
	ids = memberIDs(t, db, detail.ID)
	if len(ids) != 2 {
		t.Errorf("拒绝后成员不应变化, got %v", ids)
	}
}

func TestResolveNotice_Guards(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")
	u3 := makeUser(t, db, "u3")

	_, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "测试",
		MemberIDs: []uint{u2.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	n2, _ := noticeSvc.MyNotices(u2)

	// 不存在的通知
	if _, err := noticeSvc.Resolve(u2, 9999, notice.DecisionAgree); err != ErrNotFound {
		t.Errorf("应返回 ErrNotFound, got %v", err)
	}

	// 别人的通知不能处理
	if _, err := noticeSvc.Resolve(u3, n2[0].ID, notice.DecisionAgree); err != ErrForbidden {
		t.Errorf("应返回 ErrForbidden, got %v", err)
	}

	// 已处理的通知不能再处理
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("首次同意失败: %v", err)
	}
	_, err = noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree)
	var ve *ValidationError
	if err == nil {
		t.Fatal("重复处理应失败")
	} else if !errors.As(err, &ve) {
		t.Errorf("应返回 ValidationError, got %v", err)
	}
}

func TestUpdateLedger_InvariantsAndAuth(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")
	u3 := makeUser(t, db, "u3")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "测试",
		MemberIDs: []uint{u2.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	n2, _ := noticeSvc.MyNotices(u2)
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}

	// 非 owner、非 leader 无权修改
	_, err = ledgerSvc.UpdateLedger(u3, UpdateLedgerInput{ID: detail.ID, Name: "改名"})
	if err != ErrForbidden {
		t.Errorf("应返回 ErrForbidden, got %v", err)
	}

	// 成员列表漏掉 owner → 校验失败，成员不变
	var ve *ValidationError
	_, err = ledgerSvc.UpdateLedger(u1, UpdateLedgerInput{
		ID:        detail.ID,
		MemberIDs: []uint{u2.ID},
	})
	if err == nil || !errors.As(err, &ve) {
		t.Errorf("漏掉 owner 应返回 ValidationError, got %v", err)
	}
	if ids := memberIDs(t, db, detail.ID); len(ids) != 2 {
		t.Errorf("校验失败后成员不应变化, got %v", ids)
	}

	// 成员列表漏掉 leader → 同样失败
	if _, err := ledgerSvc.UpdateLedger(u1, UpdateLedgerInput{
		ID:        detail.ID,
		LeaderID:  u2.ID,
		MemberIDs: []uint{u1.ID},
	}); err == nil {
		t.Error("漏掉 leader 应失败")
	}

	// 不提交成员列表时，新掌门人也必须已经是成员
	_, err = ledgerSvc.UpdateLedger(u1, UpdateLedgerInput{ID: detail.ID, LeaderID: u3.ID})
	if err == nil || !errors.As(err, &ve) {
		t.Errorf("非成员移交掌门人应返回 ValidationError, got %v", err)
	}

	// 正常修改：移交掌门人并调整成员
	updated, err := ledgerSvc.UpdateLedger(u1, UpdateLedgerInput{
		ID:        detail.ID,
		Name:      "新名字",
		LeaderID:  u2.ID,
		MemberIDs: []uint{u1.ID, u2.ID, u3.ID},
	})
	if err != nil {
		t.Fatalf("修改账本失败: %v", err)
	}
	if updated.Name != "新名字" {
		t.Errorf("名称未更新: %s", updated.Name)
	}
	// leader 详情解析的是 leaderId 而不是 ownerId
	if updated.Leader == nil || updated.Leader.ID != u2.ID {
		t.Errorf("leader 应为 u2, got %+v", updated.Leader)
	}
	if updated.Owner == nil || updated.Owner.ID != u1.ID {
		t.Errorf("owner 应保持 u1, got %+v", updated.Owner)
	}
	if len(updated.MemberIDs) != 3 {
		t.Errorf("成员应为3人, got %v", updated.MemberIDs)
	}

	// 新 leader 也可以修改
	if _, err := ledgerSvc.UpdateLedger(u2, UpdateLedgerInput{ID: detail.ID, Name: "再改"}); err != nil {
		t.Errorf("leader 修改应成功: %v", err)
	}

	// 不存在的账本
	if _, err := ledgerSvc.UpdateLedger(u1, UpdateLedgerInput{ID: 9999, Name: "x"}); err != ErrNotFound {
		t.Errorf("应返回 ErrNotFound, got %v", err)
	}
}

func TestRemoveLedger_Cascades(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "待删除",
		MemberIDs: []uint{u2.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	n2, _ := noticeSvc.MyNotices(u2)
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}

	// 非 owner 不能删除
	if _, err := ledgerSvc.RemoveLedger(u2, detail.ID); err != ErrForbidden {
		t.Errorf("非 owner 删除应返回 ErrForbidden, got %v", err)
	}

	snapshot, err := ledgerSvc.RemoveLedger(u1, detail.ID)
	if err != nil {
		t.Fatalf("删除账本失败: %v", err)
	}
	// 返回删除前的快照
	if len(snapshot.MemberIDs) != 2 {
		t.Errorf("快照应包含删除前的成员, got %v", snapshot.MemberIDs)
	}

	// 账本和成员行一起消失
	gone, err := ledgerSvc.GetDetailByID(detail.ID)
	if err != nil {
		t.Fatalf("查详情失败: %v", err)
	}
	if gone != nil {
		t.Error("删除后详情应为空")
	}
	if ids := memberIDs(t, db, detail.ID); len(ids) != 0 {
		t.Errorf("删除后不应有成员行, got %v", ids)
	}

	// 再删一次 → NotFound
	if _, err := ledgerSvc.RemoveLedger(u1, detail.ID); err != ErrNotFound {
		t.Errorf("应返回 ErrNotFound, got %v", err)
	}
}

func TestResolveNotice_AfterLedgerRemoved(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	detail, err := ledgerSvc.CreateLedger(u1, CreateLedgerInput{
		Name:      "短命账本",
		MemberIDs: []uint{u2.ID},
	})
	if err != nil {
		t.Fatalf("创建账本失败: %v", err)
	}
	if _, err := ledgerSvc.RemoveLedger(u1, detail.ID); err != nil {
		t.Fatalf("删除账本失败: %v", err)
	}

	// 账本删除后同意遗留的邀请：不能给已删除的账本写成员行
	n2, _ := noticeSvc.MyNotices(u2)
	if len(n2) != 1 {
		t.Fatalf("u2 应有1条遗留通知, got %d", len(n2))
	}
	_, err = noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree)
	if !errors.Is(err, notice.ErrLedgerNotFound) {
		t.Errorf("应返回 ErrLedgerNotFound, got %v", err)
	}
	if ids := memberIDs(t, db, detail.ID); len(ids) != 0 {
		t.Errorf("不应留下孤儿成员行, got %v", ids)
	}

	// 事务回滚后通知仍是 pending，u2 还可以拒绝来清掉它
	n2, _ = noticeSvc.MyNotices(u2)
	if len(n2) != 1 || n2[0].Status != models.NoticePending {
		t.Fatalf("同意失败后通知应保持 pending, got %+v", n2)
	}
	resolved, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionDisagree)
	if err != nil {
		t.Fatalf("拒绝遗留通知失败: %v", err)
	}
	if resolved.Status != models.NoticeDisagreed {
		t.Errorf("状态应为 disagreed, got %s", resolved.Status)
	}
}

func TestMyLedgers_EmptyIsNotError(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, _ := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	ledgers, err := ledgerSvc.MyLedgers(u1)
	if err != nil {
		t.Fatalf("查账本失败: %v", err)
	}
	if len(ledgers) != 0 {
		t.Errorf("应返回空列表, got %v", ledgers)
	}
}

func TestMyLedgers_ListsMembership(t *testing.T) {
	db := setupTestDB(t)
	ledgerSvc, noticeSvc := newServices(t, db)

	u1 := makeUser(t, db, "u1")
	u2 := makeUser(t, db, "u2")

	l1, _ := ledgerSvc.CreateLedger(u1, CreateLedgerInput{Name: "一号", MemberIDs: []uint{u2.ID}})
	l2, _ := ledgerSvc.CreateLedger(u2, CreateLedgerInput{Name: "二号"})

	n2, _ := noticeSvc.MyNotices(u2)
	if _, err := noticeSvc.Resolve(u2, n2[0].ID, notice.DecisionAgree); err != nil {
		t.Fatalf("同意通知失败: %v", err)
	}

	mine, err := ledgerSvc.MyLedgers(u2)
	if err != nil {
		t.Fatalf("查账本失败: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("u2 应在2个账本里, got %d", len(mine))
	}
	found := map[uint]bool{}
	for _, l := range mine {
		found[l.ID] = true
	}
	if !found[l1.ID] || !found[l2.ID] {
		t.Errorf("账本列表不完整: %v", mine)
	}
}
