package service

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/models"
	"github.com/ztrve/lover-ledger/internal/store"

	"gorm.io/gorm"
)

// UserInfo 对外展示的用户信息
type UserInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

func toUserInfo(u *models.User) *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}

// LedgerView 账本列表项
type LedgerView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	OwnerID   uint   `json:"owner_id"`
	LeaderID  uint   `json:"leader_id"`
	MemberIDs []uint `json:"member_ids"`
}

// LedgerDetail 账本详情，带 owner/leader/成员的用户信息
type LedgerDetail struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Owner     *UserInfo  `json:"owner"`
	Leader    *UserInfo  `json:"leader"`
	MemberIDs []uint     `json:"member_ids"`
	Members   []UserInfo `json:"members"`
}

// CreateLedgerInput 创建账本请求
type CreateLedgerInput struct {
	Name      string
	MemberIDs []uint
}

// UpdateLedgerInput 修改账本请求，MemberIDs 为空表示不动成员
type UpdateLedgerInput struct {
	ID        uint
	Name      string
	LeaderID  uint
	MemberIDs []uint
}

// LedgerService 独占账本和成员关系的写入口，并负责成员不变量：
// owner 永远是成员，leader 永远是成员，成员行按 (ledger, user) 唯一
type LedgerService struct {
	db      *gorm.DB
	ledgers store.LedgerStore
	members store.MemberStore
	users   store.UserStore
	notices *NoticeService
}

func NewLedgerService(db *gorm.DB, ledgers store.LedgerStore, members store.MemberStore,
	users store.UserStore, notices *NoticeService) *LedgerService {
	return &LedgerService{
		db:      db,
		ledgers: ledgers,
		members: members,
		users:   users,
		notices: notices,
	}
}

// MyLedgers 返回当前用户加入的全部账本，一个都没有时返回空列表
func (s *LedgerService) MyLedgers(me *models.User) ([]LedgerView, error) {
	ids, err := s.members.MyLedgerIDs(me.ID)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.ledgers.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	views := make([]LedgerView, 0, len(ledgers))
	for i := range ledgers {
		l := &ledgers[i]
		memberIDs, err := s.members.GetMemberIDsByLedgerID(l.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, LedgerView{
			ID:        l.ID,
			Name:      l.Name,
			OwnerID:   l.OwnerID,
			LeaderID:  l.LeaderID,
			MemberIDs: memberIDs,
		})
	}
	return views, nil
}

// GetDetailByID 返回账本详情，不存在时返回 (nil, nil)
func (s *LedgerService) GetDetailByID(ledgerID uint) (*LedgerDetail, error) {
	return s.getDetail(s.db, ledgerID)
}

func (s *LedgerService) getDetail(db *gorm.DB, ledgerID uint) (*LedgerDetail, error) {
	ledger, err := s.ledgers.WithTx(db).GetByID(ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, nil
	}

	owner, err := s.users.GetByID(ledger.OwnerID)
	if err != nil {
		return nil, err
	}
	// leader 按 LeaderID 解析，不复用 owner
	leader, err := s.users.GetByID(ledger.LeaderID)
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.members.WithTx(db).GetMemberIDsByLedgerID(ledgerID)
	if err != nil {
		return nil, err
	}
	memberUsers, err := s.users.ListByIDs(memberIDs)
	if err != nil {
		return nil, err
	}
	members := make([]UserInfo, 0, len(memberUsers))
	for i := range memberUsers {
		members = append(members, *toUserInfo(&memberUsers[i]))
	}

	return &LedgerDetail{
		ID:        ledger.ID,
		Name:      ledger.Name,
		Owner:     toUserInfo(owner),
		Leader:    toUserInfo(leader),
		MemberIDs: memberIDs,
		Members:   members,
	}, nil
}

// CreateLedger 创建账本：owner = leader = 当前用户，创建人直接入账本，
// 其余候选成员各收到一条 LEDGER_INVITE 通知，同意后才会成为成员
func (s *LedgerService) CreateLedger(me *models.User, input CreateLedgerInput) (*LedgerDetail, error) {
	// 候选成员去重，并保证包含创建人自己
	seen := map[uint]bool{me.ID: true}
	var invitees []uint
	for _, id := range input.MemberIDs {
		if id == me.ID || seen[id] {
			continue
		}
		seen[id] = true
		invitees = append(invitees, id)
	}

	ledger := models.Ledger{
		Name:     input.Name,
		OwnerID:  me.ID,
		LeaderID: me.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledgers.WithTx(tx).Save(&ledger); err != nil {
			return err
		}
		// 创建人不走通知，直接写成员行
		if err := s.members.WithTx(tx).Save(ledger.ID, me.ID); err != nil {
			return err
		}
		if len(invitees) > 0 {
			if err := s.notices.CreateLedgerInvites(tx, &ledger, me, invitees); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.GetDetailByID(ledger.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("ledger %d vanished after create", ledger.ID)
	}
	return detail, nil
}

// UpdateLedger 仅拥有者和掌门人可修改；提交了成员列表时，
// 列表必须仍包含 owner 和当前 leader，否则要求先移交掌门人
func (s *LedgerService) UpdateLedger(me *models.User, input UpdateLedgerInput) (*LedgerDetail, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 在事务内重查，避免与删除并发时留下孤儿成员行
		ledger, err := s.ledgers.WithTx(tx).GetByID(input.ID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return ErrNotFound
		}
		if me.ID != ledger.OwnerID && me.ID != ledger.LeaderID {
			return ErrForbidden
		}

		newLeader := ledger.LeaderID
		if input.LeaderID != 0 {
			newLeader = input.LeaderID
		}

		if len(input.MemberIDs) > 0 {
			has := make(map[uint]bool, len(input.MemberIDs))
			for _, id := range input.MemberIDs {
				has[id] = true
			}
			if !has[ledger.OwnerID] {
				return validationErr("不可删除拥有人")
			}
			if !has[ledger.LeaderID] {
				return validationErr("请先移交掌门人")
			}
			if !has[newLeader] {
				return validationErr("新掌门人必须是账本成员")
			}
		} else if newLeader != ledger.LeaderID {
			// 没有提交成员列表时，新掌门人必须已经在成员里
			ok, err := s.members.WithTx(tx).IsMember(ledger.ID, newLeader)
			if err != nil {
				return err
			}
			if !ok {
				return validationErr("新掌门人必须是账本成员")
			}
		}

		if input.Name != "" {
			ledger.Name = input.Name
		}
		ledger.LeaderID = newLeader
		if err := s.ledgers.WithTx(tx).UpdateByID(ledger); err != nil {
			return err
		}

		if len(input.MemberIDs) > 0 {
			if err := s.members.WithTx(tx).UpdateLedgerMembers(ledger.ID, input.MemberIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.GetDetailByID(input.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrNotFound
	}
	return detail, nil
}

// RemoveLedger 仅拥有者可删除；账本和成员行在同一事务里一起删，
// 返回删除前的详情快照
func (s *LedgerService) RemoveLedger(me *models.User, ledgerID uint) (*LedgerDetail, error) {
	var snapshot *LedgerDetail
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger, err := s.ledgers.WithTx(tx).GetByID(ledgerID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return ErrNotFound
		}
		if me.ID != ledger.OwnerID {
			return ErrForbidden
		}

		snapshot, err = s.getDetail(tx, ledgerID)
		if err != nil {
			return err
		}

		if err := s.ledgers.WithTx(tx).RemoveByID(ledgerID); err != nil {
			return err
		}
		if err := s.members.WithTx(tx).RemoveByLedgerID(ledgerID); err != nil {
			return err
		}
		// 账目跟着账本一起删
		if err := tx.Where("ledger_id = ?", ledgerID).
			Delete(&models.Entry{}).Error; err != nil {
			return fmt.Errorf("remove entries of ledger %d: %w", ledgerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
