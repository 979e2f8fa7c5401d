package admin

import (
	"context"
	"errors"

	"bluemercantile/internal/model"
	"bluemercantile/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
)

// ErrUserNotFound is returned by the user mutations when the userId is not in
// the approved collection.
var ErrUserNotFound = errors.New("user not found")

type AdminLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewAdminLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AdminLogic {
	return &AdminLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *AdminLogic) ListPending() ([]model.Registration, error) {
	return l.svcCtx.Registry.LoadPending(l.ctx)
}

func (l *AdminLogic) ListApproved() ([]model.ApprovedUser, error) {
	return l.svcCtx.Registry.LoadApproved(l.ctx)
}

func (l *AdminLogic) ListEmailLogs() ([]model.EmailLogEntry, error) {
	return l.svcCtx.Registry.LoadEmailLogs(l.ctx)
}

// ToggleUserStatus flips exactly the banned flag on one record.
func (l *AdminLogic) ToggleUserStatus(userId string, banned bool) error {
	l.Infof("切换用户状态: %s, banned=%v", userId, banned)

	return l.svcCtx.Registry.MutateApproved(l.ctx, func(users []model.ApprovedUser) ([]model.ApprovedUser, error) {
		for i := range users {
			if users[i].UserId == userId {
				users[i].Banned = banned
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
}

// ChangePassword replaces the stored plaintext password for one user.
func (l *AdminLogic) ChangePassword(userId, newPassword string) error {
	l.Infof("修改用户密码: %s", userId)

	return l.svcCtx.Registry.MutateApproved(l.ctx, func(users []model.ApprovedUser) ([]model.ApprovedUser, error) {
		for i := range users {
			if users[i].UserId == userId {
				users[i].Password = newPassword
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
}
