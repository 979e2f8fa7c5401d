package notify

import (
	"context"
	"time"

	"bluemercantile/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// ApprovalSweeper retries credentials emails for users whose approval landed
// but whose notification step failed. 审批和发信不是一个事务，所以这里定期
// 扫描 notified=false 的用户补发，保证审批后的用户最终能拿到凭证邮件。
type ApprovalSweeper struct {
	store    *model.RegistryStore
	notifier *Notifier
	interval time.Duration
}

func NewApprovalSweeper(store *model.RegistryStore, notifier *Notifier, interval time.Duration) *ApprovalSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ApprovalSweeper{
		store:    store,
		notifier: notifier,
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *ApprovalSweeper) Start(ctx context.Context) {
	logx.Info("审批通知补发任务已启动")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Info("审批通知补发任务已停止")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				logx.Errorf("补发扫描失败: %v", err)
			}
		}
	}
}

// SweepOnce sends the credentials mail for every un-notified approved user and
// flips their notified flag. Safe to call repeatedly; a user is only retried
// while the flag is still false.
func (s *ApprovalSweeper) SweepOnce(ctx context.Context) error {
	users, err := s.store.LoadApproved(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		if user.Notified {
			continue
		}
		logx.Infof("补发审批通知: userId=%s, email=%s", user.UserId, user.Email)

		if err := s.notifier.SendApproval(ctx, user); err != nil {
			logx.Errorf("补发审批邮件失败 for %s: %v", user.UserId, err)
			continue
		}
		if err := MarkNotified(ctx, s.store, user.UserId); err != nil {
			logx.Errorf("更新 notified 标记失败 for %s: %v", user.UserId, err)
		}
	}

	return nil
}

// MarkNotified flips the notified flag for one approved user. No-op when the
// userId is unknown (the user may have been mutated concurrently).
func MarkNotified(ctx context.Context, store *model.RegistryStore, userId string) error {
	return store.MutateApproved(ctx, func(users []model.ApprovedUser) ([]model.ApprovedUser, error) {
		for i := range users {
			if users[i].UserId == userId {
				users[i].Notified = true
				break
			}
		}
		return users, nil
	})
}
