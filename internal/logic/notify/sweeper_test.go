package notify

import (
	"context"
	"testing"
	"time"

	"bluemercantile/internal/constant"
	"bluemercantile/internal/model"
)

func seedApproved(t *testing.T, store *model.RegistryStore, users ...model.ApprovedUser) {
	t.Helper()
	err := store.MutateApproved(context.Background(), func(list []model.ApprovedUser) ([]model.ApprovedUser, error) {
		return append(list, users...), nil
	})
	if err != nil {
		t.Fatalf("seed approved users: %v", err)
	}
}

func TestSweepOnce(t *testing.T) {
	store := model.NewRegistryStore(model.NewMemoryKvDao())
	notifier := NewNotifier(store)
	sweeper := NewApprovalSweeper(store, notifier, time.Minute)
	ctx := context.Background()

	notifiedUser := model.ApprovedUser{UserId: "ptrn1111", Notified: true}
	notifiedUser.Email = "done@example.com"
	pendingUser := model.ApprovedUser{UserId: "crdcl2222", Password: "abc12345", Notified: false}
	pendingUser.Email = "waiting@example.com"
	pendingUser.FullName = "Waiting User"
	seedApproved(t, store, notifiedUser, pendingUser)

	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}

	// 只有未通知的用户收到补发邮件
	logs, _ := store.LoadEmailLogs(ctx)
	if len(logs) != 1 {
		t.Fatalf("email log count = %d, want 1", len(logs))
	}
	if logs[0].To != "waiting@example.com" {
		t.Fatalf("resend went to %q, want waiting@example.com", logs[0].To)
	}
	if logs[0].Subject != constant.SubjectApproved {
		t.Fatalf("subject = %q, want %q", logs[0].Subject, constant.SubjectApproved)
	}

	users, _ := store.LoadApproved(ctx)
	for _, u := range users {
		if !u.Notified {
			t.Fatalf("user %s still not notified after sweep", u.UserId)
		}
	}

	// 再跑一轮不应重复发送
	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("second SweepOnce: %v", err)
	}
	logs, _ = store.LoadEmailLogs(ctx)
	if len(logs) != 1 {
		t.Fatalf("email log count after idempotent sweep = %d, want 1", len(logs))
	}
}

func TestMarkNotifiedUnknownUser(t *testing.T) {
	store := model.NewRegistryStore(model.NewMemoryKvDao())
	seedApproved(t, store, model.ApprovedUser{UserId: "ptrn1111"})

	// 未知 userId 是静默 no-op
	if err := MarkNotified(context.Background(), store, "ptrn9999"); err != nil {
		t.Fatalf("MarkNotified unknown user: %v", err)
	}

	users, _ := store.LoadApproved(context.Background())
	if users[0].Notified {
		t.Fatal("unrelated user must not be flipped")
	}
}
