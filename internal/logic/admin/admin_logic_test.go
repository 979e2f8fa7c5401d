package admin

import (
	"context"
	"errors"
	"testing"

	"bluemercantile/internal/model"
	"bluemercantile/internal/svc"
)

func newTestSvcCtx(t *testing.T, users ...model.ApprovedUser) *svc.ServiceContext {
	t.Helper()

	kv := model.NewMemoryKvDao()
	registry := model.NewRegistryStore(kv)
	if len(users) > 0 {
		err := registry.MutateApproved(context.Background(), func(list []model.ApprovedUser) ([]model.ApprovedUser, error) {
			return append(list, users...), nil
		})
		if err != nil {
			t.Fatalf("seed users: %v", err)
		}
	}
	return &svc.ServiceContext{Kv: kv, Registry: registry}
}

func TestToggleUserStatus(t *testing.T) {
	svcCtx := newTestSvcCtx(t,
		model.ApprovedUser{UserId: "ptrn1234"},
		model.ApprovedUser{UserId: "crdcl5678"},
	)
	l := NewAdminLogic(context.Background(), svcCtx)

	if err := l.ToggleUserStatus("ptrn1234", true); err != nil {
		t.Fatalf("ban: %v", err)
	}

	users, _ := l.ListApproved()
	for _, u := range users {
		switch u.UserId {
		case "ptrn1234":
			if !u.Banned {
				t.Fatal("ptrn1234 should be banned")
			}
		case "crdcl5678":
			if u.Banned {
				t.Fatal("crdcl5678 must be untouched")
			}
		}
	}

	if err := l.ToggleUserStatus("ptrn1234", false); err != nil {
		t.Fatalf("unban: %v", err)
	}
	users, _ = l.ListApproved()
	if users[0].Banned {
		t.Fatal("ptrn1234 should be unbanned")
	}

	if err := l.ToggleUserStatus("ptrn0000", true); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}
}

func TestChangePassword(t *testing.T) {
	seeded := model.ApprovedUser{UserId: "ptrn1234", Password: "oldpass1"}
	svcCtx := newTestSvcCtx(t, seeded)
	l := NewAdminLogic(context.Background(), svcCtx)

	if err := l.ChangePassword("ptrn1234", "newpass1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	users, _ := l.ListApproved()
	if users[0].Password != "newpass1" {
		t.Fatalf("password = %q, want newpass1", users[0].Password)
	}

	if err := l.ChangePassword("ptrn0000", "whatever"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}
}

func TestListEmpty(t *testing.T) {
	svcCtx := newTestSvcCtx(t)
	l := NewAdminLogic(context.Background(), svcCtx)

	pending, err := l.ListPending()
	if err != nil || len(pending) != 0 {
		t.Fatalf("ListPending = (%v, %v), want empty", pending, err)
	}
	logs, err := l.ListEmailLogs()
	if err != nil || len(logs) != 0 {
		t.Fatalf("ListEmailLogs = (%v, %v), want empty", logs, err)
	}
}
