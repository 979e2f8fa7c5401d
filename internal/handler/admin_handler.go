package handler

import (
	"errors"
	"fmt"
	"net/http"

	"bluemercantile/internal/logic/admin"
	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func PendingRegistrationsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := admin.NewAdminLogic(r.Context(), svcCtx)
		data, err := l.ListPending()
		if err != nil {
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Failed to fetch registrations")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.PendingRegistrationsResp{Success: true, Data: data})
	}
}

func ApprovedUsersHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := admin.NewAdminLogic(r.Context(), svcCtx)
		data, err := l.ListApproved()
		if err != nil {
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.ApprovedUsersResp{Success: true, Data: data})
	}
}

func EmailLogsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := admin.NewAdminLogic(r.Context(), svcCtx)
		data, err := l.ListEmailLogs()
		if err != nil {
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Failed to fetch email logs")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.EmailLogsResp{Success: true, Data: data})
	}
}

func ToggleUserStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ToggleUserStatusReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := admin.NewAdminLogic(r.Context(), svcCtx)
		if err := l.ToggleUserStatus(req.UserId, req.Banned); err != nil {
			if errors.Is(err, admin.ErrUserNotFound) {
				writeFailure(r.Context(), w, http.StatusNotFound, "User not found")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Failed to update user status")
			return
		}

		action := "unbanned"
		if req.Banned {
			action = "banned"
		}
		httpx.OkJsonCtx(r.Context(), w, types.BaseResp{
			Success: true,
			Message: fmt.Sprintf("User %s successfully", action),
		})
	}
}

func ChangePasswordHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChangePasswordReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := admin.NewAdminLogic(r.Context(), svcCtx)
		if err := l.ChangePassword(req.UserId, req.NewPassword); err != nil {
			if errors.Is(err, admin.ErrUserNotFound) {
				writeFailure(r.Context(), w, http.StatusNotFound, "User not found")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Failed to change password")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.BaseResp{
			Success: true,
			Message: "Password changed successfully",
		})
	}
}
