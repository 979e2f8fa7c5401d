package handler

import (
	"context"
	"errors"
	"net/http"

	"bluemercantile/internal/logic/auth"
	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// writeFailure emits the uniform {success:false, message} envelope.
func writeFailure(ctx context.Context, w http.ResponseWriter, code int, message string) {
	httpx.WriteJsonCtx(ctx, w, code, types.BaseResp{
		Success: false,
		Message: message,
	})
}

func AdminLoginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AdminLoginReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := auth.NewAuthLogic(r.Context(), svcCtx)
		resp, err := l.AdminLogin(&req)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeFailure(r.Context(), w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Login failed")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func UserLoginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.UserLoginReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := auth.NewAuthLogic(r.Context(), svcCtx)
		resp, err := l.UserLogin(&req)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				writeFailure(r.Context(), w, http.StatusUnauthorized, "Invalid credentials")
			case errors.Is(err, auth.ErrUserBanned):
				writeFailure(r.Context(), w, http.StatusUnauthorized, "Account is banned")
			default:
				writeFailure(r.Context(), w, http.StatusInternalServerError, "Login failed")
			}
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
