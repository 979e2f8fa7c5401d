package handler

import (
	"errors"
	"net/http"

	"bluemercantile/internal/logic/registration"
	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func RegisterHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RegisterReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := registration.NewRegistrationLogic(r.Context(), svcCtx)
		resp, err := l.Submit(&req)
		if err != nil {
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Registration failed")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func ApproveRegistrationHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ApproveRegistrationReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := registration.NewRegistrationLogic(r.Context(), svcCtx)
		resp, err := l.Approve(req.RegistrationId)
		if err != nil {
			if errors.Is(err, registration.ErrRegistrationNotFound) {
				writeFailure(r.Context(), w, http.StatusNotFound, "Registration not found")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Approval failed")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func RejectRegistrationHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RejectRegistrationReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		l := registration.NewRegistrationLogic(r.Context(), svcCtx)
		if err := l.Reject(req.RegistrationId, req.Reason); err != nil {
			if errors.Is(err, registration.ErrRegistrationNotFound) {
				writeFailure(r.Context(), w, http.StatusNotFound, "Registration not found")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, "Rejection failed")
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.BaseResp{
			Success: true,
			Message: "Registration rejected successfully",
		})
	}
}
