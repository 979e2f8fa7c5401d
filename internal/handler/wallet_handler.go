package handler

import (
	"errors"
	"net/http"

	"bluemercantile/internal/logic/wallet"
	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func toSessionView(s wallet.Session) types.SessionView {
	return types.SessionView{
		Address:          s.Address,
		IsConnected:      s.IsConnected,
		IsCorrectNetwork: s.IsCorrectNetwork,
		EthBalance:       s.EthBalance,
		TokenBalance:     s.TokenBalance,
		IsLoading:        s.IsLoading,
		Error:            s.Err,
	}
}

func WalletConnectHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svcCtx.Wallet.Connect(r.Context())
		if err != nil {
			if errors.Is(err, wallet.ErrProviderUnavailable) {
				writeFailure(r.Context(), w, http.StatusServiceUnavailable, "Wallet provider is not available")
				return
			}
			writeFailure(r.Context(), w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.WalletSessionResp{
			Success: true,
			Session: toSessionView(session),
		})
	}
}

func WalletDisconnectHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := svcCtx.Wallet.Disconnect(r.Context())
		httpx.OkJsonCtx(r.Context(), w, types.WalletSessionResp{
			Success: true,
			Session: toSessionView(session),
		})
	}
}

func WalletSessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.WalletSessionResp{
			Success: true,
			Session: toSessionView(svcCtx.Wallet.Session()),
		})
	}
}

func SwitchNetworkHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := svcCtx.Wallet.SwitchNetwork(r.Context())
		httpx.OkJsonCtx(r.Context(), w, types.SwitchNetworkResp{
			Success: ok,
			Session: toSessionView(svcCtx.Wallet.Session()),
		})
	}
}

func RefreshBalancesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svcCtx.Wallet.RefreshBalances(r.Context())
		httpx.OkJsonCtx(r.Context(), w, types.WalletSessionResp{
			Success: true,
			Session: toSessionView(svcCtx.Wallet.Session()),
		})
	}
}

func TransferHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TransferReq
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("failed to parse request body: %v", err)
			writeFailure(r.Context(), w, http.StatusBadRequest, "Invalid request")
			return
		}

		hash, err := svcCtx.Wallet.TransferTokens(r.Context(), req.To, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, wallet.ErrNotConnected), errors.Is(err, wallet.ErrWrongNetwork):
				writeFailure(r.Context(), w, http.StatusBadRequest, err.Error())
			case errors.Is(err, wallet.ErrProviderUnavailable):
				writeFailure(r.Context(), w, http.StatusServiceUnavailable, "Wallet provider is not available")
			case hash != "":
				// 交易已上链但回执没等到，失败响应里带上 hash 供查询
				httpx.WriteJsonCtx(r.Context(), w, http.StatusInternalServerError, types.TransferResp{
					Success: false,
					Message: err.Error(),
					Hash:    hash,
				})
			default:
				writeFailure(r.Context(), w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.TransferResp{
			Success: true,
			Hash:    hash,
		})
	}
}

func TransactionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.TransactionsResp{
			Success: true,
			Data:    svcCtx.Wallet.Transactions(),
		})
	}
}
