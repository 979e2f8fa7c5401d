package handler

import (
	"net/http"
	"time"

	"bluemercantile/internal/svc"
	"bluemercantile/internal/types"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(),
			},
			// --- Auth Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/admin/login",
				Handler: AdminLoginHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/user/login",
				Handler: UserLoginHandler(serverCtx),
			},
			// --- Registration Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/register",
				Handler: RegisterHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/admin/pending-registrations",
				Handler: PendingRegistrationsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/admin/approve-registration",
				Handler: ApproveRegistrationHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/admin/reject-registration",
				Handler: RejectRegistrationHandler(serverCtx),
			},
			// --- Admin User Management ---
			{
				Method:  http.MethodGet,
				Path:    "/admin/approved-users",
				Handler: ApprovedUsersHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/admin/toggle-user-status",
				Handler: ToggleUserStatusHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/admin/change-password",
				Handler: ChangePasswordHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/admin/email-logs",
				Handler: EmailLogsHandler(serverCtx),
			},
			// --- Wallet Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/wallet/connect",
				Handler: WalletConnectHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/wallet/disconnect",
				Handler: WalletDisconnectHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/wallet/session",
				Handler: WalletSessionHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/wallet/switch-network",
				Handler: SwitchNetworkHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/wallet/refresh",
				Handler: RefreshBalancesHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/wallet/transfer",
				Handler: TransferHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/wallet/transactions",
				Handler: TransactionsHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
		rest.WithTimeout(60000*time.Millisecond),
	)

	server.AddRoute(rest.Route{
		Method:  http.MethodGet,
		Path:    "/metrics",
		Handler: promhttp.Handler().ServeHTTP,
	})
}

// HealthHandler is the liveness probe.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.HealthResp{Status: "ok"})
	}
}
