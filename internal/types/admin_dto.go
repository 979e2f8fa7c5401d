package types

import "bluemercantile/internal/model"

// BaseResp is the uniform success/message envelope used by mutation endpoints.
type BaseResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ToggleUserStatusReq struct {
	UserId string `json:"userId" validate:"required"`
	Banned bool   `json:"banned"`
}

type ChangePasswordReq struct {
	UserId      string `json:"userId" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ApprovedUsersResp struct {
	Success bool                 `json:"success"`
	Data    []model.ApprovedUser `json:"data"`
}

type EmailLogsResp struct {
	Success bool                  `json:"success"`
	Data    []model.EmailLogEntry `json:"data"`
}

type HealthResp struct {
	Status string `json:"status"`
}
