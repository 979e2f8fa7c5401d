package types

import "bluemercantile/internal/model"

type AdminLoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResp struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Token    string `json:"token,omitempty"`
	UserType string `json:"userType,omitempty"`
}

type UserLoginReq struct {
	UserId   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserLoginResp struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message,omitempty"`
	Token    string              `json:"token,omitempty"`
	UserType string              `json:"userType,omitempty"`
	UserId   string              `json:"userId,omitempty"`
	UserData *model.ApprovedUser `json:"userData,omitempty"`
}
