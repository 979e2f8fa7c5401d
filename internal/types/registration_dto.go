package types

import "bluemercantile/internal/model"

// RegisterReq carries the registration form fields. The server performs no field
// validation beyond JSON parsing; every submission lands in the pending collection.
type RegisterReq struct {
	UserType      string `json:"userType" validate:"required"` // patron / creditClient
	FullName      string `json:"fullName" validate:"required"`
	EntityType    string `json:"entityType,optional"`
	NgoRegId      string `json:"ngoRegId,optional"`
	Vp            string `json:"vp,optional"`
	Mobile        string `json:"mobile,optional"`
	Email         string `json:"email,optional"`
	AadharId      string `json:"aadharId,optional"`
	Address       string `json:"address,optional"`
	Pincode       string `json:"pincode,optional"`
	State         string `json:"state,optional"`
	WalletAddress string `json:"walletAddress,optional"`
}

type RegisterResp struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RegistrationId string `json:"registrationId"`
}

type ApproveRegistrationReq struct {
	RegistrationId string `json:"registrationId" validate:"required"`
}

type ApproveRegistrationResp struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UserId   string `json:"userId"`
	Password string `json:"password"`
}

type RejectRegistrationReq struct {
	RegistrationId string `json:"registrationId" validate:"required"`
	Reason         string `json:"reason,optional"`
}

type PendingRegistrationsResp struct {
	Success bool                 `json:"success"`
	Data    []model.Registration `json:"data"`
}
