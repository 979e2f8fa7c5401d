package model

import "time"

// Registration is a pending application stored under the pending_registrations key.
// It stays identity-free until approval assigns a userId.
type Registration struct {
	Id            string `json:"id"`
	UserType      string `json:"userType"` // patron / creditClient
	FullName      string `json:"fullName"`
	EntityType    string `json:"entityType,omitempty"` // patron only: ngo / panchayat / ...
	NgoRegId      string `json:"ngoRegId,omitempty"`
	Vp            string `json:"vp,omitempty"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	AadharId      string `json:"aadharId"`
	Address       string `json:"address"`
	Pincode       string `json:"pincode"`
	State         string `json:"state"`
	WalletAddress string `json:"walletAddress"`
	SubmittedAt   string `json:"submittedAt"`
	Status        string `json:"status"`
}

// ApprovedUser is a registration promoted by admin approval. UserId and the initial
// password are assigned exactly once; the password may later be rotated by admin.
// Notified tracks whether the credentials email has been recorded yet, so a failed
// notification can be retried without re-approving.
type ApprovedUser struct {
	Registration
	UserId     string `json:"userId"`
	Password   string `json:"password"` // plaintext, admin-visible
	Banned     bool   `json:"banned"`
	Notified   bool   `json:"notified"`
	ApprovedAt string `json:"approvedAt"`
}

// EmailLogEntry records one outbound notification attempt. Append-only.
type EmailLogEntry struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEntry is one local transfer attempt and its resolved status.
type LedgerEntry struct {
	Hash      string    `json:"hash"`
	Status    string    `json:"status"` // pending / confirmed / failed
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // transfer / mint
	Amount    string    `json:"amount,omitempty"`
	To        string    `json:"to,omitempty"`
	From      string    `json:"from,omitempty"`
}
