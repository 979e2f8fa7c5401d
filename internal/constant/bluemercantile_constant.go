package constant

// UserType identifies which kind of participant a registration belongs to.
type UserType string

const (
	UserTypePatron       UserType = "patron"
	UserTypeCreditClient UserType = "creditClient"
)

// UserIDPrefix returns the login-id prefix for a user type.
// Any type other than patron falls back to the credit-client prefix,
// matching the original approval behaviour.
func UserIDPrefix(userType string) string {
	if UserType(userType) == UserTypePatron {
		return "ptrn"
	}
	return "crdcl"
}

// Registration status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Fixed keys in the kv store. Collections are whole JSON arrays under one key.
const (
	KeyPendingRegistrations = "pending_registrations"
	KeyApprovedUsers        = "approved_users"
	KeyEmailLogs            = "email_logs"
	KeyWalletAddress        = "bluemercantile_wallet_address"
	KeyTransactions         = "bluemercantile_transactions"
)

// Email subjects sent by the registration workflow.
const (
	SubjectApproved = "BlueMercantile Account Approved"
	SubjectRejected = "BlueMercantile Registration Rejected"
)

// Ledger entry status values.
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// Ledger entry types.
const (
	TxTypeTransfer = "transfer"
	TxTypeMint     = "mint"
)

// MaxLedgerEntries caps the local transaction ledger; oldest entries are evicted first.
const MaxLedgerEntries = 50

// SepoliaChainID is the expected test network.
const SepoliaChainID int64 = 11155111

// TokenDecimals is the fixed scaling used when parsing human-readable amounts.
const TokenDecimals = 18
